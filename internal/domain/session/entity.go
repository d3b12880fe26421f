package session

import (
	"time"

	"github.com/google/uuid"
)

// MessageRole mirrors the conversation roles stored per session
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// Message is a single stored conversation turn
type Message struct {
	Role       MessageRole `json:"role"`
	Content    string      `json:"content"`
	ToolName   string      `json:"tool_name,omitempty"`
	ToolCallID string      `json:"tool_call_id,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Session is a conversation between a user and an agent.
// Sessions live in Redis with a TTL and are not durably persisted.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	AgentSlug string    `json:"agent_slug"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Append adds a message and bumps the update timestamp
func (s *Session) Append(msg Message) {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = msg.CreatedAt
}
