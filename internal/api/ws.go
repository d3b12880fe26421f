package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"sola/internal/metrics"
	"sola/internal/services/chat"
	"sola/pkg/errors"
	"sola/pkg/logger"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second

	// Single chat turn; covers the model call plus tool rounds
	wsTurnTimeout = 2 * time.Minute
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Token auth happens before the upgrade; browser origin checks add
	// nothing for a wallet-authenticated API.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is a single inbound frame on the stream socket
type wsRequest struct {
	SessionID uuid.UUID `json:"session_id,omitempty"`
	Agent     string    `json:"agent,omitempty"`
	Message   string    `json:"message"`
}

// wsResponse is an outbound frame
type wsResponse struct {
	Type  string       `json:"type"` // "reply" or "error"
	Reply *chat.Output `json:"reply,omitempty"`
	Error string       `json:"error,omitempty"`
}

// handleStream upgrades the connection and runs chat turns over it.
// Each inbound message is one turn; the reply frame carries the updated
// session ID so the client can continue the conversation.
func (h *Handlers) handleStream(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("WebSocket upgrade failed: %v", err)
		return
	}

	metrics.WebSocketConnections.Inc()
	defer metrics.WebSocketConnections.Dec()
	defer conn.Close()

	log := h.log.With("user_id", claims.UserID)
	log.Debug("WebSocket stream opened")

	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go pingLoop(conn, wsPingPeriod, done, log)

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("WebSocket read failed: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsPongWait))

		// The request context dies with the hijacked connection's handler;
		// turns get their own deadline instead.
		ctx, cancel := context.WithTimeout(context.Background(), wsTurnTimeout)
		out, err := h.chat.Chat(ctx, chat.Input{
			UserID:    claims.UserID,
			Wallet:    claims.Wallet,
			SessionID: req.SessionID,
			AgentSlug: req.Agent,
			Message:   req.Message,
		})
		cancel()

		resp := wsResponse{Type: "reply", Reply: out}
		if err != nil {
			resp = wsResponse{Type: "error", Error: wsErrorMessage(err)}
		}

		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(resp); err != nil {
			log.Warnf("WebSocket write failed: %v", err)
			return
		}
	}
}

func pingLoop(conn *websocket.Conn, period time.Duration, done <-chan struct{}, log *logger.Logger) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			// WriteControl is the one write that may run concurrently with
			// the turn loop's WriteJSON.
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				log.Debugf("WebSocket ping failed: %v", err)
				return
			}
		}
	}
}

// wsErrorMessage maps service errors to messages safe to show the user
func wsErrorMessage(err error) string {
	switch {
	case errors.Is(err, errors.ErrUsageExceeded):
		return err.Error()
	case errors.Is(err, errors.ErrUnauthorized):
		return "session belongs to another user"
	case errors.Is(err, errors.ErrNotFound):
		return "session not found"
	case errors.Is(err, errors.ErrUnknownBalance), errors.Is(err, errors.ErrUnavailable):
		return "service temporarily unavailable, please retry"
	default:
		return "request failed"
	}
}
