package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sola/internal/adapters/kafka"
	"sola/internal/metrics"
	"sola/pkg/logger"
)

// Producer is the subset of the Kafka producer the publisher needs
type Producer interface {
	Publish(ctx context.Context, topic string, key string, event interface{}) error
}

// Publisher emits domain events to Kafka. Publishing is best-effort:
// a broker outage must never fail the request that triggered the event.
type Publisher struct {
	producer Producer
	log      *logger.Logger
}

// NewPublisher creates a new event publisher
func NewPublisher(producer Producer) *Publisher {
	return &Publisher{
		producer: producer,
		log:      logger.Get().With("component", "events"),
	}
}

// DispatchEvent describes a completed tool dispatch
type DispatchEvent struct {
	UserID     uuid.UUID `json:"user_id"`
	SessionID  uuid.UUID `json:"session_id"`
	Tool       string    `json:"tool"`
	Status     string    `json:"status"`
	DurationMs int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// UsageEvent describes a metered AI interaction
type UsageEvent struct {
	UserID           uuid.UUID       `json:"user_id"`
	SessionID        uuid.UUID       `json:"session_id"`
	Provider         string          `json:"provider"`
	Model            string          `json:"model"`
	PromptTokens     int             `json:"prompt_tokens"`
	CompletionTokens int             `json:"completion_tokens"`
	CostUSD          decimal.Decimal `json:"cost_usd"`
	Timestamp        time.Time       `json:"timestamp"`
}

// DeniedEvent describes a request blocked by the usage gate
type DeniedEvent struct {
	UserID      uuid.UUID       `json:"user_id"`
	TierName    string          `json:"tier_name"`
	LimitUSD    decimal.Decimal `json:"limit_usd"`
	ConsumedUSD decimal.Decimal `json:"consumed_usd"`
	Reason      string          `json:"reason"`
	Timestamp   time.Time       `json:"timestamp"`
}

// ToolDispatched publishes a dispatch event
func (p *Publisher) ToolDispatched(ctx context.Context, ev DispatchEvent) {
	p.publish(ctx, kafka.TopicToolDispatched, ev.UserID.String(), ev)
}

// UsageRecorded publishes a usage event
func (p *Publisher) UsageRecorded(ctx context.Context, ev UsageEvent) {
	p.publish(ctx, kafka.TopicUsageRecorded, ev.UserID.String(), ev)
}

// UsageDenied publishes a usage denial event
func (p *Publisher) UsageDenied(ctx context.Context, ev DeniedEvent) {
	p.publish(ctx, kafka.TopicUsageDenied, ev.UserID.String(), ev)
}

func (p *Publisher) publish(ctx context.Context, topic string, key string, event interface{}) {
	if p.producer == nil {
		return
	}

	if err := p.producer.Publish(ctx, topic, key, event); err != nil {
		metrics.KafkaMessages.WithLabelValues(topic, "error").Inc()
		p.log.Warnf("Failed to publish event to %s: %v", topic, err)
		return
	}
	metrics.KafkaMessages.WithLabelValues(topic, "success").Inc()
}
