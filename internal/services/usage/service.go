package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sola/internal/adapters/alerts"
	"sola/internal/domain/tier"
	domain "sola/internal/domain/usage"
	"sola/internal/events"
	"sola/internal/metrics"
	"sola/pkg/errors"
	"sola/pkg/logger"
)

// TierResolver resolves a wallet's usage tier
type TierResolver interface {
	Resolve(ctx context.Context, wallet string) (tier.Tier, error)
}

// Service is the usage gate. Every paid AI interaction passes through
// CheckAllowance before a request leaves the building, and RecordUsage
// after tokens have been spent. When the gate cannot determine either
// the tier or the consumed amount, it denies the request.
type Service struct {
	tiers    TierResolver
	repo     domain.Repository
	events   *events.Publisher
	notifier alerts.Notifier
	window   time.Duration
	log      *logger.Logger
}

// NewService creates a usage gate
func NewService(tiers TierResolver, repo domain.Repository, publisher *events.Publisher, notifier alerts.Notifier, window time.Duration) *Service {
	if notifier == nil {
		notifier = alerts.NewNoopNotifier()
	}
	if window <= 0 {
		window = 6 * time.Hour
	}
	return &Service{
		tiers:    tiers,
		repo:     repo,
		events:   publisher,
		notifier: notifier,
		window:   window,
		log:      logger.Get().With("component", "usage_gate"),
	}
}

// CheckAllowance reports whether a user may spend more within the
// rolling window. An error means the answer is unknown and the caller
// must deny the request.
func (s *Service) CheckAllowance(ctx context.Context, userID uuid.UUID, wallet string) (*domain.Status, error) {
	now := time.Now().UTC()
	windowStart := now.Add(-s.window)

	t, err := s.tiers.Resolve(ctx, wallet)
	if err != nil {
		s.failClosed(ctx, userID, "tier resolution failed", err)
		return nil, err
	}

	consumed, err := s.repo.SumCostSince(ctx, userID, windowStart)
	if err != nil {
		s.failClosed(ctx, userID, "usage lookup failed", err)
		return nil, errors.Wrap(errors.ErrUnavailable, err.Error())
	}

	status := &domain.Status{
		UserID:      userID,
		TierLevel:   t.Level,
		TierName:    t.Name,
		LimitUSD:    t.LimitUSD,
		ConsumedUSD: consumed,
		WindowStart: windowStart,
		WindowEnd:   now,
	}

	if t.LimitUSD.IsZero() {
		// A zero allowance admits nothing; avoid dividing by the limit
		status.Allowed = false
		status.Reason = "zero_limit"
		status.PercentUsed = 100
		status.RemainingUSD = decimal.Zero
	} else {
		status.Allowed = consumed.LessThanOrEqual(t.LimitUSD)
		status.PercentUsed, _ = consumed.Div(t.LimitUSD).Mul(decimal.New(100, 0)).Float64()
		if status.PercentUsed > 100 {
			status.PercentUsed = 100
		}
		status.RemainingUSD = t.LimitUSD.Sub(consumed)
		if status.RemainingUSD.IsNegative() {
			status.RemainingUSD = decimal.Zero
		}
		if !status.Allowed {
			status.Reason = "limit_exceeded"
		}
	}

	metrics.UsagePercentUsed.WithLabelValues(t.Name).Observe(status.PercentUsed)

	if !status.Allowed {
		metrics.UsageChecks.WithLabelValues("denied").Inc()
		s.log.Infof("Usage denied for user %s: consumed $%s of $%s (%s tier)",
			userID, consumed.StringFixed(4), t.LimitUSD, t.Name)
		if s.events != nil {
			s.events.UsageDenied(ctx, events.DeniedEvent{
				UserID:      userID,
				TierName:    t.Name,
				LimitUSD:    t.LimitUSD,
				ConsumedUSD: consumed,
				Reason:      status.Reason,
				Timestamp:   now,
			})
		}
		return status, nil
	}

	metrics.UsageChecks.WithLabelValues("allowed").Inc()
	return status, nil
}

// RecordUsage persists a metered AI interaction and publishes the
// corresponding event
func (s *Service) RecordUsage(ctx context.Context, rec *domain.Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if err := s.repo.Record(ctx, rec); err != nil {
		return errors.Wrap(err, "record usage")
	}

	if s.events != nil {
		s.events.UsageRecorded(ctx, events.UsageEvent{
			UserID:           rec.UserID,
			SessionID:        rec.SessionID,
			Provider:         rec.Provider,
			Model:            rec.Model,
			PromptTokens:     int(rec.PromptTokens),
			CompletionTokens: int(rec.CompletionTokens),
			CostUSD:          rec.CostUSD,
			Timestamp:        rec.CreatedAt,
		})
	}
	return nil
}

// History returns the user's most recent metered interactions,
// newest first
func (s *Service) History(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Record, error) {
	records, err := s.repo.RecentRecords(ctx, userID, limit)
	if err != nil {
		return nil, errors.Wrap(errors.ErrUnavailable, err.Error())
	}
	return records, nil
}

// Window returns the rolling window length
func (s *Service) Window() time.Duration {
	return s.window
}

func (s *Service) failClosed(ctx context.Context, userID uuid.UUID, reason string, err error) {
	metrics.UsageChecks.WithLabelValues("failed_closed").Inc()
	s.log.Errorf("Usage gate failing closed for user %s: %s: %v", userID, reason, err)

	if alertErr := s.notifier.Alert(ctx, "Usage gate failed closed",
		fmt.Sprintf("user=%s reason=%s err=%v", userID, reason, err)); alertErr != nil {
		s.log.Warnf("Failed to deliver usage gate alert: %v", alertErr)
	}
}
