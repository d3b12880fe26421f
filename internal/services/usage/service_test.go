package usage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sola/internal/domain/tier"
	domain "sola/internal/domain/usage"
	tiersvc "sola/internal/services/tier"
	"sola/pkg/errors"
)

type fakeResolver struct {
	tier tier.Tier
	err  error
}

func (f *fakeResolver) Resolve(ctx context.Context, wallet string) (tier.Tier, error) {
	return f.tier, f.err
}

type fakeRepo struct {
	consumed  decimal.Decimal
	sumErr    error
	records   []*domain.Record
	recErr    error
	recent    []domain.Record
	recentErr error
}

func (f *fakeRepo) Record(ctx context.Context, rec *domain.Record) error {
	if f.recErr != nil {
		return f.recErr
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeRepo) SumCostSince(ctx context.Context, userID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	return f.consumed, f.sumErr
}

func (f *fakeRepo) RecentRecords(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Record, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	if limit < len(f.recent) {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func goldTier() tier.Tier {
	return tier.Tier{Level: 3, Name: "gold", MinBalance: decimal.New(500_000, 0), LimitUSD: decimal.New(5, 0)}
}

func newGate(resolver TierResolver, repo domain.Repository) *Service {
	return NewService(resolver, repo, nil, nil, 6*time.Hour)
}

func TestCheckAllowance_UnderLimit(t *testing.T) {
	repo := &fakeRepo{consumed: decimal.NewFromFloat(1.25)}
	gate := newGate(&fakeResolver{tier: goldTier()}, repo)

	status, err := gate.CheckAllowance(context.Background(), uuid.New(), "wallet")
	require.NoError(t, err)

	assert.True(t, status.Allowed)
	assert.Equal(t, "gold", status.TierName)
	assert.InDelta(t, 25.0, status.PercentUsed, 0.001)
	assert.True(t, status.RemainingUSD.Equal(decimal.NewFromFloat(3.75)))
}

func TestCheckAllowance_ExactlyAtLimitIsAllowed(t *testing.T) {
	repo := &fakeRepo{consumed: decimal.New(5, 0)}
	gate := newGate(&fakeResolver{tier: goldTier()}, repo)

	status, err := gate.CheckAllowance(context.Background(), uuid.New(), "wallet")
	require.NoError(t, err)

	assert.True(t, status.Allowed)
	assert.InDelta(t, 100.0, status.PercentUsed, 0.001)
	assert.True(t, status.RemainingUSD.IsZero())
}

func TestCheckAllowance_OverLimitIsDenied(t *testing.T) {
	repo := &fakeRepo{consumed: decimal.NewFromFloat(5.01)}
	gate := newGate(&fakeResolver{tier: goldTier()}, repo)

	status, err := gate.CheckAllowance(context.Background(), uuid.New(), "wallet")
	require.NoError(t, err)

	assert.False(t, status.Allowed)
	assert.Equal(t, "limit_exceeded", status.Reason)
	assert.True(t, status.RemainingUSD.IsZero())
	assert.Equal(t, 100.0, status.PercentUsed)
}

func TestCheckAllowance_ZeroLimitDeniesWithoutDividing(t *testing.T) {
	repo := &fakeRepo{consumed: decimal.Zero}
	zeroTier := tier.Tier{Level: 0, Name: "none", LimitUSD: decimal.Zero}
	gate := newGate(&fakeResolver{tier: zeroTier}, repo)

	status, err := gate.CheckAllowance(context.Background(), uuid.New(), "wallet")
	require.NoError(t, err)

	assert.False(t, status.Allowed)
	assert.Equal(t, "zero_limit", status.Reason)
	assert.Equal(t, 100.0, status.PercentUsed)
	assert.True(t, status.RemainingUSD.IsZero())
}

func TestCheckAllowance_TierErrorFailsClosed(t *testing.T) {
	gate := newGate(&fakeResolver{err: errors.ErrUnknownBalance}, &fakeRepo{})

	status, err := gate.CheckAllowance(context.Background(), uuid.New(), "wallet")
	require.Error(t, err)
	assert.Nil(t, status)
	assert.True(t, errors.Is(err, errors.ErrUnknownBalance))
}

func TestCheckAllowance_StoreErrorFailsClosed(t *testing.T) {
	repo := &fakeRepo{sumErr: errors.New("clickhouse down")}
	gate := newGate(&fakeResolver{tier: goldTier()}, repo)

	status, err := gate.CheckAllowance(context.Background(), uuid.New(), "wallet")
	require.Error(t, err)
	assert.Nil(t, status)
	assert.True(t, errors.Is(err, errors.ErrUnavailable))
}

type fixedChain struct {
	balance float64
}

func (f fixedChain) GetTokenBalance(ctx context.Context, wallet, mint string) (float64, error) {
	return f.balance, nil
}

// A wallet holding 600k SOLA lands in the gold tier with a $5 window limit
func TestCheckAllowance_TierResolvedFromBalance(t *testing.T) {
	resolver := tiersvc.NewService(fixedChain{balance: 600_000}, nil, "mint")

	repo := &fakeRepo{consumed: decimal.NewFromFloat(4.99)}
	gate := newGate(resolver, repo)

	status, err := gate.CheckAllowance(context.Background(), uuid.New(), "wallet")
	require.NoError(t, err)
	assert.Equal(t, "gold", status.TierName)
	assert.True(t, status.LimitUSD.Equal(decimal.New(5, 0)))
	assert.True(t, status.Allowed)

	repo.consumed = decimal.NewFromFloat(5.01)
	status, err = gate.CheckAllowance(context.Background(), uuid.New(), "wallet")
	require.NoError(t, err)
	assert.False(t, status.Allowed)
}

func TestRecordUsage_FillsIDAndTimestamp(t *testing.T) {
	repo := &fakeRepo{}
	gate := newGate(&fakeResolver{tier: goldTier()}, repo)

	rec := &domain.Record{
		UserID:           uuid.New(),
		SessionID:        uuid.New(),
		Provider:         "openai",
		Model:            "gpt-4o-mini",
		PromptTokens:     1200,
		CompletionTokens: 300,
		CostUSD:          decimal.NewFromFloat(0.00036),
	}

	require.NoError(t, gate.RecordUsage(context.Background(), rec))
	require.Len(t, repo.records, 1)

	stored := repo.records[0]
	assert.NotEqual(t, uuid.Nil, stored.ID)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestHistory_ReturnsRecentRecords(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepo{recent: []domain.Record{
		{ID: uuid.New(), UserID: userID, Model: "gpt-4o-mini", CostUSD: decimal.NewFromFloat(0.002)},
		{ID: uuid.New(), UserID: userID, Model: "gpt-4o-mini", CostUSD: decimal.NewFromFloat(0.001)},
	}}
	gate := newGate(&fakeResolver{tier: goldTier()}, repo)

	records, err := gate.History(context.Background(), userID, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "gpt-4o-mini", records[0].Model)

	records, err = gate.History(context.Background(), userID, 1)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestHistory_StoreError(t *testing.T) {
	repo := &fakeRepo{recentErr: errors.New("clickhouse down")}
	gate := newGate(&fakeResolver{tier: goldTier()}, repo)

	_, err := gate.History(context.Background(), uuid.New(), 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnavailable))
}

func TestRecordUsage_RepoError(t *testing.T) {
	repo := &fakeRepo{recErr: errors.New("buffer closed")}
	gate := newGate(&fakeResolver{tier: goldTier()}, repo)

	err := gate.RecordUsage(context.Background(), &domain.Record{UserID: uuid.New()})
	require.Error(t, err)
}
