package tier

import (
	"context"

	"github.com/shopspring/decimal"

	domain "sola/internal/domain/tier"
	"sola/internal/metrics"
	"sola/pkg/errors"
	"sola/pkg/logger"
)

// BalanceProvider reads SPL token balances from the chain
type BalanceProvider interface {
	GetTokenBalance(ctx context.Context, wallet string, mint string) (float64, error)
}

// BalanceCache caches resolved SOLA balances between RPC reads
type BalanceCache interface {
	Get(ctx context.Context, wallet string) (decimal.Decimal, error)
	Set(ctx context.Context, wallet string, balance decimal.Decimal) error
}

// Service resolves a wallet's usage tier from its SOLA token holdings.
// Balances are cached with a short TTL; a tier upgrade after buying
// tokens becomes visible once the cache entry expires.
type Service struct {
	chain    BalanceProvider
	cache    BalanceCache
	solaMint string
	log      *logger.Logger
}

// NewService creates a tier resolution service
func NewService(chain BalanceProvider, cache BalanceCache, solaMint string) *Service {
	return &Service{
		chain:    chain,
		cache:    cache,
		solaMint: solaMint,
		log:      logger.Get().With("component", "tier_service"),
	}
}

// Resolve returns the tier for a wallet. When the balance cannot be
// determined it returns ErrUnknownBalance so the caller can fail closed.
func (s *Service) Resolve(ctx context.Context, wallet string) (domain.Tier, error) {
	balance, source, err := s.balance(ctx, wallet)
	if err != nil {
		metrics.BalanceAnomalies.WithLabelValues("rpc_error").Inc()
		return domain.Tier{}, errors.Wrapf(errors.ErrUnknownBalance, "wallet %s: %v", wallet, err)
	}

	if balance.IsNegative() {
		// RPC should never report a negative balance; treat it as zero
		// but surface the anomaly for investigation.
		metrics.BalanceAnomalies.WithLabelValues("negative").Inc()
		s.log.Warnf("Negative SOLA balance %s for wallet %s, treating as zero", balance, wallet)
		balance = decimal.Zero
	}

	resolved := domain.Resolve(balance)
	metrics.TierResolutions.WithLabelValues(resolved.Name, source).Inc()

	s.log.Debugf("Resolved wallet %s to tier %s (balance=%s, source=%s)",
		wallet, resolved.Name, balance, source)
	return resolved, nil
}

func (s *Service) balance(ctx context.Context, wallet string) (decimal.Decimal, string, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, wallet); err == nil {
			return cached, "cache", nil
		} else if !errors.Is(err, errors.ErrNotFound) {
			s.log.Warnf("Balance cache read failed for %s: %v", wallet, err)
		}
	}

	raw, err := s.chain.GetTokenBalance(ctx, wallet, s.solaMint)
	if err != nil {
		return decimal.Zero, "rpc", err
	}
	balance := decimal.NewFromFloat(raw)

	if s.cache != nil {
		if err := s.cache.Set(ctx, wallet, balance); err != nil {
			s.log.Warnf("Balance cache write failed for %s: %v", wallet, err)
		}
	}
	return balance, "rpc", nil
}
