package auth

import (
	"context"

	"github.com/google/uuid"

	"sola/internal/adapters/solana"
	"sola/internal/domain/user"
	"sola/pkg/auth"
	"sola/pkg/errors"
	"sola/pkg/logger"
)

// Service handles wallet-based authentication. First login creates the
// user row; subsequent logins reuse it.
type Service struct {
	users user.Repository
	jwt   *auth.JWTService
	log   *logger.Logger
}

// NewService creates an auth service
func NewService(users user.Repository, jwt *auth.JWTService) *Service {
	return &Service{
		users: users,
		jwt:   jwt,
		log:   logger.Get().With("component", "auth_service"),
	}
}

// Login authenticates a wallet and returns a session token along with
// the user record
func (s *Service) Login(ctx context.Context, wallet string) (string, *user.User, error) {
	if !solana.ValidAddress(wallet) {
		return "", nil, errors.Wrapf(errors.ErrInvalidAddress, "wallet %q", wallet)
	}

	u, err := s.users.GetByWallet(ctx, wallet)
	if errors.Is(err, errors.ErrNotFound) {
		u = &user.User{ID: uuid.New(), WalletAddress: wallet}
		if err := s.users.Create(ctx, u); err != nil {
			// Lost a race with a concurrent first login; re-read the winner
			if !errors.Is(err, errors.ErrAlreadyExists) {
				return "", nil, err
			}
			u, err = s.users.GetByWallet(ctx, wallet)
			if err != nil {
				return "", nil, err
			}
		} else {
			s.log.Infof("Registered new user %s for wallet %s", u.ID, wallet)
		}
	} else if err != nil {
		return "", nil, err
	}

	token, err := s.jwt.GenerateToken(u.ID, u.WalletAddress)
	if err != nil {
		return "", nil, errors.Wrap(err, "generate token")
	}
	return token, u, nil
}

// Authenticate validates a bearer token and returns its claims
func (s *Service) Authenticate(token string) (*auth.Claims, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, err.Error())
	}
	return claims, nil
}
