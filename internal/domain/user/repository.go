package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines user persistence operations
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByWallet(ctx context.Context, wallet string) (*User, error)
	Update(ctx context.Context, u *User) error
}
