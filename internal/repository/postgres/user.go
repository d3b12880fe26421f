package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"sola/internal/domain/user"
	"sola/internal/metrics"
	"sola/pkg/errors"
)

// Compile-time check that we implement the interface
var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository using sqlx
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	query := `
		INSERT INTO users (id, wallet_address, username, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.WalletAddress, u.Username, u.Email, u.CreatedAt, u.UpdatedAt,
	)
	metrics.RecordDBQuery("postgres", "create_user", err)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return errors.Wrapf(errors.ErrAlreadyExists, "wallet %s", u.WalletAddress)
	}
	return err
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var u user.User

	query := `
		SELECT id, wallet_address, username, email, created_at, updated_at
		FROM users
		WHERE id = $1`

	err := r.db.GetContext(ctx, &u, query, id)
	metrics.RecordDBQuery("postgres", "get_user_by_id", err)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrNotFound, "user not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByWallet retrieves a user by wallet address
func (r *UserRepository) GetByWallet(ctx context.Context, wallet string) (*user.User, error) {
	var u user.User

	query := `
		SELECT id, wallet_address, username, email, created_at, updated_at
		FROM users
		WHERE wallet_address = $1`

	err := r.db.GetContext(ctx, &u, query, wallet)
	metrics.RecordDBQuery("postgres", "get_user_by_wallet", err)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrNotFound, "user not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Update persists changes to a user
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	u.UpdatedAt = time.Now()

	query := `
		UPDATE users
		SET username = $2, email = $3, updated_at = $4
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, u.ID, u.Username, u.Email, u.UpdatedAt)
	metrics.RecordDBQuery("postgres", "update_user", err)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrap(errors.ErrNotFound, "user not found")
	}
	return nil
}
