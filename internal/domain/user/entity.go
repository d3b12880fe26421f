package user

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered Sola user identified by their Solana wallet
type User struct {
	ID            uuid.UUID `db:"id"`
	WalletAddress string    `db:"wallet_address"`
	Username      string    `db:"username"`
	Email         string    `db:"email"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}
