package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds a borrower's disbursed funds. Created lazily on first
// disbursement; the core only ever credits it.
type Wallet struct {
	UserID    string          `db:"user_id" json:"user_id"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	Currency  string          `db:"currency" json:"currency"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

type Notification struct {
	ID        int64     `db:"id" json:"id"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	Message   string    `db:"message" json:"message"`
	DedupKey  string    `db:"dedup_key" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
