package repositories

import (
	"context"

	"github.com/mulengadev/lendstack/internal/domain/models"
	"github.com/shopspring/decimal"
)

type WalletRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Wallet, error)
	// Credit lazily creates the wallet and applies the amount as one atomic
	// increment; concurrent credits never lose an update.
	Credit(ctx context.Context, userID, currency string, amount decimal.Decimal) (decimal.Decimal, error)
}

type NotificationRepository interface {
	// Enqueue appends a notification unless one with the same dedup key was
	// already queued. Returns whether a new record was written.
	Enqueue(ctx context.Context, ownerID, message, dedupKey string) (bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Notification, error)
}
