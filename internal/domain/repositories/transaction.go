package repositories

import (
	"context"

	"github.com/mulengadev/lendstack/internal/domain/models"
)

const (
	SerializationError   = "40001"
	UniqueViolationError = "23505"
)

type TransactionRepository interface {
	GetByExternalID(ctx context.Context, externalID string) (*models.Transaction, error)
	Insert(ctx context.Context, tx *models.Transaction) error
	// UpsertCoalescing applies a coalescing update: each field overwrites only
	// when the incoming value is non-empty, otherwise the stored value is
	// kept. Inserts when no row matches either id.
	UpsertCoalescing(ctx context.Context, depositID, payoutID string, tx *models.Transaction) (*models.Transaction, error)
	UpdateStatus(ctx context.Context, externalID string, from, to models.TransactionStatus) (bool, error)
	SetLinkedLoan(ctx context.Context, externalID, loanID string) error
	ListInvestmentsByOwner(ctx context.Context, ownerID string) ([]models.Transaction, error)
	ListPendingOlderThan(ctx context.Context, minutes int) ([]models.Transaction, error)
}
