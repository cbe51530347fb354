package gateway

import (
	"context"

	"github.com/mulengadev/lendstack/internal/domain/models"
	"github.com/shopspring/decimal"
)

// DepositRequest asks the gateway to collect money from a payer's mobile-money
// account. DepositID doubles as the idempotency token: retries reference the
// same id and the gateway collects at most once.
type DepositRequest struct {
	DepositID     string
	Amount        decimal.Decimal
	Currency      string
	PayerPhone    string
	Correspondent string
	Description   string
	Metadata      models.Metadata
}

// PayoutRequest asks the gateway to push money out to a recipient.
type PayoutRequest struct {
	PayoutID       string
	Amount         decimal.Decimal
	Currency       string
	RecipientPhone string
	Correspondent  string
	Description    string
	Metadata       models.Metadata
}

// Result is the synchronous half of the gateway contract; the authoritative
// answer arrives later on the callback.
type Result struct {
	ExternalID string
	Status     models.TransactionStatus
}

type Client interface {
	InitiateDeposit(ctx context.Context, req DepositRequest) (*Result, error)
	InitiatePayout(ctx context.Context, req PayoutRequest) (*Result, error)
	DepositStatus(ctx context.Context, depositID string) (*Result, error)
}
