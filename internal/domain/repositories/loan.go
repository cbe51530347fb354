package repositories

import (
	"context"
	"time"

	"github.com/mulengadev/lendstack/internal/domain/models"
	"github.com/shopspring/decimal"
)

type LoanRepository interface {
	GetByID(ctx context.Context, loanID string) (*models.Loan, error)
	Insert(ctx context.Context, loan *models.Loan) error
	// UpdateStatus is a compare-and-set: the write applies only while the loan
	// is still in the expected status. Returns false when another writer got
	// there first.
	UpdateStatus(ctx context.Context, loanID string, expected, next models.LoanStatus, u LoanStatusUpdate) (bool, error)
	// Disburse moves the loan APPROVED -> DISBURSED, credits the borrower's
	// wallet and records the audit transaction in one database transaction,
	// so a failed credit leaves the loan approved and retryable. Returns
	// false without error when the loan is no longer approved.
	Disburse(ctx context.Context, d Disbursement) (bool, decimal.Decimal, error)
	ListByStatus(ctx context.Context, status models.LoanStatus) ([]models.Loan, error)
	ListByUser(ctx context.Context, userID string) ([]models.Loan, error)
}

// Disbursement carries everything the atomic disburse write needs.
type Disbursement struct {
	LoanID     string
	BorrowerID string
	Currency   string
	Amount     decimal.Decimal
	AuditID    string
	At         time.Time
}

// LoanStatusUpdate carries the optional columns written alongside a status
// transition.
type LoanStatusUpdate struct {
	ApprovedBy  string
	ApprovedAt  *time.Time
	DisbursedAt *time.Time
}
