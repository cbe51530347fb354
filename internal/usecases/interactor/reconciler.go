package interactor

import (
	"context"
	"fmt"

	"github.com/mulengadev/lendstack/internal/domain/models"
	"github.com/mulengadev/lendstack/internal/domain/repositories"
	apperrors "github.com/mulengadev/lendstack/internal/errors"
	"github.com/mulengadev/lendstack/internal/usecases/dtos"
	"github.com/mulengadev/lendstack/pkg/log"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ReconcilerInteractor turns asynchronous gateway callbacks into upserted
// transactions. Field updates coalesce, so re-delivered callbacks are no-ops;
// the loan-repayment side effect is deduplicated by external id + status.
type ReconcilerInteractor struct {
	transactions  repositories.TransactionRepository
	loans         repositories.LoanRepository
	notifications repositories.NotificationRepository
	logger        *zerolog.Logger
}

func NewReconcilerInteractor(transactions repositories.TransactionRepository, loans repositories.LoanRepository, notifications repositories.NotificationRepository) *ReconcilerInteractor {
	l := log.GetLogger()
	return &ReconcilerInteractor{
		transactions:  transactions,
		loans:         loans,
		notifications: notifications,
		logger:        &l,
	}
}

func (i *ReconcilerInteractor) Reconcile(ctx context.Context, dto *dtos.CallbackDTO) (*models.Transaction, error) {
	if dto.DepositID == "" && dto.PayoutID == "" {
		return nil, apperrors.NewValidationError("missing depositId/payoutId")
	}

	kind := models.KindPayout
	externalID := dto.PayoutID
	if dto.DepositID != "" {
		kind = models.KindPayment
		externalID = dto.DepositID
	}

	view := dto.Metadata.View()
	if view.IsInvestment() {
		kind = models.KindInvestment
	}

	var status models.TransactionStatus
	if dto.Status != "" {
		var err error
		status, err = models.ParseTransactionStatus(dto.Status)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}

	var amount decimal.Decimal
	if dto.Amount.String() != "" {
		var err error
		amount, err = decimal.NewFromString(dto.Amount.String())
		if err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("bad amount %q", dto.Amount))
		}
	}

	incoming := &models.Transaction{
		ExternalID:        externalID,
		Kind:              kind,
		Status:            status,
		Amount:            amount,
		Currency:          dto.Currency,
		OwnerID:           view.OwnerID,
		CounterpartyPhone: dto.CounterpartyPhone(),
		Provider:          dto.CounterpartyProvider(),
		ProviderReference: dto.ProviderTransactionID,
		FailureCode:       dto.FailureCode(),
		FailureMessage:    dto.FailureMessage(),
		RawMetadata:       dto.Metadata.Raw(),
	}

	result, err := i.transactions.UpsertCoalescing(ctx, dto.DepositID, dto.PayoutID, incoming)
	if err != nil {
		return nil, err
	}

	if kind == models.KindPayout && view.LoanID != "" && status.IsTerminalSuccess() {
		i.settleLoanRepayment(ctx, view.LoanID, externalID, status)
	}

	return result, nil
}

// settleLoanRepayment is the best-effort cross-aggregate write: a completed
// payout carrying a loanId marks that loan repaid, frees its investment for
// re-lending and tells the borrower. An absent loan is ignored.
func (i *ReconcilerInteractor) settleLoanRepayment(ctx context.Context, loanID, externalID string, status models.TransactionStatus) {
	loan, err := i.loans.GetByID(ctx, loanID)
	if err != nil {
		i.logger.Error().Err(err).Str("loan_id", loanID).Msg("failed to load loan for repayment callback")
		return
	}
	if loan == nil {
		i.logger.Warn().Str("loan_id", loanID).Msg("repayment callback references unknown loan")
		return
	}

	if loan.Status != models.LoanRepaid {
		applied, err := i.loans.UpdateStatus(ctx, loanID, loan.Status, models.LoanRepaid, repositories.LoanStatusUpdate{})
		if err != nil {
			i.logger.Error().Err(err).Str("loan_id", loanID).Msg("failed to mark loan repaid")
			return
		}
		if applied && loan.LinkedInvestmentID != "" {
			i.releaseInvestment(ctx, loan.LinkedInvestmentID)
		}
	}

	dedupKey := fmt.Sprintf("%s:%s", externalID, status)
	message := fmt.Sprintf("Loan %s has been successfully repaid.", shortID(loanID))
	if _, err = i.notifications.Enqueue(ctx, loan.BorrowerID, message, dedupKey); err != nil {
		i.logger.Error().Err(err).Str("loan_id", loanID).Msg("failed to enqueue repayment notification")
	}
}

// releaseInvestment returns a lent-out investment to circulation.
func (i *ReconcilerInteractor) releaseInvestment(ctx context.Context, investmentID string) {
	for _, from := range []models.TransactionStatus{models.TxLoanedOut, models.TxDisbursed} {
		applied, err := i.transactions.UpdateStatus(ctx, investmentID, from, models.TxActive)
		if err != nil {
			i.logger.Error().Err(err).Str("investment_id", investmentID).Msg("failed to release investment")
			return
		}
		if applied {
			return
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
