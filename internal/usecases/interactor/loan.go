package interactor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mulengadev/lendstack/internal/domain/models"
	"github.com/mulengadev/lendstack/internal/domain/repositories"
	apperrors "github.com/mulengadev/lendstack/internal/errors"
	"github.com/mulengadev/lendstack/internal/usecases/dtos"
	"github.com/mulengadev/lendstack/pkg/log"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LoanInteractor drives the loan state machine:
// PENDING -> APPROVED | REJECTED, APPROVED -> DISBURSED, DISBURSED -> REPAID.
// Transitions outside the table fail with ConflictError. Approve is an
// idempotent no-op when already approved.
type LoanInteractor struct {
	loans         repositories.LoanRepository
	transactions  repositories.TransactionRepository
	wallets       repositories.WalletRepository
	notifications repositories.NotificationRepository
	logger        *zerolog.Logger
}

func NewLoanInteractor(loans repositories.LoanRepository, transactions repositories.TransactionRepository, wallets repositories.WalletRepository, notifications repositories.NotificationRepository) *LoanInteractor {
	l := log.GetLogger()
	return &LoanInteractor{
		loans:         loans,
		transactions:  transactions,
		wallets:       wallets,
		notifications: notifications,
		logger:        &l,
	}
}

// Request creates a PENDING loan against a lendable investment. The
// investment itself stays untouched until approval.
func (i *LoanInteractor) Request(ctx context.Context, dto *dtos.LoanRequestDTO) (*models.Loan, error) {
	if dto.Phone == "" || dto.InvestmentID == "" || dto.Amount.String() == "" {
		return nil, apperrors.NewValidationError("missing required fields: phone, investment_id, amount")
	}

	amount, err := decimal.NewFromString(dto.Amount.String())
	if err != nil || !amount.IsPositive() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("bad amount %q", dto.Amount))
	}

	interest := decimal.Zero
	if dto.Interest.String() != "" {
		if interest, err = decimal.NewFromString(dto.Interest.String()); err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("bad interest %q", dto.Interest))
		}
	}

	investment, err := i.transactions.GetByExternalID(ctx, dto.InvestmentID)
	if err != nil {
		return nil, err
	}
	if investment == nil || investment.Kind != models.KindInvestment || !investment.Status.Lendable() {
		return nil, apperrors.NewNotFoundError("eligible investment", dto.InvestmentID)
	}

	borrowerID := dto.UserID
	if borrowerID == "" {
		borrowerID = dto.Phone
	}

	loan := &models.Loan{
		ID:                 uuid.New().String(),
		BorrowerID:         borrowerID,
		BorrowerPhone:      dto.Phone,
		LinkedInvestmentID: investment.ExternalID,
		Amount:             amount.Round(2),
		InterestRate:       interest,
		Status:             models.LoanPending,
		ExpectedReturnDate: dto.ExpectedReturnDate,
	}

	if err = i.loans.Insert(ctx, loan); err != nil {
		return nil, err
	}

	return loan, nil
}

// Approve marks the loan approved and takes its investment out of
// circulation. Calling it again on an approved loan succeeds without
// re-mutating anything.
func (i *LoanInteractor) Approve(ctx context.Context, loanID, adminID string) (*models.Loan, error) {
	loan, err := i.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, apperrors.NewNotFoundError("loan", loanID)
	}

	if loan.Status == models.LoanApproved {
		return loan, nil
	}
	if !loan.Status.CanTransition(models.LoanApproved) {
		return nil, apperrors.NewConflictError(fmt.Sprintf("loan already %s", loan.Status))
	}

	now := time.Now().UTC()
	applied, err := i.loans.UpdateStatus(ctx, loanID, loan.Status, models.LoanApproved, repositories.LoanStatusUpdate{
		ApprovedBy: adminID,
		ApprovedAt: &now,
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		// lost the race; treat like the idempotent re-approve
		return i.loans.GetByID(ctx, loanID)
	}

	if loan.LinkedInvestmentID != "" {
		i.earmarkInvestment(ctx, loan.LinkedInvestmentID, loan.ID)
	}

	return i.loans.GetByID(ctx, loanID)
}

// earmarkInvestment marks the backing investment LOANED_OUT, links the loan
// and notifies the investor exactly once.
func (i *LoanInteractor) earmarkInvestment(ctx context.Context, investmentID, loanID string) {
	investment, err := i.transactions.GetByExternalID(ctx, investmentID)
	if err != nil || investment == nil {
		i.logger.Warn().Err(err).Str("investment_id", investmentID).Msg("approved loan references missing investment")
		return
	}

	if !investment.Status.CanTransition(models.TxLoanedOut) {
		i.logger.Warn().
			Str("investment_id", investmentID).
			Str("status", string(investment.Status)).
			Msg("investment cannot be loaned out from its current status")
		return
	}

	if _, err = i.transactions.UpdateStatus(ctx, investmentID, investment.Status, models.TxLoanedOut); err != nil {
		i.logger.Error().Err(err).Str("investment_id", investmentID).Msg("failed to mark investment loaned out")
		return
	}
	if err = i.transactions.SetLinkedLoan(ctx, investmentID, loanID); err != nil {
		i.logger.Error().Err(err).Str("investment_id", investmentID).Msg("failed to link loan to investment")
	}

	if investment.OwnerID != "" {
		// shared with the disburse path so the investor hears about the
		// loan-out exactly once
		dedupKey := fmt.Sprintf("%s:%s:loaned_out", investmentID, loanID)
		message := fmt.Sprintf("Your investment %s has been loaned out.", shortID(investmentID))
		if _, err = i.notifications.Enqueue(ctx, investment.OwnerID, message, dedupKey); err != nil {
			i.logger.Error().Err(err).Str("investment_id", investmentID).Msg("failed to notify investor")
		}
	}
}

// Reject is legal only from PENDING.
func (i *LoanInteractor) Reject(ctx context.Context, loanID, adminID string) (*models.Loan, error) {
	loan, err := i.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, apperrors.NewNotFoundError("loan", loanID)
	}
	if loan.Status != models.LoanPending {
		return nil, apperrors.NewConflictError(fmt.Sprintf("loan already %s", loan.Status))
	}

	applied, err := i.loans.UpdateStatus(ctx, loanID, models.LoanPending, models.LoanRejected, repositories.LoanStatusUpdate{
		ApprovedBy: adminID,
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		fresh, _ := i.loans.GetByID(ctx, loanID)
		if fresh != nil {
			return nil, apperrors.NewConflictError(fmt.Sprintf("loan already %s", fresh.Status))
		}
		return nil, apperrors.NewConflictError("loan state changed concurrently")
	}

	return i.loans.GetByID(ctx, loanID)
}

// DisburseResult reports the wallet credit applied by a disbursement.
type DisburseResult struct {
	Loan       *models.Loan
	BorrowerID string
	Amount     decimal.Decimal
	NewBalance decimal.Decimal
}

// Disburse credits the borrower's wallet with the loan amount. The status
// compare-and-set, the wallet credit and the audit record commit together in
// one repository transaction: a failed credit rolls everything back and the
// loan stays approved, so the disbursement can be retried, while a committed
// one makes any retry a conflict rather than a double credit.
func (i *LoanInteractor) Disburse(ctx context.Context, loanID string) (*DisburseResult, error) {
	loan, err := i.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, apperrors.NewNotFoundError("loan", loanID)
	}
	if !loan.Status.CanTransition(models.LoanDisbursed) || loan.Status == models.LoanDisbursed {
		return nil, apperrors.NewConflictError(fmt.Sprintf("loan already %s, cannot disburse", loan.Status))
	}

	applied, balance, err := i.loans.Disburse(ctx, repositories.Disbursement{
		LoanID:     loanID,
		BorrowerID: loan.BorrowerID,
		Currency:   "ZMW",
		Amount:     loan.Amount,
		AuditID:    uuid.New().String(),
		At:         time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, apperrors.NewConflictError("loan is no longer approved, cannot disburse")
	}

	if loan.LinkedInvestmentID != "" {
		i.markInvestmentDisbursed(ctx, loan)
	}

	fresh, err := i.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return &DisburseResult{
		Loan:       fresh,
		BorrowerID: loan.BorrowerID,
		Amount:     loan.Amount,
		NewBalance: balance,
	}, nil
}

// markInvestmentDisbursed advances the loan's own linked investment. The
// linkage is always the investment the loan was requested against; there is
// no scan for some other active investment.
func (i *LoanInteractor) markInvestmentDisbursed(ctx context.Context, loan *models.Loan) {
	investment, err := i.transactions.GetByExternalID(ctx, loan.LinkedInvestmentID)
	if err != nil || investment == nil {
		i.logger.Warn().Err(err).Str("investment_id", loan.LinkedInvestmentID).Msg("disbursed loan references missing investment")
		return
	}

	if !investment.Status.CanTransition(models.TxDisbursed) {
		i.logger.Warn().
			Str("investment_id", investment.ExternalID).
			Str("status", string(investment.Status)).
			Msg("investment cannot be marked disbursed from its current status")
		return
	}

	if _, err = i.transactions.UpdateStatus(ctx, investment.ExternalID, investment.Status, models.TxDisbursed); err != nil {
		i.logger.Error().Err(err).Str("investment_id", investment.ExternalID).Msg("failed to mark investment disbursed")
		return
	}

	if investment.OwnerID != "" {
		dedupKey := fmt.Sprintf("%s:%s:loaned_out", investment.ExternalID, loan.ID)
		message := fmt.Sprintf("Your investment %s has been loaned out to borrower %s.", shortID(investment.ExternalID), shortID(loan.ID))
		if _, err = i.notifications.Enqueue(ctx, investment.OwnerID, message, dedupKey); err != nil {
			i.logger.Error().Err(err).Str("investment_id", investment.ExternalID).Msg("failed to notify investor")
		}
	}
}

// Repay is the direct mark-repaid endpoint; the reconciler covers the payout
// callback path.
func (i *LoanInteractor) Repay(ctx context.Context, loanID string) (*models.Loan, error) {
	loan, err := i.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, apperrors.NewNotFoundError("loan", loanID)
	}
	if loan.Status == models.LoanRepaid {
		return loan, nil
	}
	if !loan.Status.CanTransition(models.LoanRepaid) {
		return nil, apperrors.NewConflictError(fmt.Sprintf("loan is %s, cannot repay", loan.Status))
	}

	applied, err := i.loans.UpdateStatus(ctx, loanID, loan.Status, models.LoanRepaid, repositories.LoanStatusUpdate{})
	if err != nil {
		return nil, err
	}

	if applied && loan.LinkedInvestmentID != "" {
		for _, from := range []models.TransactionStatus{models.TxLoanedOut, models.TxDisbursed} {
			ok, err := i.transactions.UpdateStatus(ctx, loan.LinkedInvestmentID, from, models.TxActive)
			if err != nil {
				i.logger.Error().Err(err).Str("investment_id", loan.LinkedInvestmentID).Msg("failed to release investment")
				break
			}
			if ok {
				break
			}
		}
	}

	return i.loans.GetByID(ctx, loanID)
}

func (i *LoanInteractor) Get(ctx context.Context, loanID string) (*models.Loan, error) {
	loan, err := i.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, apperrors.NewNotFoundError("loan", loanID)
	}
	return loan, nil
}

// Wallet answers the borrower balance lookup. A user who never received a
// disbursement has no wallet row; report a zero balance rather than an error.
func (i *LoanInteractor) Wallet(ctx context.Context, userID string) (*models.Wallet, error) {
	wallet, err := i.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return &models.Wallet{UserID: userID, Balance: decimal.Zero, Currency: "ZMW"}, nil
	}
	return wallet, nil
}

func (i *LoanInteractor) ListByStatus(ctx context.Context, status models.LoanStatus) ([]models.Loan, error) {
	return i.loans.ListByStatus(ctx, status)
}

func (i *LoanInteractor) ListByUser(ctx context.Context, userID string) ([]models.Loan, error) {
	return i.loans.ListByUser(ctx, userID)
}
