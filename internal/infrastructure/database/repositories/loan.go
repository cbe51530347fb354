package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mulengadev/lendstack/internal/domain/models"
	"github.com/mulengadev/lendstack/internal/domain/repositories"
	"github.com/mulengadev/lendstack/pkg/log"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type LoanRepositoryImpl struct {
	db     *pgxpool.Pool
	logger *zerolog.Logger
}

func NewLoanRepositoryImpl(db *pgxpool.Pool) repositories.LoanRepository {
	l := log.GetLogger()
	return &LoanRepositoryImpl{
		db:     db,
		logger: &l,
	}
}

const loanColumns = `loan_id, borrower_id, borrower_phone, linked_investment_id,
amount, interest_rate, status, expected_return_date, approved_by,
created_at, approved_at, disbursed_at, updated_at`

func scanLoan(row pgx.Row) (*models.Loan, error) {
	loan := &models.Loan{}
	err := row.Scan(
		&loan.ID, &loan.BorrowerID, &loan.BorrowerPhone, &loan.LinkedInvestmentID,
		&loan.Amount, &loan.InterestRate, &loan.Status, &loan.ExpectedReturnDate, &loan.ApprovedBy,
		&loan.CreatedAt, &loan.ApprovedAt, &loan.DisbursedAt, &loan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// GetByID returns the loan or nil when absent.
func (r *LoanRepositoryImpl) GetByID(ctx context.Context, loanID string) (*models.Loan, error) {
	loan, err := scanLoan(r.db.QueryRow(
		ctx,
		fmt.Sprintf("SELECT %s FROM loans WHERE loan_id = $1", loanColumns),
		loanID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return loan, nil
}

func (r *LoanRepositoryImpl) Insert(ctx context.Context, loan *models.Loan) error {
	_, err := r.db.Exec(
		ctx,
		`INSERT INTO loans
		 (loan_id, borrower_id, borrower_phone, linked_investment_id,
		  amount, interest_rate, status, expected_return_date)
		 VALUES ($1, $2, $3, $4, $5::NUMERIC(12,2), $6::NUMERIC(8,4), $7, $8)`,
		loan.ID, loan.BorrowerID, loan.BorrowerPhone, loan.LinkedInvestmentID,
		loan.Amount, loan.InterestRate, loan.Status, loan.ExpectedReturnDate,
	)
	if err != nil {
		return fmt.Errorf("insert loan: %w", err)
	}
	return nil
}

// UpdateStatus applies the transition as a compare-and-set so that two admins
// racing on the same loan cannot both win.
func (r *LoanRepositoryImpl) UpdateStatus(ctx context.Context, loanID string, expected, next models.LoanStatus, u repositories.LoanStatusUpdate) (bool, error) {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE loans SET
		   status = $3,
		   approved_by = COALESCE(NULLIF($4, ''), approved_by),
		   approved_at = COALESCE($5, approved_at),
		   disbursed_at = COALESCE($6, disbursed_at),
		   updated_at = NOW()
		 WHERE loan_id = $1 AND status = $2`,
		loanID, expected, next, u.ApprovedBy, u.ApprovedAt, u.DisbursedAt,
	)
	if err != nil {
		return false, fmt.Errorf("update loan status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Disburse runs the status compare-and-set, the wallet credit and the audit
// insert in one transaction, so no partial outcome can be observed. A credit
// failure rolls back the status change and the loan stays approved.
func (r *LoanRepositoryImpl) Disburse(ctx context.Context, d repositories.Disbursement) (bool, decimal.Decimal, error) {
	for {
		tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
		if err != nil {
			return false, decimal.Decimal{}, err
		}

		tag, err := tx.Exec(
			ctx,
			`UPDATE loans SET status = $3, disbursed_at = $4, updated_at = NOW()
			 WHERE loan_id = $1 AND status = $2`,
			d.LoanID, models.LoanApproved, models.LoanDisbursed, d.At,
		)
		if err == nil && tag.RowsAffected() == 0 {
			tx.Rollback(ctx)
			return false, decimal.Decimal{}, nil
		}

		var balance decimal.Decimal
		if err == nil {
			err = tx.QueryRow(ctx, creditWallet, d.BorrowerID, d.Amount, d.Currency).Scan(&balance)
		}
		if err == nil {
			_, err = tx.Exec(
				ctx,
				`INSERT INTO transactions
				 (external_id, kind, status, amount, currency, owner_id, linked_loan_id)
				 VALUES ($1, $2, $3, $4::NUMERIC(12,2), $5, $6, $7)`,
				d.AuditID, models.KindLoanDisbursement, models.TxCompleted,
				d.Amount, d.Currency, d.BorrowerID, d.LoanID,
			)
		}
		if err == nil {
			if err = tx.Commit(ctx); err == nil {
				return true, balance, nil
			}
		}
		tx.Rollback(ctx)

		if isSerializationError(err) {
			continue
		}
		return false, decimal.Decimal{}, fmt.Errorf("disburse loan: %w", err)
	}
}

func (r *LoanRepositoryImpl) ListByStatus(ctx context.Context, status models.LoanStatus) ([]models.Loan, error) {
	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf("SELECT %s FROM loans WHERE status = $1 ORDER BY created_at DESC", loanColumns),
		status,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLoans(rows)
}

func (r *LoanRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]models.Loan, error) {
	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf("SELECT %s FROM loans WHERE borrower_id = $1 ORDER BY created_at DESC", loanColumns),
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLoans(rows)
}

func collectLoans(rows pgx.Rows) ([]models.Loan, error) {
	result := make([]models.Loan, 0)
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *loan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
