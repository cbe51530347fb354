package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mulengadev/lendstack/internal/domain/models"
	"github.com/mulengadev/lendstack/internal/domain/repositories"
	"github.com/mulengadev/lendstack/pkg/log"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type TransactionRepositoryImpl struct {
	db     *pgxpool.Pool
	logger *zerolog.Logger
}

// NewTransactionRepositoryImpl creates new instance of TransactionRepositoryImpl.
func NewTransactionRepositoryImpl(db *pgxpool.Pool) repositories.TransactionRepository {
	l := log.GetLogger()
	return &TransactionRepositoryImpl{
		db:     db,
		logger: &l,
	}
}

const transactionColumns = `external_id, kind, status, amount, currency, owner_id,
counterparty_phone, counterparty_provider, provider_reference,
failure_code, failure_message, linked_loan_id, raw_metadata, created_at, updated_at`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	tx := &models.Transaction{}
	err := row.Scan(
		&tx.ExternalID, &tx.Kind, &tx.Status, &tx.Amount, &tx.Currency, &tx.OwnerID,
		&tx.CounterpartyPhone, &tx.Provider, &tx.ProviderReference,
		&tx.FailureCode, &tx.FailureMessage, &tx.LinkedLoanID, &tx.RawMetadata,
		&tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// GetByExternalID returns the transaction or nil when absent.
func (r *TransactionRepositoryImpl) GetByExternalID(ctx context.Context, externalID string) (*models.Transaction, error) {
	tx, err := scanTransaction(r.db.QueryRow(
		ctx,
		fmt.Sprintf("SELECT %s FROM transactions WHERE external_id = $1", transactionColumns),
		externalID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return tx, nil
}

func (r *TransactionRepositoryImpl) Insert(ctx context.Context, tx *models.Transaction) error {
	_, err := r.db.Exec(
		ctx,
		`INSERT INTO transactions
		 (external_id, kind, status, amount, currency, owner_id,
		  counterparty_phone, counterparty_provider, provider_reference,
		  failure_code, failure_message, linked_loan_id, raw_metadata)
		 VALUES ($1, $2, $3, $4::NUMERIC(12,2), $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		tx.ExternalID, tx.Kind, tx.Status, tx.Amount, tx.Currency, tx.OwnerID,
		tx.CounterpartyPhone, tx.Provider, tx.ProviderReference,
		tx.FailureCode, tx.FailureMessage, tx.LinkedLoanID, nullableBytes(tx.RawMetadata),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.SQLState() == repositories.UniqueViolationError {
			return fmt.Errorf("transaction %s already exists: %w", tx.ExternalID, err)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

const upsertCoalescing = `
WITH existing AS (
  SELECT external_id FROM transactions WHERE external_id IN ($1, $2) LIMIT 1
),
updated AS (
  UPDATE transactions SET
    status                = COALESCE(NULLIF($5, ''), status),
    amount                = COALESCE($6::NUMERIC(12,2), amount),
    currency              = COALESCE(NULLIF($7, ''), currency),
    owner_id              = COALESCE(NULLIF($8, ''), owner_id),
    counterparty_phone    = COALESCE(NULLIF($9, ''), counterparty_phone),
    counterparty_provider = COALESCE(NULLIF($10, ''), counterparty_provider),
    provider_reference    = COALESCE(NULLIF($11, ''), provider_reference),
    failure_code          = COALESCE(NULLIF($12, ''), failure_code),
    failure_message       = COALESCE(NULLIF($13, ''), failure_message),
    raw_metadata          = COALESCE($14::JSONB, raw_metadata),
    updated_at            = NOW()
  WHERE external_id = (SELECT external_id FROM existing)
  RETURNING ` + transactionColumns + `
),
inserted AS (
  INSERT INTO transactions
    (external_id, kind, status, amount, currency, owner_id,
     counterparty_phone, counterparty_provider, provider_reference,
     failure_code, failure_message, raw_metadata)
  SELECT $3, $4, COALESCE(NULLIF($5, ''), 'PENDING'), COALESCE($6::NUMERIC(12,2), 0), $7, $8,
         $9, $10, $11, $12, $13, $14::JSONB
  WHERE NOT EXISTS (SELECT 1 FROM existing)
  RETURNING ` + transactionColumns + `
)
SELECT * FROM updated
UNION ALL
SELECT * FROM inserted;`

// UpsertCoalescing resolves the row by either supplied id and applies a
// last-coalescing-write-wins update, or inserts when no row matches. Re-applying
// an identical payload leaves the row unchanged apart from updated_at.
func (r *TransactionRepositoryImpl) UpsertCoalescing(ctx context.Context, depositID, payoutID string, in *models.Transaction) (*models.Transaction, error) {
	var amount *decimal.Decimal
	if !in.Amount.IsZero() {
		amount = &in.Amount
	}

	args := []interface{}{
		depositID, payoutID,
		in.ExternalID, in.Kind,
		string(in.Status), amount, in.Currency, in.OwnerID,
		in.CounterpartyPhone, in.Provider, in.ProviderReference,
		in.FailureCode, in.FailureMessage, nullableBytes(in.RawMetadata),
	}

	for {
		tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
		if err != nil {
			return nil, err
		}

		result, err := scanTransaction(tx.QueryRow(ctx, upsertCoalescing, args...))
		if err == nil {
			if err = tx.Commit(ctx); err == nil {
				return result, nil
			}
		}
		tx.Rollback(ctx)

		if isSerializationError(err) {
			// retry on serialization failure (SQLSTATE 40001)
			continue
		}
		return nil, fmt.Errorf("upsert transaction: %w", err)
	}
}

// UpdateStatus moves the transaction to the next status only while it is still
// in the expected one.
func (r *TransactionRepositoryImpl) UpdateStatus(ctx context.Context, externalID string, from, to models.TransactionStatus) (bool, error) {
	tag, err := r.db.Exec(
		ctx,
		"UPDATE transactions SET status = $3, updated_at = NOW() WHERE external_id = $1 AND status = $2",
		externalID, from, to,
	)
	if err != nil {
		return false, fmt.Errorf("update transaction status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *TransactionRepositoryImpl) SetLinkedLoan(ctx context.Context, externalID, loanID string) error {
	_, err := r.db.Exec(
		ctx,
		"UPDATE transactions SET linked_loan_id = $2, updated_at = NOW() WHERE external_id = $1",
		externalID, loanID,
	)
	if err != nil {
		return fmt.Errorf("link loan to transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepositoryImpl) ListInvestmentsByOwner(ctx context.Context, ownerID string) ([]models.Transaction, error) {
	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf("SELECT %s FROM transactions WHERE kind = 'investment' AND owner_id = $1 ORDER BY created_at DESC", transactionColumns),
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (r *TransactionRepositoryImpl) ListPendingOlderThan(ctx context.Context, minutes int) ([]models.Transaction, error) {
	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf(`SELECT %s FROM transactions
		 WHERE status = 'PENDING' AND kind IN ('payment', 'investment')
		   AND created_at < NOW() - make_interval(mins => $1)
		 ORDER BY created_at ASC`, transactionColumns),
		minutes,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]models.Transaction, error) {
	result := make([]models.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func nullableBytes(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}

func isSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == repositories.SerializationError
}
