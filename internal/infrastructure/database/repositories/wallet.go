package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mulengadev/lendstack/internal/domain/models"
	"github.com/mulengadev/lendstack/internal/domain/repositories"
	"github.com/shopspring/decimal"
)

type WalletRepositoryImpl struct {
	db *pgxpool.Pool
}

func NewWalletRepositoryImpl(db *pgxpool.Pool) repositories.WalletRepository {
	return &WalletRepositoryImpl{
		db: db,
	}
}

// GetByUserID returns the wallet or nil when absent.
func (r *WalletRepositoryImpl) GetByUserID(ctx context.Context, userID string) (*models.Wallet, error) {
	wallet := &models.Wallet{}
	err := r.db.QueryRow(
		ctx,
		"SELECT user_id, balance, currency, created_at, updated_at FROM wallets WHERE user_id = $1",
		userID,
	).Scan(&wallet.UserID, &wallet.Balance, &wallet.Currency, &wallet.CreatedAt, &wallet.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return wallet, nil
}

const creditWallet = `
INSERT INTO wallets (user_id, balance, currency)
VALUES ($1, $2::NUMERIC(12,2), $3)
ON CONFLICT (user_id)
DO UPDATE SET balance = wallets.balance + $2::NUMERIC(12,2), updated_at = NOW()
RETURNING balance;`

// Credit lazily creates the wallet and credits it in one statement, so the
// read-modify-write race of a select-then-update sequence cannot occur.
func (r *WalletRepositoryImpl) Credit(ctx context.Context, userID, currency string, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.QueryRow(ctx, creditWallet, userID, amount, currency).Scan(&balance)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("credit wallet: %w", err)
	}
	return balance, nil
}
