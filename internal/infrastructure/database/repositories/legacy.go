package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mulengadev/lendstack/internal/domain/repositories"
)

// LegacyRepositoryImpl reads the free-text estack_transactions table kept only
// as backfill input for the one-time migration into structured rows.
type LegacyRepositoryImpl struct {
	db *pgxpool.Pool
}

func NewLegacyRepositoryImpl(db *pgxpool.Pool) repositories.LegacyRepository {
	return &LegacyRepositoryImpl{
		db: db,
	}
}

func (r *LegacyRepositoryImpl) ListAll(ctx context.Context) ([]repositories.LegacyRow, error) {
	rows, err := r.db.Query(ctx, "SELECT name_of_transaction, status FROM estack_transactions")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]repositories.LegacyRow, 0)
	for rows.Next() {
		var row repositories.LegacyRow
		if err = rows.Scan(&row.NameOfTransaction, &row.Status); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
