package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mulengadev/lendstack/internal/domain/models"
	"github.com/mulengadev/lendstack/internal/domain/repositories"
)

type NotificationRepositoryImpl struct {
	db *pgxpool.Pool
}

func NewNotificationRepositoryImpl(db *pgxpool.Pool) repositories.NotificationRepository {
	return &NotificationRepositoryImpl{
		db: db,
	}
}

// Enqueue appends a notification; the dedup key suppresses the duplicate a
// re-delivered callback would otherwise produce.
func (r *NotificationRepositoryImpl) Enqueue(ctx context.Context, ownerID, message, dedupKey string) (bool, error) {
	tag, err := r.db.Exec(
		ctx,
		`INSERT INTO notifications (owner_id, message, dedup_key)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (dedup_key) DO NOTHING`,
		ownerID, message, dedupKey,
	)
	if err != nil {
		return false, fmt.Errorf("enqueue notification: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *NotificationRepositoryImpl) ListByOwner(ctx context.Context, ownerID string) ([]models.Notification, error) {
	rows, err := r.db.Query(
		ctx,
		"SELECT id, owner_id, message, dedup_key, created_at FROM notifications WHERE owner_id = $1 ORDER BY created_at DESC",
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		if err = rows.Scan(&n.ID, &n.OwnerID, &n.Message, &n.DedupKey, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
