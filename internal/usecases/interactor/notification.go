package interactor

import (
	"context"

	"github.com/mulengadev/lendstack/internal/domain/models"
	"github.com/mulengadev/lendstack/internal/domain/repositories"
)

type NotificationInteractor struct {
	notifications repositories.NotificationRepository
}

func NewNotificationInteractor(notifications repositories.NotificationRepository) *NotificationInteractor {
	return &NotificationInteractor{notifications: notifications}
}

func (n *NotificationInteractor) ListByOwner(ctx context.Context, ownerID string) ([]models.Notification, error) {
	return n.notifications.ListByOwner(ctx, ownerID)
}
