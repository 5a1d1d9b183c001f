package repository

import (
	"context"
	"time"

	"organizer/internal/domain/entity"
)

// NotificationRepository persists the dispatcher's scheduled notifications.
type NotificationRepository interface {
	// FindByID retrieves a scheduled notification by its ID.
	FindByID(ctx context.Context, id string) (*entity.ScheduledNotification, error)
	// FindAll retrieves all scheduled notifications (used for rescheduling on startup).
	FindAll(ctx context.Context) ([]*entity.ScheduledNotification, error)
	// Create stores a new scheduled notification.
	Create(ctx context.Context, n *entity.ScheduledNotification) error
	// Delete deletes a scheduled notification by its ID.
	Delete(ctx context.Context, id string) error
	// DeleteOnceBefore deletes one-shot notifications whose fire time is before threshold.
	DeleteOnceBefore(ctx context.Context, threshold time.Time) (int64, error)
}
