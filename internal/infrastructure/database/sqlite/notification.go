package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"organizer/internal/domain/entity"
	"organizer/internal/domain/repository"

	"gorm.io/gorm"
)

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new instance of NotificationRepository.
func NewNotificationRepository(db *gorm.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

// FindByID retrieves a scheduled notification by its ID.
func (r *notificationRepository) FindByID(ctx context.Context, id string) (*entity.ScheduledNotification, error) {
	var n entity.ScheduledNotification
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("notification with ID %s not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to find notification by id %s: %w", id, err)
	}
	return &n, nil
}

// FindAll retrieves all scheduled notifications (used for rescheduling on startup).
func (r *notificationRepository) FindAll(ctx context.Context) ([]*entity.ScheduledNotification, error) {
	var list []*entity.ScheduledNotification
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to find all notifications: %w", err)
	}
	return list, nil
}

// Create stores a new scheduled notification.
func (r *notificationRepository) Create(ctx context.Context, n *entity.ScheduledNotification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification %s: %w", n.ID, err)
	}
	return nil
}

// Delete deletes a scheduled notification by its ID.
func (r *notificationRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.ScheduledNotification{}).Error; err != nil {
		return fmt.Errorf("failed to delete notification %s: %w", id, err)
	}
	return nil
}

// DeleteOnceBefore deletes one-shot notifications whose fire time is before threshold.
func (r *notificationRepository) DeleteOnceBefore(ctx context.Context, threshold time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("trigger_kind = ? AND fire_at < ?", entity.TriggerOnce, threshold).
		Delete(&entity.ScheduledNotification{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete one-shot notifications older than %v: %w", threshold, res.Error)
	}
	return res.RowsAffected, nil
}
