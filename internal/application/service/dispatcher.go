package service

import (
	"context"

	"organizer/internal/domain/constant"
	"organizer/internal/domain/entity"
)

// NotificationDispatcher registers and cancels local notifications.
type NotificationDispatcher interface {
	// Schedule registers content to be delivered on trigger and returns its id.
	Schedule(ctx context.Context, content entity.NotificationContent, trigger entity.TriggerSpec) (string, error)
	// Cancel unregisters the notification with the given id.
	Cancel(ctx context.Context, id string) error
	// QueryPermission reports whether notifications may be delivered.
	QueryPermission(ctx context.Context) constant.Permission
}

// Notifier is the delivery channel used when a trigger fires.
type Notifier interface {
	Notify(ctx context.Context, content entity.NotificationContent) error
	Permission(ctx context.Context) constant.Permission
}

// DispatcherService is the cron-backed NotificationDispatcher with restart recovery.
type DispatcherService interface {
	NotificationDispatcher
	// InitializeSchedules loads persisted notifications and registers them on startup.
	InitializeSchedules(ctx context.Context) error
	// Stop stops the underlying scheduler.
	Stop()
}
