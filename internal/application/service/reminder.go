package service

import (
	"context"
	"time"

	"organizer/internal/domain/constant"
	"organizer/internal/domain/entity"
)

// ReminderService schedules, replaces and cancels reminders for organizer items.
type ReminderService interface {
	// Submit schedules one reminder for an entity, replacing any previous one.
	// It returns the dispatcher id, or "" and the reason it was not scheduled.
	Submit(ctx context.Context, req entity.ReminderRequest) (string, error)
	// SubmitAll schedules one reminder per offset (events only, 1-2 offsets)
	// and stores all resulting ids under the entity.
	SubmitAll(ctx context.Context, req entity.ReminderRequest, offsets []constant.Offset) ([]string, error)
	// ScheduleFestival schedules a one-shot reminder at 09:00 on the festival
	// date. Past festivals are skipped and yield "" with a nil error.
	ScheduleFestival(ctx context.Context, festival entity.Festival) (string, error)
	// Cancel cancels every stored notification for the entity and removes the
	// mapping. Failures are logged, never returned.
	Cancel(ctx context.Context, kind constant.EntityKind, entityID string)
	// Lookup returns the active reminder mapping for the entity.
	Lookup(ctx context.Context, kind constant.EntityKind, entityID string) (*entity.ScheduledReminder, error)
	// CategoryEnabled reports whether reminders of kind may be scheduled.
	CategoryEnabled(ctx context.Context, kind constant.EntityKind) (bool, error)
	// SetCategoryEnabled toggles the per-kind opt-out flag.
	SetCategoryEnabled(ctx context.Context, kind constant.EntityKind, enabled bool) error
	// Permission reports the dispatcher's permission state.
	Permission(ctx context.Context) constant.Permission
	// MinimumStartTime is the earliest start a newly created item may use.
	MinimumStartTime() time.Time
	// ValidateStartTime rejects new-item start times earlier than MinimumStartTime.
	ValidateStartTime(start time.Time) error
}
