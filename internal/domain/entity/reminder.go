package entity

import (
	"time"

	"organizer/internal/domain/constant"
)

// ReminderRequest describes one reminder to schedule for an organizer item.
type ReminderRequest struct {
	EntityKind constant.EntityKind
	EntityID   string
	Title      string
	Body       string
	Anchor     time.Time // Start of the item; for all-day items the time part is ignored by the 9am offsets
	AllDay     bool      // No offset means 09:00 on the day
	Recurrence constant.Recurrence
	Offset     constant.Offset
}

// ScheduledReminder links an entity to the dispatcher ids currently active for it.
type ScheduledReminder struct {
	EntityKind      constant.EntityKind `json:"entity_kind"`
	EntityID        string              `json:"entity_id"`
	NotificationIDs []string            `json:"notification_ids"`
}

// Festival is a calendar date that gets a single 09:00 reminder.
type Festival struct {
	ID    string
	Name  string
	Date  string // YYYY-MM-DD
	Title string
	Body  string
}
