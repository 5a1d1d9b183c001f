package entity

import "time"

// NotificationContent is what gets delivered when a trigger fires.
type NotificationContent struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// ScheduledNotification is the dispatcher's persisted record of one
// registered trigger, used to restore cron jobs after a restart.
type ScheduledNotification struct {
	ID          string      `gorm:"column:id;primaryKey"`
	Title       string      `gorm:"column:title"`
	Body        string      `gorm:"column:body;type:text"`
	Data        string      `gorm:"column:data;type:text"` // JSON-encoded NotificationContent.Data
	TriggerKind TriggerKind `gorm:"column:trigger_kind;index"`
	FireAt      time.Time   `gorm:"column:fire_at"` // One-shot instant; zero for repeating triggers
	Month       int         `gorm:"column:month"`
	Day         int         `gorm:"column:day"`
	Weekday     int         `gorm:"column:weekday"`
	Hour        int         `gorm:"column:hour"`
	Minute      int         `gorm:"column:minute"`
	CreatedAt   time.Time   `gorm:"column:created_at"`
}

// TableName specifies the table name for the ScheduledNotification entity.
func (ScheduledNotification) TableName() string {
	return "scheduled_notifications"
}

// Trigger rebuilds the TriggerSpec the record was created from.
func (n *ScheduledNotification) Trigger() TriggerSpec {
	return TriggerSpec{
		Kind:    n.TriggerKind,
		At:      n.FireAt,
		Month:   n.Month,
		Day:     n.Day,
		Weekday: n.Weekday,
		Hour:    n.Hour,
		Minute:  n.Minute,
	}
}

// KVEntry is a row of the SQLite-backed key-value store.
type KVEntry struct {
	Key       string    `gorm:"column:kv_key;primaryKey"`
	Value     string    `gorm:"column:kv_value;type:text"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName specifies the table name for the KVEntry entity.
func (KVEntry) TableName() string {
	return "kv_entries"
}
