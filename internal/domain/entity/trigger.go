package entity

import (
	"fmt"
	"time"
)

// TriggerKind distinguishes one-shot triggers from the repeating patterns.
type TriggerKind string

const (
	TriggerOnce    TriggerKind = "once"
	TriggerDaily   TriggerKind = "daily"
	TriggerWeekly  TriggerKind = "weekly"
	TriggerMonthly TriggerKind = "monthly"
	TriggerYearly  TriggerKind = "yearly"
)

// TriggerSpec is either an absolute instant (TriggerOnce) or a repeating
// calendar pattern. Weekday is 1-indexed with Sunday=1.
type TriggerSpec struct {
	Kind    TriggerKind `json:"kind"`
	At      time.Time   `json:"at,omitempty"`
	Month   int         `json:"month,omitempty"`
	Day     int         `json:"day,omitempty"`
	Weekday int         `json:"weekday,omitempty"`
	Hour    int         `json:"hour"`
	Minute  int         `json:"minute"`
}

// Repeating reports whether the trigger fires more than once.
func (t TriggerSpec) Repeating() bool {
	return t.Kind != TriggerOnce
}

func (t TriggerSpec) String() string {
	switch t.Kind {
	case TriggerOnce:
		return fmt.Sprintf("once at %s", t.At.Format(time.RFC3339))
	case TriggerDaily:
		return fmt.Sprintf("daily at %02d:%02d", t.Hour, t.Minute)
	case TriggerWeekly:
		return fmt.Sprintf("weekly on day %d at %02d:%02d", t.Weekday, t.Hour, t.Minute)
	case TriggerMonthly:
		return fmt.Sprintf("monthly on the %d at %02d:%02d", t.Day, t.Hour, t.Minute)
	case TriggerYearly:
		return fmt.Sprintf("yearly on %02d-%02d at %02d:%02d", t.Month, t.Day, t.Hour, t.Minute)
	}
	return string(t.Kind)
}
