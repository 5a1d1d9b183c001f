package constant

import "strings"

// Recurrence is the closed set of repeat rules a reminder can carry.
type Recurrence int

const (
	RecurrenceNone Recurrence = iota
	RecurrenceDaily
	RecurrenceWeekly
	RecurrenceMonthly
	RecurrenceYearly
)

var recurrenceNames = map[Recurrence]string{
	RecurrenceNone:    "none",
	RecurrenceDaily:   "daily",
	RecurrenceWeekly:  "weekly",
	RecurrenceMonthly: "monthly",
	RecurrenceYearly:  "yearly",
}

// exact keys, including the legacy "every_*" identifiers and form labels.
var recurrenceKeys = map[string]Recurrence{
	"":            RecurrenceNone,
	"none":        RecurrenceNone,
	"never":       RecurrenceNone,
	"once":        RecurrenceNone,
	"daily":       RecurrenceDaily,
	"every_day":   RecurrenceDaily,
	"everyday":    RecurrenceDaily,
	"weekly":      RecurrenceWeekly,
	"every_week":  RecurrenceWeekly,
	"monthly":     RecurrenceMonthly,
	"every_month": RecurrenceMonthly,
	"yearly":      RecurrenceYearly,
	"annually":    RecurrenceYearly,
	"every_year":  RecurrenceYearly,
}

// ParseRecurrence normalises canonical keys and legacy free-text labels
// ("Everyday", "Every Week", ...) to a Recurrence. Free text is matched on the
// most specific token first: year, month, week, day. Anything else is
// RecurrenceNone.
func ParseRecurrence(s string) Recurrence {
	key := strings.ToLower(strings.TrimSpace(s))
	if r, ok := recurrenceKeys[key]; ok {
		return r
	}
	switch {
	case strings.Contains(key, "year"):
		return RecurrenceYearly
	case strings.Contains(key, "month"):
		return RecurrenceMonthly
	case strings.Contains(key, "week"):
		return RecurrenceWeekly
	case strings.Contains(key, "day"):
		return RecurrenceDaily
	}
	return RecurrenceNone
}

func (r Recurrence) String() string {
	if name, ok := recurrenceNames[r]; ok {
		return name
	}
	return "none"
}

// IsRepeating reports whether r produces a repeating trigger.
func (r Recurrence) IsRepeating() bool {
	return r != RecurrenceNone
}
