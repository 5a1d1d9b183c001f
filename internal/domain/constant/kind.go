package constant

import "strings"

// EntityKind identifies the kind of organizer item a reminder belongs to.
type EntityKind string

const (
	KindEvent     EntityKind = "event"
	KindDiary     EntityKind = "diary"
	KindMemo      EntityKind = "memo"
	KindChallenge EntityKind = "challenge"
	KindFestival  EntityKind = "festival"
)

// Kinds lists every known entity kind.
var Kinds = []EntityKind{KindEvent, KindDiary, KindMemo, KindChallenge, KindFestival}

// ParseEntityKind returns the kind named by s (case-insensitive).
func ParseEntityKind(s string) (EntityKind, bool) {
	k := EntityKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

func (k EntityKind) String() string {
	return string(k)
}

// Permission is the dispatcher's delivery permission state.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)
