package dto

import (
	"fmt"
	"strings"
	"time"

	"organizer/internal/domain/constant"
	"organizer/internal/domain/entity"
	appErrors "organizer/internal/pkg/errors"
)

// Accepted anchor layouts, most specific first. A date-only anchor marks an all-day item.
var anchorLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}

const dateLayout = "2006-01-02"

// SubmitReminderRequest is the DTO for scheduling reminders for an organizer item.
type SubmitReminderRequest struct {
	EntityKind string   `json:"entity_kind"`
	EntityID   string   `json:"entity_id"`
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Anchor     string   `json:"anchor"`
	AllDay     bool     `json:"all_day"`
	Recurrence string   `json:"recurrence"`
	Offset     string   `json:"offset"`
	Offsets    []string `json:"offsets,omitempty"` // Events only; overrides Offset
}

// ToEntity converts the DTO, interpreting zone-less anchors in loc.
func (r SubmitReminderRequest) ToEntity(loc *time.Location) (entity.ReminderRequest, error) {
	kind, ok := constant.ParseEntityKind(r.EntityKind)
	if !ok {
		return entity.ReminderRequest{}, fmt.Errorf("%w: unknown entity kind %q", appErrors.ErrInvalidRequest, r.EntityKind)
	}
	anchor, allDay, err := ParseAnchor(r.Anchor, loc)
	if err != nil {
		return entity.ReminderRequest{}, err
	}
	return entity.ReminderRequest{
		EntityKind: kind,
		EntityID:   r.EntityID,
		Title:      r.Title,
		Body:       r.Body,
		Anchor:     anchor,
		AllDay:     allDay || r.AllDay,
		Recurrence: constant.ParseRecurrence(r.Recurrence),
		Offset:     constant.Offset(strings.TrimSpace(r.Offset)),
	}, nil
}

// OffsetList returns the requested offsets for a multi-reminder submit.
func (r SubmitReminderRequest) OffsetList() []constant.Offset {
	out := make([]constant.Offset, 0, len(r.Offsets))
	for _, o := range r.Offsets {
		out = append(out, constant.Offset(strings.TrimSpace(o)))
	}
	return out
}

// ParseAnchor parses a date-time or a date. allDay is true for date-only input.
func ParseAnchor(s string, loc *time.Location) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	for _, layout := range anchorLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, false, nil
		}
	}
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("%w: %q", appErrors.ErrInvalidDateTime, s)
}

// FestivalRequest is the DTO for scheduling a festival reminder.
type FestivalRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Date  string `json:"date"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ToEntity converts the DTO.
func (r FestivalRequest) ToEntity() entity.Festival {
	return entity.Festival{ID: r.ID, Name: r.Name, Date: r.Date, Title: r.Title, Body: r.Body}
}

// CategoryRequest toggles notifications for an entity kind.
type CategoryRequest struct {
	Enabled bool `json:"enabled"`
}

// ScheduleResponse reports whether reminders were scheduled. Reason is set
// when Scheduled is false.
type ScheduleResponse struct {
	Scheduled       bool     `json:"scheduled"`
	NotificationIDs []string `json:"notification_ids,omitempty"`
	Reason          string   `json:"reason,omitempty"`
}

// ReminderResponse is the DTO for an entity's active reminder mapping.
type ReminderResponse struct {
	EntityKind      string   `json:"entity_kind"`
	EntityID        string   `json:"entity_id"`
	NotificationIDs []string `json:"notification_ids"`
}

// ToReminderResponse converts an entity.ScheduledReminder to a ReminderResponse DTO.
func ToReminderResponse(r *entity.ScheduledReminder) ReminderResponse {
	return ReminderResponse{
		EntityKind:      string(r.EntityKind),
		EntityID:        r.EntityID,
		NotificationIDs: r.NotificationIDs,
	}
}

// CategoryResponse reports a kind's opt-out state.
type CategoryResponse struct {
	EntityKind string `json:"entity_kind"`
	Enabled    bool   `json:"enabled"`
}

// PermissionResponse reports the dispatcher permission state.
type PermissionResponse struct {
	Permission string `json:"permission"`
}

// MinStartTimeResponse reports the earliest allowed start for a new item.
type MinStartTimeResponse struct {
	MinStartTime time.Time `json:"min_start_time"`
}

// StartTimeRequest asks whether a new item may start at Start.
type StartTimeRequest struct {
	Start string `json:"start"`
}

// StartTimeResponse reports the outcome of a start-time check.
type StartTimeResponse struct {
	Valid        bool      `json:"valid"`
	MinStartTime time.Time `json:"min_start_time"`
	Reason       string    `json:"reason,omitempty"`
}

// ErrorResponse is returned for rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
}
