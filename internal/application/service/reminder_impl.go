package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"organizer/internal/domain/constant"
	"organizer/internal/domain/entity"
	"organizer/internal/domain/repository"
	appErrors "organizer/internal/pkg/errors"
	"organizer/internal/pkg/logger"
)

// Policy holds the lead-time rules applied before dispatch.
type Policy struct {
	MinLead      time.Duration // One-shot triggers must be at least this far ahead
	MinStartLead time.Duration // New items must start at least this far ahead
}

// DefaultPolicy returns the stock lead times.
func DefaultPolicy() Policy {
	return Policy{MinLead: 5 * time.Second, MinStartLead: 10 * time.Minute}
}

// maxEventOffsets is the most reminders a single event may carry.
const maxEventOffsets = 2

type reminderService struct {
	store      repository.KeyValueStore
	dispatcher NotificationDispatcher
	policy     Policy
	loc        *time.Location
	now        func() time.Time
	log        logger.Logger
}

// NewReminderService creates a new instance of ReminderService implementation.
func NewReminderService(
	store repository.KeyValueStore,
	dispatcher NotificationDispatcher,
	policy Policy,
	loc *time.Location,
	log logger.Logger,
) ReminderService {
	if loc == nil {
		loc = time.Local
	}
	return &reminderService{
		store:      store,
		dispatcher: dispatcher,
		policy:     policy,
		loc:        loc,
		now:        time.Now,
		log:        log,
	}
}

// SingleKey is the storage key for an entity's single notification id.
func SingleKey(kind constant.EntityKind, entityID string) string {
	return fmt.Sprintf("%s_%s_notification", kind, entityID)
}

// ListKey is the storage key for an entity's JSON list of notification ids.
func ListKey(kind constant.EntityKind, entityID string) string {
	return fmt.Sprintf("%s_%s_notifications", kind, entityID)
}

func categoryKey(kind constant.EntityKind) string {
	return fmt.Sprintf("notifications_enabled_%s", kind)
}

func validateRequest(req entity.ReminderRequest) error {
	if _, ok := constant.ParseEntityKind(string(req.EntityKind)); !ok {
		return fmt.Errorf("%w: unknown entity kind %q", appErrors.ErrInvalidRequest, req.EntityKind)
	}
	if req.EntityID == "" {
		return fmt.Errorf("%w: entity id is required", appErrors.ErrInvalidRequest)
	}
	if req.Anchor.IsZero() {
		return fmt.Errorf("%w: anchor time is required", appErrors.ErrInvalidRequest)
	}
	return nil
}

// preflight runs the category and permission checks shared by every submit path.
func (s *reminderService) preflight(ctx context.Context, kind constant.EntityKind, entityID string) error {
	enabled, err := s.CategoryEnabled(ctx, kind)
	if err != nil {
		return err
	}
	if !enabled {
		s.log.Info(fmt.Sprintf("Notifications disabled for %s, not scheduling %s", kind, entityID))
		return appErrors.ErrCategoryDisabled
	}
	if s.dispatcher.QueryPermission(ctx) != constant.PermissionGranted {
		s.log.Warn(fmt.Sprintf("Notification permission denied, not scheduling %s %s", kind, entityID))
		return appErrors.ErrPermissionDenied
	}
	return nil
}

// trigger computes the TriggerSpec for offset and enforces the one-shot lead time.
// All-day items without an offset are reminded at 09:00 on the day rather than
// at midnight.
func (s *reminderService) trigger(req entity.ReminderRequest, offset constant.Offset) (entity.TriggerSpec, error) {
	if req.AllDay && (offset == constant.OffsetNone || offset == "") {
		offset = constant.OffsetOnDay9AM
	}
	anchor := req.Anchor.In(s.loc)
	adjusted := ComputeTriggerTime(anchor, offset)
	spec := BuildTrigger(adjusted, req.Recurrence)
	if !spec.Repeating() {
		earliest := s.now().Add(s.policy.MinLead)
		if adjusted.Before(earliest) {
			return entity.TriggerSpec{}, fmt.Errorf("%w: %s is before %s", appErrors.ErrPastTime,
				adjusted.Format(time.RFC3339), earliest.Format(time.RFC3339))
		}
	}
	return spec, nil
}

func content(kind constant.EntityKind, entityID, title, body string) entity.NotificationContent {
	return entity.NotificationContent{
		Title: title,
		Body:  body,
		Data: map[string]string{
			"entityKind": string(kind),
			"entityId":   entityID,
		},
	}
}

func (s *reminderService) dispatch(ctx context.Context, c entity.NotificationContent, trigger entity.TriggerSpec) (string, error) {
	id, err := s.dispatcher.Schedule(ctx, c, trigger)
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to dispatch notification for %s %s", c.Data["entityKind"], c.Data["entityId"]), err)
		return "", fmt.Errorf("%w: %v", appErrors.ErrDispatch, err)
	}
	return id, nil
}

// rollback cancels ids whose mapping could not be persisted.
func (s *reminderService) rollback(ctx context.Context, ids []string) {
	for _, id := range ids {
		if err := s.dispatcher.Cancel(ctx, id); err != nil {
			s.log.Error(fmt.Sprintf("Failed to roll back notification %s", id), err)
		}
	}
}

// Submit schedules one reminder for an entity, replacing any previous one.
func (s *reminderService) Submit(ctx context.Context, req entity.ReminderRequest) (string, error) {
	if err := validateRequest(req); err != nil {
		return "", err
	}
	if err := s.preflight(ctx, req.EntityKind, req.EntityID); err != nil {
		return "", err
	}

	spec, err := s.trigger(req, req.Offset)
	if err != nil {
		s.log.Info(fmt.Sprintf("Not scheduling %s %s: %v", req.EntityKind, req.EntityID, err))
		return "", err
	}

	s.Cancel(ctx, req.EntityKind, req.EntityID)

	id, err := s.dispatch(ctx, content(req.EntityKind, req.EntityID, req.Title, req.Body), spec)
	if err != nil {
		return "", err
	}

	if err := s.store.Set(ctx, SingleKey(req.EntityKind, req.EntityID), id); err != nil {
		s.log.Error(fmt.Sprintf("Failed to store notification id for %s %s", req.EntityKind, req.EntityID), err)
		s.rollback(ctx, []string{id})
		return "", fmt.Errorf("%w: %v", appErrors.ErrStorage, err)
	}

	s.log.Info(fmt.Sprintf("Scheduled reminder %s for %s %s (%s)", id, req.EntityKind, req.EntityID, spec))
	return id, nil
}

// SubmitAll schedules one reminder per offset and stores the ids as a list.
// Offsets that fall inside the minimum lead time are skipped individually.
func (s *reminderService) SubmitAll(ctx context.Context, req entity.ReminderRequest, offsets []constant.Offset) ([]string, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.EntityKind != constant.KindEvent {
		return nil, fmt.Errorf("%w: multiple reminders are only supported for events", appErrors.ErrInvalidRequest)
	}
	if len(offsets) == 0 || len(offsets) > maxEventOffsets {
		return nil, fmt.Errorf("%w: expected 1 to %d offsets, got %d", appErrors.ErrInvalidRequest, maxEventOffsets, len(offsets))
	}
	if err := s.preflight(ctx, req.EntityKind, req.EntityID); err != nil {
		return nil, err
	}

	specs := make([]entity.TriggerSpec, 0, len(offsets))
	var lastErr error
	for _, offset := range offsets {
		spec, err := s.trigger(req, offset)
		if err != nil {
			s.log.Info(fmt.Sprintf("Skipping offset %s for event %s: %v", offset, req.EntityID, err))
			lastErr = err
			continue
		}
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		return nil, lastErr
	}

	s.Cancel(ctx, req.EntityKind, req.EntityID)

	c := content(req.EntityKind, req.EntityID, req.Title, req.Body)
	ids := make([]string, 0, len(specs))
	for _, spec := range specs {
		id, err := s.dispatch(ctx, c, spec)
		if err != nil {
			lastErr = err
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, lastErr
	}

	raw, err := json.Marshal(ids)
	if err != nil {
		s.rollback(ctx, ids)
		return nil, fmt.Errorf("%w: %v", appErrors.ErrInternalServer, err)
	}
	if err := s.store.Set(ctx, ListKey(req.EntityKind, req.EntityID), string(raw)); err != nil {
		s.log.Error(fmt.Sprintf("Failed to store notification ids for event %s", req.EntityID), err)
		s.rollback(ctx, ids)
		return nil, fmt.Errorf("%w: %v", appErrors.ErrStorage, err)
	}

	s.log.Info(fmt.Sprintf("Scheduled %d reminders for event %s", len(ids), req.EntityID))
	return ids, nil
}

// ScheduleFestival schedules a one-shot reminder at 09:00 on the festival date.
func (s *reminderService) ScheduleFestival(ctx context.Context, festival entity.Festival) (string, error) {
	if festival.ID == "" {
		return "", fmt.Errorf("%w: festival id is required", appErrors.ErrInvalidRequest)
	}
	at, err := FestivalTime(festival.Date, s.loc)
	if err != nil {
		return "", fmt.Errorf("%w: festival date %q: %v", appErrors.ErrInvalidDateTime, festival.Date, err)
	}
	if !at.After(s.now()) {
		s.log.Debug(fmt.Sprintf("Festival %s on %s has passed, skipping", festival.ID, festival.Date))
		return "", nil
	}
	if err := s.preflight(ctx, constant.KindFestival, festival.ID); err != nil {
		return "", err
	}

	title := festival.Title
	if title == "" {
		title = festival.Name
	}

	s.Cancel(ctx, constant.KindFestival, festival.ID)

	spec := BuildTrigger(at, constant.RecurrenceNone)
	id, err := s.dispatch(ctx, content(constant.KindFestival, festival.ID, title, festival.Body), spec)
	if err != nil {
		return "", err
	}
	if err := s.store.Set(ctx, SingleKey(constant.KindFestival, festival.ID), id); err != nil {
		s.log.Error(fmt.Sprintf("Failed to store notification id for festival %s", festival.ID), err)
		s.rollback(ctx, []string{id})
		return "", fmt.Errorf("%w: %v", appErrors.ErrStorage, err)
	}

	s.log.Info(fmt.Sprintf("Scheduled festival reminder %s for %s at %v", id, festival.ID, at))
	return id, nil
}

// storedIDs collects the ids stored under both the single and list keys.
func (s *reminderService) storedIDs(ctx context.Context, kind constant.EntityKind, entityID string) ([]string, error) {
	var ids []string

	single, found, err := s.store.Get(ctx, SingleKey(kind, entityID))
	if err != nil {
		return nil, err
	}
	if found && single != "" {
		ids = append(ids, single)
	}

	list, found, err := s.store.Get(ctx, ListKey(kind, entityID))
	if err != nil {
		return nil, err
	}
	if found && list != "" {
		var many []string
		if err := json.Unmarshal([]byte(list), &many); err != nil {
			s.log.Warn(fmt.Sprintf("Unreadable notification list for %s %s: %v", kind, entityID, err))
		} else {
			ids = append(ids, many...)
		}
	}
	return ids, nil
}

// Cancel cancels every stored notification for the entity and removes the mapping.
func (s *reminderService) Cancel(ctx context.Context, kind constant.EntityKind, entityID string) {
	ids, err := s.storedIDs(ctx, kind, entityID)
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to read notification ids for %s %s", kind, entityID), err)
	}

	for _, id := range ids {
		if err := s.dispatcher.Cancel(ctx, id); err != nil {
			s.log.Error(fmt.Sprintf("Failed to cancel notification %s for %s %s", id, kind, entityID), err)
		}
	}

	for _, key := range []string{SingleKey(kind, entityID), ListKey(kind, entityID)} {
		if err := s.store.Remove(ctx, key); err != nil {
			s.log.Error(fmt.Sprintf("Failed to remove key %s", key), err)
		}
	}

	if len(ids) > 0 {
		s.log.Info(fmt.Sprintf("Cancelled %d notification(s) for %s %s", len(ids), kind, entityID))
	}
}

// Lookup returns the active reminder mapping for the entity.
func (s *reminderService) Lookup(ctx context.Context, kind constant.EntityKind, entityID string) (*entity.ScheduledReminder, error) {
	ids, err := s.storedIDs(ctx, kind, entityID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErrors.ErrStorage, err)
	}
	if len(ids) == 0 {
		return nil, appErrors.ErrReminderNotFound
	}
	return &entity.ScheduledReminder{EntityKind: kind, EntityID: entityID, NotificationIDs: ids}, nil
}

// CategoryEnabled reports whether reminders of kind may be scheduled. An
// absent flag means enabled.
func (s *reminderService) CategoryEnabled(ctx context.Context, kind constant.EntityKind) (bool, error) {
	v, found, err := s.store.Get(ctx, categoryKey(kind))
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to read category flag for %s", kind), err)
		return false, fmt.Errorf("%w: %v", appErrors.ErrStorage, err)
	}
	if !found {
		return true, nil
	}
	enabled, err := strconv.ParseBool(v)
	if err != nil {
		s.log.Warn(fmt.Sprintf("Invalid category flag %q for %s, treating as enabled", v, kind))
		return true, nil
	}
	return enabled, nil
}

// SetCategoryEnabled toggles the per-kind opt-out flag.
func (s *reminderService) SetCategoryEnabled(ctx context.Context, kind constant.EntityKind, enabled bool) error {
	if err := s.store.Set(ctx, categoryKey(kind), strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("%w: %v", appErrors.ErrStorage, err)
	}
	s.log.Info(fmt.Sprintf("Notifications for %s set to enabled=%t", kind, enabled))
	return nil
}

// Permission reports the dispatcher's permission state.
func (s *reminderService) Permission(ctx context.Context) constant.Permission {
	return s.dispatcher.QueryPermission(ctx)
}

// MinimumStartTime is the earliest start a newly created item may use.
func (s *reminderService) MinimumStartTime() time.Time {
	return s.now().In(s.loc).Add(s.policy.MinStartLead)
}

// ValidateStartTime rejects new-item start times earlier than MinimumStartTime.
func (s *reminderService) ValidateStartTime(start time.Time) error {
	if earliest := s.MinimumStartTime(); start.Before(earliest) {
		return fmt.Errorf("%w: start %s is before %s", appErrors.ErrPastTime,
			start.Format(time.RFC3339), earliest.Format(time.RFC3339))
	}
	return nil
}
