package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"organizer/internal/domain/constant"
	"organizer/internal/domain/entity"
	"organizer/internal/domain/repository"
	"organizer/internal/infrastructure/scheduler"
	appErrors "organizer/internal/pkg/errors"
	"organizer/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

type dispatcherService struct {
	cronScheduler *scheduler.Scheduler
	repo          repository.NotificationRepository
	notifier      Notifier
	loc           *time.Location
	now           func() time.Time
	log           logger.Logger
	// notification id -> cron entry
	jobStore map[string]cron.EntryID
	mu       sync.Mutex
}

// NewDispatcherService creates a NotificationDispatcher that fires through
// cronScheduler, persists to repo and delivers via notifier. Cron specs are
// computed in loc, which must match the scheduler's location.
func NewDispatcherService(
	cronScheduler *scheduler.Scheduler,
	repo repository.NotificationRepository,
	notifier Notifier,
	loc *time.Location,
	log logger.Logger,
) DispatcherService {
	if loc == nil {
		loc = time.Local
	}
	return &dispatcherService{
		cronScheduler: cronScheduler,
		repo:          repo,
		notifier:      notifier,
		loc:           loc,
		now:           time.Now,
		log:           log,
		jobStore:      make(map[string]cron.EntryID),
	}
}

// FormatCronSpec generates a seconds-precision cron spec for a repeating
// trigger, with calendar fields interpreted in loc. One-shot triggers have no
// cron form since cron specs carry no year; they are registered with
// scheduler.Once instead.
func FormatCronSpec(trigger entity.TriggerSpec, loc *time.Location) (string, error) {
	// Seconds Minutes Hours DayOfMonth Month DayOfWeek
	switch trigger.Kind {
	case entity.TriggerOnce:
		return "", fmt.Errorf("one-shot trigger at %v has no cron spec", trigger.At.In(loc))
	case entity.TriggerDaily:
		return fmt.Sprintf("0 %d %d * * *", trigger.Minute, trigger.Hour), nil
	case entity.TriggerWeekly:
		if trigger.Weekday < 1 || trigger.Weekday > 7 {
			return "", fmt.Errorf("weekday %d out of range", trigger.Weekday)
		}
		return fmt.Sprintf("0 %d %d * * %d", trigger.Minute, trigger.Hour, trigger.Weekday-1), nil
	case entity.TriggerMonthly:
		if trigger.Day < 1 || trigger.Day > 31 {
			return "", fmt.Errorf("day of month %d out of range", trigger.Day)
		}
		return fmt.Sprintf("0 %d %d %d * *", trigger.Minute, trigger.Hour, trigger.Day), nil
	case entity.TriggerYearly:
		if trigger.Month < 1 || trigger.Month > 12 || trigger.Day < 1 || trigger.Day > 31 {
			return "", fmt.Errorf("month/day %d/%d out of range", trigger.Month, trigger.Day)
		}
		return fmt.Sprintf("0 %d %d %d %d *", trigger.Minute, trigger.Hour, trigger.Day, trigger.Month), nil
	}
	return "", fmt.Errorf("unknown trigger kind %q", trigger.Kind)
}

func (s *dispatcherService) storeJobID(id string, entryID cron.EntryID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobStore[id] = entryID
}

func (s *dispatcherService) removeJobID(id string) (cron.EntryID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entryID, ok := s.jobStore[id]
	if ok {
		delete(s.jobStore, id)
	}
	return entryID, ok
}

// Schedule persists the notification and registers its cron job.
func (s *dispatcherService) Schedule(ctx context.Context, content entity.NotificationContent, trigger entity.TriggerSpec) (string, error) {
	if trigger.Kind == entity.TriggerOnce && !trigger.At.After(s.now()) {
		return "", fmt.Errorf("%w: one-shot trigger at %v is not in the future", appErrors.ErrScheduling, trigger.At)
	}
	if trigger.Repeating() {
		if _, err := FormatCronSpec(trigger, s.loc); err != nil {
			return "", fmt.Errorf("%w: %v", appErrors.ErrScheduling, err)
		}
	}

	data, err := json.Marshal(content.Data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", appErrors.ErrInternalServer, err)
	}
	record := &entity.ScheduledNotification{
		ID:          uuid.NewString(),
		Title:       content.Title,
		Body:        content.Body,
		Data:        string(data),
		TriggerKind: trigger.Kind,
		FireAt:      trigger.At,
		Month:       trigger.Month,
		Day:         trigger.Day,
		Weekday:     trigger.Weekday,
		Hour:        trigger.Hour,
		Minute:      trigger.Minute,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return "", fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
	}

	if err := s.register(record); err != nil {
		if delErr := s.repo.Delete(ctx, record.ID); delErr != nil {
			s.log.Error(fmt.Sprintf("Failed to roll back notification %s", record.ID), delErr)
		}
		return "", err
	}

	s.log.Info(fmt.Sprintf("Scheduled notification %s (%s)", record.ID, trigger))
	return record.ID, nil
}

func (s *dispatcherService) register(record *entity.ScheduledNotification) error {
	id := record.ID
	job := func() {
		// Use background context for cron job execution
		s.fire(context.Background(), id)
	}

	if record.TriggerKind == entity.TriggerOnce {
		s.storeJobID(id, s.cronScheduler.AddSchedule(scheduler.Once(record.FireAt), job))
		return nil
	}

	spec, err := FormatCronSpec(record.Trigger(), s.loc)
	if err != nil {
		return fmt.Errorf("%w: %v", appErrors.ErrScheduling, err)
	}
	entryID, err := s.cronScheduler.AddJob(spec, job)
	if err != nil {
		return fmt.Errorf("%w: %v", appErrors.ErrScheduling, err)
	}
	s.storeJobID(id, entryID)
	return nil
}

// fire delivers the notification; one-shot jobs are removed afterwards.
func (s *dispatcherService) fire(ctx context.Context, id string) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn(fmt.Sprintf("Notification %s fired but no longer exists, dropping job", id))
			if entryID, ok := s.removeJobID(id); ok {
				s.cronScheduler.RemoveJob(entryID)
			}
			return
		}
		s.log.Error(fmt.Sprintf("Failed to load notification %s", id), err)
		return
	}

	if record.TriggerKind == entity.TriggerOnce && s.now().Before(record.FireAt) {
		s.log.Warn(fmt.Sprintf("Notification %s fired before its time %v, skipping", id, record.FireAt))
		return
	}

	content := entity.NotificationContent{Title: record.Title, Body: record.Body}
	if record.Data != "" {
		if err := json.Unmarshal([]byte(record.Data), &content.Data); err != nil {
			s.log.Warn(fmt.Sprintf("Notification %s has unreadable data payload: %v", id, err))
		}
	}

	if err := s.notifier.Notify(ctx, content); err != nil {
		s.log.Error(fmt.Sprintf("Failed to deliver notification %s", id), err)
	} else {
		s.log.Info(fmt.Sprintf("Delivered notification %s", id))
	}

	if record.TriggerKind == entity.TriggerOnce {
		if entryID, ok := s.removeJobID(id); ok {
			s.cronScheduler.RemoveJob(entryID)
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			s.log.Error(fmt.Sprintf("Failed to delete fired notification %s", id), err)
		}
	}
}

// Cancel removes the cron job and the persisted record. Unknown ids are a no-op.
func (s *dispatcherService) Cancel(ctx context.Context, id string) error {
	if entryID, ok := s.removeJobID(id); ok {
		s.cronScheduler.RemoveJob(entryID)
		s.log.Info(fmt.Sprintf("Cancelled notification %s (Job ID: %d)", id, entryID))
	} else {
		s.log.Debug(fmt.Sprintf("No active job found for notification %s to cancel.", id))
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
	}
	return nil
}

// QueryPermission delegates to the delivery channel.
func (s *dispatcherService) QueryPermission(ctx context.Context) constant.Permission {
	return s.notifier.Permission(ctx)
}

// InitializeSchedules loads notifications from the DB and schedules them on startup.
func (s *dispatcherService) InitializeSchedules(ctx context.Context) error {
	s.log.Info("Initializing schedules from database...")
	now := s.now()

	deletedCount, err := s.repo.DeleteOnceBefore(ctx, now)
	if err != nil {
		s.log.Error("Failed to delete past notifications during init", err)
		return fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
	}

	records, err := s.repo.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to retrieve notifications for initialization", err)
		return fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
	}

	scheduledCount := 0
	for _, record := range records {
		if err := s.register(record); err != nil {
			// Continue trying to schedule others
			s.log.Error(fmt.Sprintf("Failed to schedule notification %s during init", record.ID), err)
			continue
		}
		scheduledCount++
	}

	s.log.Info(fmt.Sprintf("Schedule initialization complete. Scheduled: %d, Deleted Past: %d", scheduledCount, deletedCount))
	return nil
}

// Stop stops the underlying scheduler.
func (s *dispatcherService) Stop() {
	s.cronScheduler.Stop()
}
