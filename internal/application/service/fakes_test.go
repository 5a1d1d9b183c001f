package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"organizer/internal/domain/constant"
	"organizer/internal/domain/entity"

	"gorm.io/gorm"
)

type memStore struct {
	mu      sync.Mutex
	data    map[string]string
	sets    int
	failSet bool
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}}
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet {
		return errors.New("disk full")
	}
	m.sets++
	m.data[key] = value
	return nil
}

func (m *memStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type scheduledCall struct {
	content entity.NotificationContent
	trigger entity.TriggerSpec
}

type fakeDispatcher struct {
	mu         sync.Mutex
	next       int
	scheduled  map[string]scheduledCall
	cancelled  []string
	permission constant.Permission
	failNext   bool
	failCancel bool
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{scheduled: map[string]scheduledCall{}, permission: constant.PermissionGranted}
}

func (d *fakeDispatcher) Schedule(_ context.Context, c entity.NotificationContent, t entity.TriggerSpec) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failNext {
		return "", errors.New("platform refused")
	}
	d.next++
	id := fmt.Sprintf("n-%d", d.next)
	d.scheduled[id] = scheduledCall{content: c, trigger: t}
	return id, nil
}

func (d *fakeDispatcher) Cancel(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelled = append(d.cancelled, id)
	delete(d.scheduled, id)
	if d.failCancel {
		return errors.New("cancel failed")
	}
	return nil
}

func (d *fakeDispatcher) QueryPermission(context.Context) constant.Permission {
	return d.permission
}

func (d *fakeDispatcher) active() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]string, 0, len(d.scheduled))
	for id := range d.scheduled {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type memNotificationRepo struct {
	mu   sync.Mutex
	rows map[string]*entity.ScheduledNotification
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{rows: map[string]*entity.ScheduledNotification{}}
}

func (r *memNotificationRepo) FindByID(_ context.Context, id string) (*entity.ScheduledNotification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.rows[id]
	if !ok {
		return nil, fmt.Errorf("notification with ID %s not found: %w", id, gorm.ErrRecordNotFound)
	}
	cp := *n
	return &cp, nil
}

func (r *memNotificationRepo) FindAll(context.Context) ([]*entity.ScheduledNotification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.ScheduledNotification, 0, len(r.rows))
	for _, n := range r.rows {
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memNotificationRepo) Create(_ context.Context, n *entity.ScheduledNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *n
	r.rows[n.ID] = &cp
	return nil
}

func (r *memNotificationRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *memNotificationRepo) DeleteOnceBefore(_ context.Context, threshold time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, row := range r.rows {
		if row.TriggerKind == entity.TriggerOnce && row.FireAt.Before(threshold) {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

func (r *memNotificationRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type fakeNotifier struct {
	mu         sync.Mutex
	delivered  []entity.NotificationContent
	permission constant.Permission
}

func (n *fakeNotifier) Notify(_ context.Context, c entity.NotificationContent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delivered = append(n.delivered, c)
	return nil
}

func (n *fakeNotifier) Permission(context.Context) constant.Permission {
	return n.permission
}
