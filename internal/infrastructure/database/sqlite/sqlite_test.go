package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"organizer/internal/domain/entity"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"), "silent")
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDB(db) })
	return db
}

func TestKVStore_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	store := NewKVStore(newTestDB(t))

	_, found, err := store.Get(ctx, "memo_1_notification")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Set(ctx, "memo_1_notification", "n-1"))
	v, found, err := store.Get(ctx, "memo_1_notification")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "n-1", v)

	require.NoError(t, store.Set(ctx, "memo_1_notification", "n-2"))
	v, _, err = store.Get(ctx, "memo_1_notification")
	require.NoError(t, err)
	require.Equal(t, "n-2", v)

	require.NoError(t, store.Remove(ctx, "memo_1_notification"))
	require.NoError(t, store.Remove(ctx, "memo_1_notification"))
	_, found, err = store.Get(ctx, "memo_1_notification")
	require.NoError(t, err)
	require.False(t, found)
}

func TestNotificationRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository(newTestDB(t))
	now := time.Now()

	past := &entity.ScheduledNotification{ID: "past", TriggerKind: entity.TriggerOnce, FireAt: now.Add(-time.Hour)}
	future := &entity.ScheduledNotification{ID: "future", TriggerKind: entity.TriggerOnce, FireAt: now.Add(time.Hour)}
	daily := &entity.ScheduledNotification{ID: "daily", TriggerKind: entity.TriggerDaily, Hour: 9}
	for _, n := range []*entity.ScheduledNotification{past, future, daily} {
		require.NoError(t, repo.Create(ctx, n))
	}

	got, err := repo.FindByID(ctx, "daily")
	require.NoError(t, err)
	require.Equal(t, entity.TriggerDaily, got.Trigger().Kind)
	require.Equal(t, 9, got.Trigger().Hour)

	deleted, err := repo.DeleteOnceBefore(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	require.NoError(t, repo.Delete(ctx, "future"))
	_, err = repo.FindByID(ctx, "future")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
