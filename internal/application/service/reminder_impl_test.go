package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"organizer/internal/domain/constant"
	"organizer/internal/domain/entity"
	appErrors "organizer/internal/pkg/errors"
	"organizer/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestReminderService(t *testing.T) (*reminderService, *memStore, *fakeDispatcher) {
	t.Helper()
	store := newMemStore()
	dispatcher := newFakeDispatcher()
	svc := NewReminderService(store, dispatcher, DefaultPolicy(), time.UTC, logger.NewNop()).(*reminderService)
	svc.now = func() time.Time { return testNow }
	return svc, store, dispatcher
}

func memoRequest(anchor time.Time) entity.ReminderRequest {
	return entity.ReminderRequest{
		EntityKind: constant.KindMemo,
		EntityID:   "42",
		Title:      "Buy milk",
		Body:       "2 litres",
		Anchor:     anchor,
		Recurrence: constant.RecurrenceNone,
		Offset:     constant.OffsetNone,
	}
}

func TestSubmit_SchedulesAndStores(t *testing.T) {
	svc, store, dispatcher := newTestReminderService(t)
	ctx := context.Background()

	req := memoRequest(time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC))
	req.Offset = constant.Offset1Hour

	id, err := svc.Submit(ctx, req)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	call := dispatcher.scheduled[id]
	require.Equal(t, entity.TriggerOnce, call.trigger.Kind)
	require.True(t, time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC).Equal(call.trigger.At))
	require.Equal(t, "Buy milk", call.content.Title)
	require.Equal(t, map[string]string{"entityKind": "memo", "entityId": "42"}, call.content.Data)

	stored, found, _ := store.Get(ctx, "memo_42_notification")
	require.True(t, found)
	require.Equal(t, id, stored)
}

func TestSubmit_AllDayWithoutOffsetUsesNineAM(t *testing.T) {
	svc, _, dispatcher := newTestReminderService(t)
	ctx := context.Background()

	req := memoRequest(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	req.AllDay = true

	id, err := svc.Submit(ctx, req)
	require.NoError(t, err)
	require.True(t, time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC).Equal(dispatcher.scheduled[id].trigger.At))

	req.Offset = constant.OffsetAtTime
	id, err = svc.Submit(ctx, req)
	require.NoError(t, err)
	require.True(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC).Equal(dispatcher.scheduled[id].trigger.At))

	req.AllDay, req.Offset = false, constant.OffsetNone
	id, err = svc.Submit(ctx, req)
	require.NoError(t, err)
	require.True(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC).Equal(dispatcher.scheduled[id].trigger.At))
}

func TestSubmit_RejectsInsideMinimumLead(t *testing.T) {
	for _, anchor := range []time.Time{
		testNow.Add(-time.Hour),
		testNow,
		testNow.Add(4 * time.Second),
	} {
		svc, store, dispatcher := newTestReminderService(t)
		id, err := svc.Submit(context.Background(), memoRequest(anchor))
		require.ErrorIs(t, err, appErrors.ErrPastTime)
		require.Empty(t, id)
		require.Zero(t, store.sets, "no store write expected")
		require.Empty(t, dispatcher.active())
	}

	svc, _, _ := newTestReminderService(t)
	id, err := svc.Submit(context.Background(), memoRequest(testNow.Add(5*time.Second)))
	require.NoError(t, err)
	require.NotEmpty(t, id)
}

func TestSubmit_RecurringIgnoresPastAnchor(t *testing.T) {
	svc, _, dispatcher := newTestReminderService(t)

	req := memoRequest(time.Date(2025, 5, 27, 9, 0, 0, 0, time.UTC)) // Tuesday, in the past
	req.EntityKind = constant.KindChallenge
	req.Recurrence = constant.ParseRecurrence("every_week")

	id, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, entity.TriggerSpec{Kind: entity.TriggerWeekly, Weekday: 3, Hour: 9}, dispatcher.scheduled[id].trigger)
}

func TestSubmit_ReplacesPreviousReminder(t *testing.T) {
	svc, store, dispatcher := newTestReminderService(t)
	ctx := context.Background()
	req := memoRequest(testNow.Add(time.Hour))

	first, err := svc.Submit(ctx, req)
	require.NoError(t, err)
	req.Anchor = testNow.Add(2 * time.Hour)
	second, err := svc.Submit(ctx, req)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.Contains(t, dispatcher.cancelled, first)
	require.Equal(t, []string{second}, dispatcher.active())

	stored, _, _ := store.Get(ctx, SingleKey(constant.KindMemo, "42"))
	require.Equal(t, second, stored)
}

func TestSubmit_CategoryDisabled(t *testing.T) {
	svc, store, dispatcher := newTestReminderService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetCategoryEnabled(ctx, constant.KindMemo, false))
	writes := store.sets

	_, err := svc.Submit(ctx, memoRequest(testNow.Add(time.Hour)))
	require.ErrorIs(t, err, appErrors.ErrCategoryDisabled)
	require.Equal(t, writes, store.sets)
	require.Empty(t, dispatcher.active())

	enabled, err := svc.CategoryEnabled(ctx, constant.KindEvent)
	require.NoError(t, err)
	require.True(t, enabled)
}

func TestSubmit_PermissionDenied(t *testing.T) {
	svc, _, dispatcher := newTestReminderService(t)
	dispatcher.permission = constant.PermissionDenied

	_, err := svc.Submit(context.Background(), memoRequest(testNow.Add(time.Hour)))
	require.ErrorIs(t, err, appErrors.ErrPermissionDenied)
	require.Equal(t, constant.PermissionDenied, svc.Permission(context.Background()))
}

func TestSubmit_DispatchFailureLeavesNoMapping(t *testing.T) {
	svc, store, dispatcher := newTestReminderService(t)
	dispatcher.failNext = true

	id, err := svc.Submit(context.Background(), memoRequest(testNow.Add(time.Hour)))
	require.ErrorIs(t, err, appErrors.ErrDispatch)
	require.Empty(t, id)
	require.Empty(t, store.data)
}

func TestSubmit_StoreFailureRollsBack(t *testing.T) {
	svc, store, dispatcher := newTestReminderService(t)
	store.failSet = true

	_, err := svc.Submit(context.Background(), memoRequest(testNow.Add(time.Hour)))
	require.ErrorIs(t, err, appErrors.ErrStorage)
	require.Empty(t, dispatcher.active())
	require.Len(t, dispatcher.cancelled, 1)
}

func TestSubmit_InvalidRequest(t *testing.T) {
	svc, _, _ := newTestReminderService(t)
	ctx := context.Background()

	req := memoRequest(testNow.Add(time.Hour))
	req.EntityID = ""
	_, err := svc.Submit(ctx, req)
	require.ErrorIs(t, err, appErrors.ErrInvalidRequest)

	req = memoRequest(testNow.Add(time.Hour))
	req.EntityKind = "todo"
	_, err = svc.Submit(ctx, req)
	require.ErrorIs(t, err, appErrors.ErrInvalidRequest)

	req = memoRequest(time.Time{})
	_, err = svc.Submit(ctx, req)
	require.ErrorIs(t, err, appErrors.ErrInvalidRequest)
}

func TestCancel_IsIdempotent(t *testing.T) {
	svc, store, dispatcher := newTestReminderService(t)
	ctx := context.Background()

	id, err := svc.Submit(ctx, memoRequest(testNow.Add(time.Hour)))
	require.NoError(t, err)

	svc.Cancel(ctx, constant.KindMemo, "42")
	require.Empty(t, store.data)
	require.Equal(t, []string{id}, dispatcher.cancelled)

	svc.Cancel(ctx, constant.KindMemo, "42")
	require.Empty(t, store.data)
	require.Equal(t, []string{id}, dispatcher.cancelled)

	_, err = svc.Lookup(ctx, constant.KindMemo, "42")
	require.ErrorIs(t, err, appErrors.ErrReminderNotFound)
}

func TestCancel_SwallowsDispatcherErrors(t *testing.T) {
	svc, store, dispatcher := newTestReminderService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, memoRequest(testNow.Add(time.Hour)))
	require.NoError(t, err)
	dispatcher.failCancel = true

	svc.Cancel(ctx, constant.KindMemo, "42")
	require.Empty(t, store.data)
}

func eventRequest() entity.ReminderRequest {
	return entity.ReminderRequest{
		EntityKind: constant.KindEvent,
		EntityID:   "e1",
		Title:      "Dentist",
		Anchor:     time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC),
	}
}

func TestSubmitAll_StoresList(t *testing.T) {
	svc, store, dispatcher := newTestReminderService(t)
	ctx := context.Background()

	ids, err := svc.SubmitAll(ctx, eventRequest(), []constant.Offset{constant.Offset1Day, constant.Offset1Hour})
	require.NoError(t, err)
	require.Len(t, ids, 2)

	raw, found, _ := store.Get(ctx, ListKey(constant.KindEvent, "e1"))
	require.True(t, found)
	var stored []string
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	require.Equal(t, ids, stored)

	require.True(t, time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC).Equal(dispatcher.scheduled[ids[0]].trigger.At))
	require.True(t, time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC).Equal(dispatcher.scheduled[ids[1]].trigger.At))

	got, err := svc.Lookup(ctx, constant.KindEvent, "e1")
	require.NoError(t, err)
	require.Equal(t, ids, got.NotificationIDs)

	svc.Cancel(ctx, constant.KindEvent, "e1")
	require.ElementsMatch(t, ids, dispatcher.cancelled)
	require.Empty(t, dispatcher.active())
	require.Empty(t, store.data)
}

func TestSubmitAll_ReplacesSingleAndList(t *testing.T) {
	svc, _, dispatcher := newTestReminderService(t)
	ctx := context.Background()

	single := eventRequest()
	first, err := svc.Submit(ctx, single)
	require.NoError(t, err)

	ids, err := svc.SubmitAll(ctx, eventRequest(), []constant.Offset{constant.Offset30Minutes})
	require.NoError(t, err)
	require.Contains(t, dispatcher.cancelled, first)
	require.Equal(t, ids, dispatcher.active())
}

func TestSubmitAll_SkipsPastOffsets(t *testing.T) {
	svc, _, _ := newTestReminderService(t)
	req := eventRequest()
	req.Anchor = testNow.Add(2 * time.Hour)

	ids, err := svc.SubmitAll(context.Background(), req, []constant.Offset{constant.Offset1Day, constant.Offset1Hour})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	req.Anchor = testNow.Add(time.Minute)
	ids, err = svc.SubmitAll(context.Background(), req, []constant.Offset{constant.Offset1Day, constant.Offset1Hour})
	require.ErrorIs(t, err, appErrors.ErrPastTime)
	require.Empty(t, ids)
}

func TestSubmitAll_Validation(t *testing.T) {
	svc, _, _ := newTestReminderService(t)
	ctx := context.Background()

	_, err := svc.SubmitAll(ctx, eventRequest(), nil)
	require.ErrorIs(t, err, appErrors.ErrInvalidRequest)

	three := []constant.Offset{constant.Offset5Minutes, constant.Offset10Minutes, constant.Offset15Minutes}
	_, err = svc.SubmitAll(ctx, eventRequest(), three)
	require.ErrorIs(t, err, appErrors.ErrInvalidRequest)

	memo := eventRequest()
	memo.EntityKind = constant.KindMemo
	_, err = svc.SubmitAll(ctx, memo, []constant.Offset{constant.Offset5Minutes})
	require.ErrorIs(t, err, appErrors.ErrInvalidRequest)
}

func TestScheduleFestival(t *testing.T) {
	svc, store, dispatcher := newTestReminderService(t)
	ctx := context.Background()

	svc.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }
	id, err := svc.ScheduleFestival(ctx, entity.Festival{ID: "spring", Name: "Spring Festival", Date: "2025-03-25"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	call := dispatcher.scheduled[id]
	require.Equal(t, entity.TriggerOnce, call.trigger.Kind)
	require.True(t, time.Date(2025, 3, 25, 9, 0, 0, 0, time.UTC).Equal(call.trigger.At))
	require.Equal(t, "Spring Festival", call.content.Title)

	stored, _, _ := store.Get(ctx, SingleKey(constant.KindFestival, "spring"))
	require.Equal(t, id, stored)
}

func TestScheduleFestival_PastIsSkipped(t *testing.T) {
	svc, store, dispatcher := newTestReminderService(t)

	svc.now = func() time.Time { return time.Date(2025, 3, 26, 0, 0, 0, 0, time.UTC) }
	id, err := svc.ScheduleFestival(context.Background(), entity.Festival{ID: "spring", Date: "2025-03-25"})
	require.NoError(t, err)
	require.Empty(t, id)
	require.Empty(t, dispatcher.active())
	require.Empty(t, store.data)

	svc.now = func() time.Time { return time.Date(2025, 3, 25, 9, 0, 0, 0, time.UTC) }
	id, err = svc.ScheduleFestival(context.Background(), entity.Festival{ID: "spring", Date: "2025-03-25"})
	require.NoError(t, err)
	require.Empty(t, id)
}

func TestScheduleFestival_InvalidDate(t *testing.T) {
	svc, _, _ := newTestReminderService(t)
	_, err := svc.ScheduleFestival(context.Background(), entity.Festival{ID: "x", Date: "March 25"})
	require.ErrorIs(t, err, appErrors.ErrInvalidDateTime)
}

func TestMinimumStartTime(t *testing.T) {
	svc, _, _ := newTestReminderService(t)

	assert.True(t, testNow.Add(10*time.Minute).Equal(svc.MinimumStartTime()))
	assert.NoError(t, svc.ValidateStartTime(testNow.Add(10*time.Minute)))
	assert.ErrorIs(t, svc.ValidateStartTime(testNow.Add(9*time.Minute)), appErrors.ErrPastTime)
}

func TestCategoryEnabled_InvalidFlagTreatedAsEnabled(t *testing.T) {
	svc, store, _ := newTestReminderService(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "notifications_enabled_diary", "maybe"))

	enabled, err := svc.CategoryEnabled(ctx, constant.KindDiary)
	require.NoError(t, err)
	require.True(t, enabled)
}
