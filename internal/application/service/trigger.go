package service

import (
	"time"

	"organizer/internal/domain/constant"
	"organizer/internal/domain/entity"
)

// reminderHour is the fixed time of day used by the "9am" offsets and festivals.
const reminderHour = 9

// ComputeTriggerTime applies offset to anchor. Unknown offsets return anchor
// unchanged. The result is a pure function of its inputs.
func ComputeTriggerTime(anchor time.Time, offset constant.Offset) time.Time {
	switch offset {
	case constant.OffsetNone, constant.OffsetAtTime, "":
		return anchor
	case constant.Offset5Minutes:
		return anchor.Add(-5 * time.Minute)
	case constant.Offset10Minutes:
		return anchor.Add(-10 * time.Minute)
	case constant.Offset15Minutes:
		return anchor.Add(-15 * time.Minute)
	case constant.Offset30Minutes:
		return anchor.Add(-30 * time.Minute)
	case constant.Offset1Hour:
		return anchor.Add(-time.Hour)
	case constant.Offset1Day:
		return anchor.AddDate(0, 0, -1)
	case constant.OffsetOnDay9AM:
		return atNineAM(anchor, 0)
	case constant.OffsetDayBefore9AM:
		return atNineAM(anchor, 1)
	case constant.Offset2DaysBefore9AM:
		return atNineAM(anchor, 2)
	case constant.Offset1WeekBefore9AM:
		return atNineAM(anchor, 7)
	case constant.Offset2WeeksBefore9AM:
		return atNineAM(anchor, 14)
	}
	return anchor
}

// atNineAM returns 09:00:00 on the calendar day daysBefore days before t's date.
func atNineAM(t time.Time, daysBefore int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d-daysBefore, reminderHour, 0, 0, 0, t.Location())
}

// BuildTrigger turns an adjusted time into a TriggerSpec for recurrence.
// Repeating patterns take their calendar fields from adjusted, which is the
// first occurrence.
func BuildTrigger(adjusted time.Time, recurrence constant.Recurrence) entity.TriggerSpec {
	spec := entity.TriggerSpec{
		Hour:   adjusted.Hour(),
		Minute: adjusted.Minute(),
	}
	switch recurrence {
	case constant.RecurrenceDaily:
		spec.Kind = entity.TriggerDaily
	case constant.RecurrenceWeekly:
		spec.Kind = entity.TriggerWeekly
		spec.Weekday = int(adjusted.Weekday()) + 1
	case constant.RecurrenceMonthly:
		// Days past the end of a shorter month do not fire that month.
		spec.Kind = entity.TriggerMonthly
		spec.Day = adjusted.Day()
	case constant.RecurrenceYearly:
		spec.Kind = entity.TriggerYearly
		spec.Month = int(adjusted.Month())
		spec.Day = adjusted.Day()
	default:
		return entity.TriggerSpec{Kind: entity.TriggerOnce, At: adjusted, Hour: spec.Hour, Minute: spec.Minute}
	}
	return spec
}

// FestivalTime returns 09:00 local time on the festival date (YYYY-MM-DD).
func FestivalTime(date string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return atNineAM(d, 0), nil
}
