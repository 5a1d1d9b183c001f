package constant

// Offset is the lead-time key chosen for a reminder. Unknown keys are kept
// as-is and mean "no adjustment".
type Offset string

const (
	OffsetNone            Offset = "none"
	OffsetAtTime          Offset = "at_time"
	Offset5Minutes        Offset = "5min"
	Offset10Minutes       Offset = "10min"
	Offset15Minutes       Offset = "15min"
	Offset30Minutes       Offset = "30min"
	Offset1Hour           Offset = "1hour"
	Offset1Day            Offset = "1day"
	OffsetOnDay9AM        Offset = "on_day_9am"
	OffsetDayBefore9AM    Offset = "day_before_9am"
	Offset2DaysBefore9AM  Offset = "2_days_before_9am"
	Offset1WeekBefore9AM  Offset = "1_week_before_9am"
	Offset2WeeksBefore9AM Offset = "2_weeks_before_9am"
)

// Offsets lists every offset key with a defined adjustment.
var Offsets = []Offset{
	OffsetNone, OffsetAtTime,
	Offset5Minutes, Offset10Minutes, Offset15Minutes, Offset30Minutes,
	Offset1Hour, Offset1Day,
	OffsetOnDay9AM, OffsetDayBefore9AM, Offset2DaysBefore9AM,
	Offset1WeekBefore9AM, Offset2WeeksBefore9AM,
}
