package availability

import (
	"time"
)

// DayHours is one weekday row of a weekly schedule. Times are local
// wall clock, "15:04" or "15:04:05".
type DayHours struct {
	Weekday   int
	Closed    bool
	StartTime *string
	EndTime   *string
}

type Schedule []DayHours

var clockLayouts = []string{"15:04", "15:04:05"}

// ParseClock parses a wall-clock time into an offset from midnight.
func ParseClock(s string) (time.Duration, bool) {
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, true
		}
	}
	return 0, false
}

// DayWindow is [00:00, next day 00:00) of date's calendar day in date's
// location. AddDate keeps it correct across DST changes.
func DayWindow(date time.Time) Interval {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	return Interval{Start: start, End: start.AddDate(0, 0, 1)}
}

// Resolve returns the open interval of date's calendar day, in date's
// location. A missing row, a closed day, missing or unparsable times and
// start >= end all resolve to closed.
func (s Schedule) Resolve(date time.Time) (Interval, bool) {
	weekday := int(date.Weekday())

	for _, row := range s {
		if row.Weekday != weekday {
			continue
		}
		// primeira linha vence
		return row.interval(date)
	}

	return Interval{}, false
}

func (row DayHours) interval(date time.Time) (Interval, bool) {
	if row.Closed || row.StartTime == nil || row.EndTime == nil {
		return Interval{}, false
	}

	open, ok1 := ParseClock(*row.StartTime)
	closeAt, ok2 := ParseClock(*row.EndTime)
	if !ok1 || !ok2 || open >= closeAt {
		return Interval{}, false
	}

	y, m, d := date.Date()
	loc := date.Location()

	start := wallClock(y, m, d, open, loc)
	end := wallClock(y, m, d, closeAt, loc)
	if !start.Before(end) {
		return Interval{}, false
	}

	return Interval{Start: start, End: end}, true
}

// wallClock is the local time off after midnight on the given day.
func wallClock(y int, m time.Month, d int, off time.Duration, loc *time.Location) time.Time {
	h := int(off / time.Hour)
	mi := int((off % time.Hour) / time.Minute)
	s := int((off % time.Minute) / time.Second)
	return time.Date(y, m, d, h, mi, s, 0, loc)
}
