package timezone

import (
	"sync"
	"time"
)

const DefaultTimezone = "America/Sao_Paulo"

var (
	mu          sync.RWMutex
	fallbackTZ  = DefaultTimezone
	locationsMu sync.Mutex
	locations   = map[string]*time.Location{}
)

// SetDefault changes the zone used when a shop has none or an invalid one.
func SetDefault(tz string) {
	if !IsValid(tz) {
		return
	}
	mu.Lock()
	fallbackTZ = tz
	mu.Unlock()
}

func Default() string {
	mu.RLock()
	defer mu.RUnlock()
	return fallbackTZ
}

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := load(tz)
	return err == nil
}

func load(tz string) (*time.Location, error) {
	locationsMu.Lock()
	defer locationsMu.Unlock()

	if loc, ok := locations[tz]; ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, err
	}
	locations[tz] = loc
	return loc, nil
}

// Location resolves tz, falling back to the default zone and then UTC.
func Location(tz string) *time.Location {
	if loc, err := load(tz); err == nil && tz != "" {
		return loc
	}
	if loc, err := load(Default()); err == nil {
		return loc
	}
	return time.UTC
}

func Now() time.Time {
	return time.Now().In(Location(Default()))
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}

// ParseDate reads "2006-01-02" as local midnight in tz.
func ParseDate(tz, date string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", date, Location(tz))
}

// ParseDateTime reads a date and a "15:04" time in tz.
func ParseDateTime(tz, date, clock string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", date+" "+clock, Location(tz))
}

// DayBounds is [00:00, next day 00:00) of t's calendar day in t's location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

func MonthBounds(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}
