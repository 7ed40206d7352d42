package availability

import (
	"slices"
	"time"
)

// Interval is the half-open range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) IsEmpty() bool {
	return !i.Start.Before(i.End)
}

func (i Interval) Duration() time.Duration {
	if i.IsEmpty() {
		return 0
	}
	return i.End.Sub(i.Start)
}

// Overlaps is false whenever either side is zero-length.
func (i Interval) Overlaps(o Interval) bool {
	if i.IsEmpty() || o.IsEmpty() {
		return false
	}
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Contains reports whether o lies entirely inside i.
func (i Interval) Contains(o Interval) bool {
	return !o.Start.Before(i.Start) && !o.End.After(i.End) && !o.IsEmpty()
}

// Clip returns the part of i inside bounds, false when nothing is left.
func (i Interval) Clip(bounds Interval) (Interval, bool) {
	out := i
	if out.Start.Before(bounds.Start) {
		out.Start = bounds.Start
	}
	if out.End.After(bounds.End) {
		out.End = bounds.End
	}
	if out.IsEmpty() {
		return Interval{}, false
	}
	return out, true
}

// Subtract returns the ordered maximal pieces of a not covered by busy.
// busy may be unsorted and may overlap itself.
func Subtract(a Interval, busy []Interval) []Interval {
	if a.IsEmpty() {
		return nil
	}

	clipped := make([]Interval, 0, len(busy))
	for _, b := range busy {
		if c, ok := b.Clip(a); ok {
			clipped = append(clipped, c)
		}
	}
	sortByStart(clipped)

	var free []Interval
	cursor := a.Start
	for _, b := range clipped {
		if b.Start.After(cursor) {
			free = append(free, Interval{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(a.End) {
		free = append(free, Interval{Start: cursor, End: a.End})
	}

	return free
}

func sortByStart(xs []Interval) {
	slices.SortStableFunc(xs, func(a, b Interval) int {
		return a.Start.Compare(b.Start)
	})
}
