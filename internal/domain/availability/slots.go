package availability

import (
	"time"

	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
)

type Slot struct {
	Start time.Time `json:"slot_start"`
	End   time.Time `json:"slot_end"`
}

func (s Slot) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}

// Generate emits [t, t+duration) candidates inside open minus busy,
// advancing t by step from the start of each free piece.
func Generate(open Interval, busy []Interval, duration, step time.Duration) ([]Slot, error) {
	if duration <= 0 {
		return nil, httperr.ErrValidation("invalid_duration", "Duração deve ser positiva.")
	}
	if step <= 0 {
		return nil, httperr.ErrValidation("invalid_step", "Intervalo entre horários deve ser positivo.")
	}

	slots := []Slot{}
	for _, free := range Subtract(open, busy) {
		for t := free.Start; !t.Add(duration).After(free.End); t = t.Add(step) {
			slots = append(slots, Slot{Start: t, End: t.Add(duration)})
		}
	}

	return slots, nil
}

// DropBefore removes slots starting before notBefore.
func DropBefore(slots []Slot, notBefore time.Time) []Slot {
	out := slots[:0:0]
	for _, s := range slots {
		if s.Start.Before(notBefore) {
			continue
		}
		out = append(out, s)
	}
	return out
}
