package availability

import (
	"time"

	"github.com/google/uuid"
)

// Input carries everything needed to list a professional's free slots on
// one date. Date's location is the shop timezone.
type Input struct {
	Date           time.Time
	Schedule       Schedule
	ProfessionalID uuid.UUID
	Appointments   []AppointmentSpan
	TimeOff        []TimeOffSpan
	Duration       time.Duration
	Step           time.Duration // zero means Duration
	Policy         Policy
	NotBefore      time.Time // zero keeps every slot
}

// Compute resolves the open hours, collects busy time and generates the
// remaining slots. A closed day yields an empty list.
func Compute(in Input) ([]Slot, error) {
	step := in.Step
	if step == 0 {
		step = in.Duration
	}

	open, ok := in.Schedule.Resolve(in.Date)
	if !ok {
		open = Interval{}
	}

	busy := CollectBusy(DayWindow(in.Date), in.ProfessionalID, in.Appointments, in.TimeOff, in.Policy)

	slots, err := Generate(open, busy, in.Duration, step)
	if err != nil {
		return nil, err
	}

	if !in.NotBefore.IsZero() {
		slots = DropBefore(slots, in.NotBefore)
	}
	return slots, nil
}

// Admits reports whether candidate fits inside the open hours of its day
// without touching any busy interval.
func Admits(schedule Schedule, candidate Interval, busy []Interval) bool {
	open, ok := schedule.Resolve(candidate.Start)
	if !ok || !open.Contains(candidate) {
		return false
	}
	for _, b := range busy {
		if b.Overlaps(candidate) {
			return false
		}
	}
	return true
}
