package availability

import (
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barber-agenda/internal/domain/appointment"
)

// AppointmentSpan is the part of an appointment the aggregator needs.
type AppointmentSpan struct {
	ProfessionalID uuid.UUID
	Start          time.Time
	End            time.Time
	Status         appointment.Status
}

// TimeOffSpan blocks a professional, or the whole shop when ProfessionalID is nil.
type TimeOffSpan struct {
	ProfessionalID *uuid.UUID
	Start          time.Time
	End            time.Time
}

type Policy struct {
	NoShowBlocks bool
}

func DefaultPolicy() Policy {
	return Policy{NoShowBlocks: true}
}

// CollectBusy gathers the professional's busy intervals inside window,
// sorted by start. Overlapping entries are not merged.
func CollectBusy(
	window Interval,
	professionalID uuid.UUID,
	appointments []AppointmentSpan,
	timeOff []TimeOffSpan,
	policy Policy,
) []Interval {

	busy := make([]Interval, 0, len(appointments)+len(timeOff))

	for _, ap := range appointments {
		if ap.ProfessionalID != professionalID {
			continue
		}
		if !ap.Status.Occupies(policy.NoShowBlocks) {
			continue
		}
		if c, ok := (Interval{Start: ap.Start, End: ap.End}).Clip(window); ok {
			busy = append(busy, c)
		}
	}

	for _, off := range timeOff {
		if off.ProfessionalID != nil && *off.ProfessionalID != professionalID {
			continue
		}
		if c, ok := (Interval{Start: off.Start, End: off.End}).Clip(window); ok {
			busy = append(busy, c)
		}
	}

	sortByStart(busy)
	return busy
}
