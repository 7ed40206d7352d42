package appointment

import (
	"time"

	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Cancel(ap *models.Appointment, now time.Time) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCancelled)
	ap.CancelledAt = &now
	return nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if err := CanComplete(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCompleted)
	ap.CompletedAt = &now
	return nil
}

// ChangeStatus applies a transition. With override any target is accepted;
// the overlap rule is still checked when the row is saved.
func ChangeStatus(ap *models.Appointment, to Status, now time.Time, override bool) error {
	from := Status(ap.Status)
	if from == to {
		return httperr.ErrBusiness("invalid_state")
	}
	if !override && !CanTransition(from, to) {
		return httperr.ErrBusiness("invalid_transition")
	}

	ap.Status = string(to)

	switch to {
	case StatusCancelled:
		ap.CancelledAt = &now
	case StatusCompleted:
		ap.CompletedAt = &now
	}
	if from == StatusCancelled {
		ap.CancelledAt = nil
	}
	if from == StatusCompleted {
		ap.CompletedAt = nil
	}

	return nil
}

// Reopens reports whether moving from -> to makes the row occupy its
// interval again.
func Reopens(from, to Status, noShowBlocks bool) bool {
	return !from.Occupies(noShowBlocks) && to.Occupies(noShowBlocks)
}

// EndFromServices is start plus the sum of the service durations, or plus
// fallback when there are none.
func EndFromServices(start time.Time, services []models.Service, fallback time.Duration) time.Time {
	if len(services) == 0 {
		return start.Add(fallback)
	}
	total := 0
	for _, s := range services {
		total += s.DurationMinutes
	}
	return start.Add(time.Duration(total) * time.Minute)
}
