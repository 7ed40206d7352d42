package appointment

import "github.com/BruksfildServices01/barber-agenda/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
}

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return st, nil
	}
	return "", httperr.ErrValidation("invalid_status", "Status inválido.")
}

func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Occupies reports whether an appointment in this status holds its
// interval on the professional's agenda.
func (s Status) Occupies(noShowBlocks bool) bool {
	switch s {
	case StatusCancelled:
		return false
	case StatusNoShow:
		return noShowBlocks
	default:
		return true
	}
}

// CanTransition follows the regular state machine, without admin override.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ===============================
// Validations
// ===============================

// CanCancel define se um agendamento pode ser cancelado
func CanCancel(current Status) error {
	if !CanTransition(current, StatusCancelled) {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// CanComplete define se um agendamento pode ser concluído
func CanComplete(current Status) error {
	if !CanTransition(current, StatusCompleted) {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func InitialStatus() Status {
	return StatusPending
}
