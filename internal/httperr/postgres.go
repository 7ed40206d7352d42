package httperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	sqlstateExclusionViolation = "23P01"
	sqlstateUniqueViolation    = "23505"

	NoOverlapConstraint = "appointments_no_overlap"
)

// IsExclusionConflict reports whether err comes from the appointment
// overlap exclusion constraint.
func IsExclusionConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == sqlstateExclusionViolation || pgErr.ConstraintName == NoOverlapConstraint
}

// IsUniqueViolation matches 23505, optionally for one constraint name.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != sqlstateUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
