package appointment

import (
	"errors"

	domain "github.com/BruksfildServices01/barber-agenda/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
)

// notFound turns a missing row into a 404 with code; other errors pass through.
func notFound(err error, code string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return httperr.ErrNotFound(code)
	}
	return err
}

// invalidRef is notFound for references carried in the request body.
func invalidRef(err error, code, message string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return httperr.ErrValidation(code, message)
	}
	return err
}
