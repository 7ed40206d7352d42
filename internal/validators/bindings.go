package validators

import (
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/BruksfildServices01/barber-agenda/internal/domain/availability"
)

// RegisterBindings adds custom tags to gin's validator:
//
//	clock   "HH:MM" or "HH:MM:SS"
//	weekday 0 (Sunday) to 6
//
// Zone names use validator's built-in "timezone" tag.
func RegisterBindings() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return Register(v)
}

func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("clock", validateClock); err != nil {
		return err
	}
	return v.RegisterValidation("weekday", validateWeekday)
}

func validateClock(fl validator.FieldLevel) bool {
	_, ok := availability.ParseClock(fl.Field().String())
	return ok
}

func validateWeekday(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		d := fl.Field().Int()
		return d >= 0 && d <= 6
	}
	return false
}
