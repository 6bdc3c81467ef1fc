package utils

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func InitValidator() {
	Validate = validator.New()
	Validate.RegisterValidation("future-date", DateInFuture)
}

// DateInFuture accepts time.Time fields on or after today (date
// precision, UTC).
func DateInFuture(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return !t.Before(Today())
}
