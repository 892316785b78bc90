// Package validator configures request validation for the transport layer.
// Parameter syntax (date patterns, seat-id patterns, length limits) is
// checked here, before the reservation engine is ever invoked.
package validator

import (
	"fmt"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

var seatIDRgx = regexp.MustCompile(`^[A-Z][0-9]+$`)

func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterValidation("seat_id", validateSeatID)
	validate.RegisterValidation("show_date", validateShowDate)

	return validate
}

func validateSeatID(fl validator.FieldLevel) bool {
	return seatIDRgx.MatchString(fl.Field().String())
}

func validateShowDate(fl validator.FieldLevel) bool {
	date := fl.Field().String()
	if date == "" {
		return true
	}

	_, err := time.Parse("2006-01-02", date)

	return err == nil
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s items", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", err.Param())
	case "unique":
		return "must not contain duplicates"
	case "seat_id":
		return "must be an uppercase row letter followed by a seat number (e.g. A1)"
	case "show_date":
		return "must be a date in YYYY-MM-DD format"
	default:
		return "is invalid"
	}
}
