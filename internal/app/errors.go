package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/cinetix/reservation-core/api"
	"github.com/cinetix/reservation-core/internal/domain"
	appvalidator "github.com/cinetix/reservation-core/internal/validator"
)

const (
	ErrInternalServer     = "The server encountered a problem and could not process your request"
	ErrNotFound           = "The requested resource not found"
	ErrServiceUnavailable = "Reservation data is temporarily unavailable, try again later"
)

func (app *Application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.Error(err.Error(), "method", method, "uri", uri)
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *Application) dataUnavailableResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusServiceUnavailable, ErrServiceUnavailable)
}

func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		app.serverErrorResponse(w, r, err)
		return
	}

	fieldErrors := make([]api.ValidationError, len(validationErrors))
	for i, fieldError := range validationErrors {
		fieldErrors[i] = api.ValidationError{
			Field: fieldError.Field(),
			Issue: appvalidator.ValidationMessage(fieldError),
		}
	}

	resp := api.ValidationErrorResponse{
		Message:          "Request validation failed",
		ValidationErrors: fieldErrors,
	}

	writeErr := app.writeJSON(w, http.StatusUnprocessableEntity, resp, nil)
	if writeErr != nil {
		app.logError(r, writeErr)
		w.WriteHeader(500)
	}
}

func (app *Application) partialCommitResponse(w http.ResponseWriter, r *http.Request, partial *domain.PartialCommitError) {
	app.logError(r, partial)

	resp := api.PartialCommitResponse{
		Message:       "The reservation was recorded but publishing the seat map failed; check the reservation before retrying",
		ReservationId: partial.ReservationID,
		RequestId:     middleware.GetReqID(r.Context()),
		Timestamp:     time.Now(),
	}

	err := app.writeJSON(w, http.StatusInternalServerError, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

// catalogErrorResponse maps catalog read failures to HTTP statuses.
func (app *Application) catalogErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		app.notFoundResponse(w, r)
	case errors.Is(err, domain.ErrDataUnavailable):
		app.dataUnavailableResponse(w, r, err)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

// reservationErrorResponse maps reservation engine failures to HTTP statuses.
func (app *Application) reservationErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var (
		conflict   *domain.SeatConflictError
		notInUni   *domain.SeatNotInSessionError
		partial    *domain.PartialCommitError
		quarantine *domain.InconsistencyError
	)

	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		app.notFoundResponse(w, r)
	case errors.As(err, &conflict):
		app.errorResponse(w, r, http.StatusConflict, conflict.Error())
	case errors.As(err, &notInUni):
		app.errorResponse(w, r, http.StatusUnprocessableEntity, notInUni.Error())
	case errors.As(err, &partial):
		app.partialCommitResponse(w, r, partial)
	case errors.As(err, &quarantine):
		app.errorResponse(w, r, http.StatusServiceUnavailable, quarantine.Error())
	case errors.Is(err, domain.ErrDataUnavailable):
		app.dataUnavailableResponse(w, r, err)
	default:
		app.serverErrorResponse(w, r, err)
	}
}
