package app

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cinetix/reservation-core/api"
	"github.com/cinetix/reservation-core/internal/domain"
	"github.com/cinetix/reservation-core/internal/engine"
)

func (app *Application) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var input api.CreateReservationRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	seats, err := domain.ParseSeatIDs(input.SeatIds)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	logger := app.contextGetLogger(r)

	record, err := app.engine.Reserve(r.Context(), input.SessionId, seats)
	if err != nil {
		app.reservationErrorResponse(w, r, err)
		return
	}

	logger.Info("reservation created",
		"reservation_id", record.ID, "session_id", record.SessionID, "seats", len(record.SeatIDs))

	resp := toReservationResponse(record)

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetReservation(w http.ResponseWriter, r *http.Request) {
	reservationID := chi.URLParam(r, "reservationID")

	record, err := app.ledger.FindByID(r.Context(), reservationID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrDataUnavailable):
			app.dataUnavailableResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	resp := toReservationResponse(record)

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) RunReconciliation(w http.ResponseWriter, r *http.Request) {
	report, err := app.reconciler.Run(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrDataUnavailable) {
			app.dataUnavailableResponse(w, r, err)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := toReconciliationResponse(report)

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toReservationResponse(record *domain.ReservationRecord) api.ReservationResponse {
	return api.ReservationResponse{
		ReservationId: record.ID,
		SessionId:     record.SessionID,
		SeatIds:       record.SeatIDs,
		CreatedAt:     record.CreatedAt,
		Status:        string(record.Status),
	}
}

func toReconciliationResponse(report *engine.Report) api.ReconciliationResponse {
	sessions := make([]api.SessionReconciliation, len(report.Sessions))

	for i, session := range report.Sessions {
		sessions[i] = api.SessionReconciliation{
			SessionId:     session.SessionID,
			Status:        string(session.Status),
			RepairedSeats: session.RepairedSeats,
			IncidentId:    session.IncidentID,
			Details:       session.Details,
		}
	}

	return api.ReconciliationResponse{
		Sessions:       sessions,
		Repaired:       report.Repaired,
		Inconsistent:   report.Inconsistent,
		LedgerTornTail: report.TornTail,
	}
}
