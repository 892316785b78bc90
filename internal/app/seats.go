package app

import (
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/cinetix/reservation-core/api"
	"github.com/cinetix/reservation-core/internal/domain"
)

func (app *Application) GetSeatMap(w http.ResponseWriter, r *http.Request) {
	scheduleID := chi.URLParam(r, "scheduleID")

	logger := app.contextGetLogger(r)

	seatMap, err := app.snapshots.Load(r.Context(), scheduleID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			logger.Warn("seat map not found for schedule", "schedule_id", scheduleID)
			app.notFoundResponse(w, r)
			return
		}
		app.catalogErrorResponse(w, r, err)
		return
	}

	resp := toSeatMapResponse(seatMap)

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toSeatMapResponse(seatMap *domain.SeatMap) api.SeatMapResponse {
	available := 0
	for _, numbers := range seatMap.Free {
		available += len(numbers)
	}

	return api.SeatMapResponse{
		SessionId:      seatMap.SessionID,
		MovieId:        seatMap.Meta.MovieID,
		MovieTitle:     seatMap.Meta.MovieTitle,
		Date:           seatMap.Meta.Date,
		StartTime:      seatMap.Meta.StartTime,
		EndTime:        seatMap.Meta.EndTime,
		Theater:        seatMap.Meta.Theater,
		TotalSeats:     seatMap.TotalSeats(),
		AvailableSeats: available,
		SeatRows:       toSeatRows(seatMap),
	}
}

func toSeatRows(seatMap *domain.SeatMap) []api.SeatRow {
	seatRows := make([]api.SeatRow, 0, len(seatMap.Free))

	for _, row := range seatMap.Rows() {
		seatRow := api.SeatRow{Row: row}

		for _, n := range seatMap.Free[row] {
			id := domain.SeatID{Row: row, Number: n}
			seatRow.Seats = append(seatRow.Seats, api.Seat{Id: id.String(), Number: n, Available: true})
		}
		for _, n := range seatMap.Occupied[row] {
			id := domain.SeatID{Row: row, Number: n}
			seatRow.Seats = append(seatRow.Seats, api.Seat{Id: id.String(), Number: n, Available: false})
		}

		sort.Slice(seatRow.Seats, func(i, j int) bool {
			return seatRow.Seats[i].Number < seatRow.Seats[j].Number
		})

		seatRows = append(seatRows, seatRow)
	}

	return seatRows
}
