// Package api defines the request and response types of the HTTP API.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	ValidationErrors []ValidationError `json:"validation_errors"`
}

// PartialCommitResponse reports a reservation that was durably recorded but
// whose seat map publish did not complete. The reservation id lets the client
// poll for the outcome instead of blindly retrying.
type PartialCommitResponse struct {
	Message       string    `json:"message"`
	ReservationId string    `json:"reservation_id"`
	RequestId     string    `json:"request_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"system_info"`
}

type GetMoviesParams struct {
	Date  *string `validate:"omitempty,show_date"`
	Term  *string `validate:"omitempty,max=100"`
	Genre *string `validate:"omitempty,max=50"`
}

type MovieResponse struct {
	Id              string `json:"movie_id"`
	Title           string `json:"title"`
	Genre           string `json:"genre"`
	Description     string `json:"description,omitempty"`
	DurationMinutes int    `json:"duration_minutes"`
}

type MovieListResponse struct {
	Movies []MovieResponse `json:"movies"`
}

type GetSchedulesParams struct {
	MovieId *string
	Date    *string `validate:"omitempty,show_date"`
}

type ScheduleResponse struct {
	Id        string          `json:"schedule_id"`
	MovieId   string          `json:"movie_id"`
	Date      string          `json:"date"`
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
	Theater   string          `json:"theater"`
	BasePrice decimal.Decimal `json:"base_price"`
}

type ScheduleListResponse struct {
	Schedules []ScheduleResponse `json:"schedules"`
}

type Seat struct {
	Id        string `json:"seat_id"`
	Number    int    `json:"number"`
	Available bool   `json:"available"`
}

type SeatRow struct {
	Row   string `json:"row"`
	Seats []Seat `json:"seats"`
}

type SeatMapResponse struct {
	SessionId      string    `json:"session_id"`
	MovieId        string    `json:"movie_id"`
	MovieTitle     string    `json:"movie_title"`
	Date           string    `json:"date"`
	StartTime      string    `json:"start_time"`
	EndTime        string    `json:"end_time"`
	Theater        string    `json:"theater"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	SeatRows       []SeatRow `json:"seat_rows"`
}

type CreateReservationRequest struct {
	SessionId string   `json:"session_id" validate:"required"`
	SeatIds   []string `json:"seat_ids" validate:"required,min=1,max=16,unique,dive,seat_id"`
}

type ReservationResponse struct {
	ReservationId string    `json:"reservation_id"`
	SessionId     string    `json:"session_id"`
	SeatIds       []string  `json:"seat_ids"`
	CreatedAt     time.Time `json:"created_at"`
	Status        string    `json:"status"`
}

type SessionReconciliation struct {
	SessionId     string   `json:"session_id"`
	Status        string   `json:"status"`
	RepairedSeats []string `json:"repaired_seats,omitempty"`
	IncidentId    string   `json:"incident_id,omitempty"`
	Details       string   `json:"details,omitempty"`
}

type ReconciliationResponse struct {
	Sessions       []SessionReconciliation `json:"sessions"`
	Repaired       int                     `json:"repaired"`
	Inconsistent   int                     `json:"inconsistent"`
	LedgerTornTail bool                    `json:"ledger_torn_tail"`
}
