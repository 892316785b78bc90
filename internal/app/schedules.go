package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cinetix/reservation-core/api"
	"github.com/cinetix/reservation-core/internal/domain"
)

func (app *Application) GetSchedules(w http.ResponseWriter, r *http.Request) {
	params := parseGetSchedulesParams(r)

	err := app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	schedules, err := app.catalog.GetSchedules(r.Context(), toScheduleFilters(params))
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	resp := api.ScheduleListResponse{
		Schedules: toScheduleResponses(schedules),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetScheduleById(w http.ResponseWriter, r *http.Request) {
	scheduleID := chi.URLParam(r, "scheduleID")

	schedule, err := app.catalog.GetScheduleById(r.Context(), scheduleID)
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	resp := toScheduleResponse(*schedule)

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func parseGetSchedulesParams(r *http.Request) api.GetSchedulesParams {
	params := api.GetSchedulesParams{}

	if movieID := r.URL.Query().Get("movie_id"); movieID != "" {
		params.MovieId = &movieID
	}
	if date := r.URL.Query().Get("date"); date != "" {
		params.Date = &date
	}

	return params
}

func toScheduleFilters(params api.GetSchedulesParams) domain.ScheduleFilters {
	filters := domain.ScheduleFilters{}

	if params.MovieId != nil {
		filters.MovieID = *params.MovieId
	}
	if params.Date != nil {
		filters.Date = *params.Date
	}

	return filters
}

func toScheduleResponses(schedules []domain.Schedule) []api.ScheduleResponse {
	responses := make([]api.ScheduleResponse, len(schedules))

	for i, schedule := range schedules {
		responses[i] = toScheduleResponse(schedule)
	}

	return responses
}

func toScheduleResponse(schedule domain.Schedule) api.ScheduleResponse {
	return api.ScheduleResponse{
		Id:        schedule.ID,
		MovieId:   schedule.MovieID,
		Date:      schedule.Date,
		StartTime: schedule.StartTime,
		EndTime:   schedule.EndTime,
		Theater:   schedule.Theater,
		BasePrice: schedule.BasePrice,
	}
}
