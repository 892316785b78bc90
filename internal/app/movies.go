package app

import (
	"net/http"

	"github.com/cinetix/reservation-core/api"
	"github.com/cinetix/reservation-core/internal/domain"
)

func (app *Application) GetMovies(w http.ResponseWriter, r *http.Request) {
	params := parseGetMoviesParams(r)

	err := app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	movies, err := app.catalog.GetMovies(r.Context(), toMovieFilters(params))
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	resp := api.MovieListResponse{
		Movies: toMovieResponses(movies),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func parseGetMoviesParams(r *http.Request) api.GetMoviesParams {
	params := api.GetMoviesParams{}

	if date := r.URL.Query().Get("date"); date != "" {
		params.Date = &date
	}
	if term := r.URL.Query().Get("term"); term != "" {
		params.Term = &term
	}
	if genre := r.URL.Query().Get("genre"); genre != "" {
		params.Genre = &genre
	}

	return params
}

func toMovieFilters(params api.GetMoviesParams) domain.MovieFilters {
	filters := domain.MovieFilters{}

	if params.Date != nil {
		filters.Date = *params.Date
	}
	if params.Term != nil {
		filters.Term = *params.Term
	}
	if params.Genre != nil {
		filters.Genre = *params.Genre
	}

	return filters
}

func toMovieResponses(movies []domain.Movie) []api.MovieResponse {
	responses := make([]api.MovieResponse, len(movies))

	for i, movie := range movies {
		responses[i] = api.MovieResponse{
			Id:              movie.ID,
			Title:           movie.Title,
			Genre:           movie.Genre,
			Description:     movie.Description,
			DurationMinutes: movie.Duration,
		}
	}

	return responses
}
