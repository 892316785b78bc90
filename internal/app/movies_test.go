package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/mock"

	"github.com/cinetix/reservation-core/api"
	"github.com/cinetix/reservation-core/internal/domain"
	"github.com/cinetix/reservation-core/internal/mocks"
)

func TestGetMovies(t *testing.T) {
	sampleMovies := []domain.Movie{
		{
			ID:          "MOV-1",
			Title:       "The Grand Escape",
			Genre:       "Thriller",
			Description: "A heist gone sideways",
			Duration:    124,
		},
		{
			ID:       "MOV-2",
			Title:    "Moonlit Harbor",
			Genre:    "Drama",
			Duration: 98,
		},
	}

	tests := []struct {
		name           string
		url            string
		wantFilters    *domain.MovieFilters
		movies         []domain.Movie
		catalogErr     error
		wantStatus     int
		wantErrMessage string
		wantResponse   *api.MovieListResponse
	}{
		{
			name:        "returns all movies without filters",
			url:         "/movies",
			wantFilters: &domain.MovieFilters{},
			movies:      sampleMovies,
			wantStatus:  http.StatusOK,
			wantResponse: &api.MovieListResponse{
				Movies: []api.MovieResponse{
					{
						Id:              "MOV-1",
						Title:           "The Grand Escape",
						Genre:           "Thriller",
						Description:     "A heist gone sideways",
						DurationMinutes: 124,
					},
					{
						Id:              "MOV-2",
						Title:           "Moonlit Harbor",
						Genre:           "Drama",
						DurationMinutes: 98,
					},
				},
			},
		},
		{
			name:        "passes date, term and genre filters to the catalog",
			url:         "/movies?date=2026-09-01&term=harbor&genre=Drama",
			wantFilters: &domain.MovieFilters{Date: "2026-09-01", Term: "harbor", Genre: "Drama"},
			movies:      sampleMovies[1:],
			wantStatus:  http.StatusOK,
			wantResponse: &api.MovieListResponse{
				Movies: []api.MovieResponse{
					{
						Id:              "MOV-2",
						Title:           "Moonlit Harbor",
						Genre:           "Drama",
						DurationMinutes: 98,
					},
				},
			},
		},
		{
			name:         "empty result",
			url:          "/movies",
			wantFilters:  &domain.MovieFilters{},
			movies:       []domain.Movie{},
			wantStatus:   http.StatusOK,
			wantResponse: &api.MovieListResponse{Movies: []api.MovieResponse{}},
		},
		{
			name:           "validation error - malformed date",
			url:            "/movies?date=01-09-2026",
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "must be a date in YYYY-MM-DD format",
		},
		{
			name:           "validation error - term too long",
			url:            "/movies?term=" + strings.Repeat("a", 101),
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "must be at most 100 characters long",
		},
		{
			name:           "validation error - genre too long",
			url:            "/movies?genre=" + strings.Repeat("g", 51),
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "must be at most 50 characters long",
		},
		{
			name:           "catalog files unreadable",
			url:            "/movies",
			wantFilters:    &domain.MovieFilters{},
			catalogErr:     fmt.Errorf("%w: movies.json", domain.ErrDataUnavailable),
			wantStatus:     http.StatusServiceUnavailable,
			wantErrMessage: ErrServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &mocks.MockCatalog{}
			if tt.wantFilters != nil {
				if tt.catalogErr != nil {
					catalog.On("GetMovies", mock.Anything, *tt.wantFilters).Return(nil, tt.catalogErr)
				} else {
					catalog.On("GetMovies", mock.Anything, *tt.wantFilters).Return(tt.movies, nil)
				}
			}

			app := newTestApplication(func(a *Application) {
				a.catalog = catalog
			})

			w, r := executeRequest(t, http.MethodGet, tt.url, nil)

			app.GetMovies(w, r)

			if got := w.Code; got != tt.wantStatus {
				t.Errorf("GetMovies() status = %v, want %v", got, tt.wantStatus)
			}

			if tt.wantResponse != nil {
				var response api.MovieListResponse
				err := json.NewDecoder(w.Body).Decode(&response)
				if err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}

				if diff := cmp.Diff(tt.wantResponse, &response); diff != "" {
					t.Errorf("GetMovies() response mismatch (-want +got):\n%s", diff)
				}
			}

			checkErrorResponse(t, w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})

			catalog.AssertExpectations(t)
		})
	}
}
