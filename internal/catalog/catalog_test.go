package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cinetix/reservation-core/internal/domain"
)

const testMovies = `[
  {"movie_id": "MOV-1", "title": "The Long Goodbye", "genre": "Drama", "description": "A farewell.", "duration_minutes": 135},
  {"movie_id": "MOV-2", "title": "Midnight Run", "genre": "Action", "description": "A chase.", "duration_minutes": 122},
  {"movie_id": "MOV-3", "title": "Long Shot", "genre": "Comedy", "description": "A gamble.", "duration_minutes": 110}
]`

const testSchedules = `[
  {"schedule_id": "SCH-1001", "movie_id": "MOV-1", "date": "2026-09-01", "start_time": "19:00", "end_time": "21:15", "theater": "Screen 1", "base_price": "12.50"},
  {"schedule_id": "SCH-1002", "movie_id": "MOV-2", "date": "2026-09-01", "start_time": "21:30", "end_time": "23:35", "theater": "Screen 2", "base_price": "10.00"},
  {"schedule_id": "SCH-1003", "movie_id": "MOV-1", "date": "2026-09-02", "start_time": "15:00", "end_time": "17:15", "theater": "Screen 1", "base_price": "11.00"}
]`

func newTestCatalog(t *testing.T) *FileCatalog {
	t.Helper()

	dir := t.TempDir()
	moviesPath := filepath.Join(dir, "movies.json")
	schedulesPath := filepath.Join(dir, "schedules.json")

	require.NoError(t, os.WriteFile(moviesPath, []byte(testMovies), 0o644))
	require.NoError(t, os.WriteFile(schedulesPath, []byte(testSchedules), 0o644))

	return NewFileCatalog(moviesPath, schedulesPath)
}

func movieIDs(movies []domain.Movie) []string {
	ids := make([]string, len(movies))
	for i, movie := range movies {
		ids[i] = movie.ID
	}

	return ids
}

func TestGetMovies(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		filters domain.MovieFilters
		wantIDs []string
	}{
		{
			name:    "no filters returns all",
			wantIDs: []string{"MOV-1", "MOV-2", "MOV-3"},
		},
		{
			name:    "date filter resolves through schedules",
			filters: domain.MovieFilters{Date: "2026-09-01"},
			wantIDs: []string{"MOV-1", "MOV-2"},
		},
		{
			name:    "partial title search is case insensitive",
			filters: domain.MovieFilters{Term: "long"},
			wantIDs: []string{"MOV-1", "MOV-3"},
		},
		{
			name:    "genre filter is exact",
			filters: domain.MovieFilters{Genre: "Action"},
			wantIDs: []string{"MOV-2"},
		},
		{
			name:    "combined filters intersect",
			filters: domain.MovieFilters{Date: "2026-09-02", Term: "long"},
			wantIDs: []string{"MOV-1"},
		},
		{
			name:    "no match yields empty list",
			filters: domain.MovieFilters{Genre: "Horror"},
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			movies, err := catalog.GetMovies(ctx, tt.filters)
			require.NoError(t, err)
			require.Equal(t, tt.wantIDs, movieIDs(movies))
		})
	}
}

func TestGetSchedules(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()

	schedules, err := catalog.GetSchedules(ctx, domain.ScheduleFilters{MovieID: "MOV-1"})
	require.NoError(t, err)
	require.Len(t, schedules, 2)

	schedules, err = catalog.GetSchedules(ctx, domain.ScheduleFilters{MovieID: "MOV-1", Date: "2026-09-02"})
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	require.Equal(t, "SCH-1003", schedules[0].ID)
	require.Equal(t, "11", schedules[0].BasePrice.String())
}

func TestGetScheduleById(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()

	schedule, err := catalog.GetScheduleById(ctx, "SCH-1002")
	require.NoError(t, err)
	require.Equal(t, "MOV-2", schedule.MovieID)
	require.Equal(t, "Screen 2", schedule.Theater)

	_, err = catalog.GetScheduleById(ctx, "SCH-404")
	require.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestSessionExists(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()

	exists, err := catalog.SessionExists(ctx, "SCH-1001")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = catalog.SessionExists(ctx, "SCH-404")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestCatalogUnreadableFiles(t *testing.T) {
	catalog := NewFileCatalog("/nonexistent/movies.json", "/nonexistent/schedules.json")
	ctx := context.Background()

	_, err := catalog.GetMovies(ctx, domain.MovieFilters{})
	require.ErrorIs(t, err, domain.ErrDataUnavailable)

	_, err = catalog.GetSchedules(ctx, domain.ScheduleFilters{})
	require.ErrorIs(t, err, domain.ErrDataUnavailable)
}
