// Package catalog serves the movie and schedule reference data. The data is
// immutable once provisioned, which makes it safe to cache indefinitely —
// unlike seat state, which is always reloaded under the session lock.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cinetix/reservation-core/internal/domain"
)

type movieFile struct {
	MovieID     string `json:"movie_id"`
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	Description string `json:"description"`
	Duration    int    `json:"duration_minutes"`
}

type scheduleFile struct {
	ScheduleID string          `json:"schedule_id"`
	MovieID    string          `json:"movie_id"`
	Date       string          `json:"date"`
	StartTime  string          `json:"start_time"`
	EndTime    string          `json:"end_time"`
	Theater    string          `json:"theater"`
	BasePrice  decimal.Decimal `json:"base_price"`
}

// FileCatalog reads movies.json and schedules.json on demand. The files are
// small and replaced wholesale when the catalog is re-provisioned, so there
// is no in-process state to invalidate.
type FileCatalog struct {
	moviesPath    string
	schedulesPath string
}

func NewFileCatalog(moviesPath, schedulesPath string) *FileCatalog {
	return &FileCatalog{moviesPath: moviesPath, schedulesPath: schedulesPath}
}

func (c *FileCatalog) GetMovies(ctx context.Context, filters domain.MovieFilters) ([]domain.Movie, error) {
	var entries []movieFile
	if err := loadJSON(c.moviesPath, &entries); err != nil {
		return nil, err
	}

	var scheduledMovies map[string]bool
	if filters.Date != "" {
		schedules, err := c.GetSchedules(ctx, domain.ScheduleFilters{Date: filters.Date})
		if err != nil {
			return nil, err
		}

		scheduledMovies = make(map[string]bool, len(schedules))
		for _, schedule := range schedules {
			scheduledMovies[schedule.MovieID] = true
		}
	}

	term := strings.ToLower(filters.Term)
	movies := make([]domain.Movie, 0, len(entries))

	for _, entry := range entries {
		if scheduledMovies != nil && !scheduledMovies[entry.MovieID] {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(entry.Title), term) {
			continue
		}
		if filters.Genre != "" && entry.Genre != filters.Genre {
			continue
		}

		movies = append(movies, domain.Movie{
			ID:          entry.MovieID,
			Title:       entry.Title,
			Genre:       entry.Genre,
			Description: entry.Description,
			Duration:    entry.Duration,
		})
	}

	return movies, nil
}

func (c *FileCatalog) GetSchedules(ctx context.Context, filters domain.ScheduleFilters) ([]domain.Schedule, error) {
	var entries []scheduleFile
	if err := loadJSON(c.schedulesPath, &entries); err != nil {
		return nil, err
	}

	schedules := make([]domain.Schedule, 0, len(entries))
	for _, entry := range entries {
		if filters.MovieID != "" && entry.MovieID != filters.MovieID {
			continue
		}
		if filters.Date != "" && entry.Date != filters.Date {
			continue
		}

		schedules = append(schedules, toSchedule(entry))
	}

	return schedules, nil
}

func (c *FileCatalog) GetScheduleById(ctx context.Context, scheduleID string) (*domain.Schedule, error) {
	var entries []scheduleFile
	if err := loadJSON(c.schedulesPath, &entries); err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.ScheduleID == scheduleID {
			schedule := toSchedule(entry)
			return &schedule, nil
		}
	}

	return nil, domain.ErrRecordNotFound
}

// SessionExists makes the catalog the engine's session resolver: a session
// exists when its schedule does.
func (c *FileCatalog) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	_, err := c.GetScheduleById(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func toSchedule(entry scheduleFile) domain.Schedule {
	return domain.Schedule{
		ID:        entry.ScheduleID,
		MovieID:   entry.MovieID,
		Date:      entry.Date,
		StartTime: entry.StartTime,
		EndTime:   entry.EndTime,
		Theater:   entry.Theater,
		BasePrice: entry.BasePrice,
	}
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w: %v", path, domain.ErrDataUnavailable, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w: %v", path, domain.ErrDataUnavailable, err)
	}

	return nil
}
