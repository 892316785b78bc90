package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type Movie struct {
	ID          string
	Title       string
	Genre       string
	Description string
	Duration    int
}

// Schedule is one scheduled screening: movie, date, start/end time, theater.
// Its id doubles as the session id owning a seat universe.
type Schedule struct {
	ID        string
	MovieID   string
	Date      string
	StartTime string
	EndTime   string
	Theater   string
	BasePrice decimal.Decimal
}

type MovieFilters struct {
	Date  string
	Term  string
	Genre string
}

type ScheduleFilters struct {
	MovieID string
	Date    string
}

// CatalogRepository serves the immutable movie/schedule reference data.
// Unlike seat state, it is safe to cache indefinitely.
type CatalogRepository interface {
	GetMovies(ctx context.Context, filters MovieFilters) ([]Movie, error)
	GetSchedules(ctx context.Context, filters ScheduleFilters) ([]Schedule, error)
	GetScheduleById(ctx context.Context, scheduleID string) (*Schedule, error)
}
