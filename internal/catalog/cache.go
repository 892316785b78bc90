package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cinetix/reservation-core/internal/domain"
)

// CachedCatalog layers a Redis read-through cache over another catalog.
// Reference data never changes for a provisioned catalog, so every cache
// policy is safe; the TTL only bounds staleness across re-provisioning.
// Cache failures degrade to reading through — catalog reads must not depend
// on the cache being up.
type CachedCatalog struct {
	inner  *FileCatalog
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedCatalog(inner *FileCatalog, rdb redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *CachedCatalog {
	return &CachedCatalog{inner: inner, rdb: rdb, ttl: ttl, logger: logger}
}

func (c *CachedCatalog) GetMovies(ctx context.Context, filters domain.MovieFilters) ([]domain.Movie, error) {
	key := fmt.Sprintf("catalog:movies:date=%s:term=%s:genre=%s", filters.Date, filters.Term, filters.Genre)

	var movies []domain.Movie
	if c.lookup(ctx, key, &movies) {
		return movies, nil
	}

	movies, err := c.inner.GetMovies(ctx, filters)
	if err != nil {
		return nil, err
	}

	c.fill(ctx, key, movies)

	return movies, nil
}

func (c *CachedCatalog) GetSchedules(ctx context.Context, filters domain.ScheduleFilters) ([]domain.Schedule, error) {
	key := fmt.Sprintf("catalog:schedules:movie=%s:date=%s", filters.MovieID, filters.Date)

	var schedules []domain.Schedule
	if c.lookup(ctx, key, &schedules) {
		return schedules, nil
	}

	schedules, err := c.inner.GetSchedules(ctx, filters)
	if err != nil {
		return nil, err
	}

	c.fill(ctx, key, schedules)

	return schedules, nil
}

func (c *CachedCatalog) GetScheduleById(ctx context.Context, scheduleID string) (*domain.Schedule, error) {
	key := "catalog:schedule:" + scheduleID

	var schedule domain.Schedule
	if c.lookup(ctx, key, &schedule) {
		return &schedule, nil
	}

	found, err := c.inner.GetScheduleById(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	c.fill(ctx, key, found)

	return found, nil
}

// SessionExists resolves through the cached schedule lookup.
func (c *CachedCatalog) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	_, err := c.GetScheduleById(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (c *CachedCatalog) lookup(ctx context.Context, key string, v any) bool {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("catalog cache read failed, reading through", "key", key, "error", err)
		}
		return false
	}

	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Warn("catalog cache entry malformed, reading through", "key", key, "error", err)
		return false
	}

	return true
}

func (c *CachedCatalog) fill(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}

	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("catalog cache write failed", "key", key, "error", err)
	}
}
