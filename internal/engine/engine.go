// Package engine implements the reservation core: the booking protocol that
// turns a request into a durable, consistent state change across the
// reservation ledger and the seat snapshot, and the reconciler that repairs
// divergence left by a crash.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cinetix/reservation-core/internal/domain"
)

// Engine orchestrates the booking protocol. The ledger is the durable
// source of truth; the snapshot is a derived, rebuildable cache of
// occupancy, which is why commits append to the ledger before publishing
// the snapshot.
type Engine struct {
	sessions  domain.SessionResolver
	snapshots domain.SnapshotRepository
	ledger    domain.LedgerRepository
	locks     *lockTable
	ids       *domain.ReservationIDGenerator
	logger    *slog.Logger
	metrics   *Metrics
	now       func() time.Time

	mu          sync.RWMutex
	quarantined map[string]*domain.InconsistencyError
}

func New(
	sessions domain.SessionResolver,
	snapshots domain.SnapshotRepository,
	ledger domain.LedgerRepository,
	logger *slog.Logger,
	metrics *Metrics,
) *Engine {
	return &Engine{
		sessions:    sessions,
		snapshots:   snapshots,
		ledger:      ledger,
		locks:       newLockTable(),
		ids:         domain.NewReservationIDGenerator(),
		logger:      logger,
		metrics:     metrics,
		now:         time.Now,
		quarantined: make(map[string]*domain.InconsistencyError),
	}
}

// Reserve books the given seats for a session. Exactly one attempt: retry
// policy belongs to the caller, because retrying an already-committed
// operation here could double-book.
func (e *Engine) Reserve(ctx context.Context, sessionID string, seats []domain.SeatID) (*domain.ReservationRecord, error) {
	if len(seats) == 0 {
		return nil, fmt.Errorf("no seats requested")
	}

	seen := make(map[domain.SeatID]bool, len(seats))
	for _, seat := range seats {
		if seen[seat] {
			return nil, fmt.Errorf("seat %s requested more than once", seat)
		}
		seen[seat] = true
	}

	exists, err := e.sessions.SessionExists(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("resolving session %s: %w", sessionID, err)
	}
	if !exists {
		return nil, domain.ErrSessionNotFound
	}

	// Sole serialization point: one commit phase per session at a time.
	release := e.locks.acquire(sessionID)
	defer release()

	// Checked under the lock, so a quarantine imposed by a concurrent
	// partial commit is never missed by a request already waiting.
	if err := e.checkQuarantine(sessionID); err != nil {
		return nil, err
	}

	snapshot, err := e.snapshots.Load(ctx, sessionID)
	if err != nil {
		// The session is provisioned, so a missing snapshot is a data
		// problem, not an unknown session.
		return nil, fmt.Errorf("loading snapshot for session %s: %w: %v", sessionID, domain.ErrDataUnavailable, err)
	}

	if err := snapshot.CheckAvailable(seats); err != nil {
		var conflict *domain.SeatConflictError
		if errors.As(err, &conflict) {
			e.metrics.SeatConflicts.Add(ctx, 1)
			e.logger.Info("reservation rejected: seat conflict",
				"session_id", sessionID, "seat", conflict.Seat.String())
		}
		return nil, err
	}

	record := domain.ReservationRecord{
		ID:        e.ids.Next(e.now()),
		SessionID: sessionID,
		SeatIDs:   domain.SeatLabels(seats),
		CreatedAt: e.now().UTC(),
		Status:    domain.ReservationConfirmed,
	}

	// Commit step one: the write-ahead record. On failure nothing has
	// changed and the caller may safely retry.
	if err := e.ledger.Append(ctx, record); err != nil {
		return nil, err
	}

	next, err := snapshot.Apply(seats)
	if err != nil {
		// Apply can only fail if CheckAvailable was bypassed, meaning the
		// lock discipline broke. The ledger record stands; the reconciler
		// will surface the damage.
		e.logger.Error("invariant violation during apply", "session_id", sessionID, "error", err)
		return nil, err
	}

	// Commit step two: publish the derived snapshot. Failure here leaves
	// the one recoverable inconsistency window, closed by the reconciler.
	if err := e.snapshots.Publish(ctx, sessionID, next); err != nil {
		e.metrics.PartialCommits.Add(ctx, 1)

		// The snapshot now lags the ledger: its free set still contains the
		// seats just committed, so serving further bookings from it would
		// hand the same seats out twice. Halt the session until a
		// reconciler run republishes the snapshot.
		e.Quarantine(&domain.InconsistencyError{
			SessionID:  sessionID,
			IncidentID: uuid.NewString(),
			Details: fmt.Sprintf(
				"reservation %s committed to ledger but missing from the snapshot", record.ID),
		})

		e.logger.Error("partial commit: ledger appended but snapshot publish failed",
			"session_id", sessionID, "reservation_id", record.ID, "error", err)

		return nil, &domain.PartialCommitError{
			ReservationID: record.ID,
			SessionID:     sessionID,
			Err:           err,
		}
	}

	e.metrics.ReservationsCommitted.Add(ctx, 1)
	e.metrics.SeatsReserved.Add(ctx, int64(len(seats)))
	e.logger.Info("reservation committed",
		"session_id", sessionID, "reservation_id", record.ID, "seats", record.SeatIDs)

	return &record, nil
}

func (e *Engine) checkQuarantine(sessionID string) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if inconsistency, ok := e.quarantined[sessionID]; ok {
		return inconsistency
	}

	return nil
}

// Quarantine halts new reservations for a session flagged inconsistent,
// rather than compounding the corruption.
func (e *Engine) Quarantine(inconsistency *domain.InconsistencyError) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.quarantined[inconsistency.SessionID] = inconsistency
}

// ClearQuarantine lifts the write ban after a session has been repaired.
func (e *Engine) ClearQuarantine(sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.quarantined, sessionID)
}
