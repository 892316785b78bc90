package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cinetix/reservation-core/internal/domain"
	"github.com/cinetix/reservation-core/internal/store"
)

type stubSessions struct {
	existing map[string]bool
	err      error
}

func (s *stubSessions) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}

	return s.existing[sessionID], nil
}

// failingSnapshots makes Publish fail to simulate a crash between the
// ledger append and the snapshot publish.
type failingSnapshots struct {
	domain.SnapshotRepository
	failPublish bool
}

func (f *failingSnapshots) Publish(ctx context.Context, sessionID string, seatMap *domain.SeatMap) error {
	if f.failPublish {
		return &domain.PersistenceError{Op: "snapshot publish", Err: fmt.Errorf("disk full")}
	}

	return f.SnapshotRepository.Publish(ctx, sessionID, seatMap)
}

type engineFixture struct {
	engine    *Engine
	snapshots *failingSnapshots
	ledger    *store.Ledger
	sessions  *stubSessions
}

func newEngineFixture(t *testing.T, sessionIDs ...string) *engineFixture {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	snapshots, err := store.NewSnapshotStore(filepath.Join(dir, "sessions"))
	require.NoError(t, err)

	ledger := store.NewLedger(filepath.Join(dir, "reservations.jsonl"), logger)

	sessions := &stubSessions{existing: make(map[string]bool)}
	ctx := context.Background()

	for _, sessionID := range sessionIDs {
		sessions.existing[sessionID] = true
		require.NoError(t, snapshots.Publish(ctx, sessionID, newUniverse(sessionID)))
	}

	metrics, err := NewMetrics()
	require.NoError(t, err)

	wrapped := &failingSnapshots{SnapshotRepository: snapshots}

	return &engineFixture{
		engine:    New(sessions, wrapped, ledger, logger, metrics),
		snapshots: wrapped,
		ledger:    ledger,
		sessions:  sessions,
	}
}

// newUniverse builds the reference 16-seat universe: rows A-D, seats 1-4.
func newUniverse(sessionID string) *domain.SeatMap {
	return &domain.SeatMap{
		SessionID: sessionID,
		Meta: domain.SessionMeta{
			MovieID:    "MOV-1",
			MovieTitle: "The Long Goodbye",
			Date:       "2026-09-01",
			StartTime:  "19:00",
			EndTime:    "21:15",
			Theater:    "Screen 1",
		},
		Free: map[string][]int{
			"A": {1, 2, 3, 4},
			"B": {1, 2, 3, 4},
			"C": {1, 2, 3, 4},
			"D": {1, 2, 3, 4},
		},
		Occupied: map[string][]int{},
	}
}

func seats(t *testing.T, labels ...string) []domain.SeatID {
	t.Helper()

	parsed, err := domain.ParseSeatIDs(labels)
	require.NoError(t, err)

	return parsed
}

func TestReserveSuccessThenConflict(t *testing.T) {
	f := newEngineFixture(t, "S1")
	ctx := context.Background()

	record, err := f.engine.Reserve(ctx, "S1", seats(t, "A1", "A2"))
	require.NoError(t, err)
	require.Equal(t, []string{"A1", "A2"}, record.SeatIDs)
	require.Equal(t, domain.ReservationConfirmed, record.Status)
	require.NotEmpty(t, record.ID)

	// Overlapping request fails on the occupied seat and leaves B1 free.
	_, err = f.engine.Reserve(ctx, "S1", seats(t, "A1", "B1"))

	var conflict *domain.SeatConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, "A1", conflict.Seat.String())

	snapshot, err := f.snapshots.Load(ctx, "S1")
	require.NoError(t, err)
	require.True(t, snapshot.IsFree(domain.SeatID{Row: "B", Number: 1}),
		"B1 must remain free after a rejected reservation")

	// The rejected attempt must leave no ledger trace.
	count := 0
	_, err = f.ledger.Scan(ctx, func(domain.ReservationRecord) error {
		count++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestReserveSessionNotFound(t *testing.T) {
	f := newEngineFixture(t, "S1")

	_, err := f.engine.Reserve(context.Background(), "S404", seats(t, "A1"))
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestReserveUnknownSeat(t *testing.T) {
	f := newEngineFixture(t, "S1")

	_, err := f.engine.Reserve(context.Background(), "S1", seats(t, "Z9"))

	var unknown *domain.SeatNotInSessionError
	require.ErrorAs(t, err, &unknown)
}

func TestReserveMissingSnapshotIsDataUnavailable(t *testing.T) {
	f := newEngineFixture(t, "S1")
	f.sessions.existing["S2"] = true // provisioned but no snapshot

	_, err := f.engine.Reserve(context.Background(), "S2", seats(t, "A1"))
	require.ErrorIs(t, err, domain.ErrDataUnavailable)
}

func TestReservePartialCommit(t *testing.T) {
	f := newEngineFixture(t, "S2")
	ctx := context.Background()

	f.snapshots.failPublish = true

	_, err := f.engine.Reserve(ctx, "S2", seats(t, "C3"))

	var partial *domain.PartialCommitError
	require.ErrorAs(t, err, &partial)
	require.Equal(t, "S2", partial.SessionID)
	require.NotEmpty(t, partial.ReservationID)

	// The ledger entry is valid ground truth even though the caller saw an
	// error: the record must be findable by id.
	record, err := f.ledger.FindByID(ctx, partial.ReservationID)
	require.NoError(t, err)
	require.Equal(t, []string{"C3"}, record.SeatIDs)

	// The snapshot still shows the old state.
	f.snapshots.failPublish = false
	snapshot, err := f.snapshots.Load(ctx, "S2")
	require.NoError(t, err)
	require.True(t, snapshot.IsFree(domain.SeatID{Row: "C", Number: 3}))
}

func TestReserveDuplicateSeatsRejected(t *testing.T) {
	f := newEngineFixture(t, "S1")
	ctx := context.Background()

	_, err := f.engine.Reserve(ctx, "S1", seats(t, "A1", "A1"))
	require.Error(t, err)

	// Rejected before the commit phase: nothing durable happened.
	count := 0
	_, scanErr := f.ledger.Scan(ctx, func(domain.ReservationRecord) error {
		count++
		return nil
	})
	require.NoError(t, scanErr)
	require.Zero(t, count)

	snapshot, err := f.snapshots.Load(ctx, "S1")
	require.NoError(t, err)
	require.True(t, snapshot.IsFree(domain.SeatID{Row: "A", Number: 1}))
}

func TestReservePartialCommitQuarantinesSession(t *testing.T) {
	f := newEngineFixture(t, "S1")
	ctx := context.Background()

	f.snapshots.failPublish = true
	_, err := f.engine.Reserve(ctx, "S1", seats(t, "A1"))

	var partial *domain.PartialCommitError
	require.ErrorAs(t, err, &partial)

	// The snapshot still shows A1 free, so a second request would pass the
	// availability check against stale state. The session must refuse
	// writes until reconciled.
	f.snapshots.failPublish = false

	_, err = f.engine.Reserve(ctx, "S1", seats(t, "A1"))

	var inconsistency *domain.InconsistencyError
	require.ErrorAs(t, err, &inconsistency)
	require.Equal(t, "S1", inconsistency.SessionID)

	// A1 stays in exactly one committed record.
	count := 0
	_, err = f.ledger.Scan(ctx, func(record domain.ReservationRecord) error {
		for _, seat := range record.SeatIDs {
			if seat == "A1" {
				count++
			}
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestReserveQuarantinedSessionRefused(t *testing.T) {
	f := newEngineFixture(t, "S1")

	f.engine.Quarantine(&domain.InconsistencyError{
		SessionID:  "S1",
		IncidentID: "incident-1",
		Details:    "test",
	})

	_, err := f.engine.Reserve(context.Background(), "S1", seats(t, "A1"))

	var inconsistency *domain.InconsistencyError
	require.ErrorAs(t, err, &inconsistency)

	f.engine.ClearQuarantine("S1")

	_, err = f.engine.Reserve(context.Background(), "S1", seats(t, "A1"))
	require.NoError(t, err)
}

func TestReserveConcurrentOverlappingRequests(t *testing.T) {
	f := newEngineFixture(t, "S1")
	ctx := context.Background()

	const workers = 8
	target := seats(t, "A1", "A2")

	var wg sync.WaitGroup
	results := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.engine.Reserve(ctx, "S1", target)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}

		var conflict *domain.SeatConflictError
		require.ErrorAs(t, err, &conflict)
	}

	require.Equal(t, 1, successes, "exactly one request may win the seats")

	// Replaying the ledger, all committed seat sets must be pairwise
	// disjoint: the global no-double-booking invariant.
	taken := make(map[string]bool)
	_, err := f.ledger.Scan(ctx, func(record domain.ReservationRecord) error {
		for _, seat := range record.SeatIDs {
			require.False(t, taken[seat], "seat %s booked twice", seat)
			taken[seat] = true
		}
		return nil
	})
	require.NoError(t, err)
}

func TestReserveDifferentSessionsInParallel(t *testing.T) {
	f := newEngineFixture(t, "S1", "S2", "S3", "S4")
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 4)

	for i, sessionID := range []string{"S1", "S2", "S3", "S4"} {
		wg.Add(1)
		go func(i int, sessionID string) {
			defer wg.Done()
			_, errs[i] = f.engine.Reserve(ctx, sessionID, seats(t, "A1"))
		}(i, sessionID)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
}

func TestReservePartitionInvariantHolds(t *testing.T) {
	f := newEngineFixture(t, "S1")
	ctx := context.Background()

	bookings := [][]string{{"A1", "A2"}, {"B3"}, {"D4", "C1", "C2"}}
	for _, labels := range bookings {
		_, err := f.engine.Reserve(ctx, "S1", seats(t, labels...))
		require.NoError(t, err)
	}

	snapshot, err := f.snapshots.Load(ctx, "S1")
	require.NoError(t, err)
	require.NoError(t, snapshot.Verify())
	require.Equal(t, 16, snapshot.TotalSeats())
	require.Len(t, snapshot.OccupiedSeats(), 6)
}
