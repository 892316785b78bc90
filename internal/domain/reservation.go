package domain

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type ReservationStatus string

// Confirmed is the only reachable terminal state; there is no cancellation
// or refund path.
const ReservationConfirmed ReservationStatus = "confirmed"

// ReservationRecord is immutable once appended to the ledger. CreatedAt is
// commit time, not request time.
type ReservationRecord struct {
	ID        string            `json:"reservation_id"`
	SessionID string            `json:"session_id"`
	SeatIDs   []string          `json:"seat_ids"`
	CreatedAt time.Time         `json:"created_at"`
	Status    ReservationStatus `json:"status"`
}

// Seats parses the record's seat labels back into seat ids.
func (r ReservationRecord) Seats() ([]SeatID, error) {
	return ParseSeatIDs(r.SeatIDs)
}

// ReservationIDGenerator issues globally unique, monotonically discriminable
// reservation ids: a millisecond timestamp plus a sequence counter, so ties
// within the same millisecond are still ordered.
type ReservationIDGenerator struct {
	mu         sync.Mutex
	lastMillis int64
	seq        int
}

func NewReservationIDGenerator() *ReservationIDGenerator {
	return &ReservationIDGenerator{}
}

// Next returns the id for a record committed at t. If the clock moves
// backwards the previous millisecond is reused so ids never regress.
func (g *ReservationIDGenerator) Next(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	millis := t.UnixMilli()
	if millis <= g.lastMillis {
		millis = g.lastMillis
		g.seq++
	} else {
		g.lastMillis = millis
		g.seq = 0
	}

	return fmt.Sprintf("RES-%013d-%04d", millis, g.seq)
}

// LedgerScanStats describes what a full ledger scan observed.
type LedgerScanStats struct {
	Records int
	// TornTail is set when the final record is unreadable, the signature of
	// a crash mid-append. The record is reported, never silently dropped.
	TornTail bool
}

// LedgerRepository is the system of record for committed reservations.
// Append is the only mutation; prior records are never rewritten.
type LedgerRepository interface {
	Append(ctx context.Context, record ReservationRecord) error
	Scan(ctx context.Context, fn func(ReservationRecord) error) (*LedgerScanStats, error)
	FindByID(ctx context.Context, reservationID string) (*ReservationRecord, error)
}

// SnapshotRepository persists per-session seat partitions. Publish replaces
// the previous snapshot atomically: readers see the old snapshot or the new
// one, never a mix.
type SnapshotRepository interface {
	Load(ctx context.Context, sessionID string) (*SeatMap, error)
	Publish(ctx context.Context, sessionID string, seatMap *SeatMap) error
	Sessions(ctx context.Context) ([]string, error)
}

// SessionResolver answers whether a session has been provisioned.
type SessionResolver interface {
	SessionExists(ctx context.Context, sessionID string) (bool, error)
}
