package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/cinetix/reservation-core/internal/alert"
	"github.com/cinetix/reservation-core/internal/domain"
)

// SessionStatus classifies one session's reconciliation outcome.
type SessionStatus string

const (
	SessionConsistent   SessionStatus = "consistent"
	SessionRepaired     SessionStatus = "repaired"
	SessionInconsistent SessionStatus = "inconsistent"
)

// SessionResult is the reconciler's verdict for one session.
type SessionResult struct {
	SessionID     string        `json:"session_id"`
	Status        SessionStatus `json:"status"`
	RepairedSeats []string      `json:"repaired_seats,omitempty"`
	IncidentID    string        `json:"incident_id,omitempty"`
	Details       string        `json:"details,omitempty"`
}

// Report summarizes one reconciliation run.
type Report struct {
	Sessions     []SessionResult `json:"sessions"`
	Repaired     int             `json:"repaired"`
	Inconsistent int             `json:"inconsistent"`
	TornTail     bool            `json:"ledger_torn_tail"`
}

// Reconciler recomputes each session's expected occupancy from the ledger and
// compares it against the published snapshot. It repairs exactly the window
// an interrupted commit can leave (the single most recent record missing
// from the snapshot) and refuses to guess at anything larger.
type Reconciler struct {
	snapshots domain.SnapshotRepository
	ledger    domain.LedgerRepository
	engine    *Engine
	notifier  alert.Notifier
	logger    *slog.Logger
	metrics   *Metrics
}

func NewReconciler(
	snapshots domain.SnapshotRepository,
	ledger domain.LedgerRepository,
	engine *Engine,
	notifier alert.Notifier,
	logger *slog.Logger,
	metrics *Metrics,
) *Reconciler {
	return &Reconciler{
		snapshots: snapshots,
		ledger:    ledger,
		engine:    engine,
		notifier:  notifier,
		logger:    logger,
		metrics:   metrics,
	}
}

// sessionHistory is one session's replayed ledger state.
type sessionHistory struct {
	expected  map[domain.SeatID]string // seat -> reservation id that committed it
	last      *domain.ReservationRecord
	duplicate *domain.SeatID
}

// Run reconciles every known session: the union of sessions with a snapshot
// and sessions present in the ledger. The initial scan only discovers
// sessions and the torn tail; each session's history is re-replayed under
// its own lock, so a commit landing mid-run never skews a comparison.
// Running it twice with no intervening writes changes nothing on the
// second run.
func (r *Reconciler) Run(ctx context.Context) (*Report, error) {
	known := make(map[string]bool)

	stats, err := r.ledger.Scan(ctx, func(record domain.ReservationRecord) error {
		known[record.SessionID] = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	sessions, err := r.snapshots.Sessions(ctx)
	if err != nil {
		return nil, err
	}
	for _, sessionID := range sessions {
		known[sessionID] = true
	}

	ordered := make([]string, 0, len(known))
	for sessionID := range known {
		ordered = append(ordered, sessionID)
	}
	sort.Strings(ordered)

	report := &Report{TornTail: stats.TornTail}

	for _, sessionID := range ordered {
		result := r.reconcileSession(ctx, sessionID)
		report.Sessions = append(report.Sessions, result)

		switch result.Status {
		case SessionRepaired:
			report.Repaired++
		case SessionInconsistent:
			report.Inconsistent++
		}
	}

	return report, nil
}

// replaySession rebuilds one session's expected occupancy from the ledger.
// Must be called with the session's lock held so the replay and the
// snapshot it is compared against describe the same moment.
func (r *Reconciler) replaySession(ctx context.Context, sessionID string) (*sessionHistory, error) {
	history := &sessionHistory{expected: make(map[domain.SeatID]string)}

	_, err := r.ledger.Scan(ctx, func(record domain.ReservationRecord) error {
		if record.SessionID != sessionID {
			return nil
		}

		seats, err := record.Seats()
		if err != nil {
			return fmt.Errorf("record %s: %w", record.ID, err)
		}

		for _, seat := range seats {
			if _, taken := history.expected[seat]; taken && history.duplicate == nil {
				// The same seat committed twice can only happen if the
				// engine's locking discipline broke.
				seatCopy := seat
				history.duplicate = &seatCopy
			}
			history.expected[seat] = record.ID
		}

		recordCopy := record
		history.last = &recordCopy

		return nil
	})
	if err != nil {
		return nil, err
	}

	return history, nil
}

func (r *Reconciler) reconcileSession(ctx context.Context, sessionID string) SessionResult {
	// The snapshot file is single-writer-per-session. Holding the engine's
	// lock keeps a repair publish from overwriting a live commit.
	release := r.engine.locks.acquire(sessionID)
	defer release()

	history, err := r.replaySession(ctx, sessionID)
	if err != nil {
		return r.flag(ctx, sessionID, fmt.Sprintf("ledger replay failed: %v", err))
	}

	if history.duplicate != nil {
		return r.flag(ctx, sessionID, fmt.Sprintf(
			"seat %s appears in more than one committed reservation", history.duplicate))
	}

	snapshot, err := r.snapshots.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return r.flag(ctx, sessionID, "ledger references a session with no published snapshot")
		}
		return r.flag(ctx, sessionID, fmt.Sprintf("snapshot unreadable: %v", err))
	}

	expected := history.expected

	occupied := snapshot.OccupiedSeats()

	// Seats occupied in the snapshot without a ledger record mean the
	// snapshot claims bookings that never happened. Not repairable.
	var orphaned []string
	for _, seat := range occupied {
		if _, ok := expected[seat]; !ok {
			orphaned = append(orphaned, seat.String())
		}
	}
	if len(orphaned) > 0 {
		return r.flag(ctx, sessionID, fmt.Sprintf(
			"snapshot marks seats occupied with no ledger record: %s", strings.Join(orphaned, ",")))
	}

	var missing []domain.SeatID
	for seat := range expected {
		if !contains(occupied, seat) {
			missing = append(missing, seat)
		}
	}

	if len(missing) == 0 {
		r.engine.ClearQuarantine(sessionID)
		return SessionResult{SessionID: sessionID, Status: SessionConsistent}
	}

	// The only window an interrupted commit can leave is the single most
	// recent record absent from the snapshot. Anything else is not ours to
	// repair.
	if !withinLastRecord(missing, history) {
		return r.flag(ctx, sessionID, fmt.Sprintf(
			"snapshot is missing seats beyond the most recent reservation: %s",
			strings.Join(domain.SeatLabels(domain.SortSeatIDs(missing)), ",")))
	}

	repaired, err := snapshot.Apply(missing)
	if err != nil {
		return r.flag(ctx, sessionID, fmt.Sprintf("repair failed: %v", err))
	}

	if err := r.snapshots.Publish(ctx, sessionID, repaired); err != nil {
		return r.flag(ctx, sessionID, fmt.Sprintf("republishing repaired snapshot failed: %v", err))
	}

	seats := domain.SeatLabels(domain.SortSeatIDs(missing))
	r.metrics.ReconcilerRepairs.Add(ctx, 1)
	r.engine.ClearQuarantine(sessionID)
	r.logger.Info("repaired interrupted commit",
		"session_id", sessionID, "reservation_id", history.last.ID, "seats", seats)

	return SessionResult{SessionID: sessionID, Status: SessionRepaired, RepairedSeats: seats}
}

// flag records an inconsistency, quarantines the session against further
// writes, and pushes the incident to the operator channel.
func (r *Reconciler) flag(ctx context.Context, sessionID, details string) SessionResult {
	event := alert.NewEvent(sessionID, details)

	inconsistency := &domain.InconsistencyError{
		SessionID:  sessionID,
		IncidentID: event.IncidentID,
		Details:    details,
	}

	r.engine.Quarantine(inconsistency)
	r.metrics.Inconsistencies.Add(ctx, 1)
	r.logger.Error("data inconsistency detected",
		"session_id", sessionID, "incident_id", event.IncidentID, "details", details)

	if err := r.notifier.Notify(ctx, event); err != nil {
		r.logger.Error("failed to notify operator channel", "incident_id", event.IncidentID, "error", err)
	}

	return SessionResult{
		SessionID:  sessionID,
		Status:     SessionInconsistent,
		IncidentID: event.IncidentID,
		Details:    details,
	}
}

// RunPeriodic re-runs reconciliation on a fixed interval until ctx is done.
// The startup run happens separately, before the engine accepts requests.
func (r *Reconciler) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Info("periodic reconciliation started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("periodic reconciliation stopped")
			return
		case <-ticker.C:
			if _, err := r.Run(ctx); err != nil {
				r.logger.Error("reconciliation run failed", "error", err)
			}
		}
	}
}

func withinLastRecord(missing []domain.SeatID, history *sessionHistory) bool {
	if history == nil || history.last == nil {
		return false
	}

	lastSeats, err := history.last.Seats()
	if err != nil {
		return false
	}

	for _, seat := range missing {
		if !contains(lastSeats, seat) {
			return false
		}
	}

	return true
}

func contains(seats []domain.SeatID, seat domain.SeatID) bool {
	for _, s := range seats {
		if s == seat {
			return true
		}
	}

	return false
}
