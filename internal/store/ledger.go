// Package store persists the two durable artifacts of the reservation core:
// the append-only reservation ledger and the per-session seat snapshots.
package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/cinetix/reservation-core/internal/domain"
)

// Ledger is an append-only JSONL log of committed reservations, one
// self-delimited record per line. It is the system of record: snapshots are
// derived from it and rebuildable by replay.
type Ledger struct {
	path   string
	logger *slog.Logger

	// Appends from different sessions share the one file, so appends are
	// serialized here even though each session's commit phase already holds
	// its own lock.
	mu sync.Mutex
}

func NewLedger(path string, logger *slog.Logger) *Ledger {
	return &Ledger{path: path, logger: logger}
}

// Append durably adds one record to the end of the log. The write is synced
// to stable storage before success is acknowledged, so after a crash the
// record is either fully present or fully absent.
func (l *Ledger) Append(ctx context.Context, record domain.ReservationRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	line, err := json.Marshal(record)
	if err != nil {
		return &domain.PersistenceError{Op: "ledger append: marshal record", Err: err}
	}
	line = append(line, '\n')

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return &domain.PersistenceError{Op: "ledger append: open", Err: err}
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return &domain.PersistenceError{Op: "ledger append: write", Err: err}
	}

	if err := f.Sync(); err != nil {
		return &domain.PersistenceError{Op: "ledger append: sync", Err: err}
	}

	return nil
}

// Scan reads the ledger in append order, invoking fn for each record. A
// malformed final record is the signature of a crash mid-append: it is
// skipped but reported through the returned stats and a warning log, never
// silently dropped. A malformed record anywhere else means corruption and
// fails the scan. A missing ledger file is an empty ledger.
func (l *Ledger) Scan(ctx context.Context, fn func(domain.ReservationRecord) error) (*domain.LedgerScanStats, error) {
	stats := &domain.LedgerScanStats{}

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return nil, fmt.Errorf("ledger scan: %w: %v", domain.ErrDataUnavailable, err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	lineNo := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line, readErr := reader.ReadBytes('\n')
		atEOF := errors.Is(readErr, io.EOF)
		if readErr != nil && !atEOF {
			return nil, fmt.Errorf("ledger scan: %w: %v", domain.ErrDataUnavailable, readErr)
		}

		if len(line) == 0 && atEOF {
			return stats, nil
		}
		lineNo++

		var record domain.ReservationRecord
		if err := json.Unmarshal(line, &record); err != nil || record.ID == "" {
			if atEOF {
				stats.TornTail = true
				l.logger.Warn("skipping torn record at ledger tail", "line", lineNo)
				return stats, nil
			}
			return nil, fmt.Errorf("ledger scan: %w: malformed record at line %d", domain.ErrDataUnavailable, lineNo)
		}

		if err := fn(record); err != nil {
			return nil, err
		}
		stats.Records++

		if atEOF {
			return stats, nil
		}
	}
}

var errStopScan = errors.New("stop scan")

// FindByID looks a reservation up by replaying the ledger with early
// termination. No secondary index; the target scale does not need one.
func (l *Ledger) FindByID(ctx context.Context, reservationID string) (*domain.ReservationRecord, error) {
	var found *domain.ReservationRecord

	_, err := l.Scan(ctx, func(record domain.ReservationRecord) error {
		if record.ID == reservationID {
			found = &record
			return errStopScan
		}
		return nil
	})

	if err != nil && !errors.Is(err, errStopScan) {
		return nil, err
	}

	if found == nil {
		return nil, domain.ErrRecordNotFound
	}

	return found, nil
}
