package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cinetix/reservation-core/internal/domain"
)

const snapshotExt = ".json"

// snapshotFile is the on-disk shape of one session's seat snapshot.
type snapshotFile struct {
	SessionID string             `json:"session_id"`
	Meta      domain.SessionMeta `json:"metadata"`
	Seats     snapshotSeats      `json:"seats"`
}

type snapshotSeats struct {
	Free     map[string][]int `json:"free"`
	Occupied map[string][]int `json:"occupied"`
}

// SnapshotStore keeps one JSON file per session under dir. Publish replaces
// a snapshot atomically (write temp, fsync, rename, fsync dir), so readers
// always observe a fully old or fully new snapshot.
type SnapshotStore struct {
	dir string
}

func NewSnapshotStore(dir string) (*SnapshotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}

	return &SnapshotStore{dir: dir}, nil
}

func (s *SnapshotStore) path(sessionID string) string {
	return filepath.Join(s.dir, sessionID+snapshotExt)
}

// Load reads the current snapshot for a session. Missing snapshots map to
// ErrRecordNotFound; unreadable or structurally invalid ones to
// ErrDataUnavailable.
func (s *SnapshotStore) Load(ctx context.Context, sessionID string) (*domain.SeatMap, error) {
	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("snapshot load for session %s: %w: %v", sessionID, domain.ErrDataUnavailable, err)
	}

	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("snapshot parse for session %s: %w: %v", sessionID, domain.ErrDataUnavailable, err)
	}

	seatMap := &domain.SeatMap{
		SessionID: sessionID,
		Meta:      file.Meta,
		Free:      file.Seats.Free,
		Occupied:  file.Seats.Occupied,
	}
	if seatMap.Free == nil {
		seatMap.Free = map[string][]int{}
	}
	if seatMap.Occupied == nil {
		seatMap.Occupied = map[string][]int{}
	}

	if err := seatMap.Verify(); err != nil {
		return nil, fmt.Errorf("snapshot for session %s: %w: %v", sessionID, domain.ErrDataUnavailable, err)
	}

	return seatMap, nil
}

// Publish durably writes a new snapshot, replacing the old one atomically.
func (s *SnapshotStore) Publish(ctx context.Context, sessionID string, seatMap *domain.SeatMap) error {
	file := snapshotFile{
		SessionID: sessionID,
		Meta:      seatMap.Meta,
		Seats: snapshotSeats{
			Free:     seatMap.Free,
			Occupied: seatMap.Occupied,
		},
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return &domain.PersistenceError{Op: "snapshot publish: marshal", Err: err}
	}
	data = append(data, '\n')

	final := s.path(sessionID)
	tmp := final + ".tmp"

	if err := writeSynced(tmp, data); err != nil {
		os.Remove(tmp)
		return &domain.PersistenceError{Op: "snapshot publish: write temp", Err: err}
	}

	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return &domain.PersistenceError{Op: "snapshot publish: rename", Err: err}
	}

	if err := syncDir(s.dir); err != nil {
		return &domain.PersistenceError{Op: "snapshot publish: sync dir", Err: err}
	}

	return nil
}

// Sessions lists every session with a published snapshot.
func (s *SnapshotStore) Sessions(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w: %v", domain.ErrDataUnavailable, err)
	}

	var sessions []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, snapshotExt) {
			continue
		}
		sessions = append(sessions, strings.TrimSuffix(name, snapshotExt))
	}

	return sessions, nil
}

func writeSynced(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()

	return d.Sync()
}
