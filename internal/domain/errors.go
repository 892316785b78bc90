package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrRecordNotFound  = errors.New("record not found")
	ErrDataUnavailable = errors.New("data unavailable")
)

// SeatConflictError reports the first requested seat that is already
// occupied. Fully recoverable: the caller may retry with different seats.
type SeatConflictError struct {
	SessionID string
	Seat      SeatID
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat %s is already reserved for session %s", e.Seat, e.SessionID)
}

// SeatNotInSessionError reports a requested seat outside the session's seat
// universe.
type SeatNotInSessionError struct {
	SessionID string
	Seat      SeatID
}

func (e *SeatNotInSessionError) Error() string {
	return fmt.Sprintf("seat %s does not belong to session %s", e.Seat, e.SessionID)
}

// PersistenceError is a durable write failure before any state changed.
// Safe to retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// PartialCommitError means the ledger append succeeded but the snapshot
// publish did not. The ledger entry is valid ground truth; the outcome is
// uncertain to the caller until reconciled or queried by id. Never treated
// as success.
type PartialCommitError struct {
	ReservationID string
	SessionID     string
	Err           error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("reservation %s committed to ledger but snapshot publish failed for session %s: %v",
		e.ReservationID, e.SessionID, e.Err)
}

func (e *PartialCommitError) Unwrap() error {
	return e.Err
}

// InconsistencyError is raised by the reconciler when snapshot and ledger
// diverge beyond the single recoverable window. Fatal for the session's
// further bookings until an operator repairs it.
type InconsistencyError struct {
	SessionID  string
	IncidentID string
	Details    string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("session %s is inconsistent (incident %s): %s", e.SessionID, e.IncidentID, e.Details)
}

// InvariantViolationError indicates a bug in the engine's lock discipline,
// not a normal runtime condition.
type InvariantViolationError struct {
	SessionID string
	Details   string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation in session %s: %s", e.SessionID, e.Details)
}
