package domain

import (
	"fmt"
	"sort"
)

// SessionMeta is the identifying metadata stored alongside a session's seat
// partition. It is carried through commits untouched and used by the read
// side to enrich responses.
type SessionMeta struct {
	MovieID    string `json:"movie_id"`
	MovieTitle string `json:"movie_title"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Theater    string `json:"theater"`
}

// SeatMap partitions a session's fixed seat universe into free and occupied
// seats, each keyed by row with ascending seat numbers. The partition
// invariant (disjoint sets, fixed universe) holds after every completed
// operation; Verify checks it.
type SeatMap struct {
	SessionID string
	Meta      SessionMeta
	Free      map[string][]int
	Occupied  map[string][]int
}

// TotalSeats returns the size of the seat universe.
func (m *SeatMap) TotalSeats() int {
	total := 0
	for _, numbers := range m.Free {
		total += len(numbers)
	}
	for _, numbers := range m.Occupied {
		total += len(numbers)
	}

	return total
}

// Rows returns every row label in the universe, sorted.
func (m *SeatMap) Rows() []string {
	seen := make(map[string]bool)
	for row := range m.Free {
		seen[row] = true
	}
	for row := range m.Occupied {
		seen[row] = true
	}

	rows := make([]string, 0, len(seen))
	for row := range seen {
		rows = append(rows, row)
	}
	sort.Strings(rows)

	return rows
}

// OccupiedSeats returns the occupied set in row-then-number order.
func (m *SeatMap) OccupiedSeats() []SeatID {
	var seats []SeatID
	for row, numbers := range m.Occupied {
		for _, n := range numbers {
			seats = append(seats, SeatID{Row: row, Number: n})
		}
	}

	return SortSeatIDs(seats)
}

func contains(numbers []int, n int) bool {
	i := sort.SearchInts(numbers, n)
	return i < len(numbers) && numbers[i] == n
}

// IsFree reports whether the seat is currently in the free set.
func (m *SeatMap) IsFree(seat SeatID) bool {
	return contains(m.Free[seat.Row], seat.Number)
}

// InUniverse reports whether the seat belongs to the session at all.
func (m *SeatMap) InUniverse(seat SeatID) bool {
	return contains(m.Free[seat.Row], seat.Number) || contains(m.Occupied[seat.Row], seat.Number)
}

// CheckAvailable is a pure read over the snapshot. It fails on the first
// requested seat that is already occupied, where "first" is row-then-number
// order so conflict reporting is reproducible regardless of request order.
// Seats outside the session's universe are rejected before conflicts.
func (m *SeatMap) CheckAvailable(seats []SeatID) error {
	for _, seat := range SortSeatIDs(seats) {
		if !m.InUniverse(seat) {
			return &SeatNotInSessionError{SessionID: m.SessionID, Seat: seat}
		}
	}

	for _, seat := range SortSeatIDs(seats) {
		if !m.IsFree(seat) {
			return &SeatConflictError{SessionID: m.SessionID, Seat: seat}
		}
	}

	return nil
}

// Apply produces a new snapshot with the given seats moved from free to
// occupied. The receiver is never mutated. A seat that is not free here has
// slipped past CheckAvailable under the session lock, which is a lock
// discipline bug, so the failure is an invariant violation rather than a
// user-facing conflict.
func (m *SeatMap) Apply(seats []SeatID) (*SeatMap, error) {
	next := m.clone()

	for _, seat := range SortSeatIDs(seats) {
		if !next.IsFree(seat) {
			return nil, &InvariantViolationError{
				SessionID: m.SessionID,
				Details:   fmt.Sprintf("apply of seat %s which is not free", seat),
			}
		}

		next.Free[seat.Row] = remove(next.Free[seat.Row], seat.Number)
		next.Occupied[seat.Row] = insert(next.Occupied[seat.Row], seat.Number)
	}

	return next, nil
}

// Verify checks the partition invariant: free and occupied are disjoint,
// each row's numbers are strictly ascending, and the universe is non-empty.
func (m *SeatMap) Verify() error {
	if m.TotalSeats() == 0 {
		return fmt.Errorf("session %s: empty seat universe", m.SessionID)
	}

	for _, row := range m.Rows() {
		if err := verifyAscending(m.SessionID, row, m.Free[row]); err != nil {
			return err
		}
		if err := verifyAscending(m.SessionID, row, m.Occupied[row]); err != nil {
			return err
		}

		for _, n := range m.Free[row] {
			if contains(m.Occupied[row], n) {
				return fmt.Errorf("session %s: seat %s%d is both free and occupied", m.SessionID, row, n)
			}
		}
	}

	return nil
}

func verifyAscending(sessionID, row string, numbers []int) error {
	for i := 1; i < len(numbers); i++ {
		if numbers[i] <= numbers[i-1] {
			return fmt.Errorf("session %s: row %s seat numbers are not strictly ascending", sessionID, row)
		}
	}

	return nil
}

func (m *SeatMap) clone() *SeatMap {
	next := &SeatMap{
		SessionID: m.SessionID,
		Meta:      m.Meta,
		Free:      make(map[string][]int, len(m.Free)),
		Occupied:  make(map[string][]int, len(m.Occupied)),
	}

	for row, numbers := range m.Free {
		next.Free[row] = append([]int(nil), numbers...)
	}
	for row, numbers := range m.Occupied {
		next.Occupied[row] = append([]int(nil), numbers...)
	}

	return next
}

func remove(numbers []int, n int) []int {
	out := make([]int, 0, len(numbers))
	for _, v := range numbers {
		if v != n {
			out = append(out, v)
		}
	}

	return out
}

func insert(numbers []int, n int) []int {
	i := sort.SearchInts(numbers, n)
	out := append([]int(nil), numbers[:i]...)
	out = append(out, n)

	return append(out, numbers[i:]...)
}
