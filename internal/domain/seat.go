package domain

import (
	"fmt"
	"sort"
	"strconv"
)

// SeatID identifies one seat inside a session's seat universe. Identity is
// immutable; only the seat's occupancy changes.
type SeatID struct {
	Row    string
	Number int
}

// ParseSeatID parses labels like "A1" or "C12". Syntax validation proper
// happens at the transport layer; this parser is the last line of defense.
func ParseSeatID(s string) (SeatID, error) {
	if len(s) < 2 {
		return SeatID{}, fmt.Errorf("invalid seat id %q", s)
	}

	row := s[0]
	if row < 'A' || row > 'Z' {
		return SeatID{}, fmt.Errorf("invalid seat id %q: row must be an uppercase letter", s)
	}

	number, err := strconv.Atoi(s[1:])
	if err != nil || number < 1 {
		return SeatID{}, fmt.Errorf("invalid seat id %q: number must be a positive integer", s)
	}

	return SeatID{Row: string(row), Number: number}, nil
}

// ParseSeatIDs parses a batch of seat labels, preserving order.
func ParseSeatIDs(labels []string) ([]SeatID, error) {
	seats := make([]SeatID, len(labels))

	for i, label := range labels {
		seat, err := ParseSeatID(label)
		if err != nil {
			return nil, err
		}
		seats[i] = seat
	}

	return seats, nil
}

func (s SeatID) String() string {
	return s.Row + strconv.Itoa(s.Number)
}

// Less orders seats by row first, then number. This is the canonical order
// used for deterministic conflict reporting.
func (s SeatID) Less(other SeatID) bool {
	if s.Row != other.Row {
		return s.Row < other.Row
	}

	return s.Number < other.Number
}

// SortSeatIDs returns a sorted copy of seats in row-then-number order.
func SortSeatIDs(seats []SeatID) []SeatID {
	sorted := make([]SeatID, len(seats))
	copy(sorted, seats)

	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	return sorted
}

// SeatLabels renders seats back to their wire labels, preserving order.
func SeatLabels(seats []SeatID) []string {
	labels := make([]string, len(seats))
	for i, seat := range seats {
		labels[i] = seat.String()
	}

	return labels
}
