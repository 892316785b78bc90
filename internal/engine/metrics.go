package engine

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the engine's and reconciler's counters. With no meter
// provider installed these are no-ops.
type Metrics struct {
	ReservationsCommitted metric.Int64Counter
	SeatsReserved         metric.Int64Counter
	SeatConflicts         metric.Int64Counter
	PartialCommits        metric.Int64Counter
	ReconcilerRepairs     metric.Int64Counter
	Inconsistencies       metric.Int64Counter
}

func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("reservation-engine")

	m := &Metrics{}
	var err error

	if m.ReservationsCommitted, err = meter.Int64Counter("reservations_committed_total"); err != nil {
		return nil, err
	}
	if m.SeatsReserved, err = meter.Int64Counter("seats_reserved_total"); err != nil {
		return nil, err
	}
	if m.SeatConflicts, err = meter.Int64Counter("seat_conflicts_total"); err != nil {
		return nil, err
	}
	if m.PartialCommits, err = meter.Int64Counter("partial_commits_total"); err != nil {
		return nil, err
	}
	if m.ReconcilerRepairs, err = meter.Int64Counter("reconciler_repairs_total"); err != nil {
		return nil, err
	}
	if m.Inconsistencies, err = meter.Int64Counter("data_inconsistencies_total"); err != nil {
		return nil, err
	}

	return m, nil
}
