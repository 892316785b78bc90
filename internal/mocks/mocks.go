// Package mocks provides testify mocks for the transport layer's
// collaborators.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cinetix/reservation-core/internal/domain"
	"github.com/cinetix/reservation-core/internal/engine"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetMovies(ctx context.Context, filters domain.MovieFilters) ([]domain.Movie, error) {
	args := m.Called(ctx, filters)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Movie), args.Error(1)
}

func (m *MockCatalog) GetSchedules(ctx context.Context, filters domain.ScheduleFilters) ([]domain.Schedule, error) {
	args := m.Called(ctx, filters)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Schedule), args.Error(1)
}

func (m *MockCatalog) GetScheduleById(ctx context.Context, scheduleID string) (*domain.Schedule, error) {
	args := m.Called(ctx, scheduleID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Schedule), args.Error(1)
}

func (m *MockCatalog) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)

	return args.Bool(0), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Append(ctx context.Context, record domain.ReservationRecord) error {
	args := m.Called(ctx, record)

	return args.Error(0)
}

func (m *MockLedger) Scan(ctx context.Context, fn func(domain.ReservationRecord) error) (*domain.LedgerScanStats, error) {
	args := m.Called(ctx, fn)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.LedgerScanStats), args.Error(1)
}

func (m *MockLedger) FindByID(ctx context.Context, reservationID string) (*domain.ReservationRecord, error) {
	args := m.Called(ctx, reservationID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.ReservationRecord), args.Error(1)
}

type MockSnapshotRepo struct {
	mock.Mock
}

func (m *MockSnapshotRepo) Load(ctx context.Context, sessionID string) (*domain.SeatMap, error) {
	args := m.Called(ctx, sessionID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.SeatMap), args.Error(1)
}

func (m *MockSnapshotRepo) Publish(ctx context.Context, sessionID string, seatMap *domain.SeatMap) error {
	args := m.Called(ctx, sessionID, seatMap)

	return args.Error(0)
}

func (m *MockSnapshotRepo) Sessions(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]string), args.Error(1)
}

type MockReserver struct {
	mock.Mock
}

func (m *MockReserver) Reserve(ctx context.Context, sessionID string, seats []domain.SeatID) (*domain.ReservationRecord, error) {
	args := m.Called(ctx, sessionID, seats)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.ReservationRecord), args.Error(1)
}

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Run(ctx context.Context) (*engine.Report, error) {
	args := m.Called(ctx)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*engine.Report), args.Error(1)
}
