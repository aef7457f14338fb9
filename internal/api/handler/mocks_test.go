package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-stay-reservation/internal/application"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/block"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/calendar"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/reservation"
)

// MockReservationService はReservationServiceInterfaceのモック
type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) CreateReservation(ctx context.Context, input application.CreateReservationInput) (*application.CreateReservationResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.CreateReservationResult), args.Error(1)
}

func (m *MockReservationService) GetReservation(ctx context.Context, id string) (*reservation.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) ListReservations(ctx context.Context) ([]*reservation.Reservation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) UpdateReservation(ctx context.Context, id string, u reservation.Update) (*reservation.Reservation, error) {
	args := m.Called(ctx, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) DeleteReservation(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAvailabilityService はAvailabilityServiceInterfaceのモック
type MockAvailabilityService struct {
	mock.Mock
}

func (m *MockAvailabilityService) UnavailableDates(ctx context.Context, month, year int) ([]calendar.Date, error) {
	args := m.Called(ctx, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]calendar.Date), args.Error(1)
}

// MockAdmissionChecker はAdmissionCheckerInterfaceのモック
type MockAdmissionChecker struct {
	mock.Mock
}

func (m *MockAdmissionChecker) CheckAdmission(ctx context.Context, start, end calendar.Date) error {
	args := m.Called(ctx, start, end)
	return args.Error(0)
}

// MockBlockService はBlockServiceInterfaceのモック
type MockBlockService struct {
	mock.Mock
}

func (m *MockBlockService) ToggleBlock(ctx context.Context, date calendar.Date, reason string) (bool, error) {
	args := m.Called(ctx, date, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlockService) SetBlocked(ctx context.Context, date calendar.Date, blocked bool, reason string) (bool, error) {
	args := m.Called(ctx, date, blocked, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlockService) ListBlocks(ctx context.Context, month, year int) ([]*block.DateBlock, error) {
	args := m.Called(ctx, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*block.DateBlock), args.Error(1)
}

func (m *MockBlockService) GetBlock(ctx context.Context, date calendar.Date) (*block.DateBlock, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*block.DateBlock), args.Error(1)
}

func mustDate(s string) calendar.Date {
	d, err := calendar.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
