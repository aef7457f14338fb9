package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-stay-reservation/internal/config"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/calendar"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-stay-reservation/internal/infrastructure/memory"
	redisinfra "github.com/sanosuguru/go-stay-reservation/internal/infrastructure/redis"
)

// === Mock implementations ===

// MockLockManager implements LockManager
type MockLockManager struct {
	mock.Mock
}

func (m *MockLockManager) AcquireMonthLocks(ctx context.Context, monthKeys []string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (redisinfra.Lock, error) {
	args := m.Called(ctx, monthKeys, ttl, maxRetries, retryDelay)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(redisinfra.Lock), args.Error(1)
}

// MockLock implements redisinfra.Lock
type MockLock struct {
	mock.Mock
}

func (m *MockLock) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockAvailabilityCache implements AvailabilityCache
type MockAvailabilityCache struct {
	mock.Mock
}

func (m *MockAvailabilityCache) GetUnavailableDates(ctx context.Context, monthKey string) ([]calendar.Date, error) {
	args := m.Called(ctx, monthKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]calendar.Date), args.Error(1)
}

func (m *MockAvailabilityCache) Generation(ctx context.Context, monthKey string) (int64, error) {
	args := m.Called(ctx, monthKey)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAvailabilityCache) SetUnavailableDates(ctx context.Context, monthKey string, generation int64, dates []calendar.Date, ttl time.Duration) error {
	args := m.Called(ctx, monthKey, generation, dates, ttl)
	return args.Error(0)
}

func (m *MockAvailabilityCache) Invalidate(ctx context.Context, monthKeys ...string) error {
	args := m.Called(ctx, monthKeys)
	return args.Error(0)
}

// === Test environment ===

var testBooking = config.BookingConfig{
	AdmissionPolicy:      config.AdmissionConfirmedOnly,
	EWalletNumber:        "09170000000",
	AvailabilityCacheTTL: 30 * time.Second,
	LockTTL:              10 * time.Second,
	LockRetries:          3,
	LockRetryInterval:    100 * time.Millisecond,
}

type testEnv struct {
	store        *memory.Store
	reservations *memory.ReservationRepository
	blocks       *memory.BlockRepository
	resolver     *ConflictResolver
	availability *AvailabilityService
	reservation  *ReservationService
	block        *BlockService
}

// newTestEnv はメモリストア上に Redis なしのサービス一式を組み立てる
func newTestEnv(policy config.AdmissionPolicy) *testEnv {
	store := memory.NewStore()
	rr := memory.NewReservationRepository(store)
	br := memory.NewBlockRepository(store)
	booking := testBooking
	booking.AdmissionPolicy = policy
	resolver := NewConflictResolver(rr, br, policy)
	return &testEnv{
		store:        store,
		reservations: rr,
		blocks:       br,
		resolver:     resolver,
		availability: NewAvailabilityService(rr, br, resolver, nil, booking.AvailabilityCacheTTL, nil),
		reservation:  NewReservationService(memory.NewTxManager(store), rr, resolver, nil, nil, nil, booking),
		block:        NewBlockService(br, nil),
	}
}

func date(s string) calendar.Date {
	d, err := calendar.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func validGuest() reservation.Guest {
	return reservation.Guest{
		FullName:       "Juan Dela Cruz",
		Address:        "123 Mabini St, Cebu City",
		MobileNumber:   "09171234567",
		NumberOfGuests: 2,
		GuestNames:     []string{"Juan Dela Cruz", "Maria Dela Cruz"},
	}
}

func input(start, end string) CreateReservationInput {
	return CreateReservationInput{
		StartDate:     date(start),
		EndDate:       date(end),
		Guest:         validGuest(),
		PaymentMethod: reservation.PaymentMethodCash,
	}
}

// confirm はオーナーの確定操作を行う
func (e *testEnv) confirm(ctx context.Context, id string) (*reservation.Reservation, error) {
	status := reservation.StatusConfirmed
	return e.reservation.UpdateReservation(ctx, id, reservation.Update{Status: &status})
}
