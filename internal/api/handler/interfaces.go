package handler

import (
	"context"

	"github.com/sanosuguru/go-stay-reservation/internal/application"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/block"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/calendar"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/reservation"
)

// AvailabilityServiceInterface は空き状況サービスのインターフェース
type AvailabilityServiceInterface interface {
	UnavailableDates(ctx context.Context, month, year int) ([]calendar.Date, error)
}

// AdmissionCheckerInterface は受付判定のインターフェース
type AdmissionCheckerInterface interface {
	CheckAdmission(ctx context.Context, start, end calendar.Date) error
}

// ReservationServiceInterface は予約サービスのインターフェース
type ReservationServiceInterface interface {
	CreateReservation(ctx context.Context, input application.CreateReservationInput) (*application.CreateReservationResult, error)
	GetReservation(ctx context.Context, id string) (*reservation.Reservation, error)
	ListReservations(ctx context.Context) ([]*reservation.Reservation, error)
	UpdateReservation(ctx context.Context, id string, u reservation.Update) (*reservation.Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
}

// BlockServiceInterface はブロック日サービスのインターフェース
type BlockServiceInterface interface {
	ToggleBlock(ctx context.Context, date calendar.Date, reason string) (bool, error)
	SetBlocked(ctx context.Context, date calendar.Date, blocked bool, reason string) (bool, error)
	ListBlocks(ctx context.Context, month, year int) ([]*block.DateBlock, error)
	GetBlock(ctx context.Context, date calendar.Date) (*block.DateBlock, error)
}
