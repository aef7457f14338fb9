package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-stay-reservation/internal/config"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/calendar"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/transaction"
	redisinfra "github.com/sanosuguru/go-stay-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-stay-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-stay-reservation/internal/pkg/metrics"
)

const (
	cashInstructions    = "Please contact the owner to arrange cash payment."
	eWalletInstructions = "Send payment to e-wallet number: %s. Please screenshot your receipt and contact the owner."
)

type ReservationService struct {
	txManager       transaction.Manager
	reservationRepo reservation.Repository
	resolver        *ConflictResolver
	lockManager     LockManager
	cache           AvailabilityCache
	metrics         *metrics.Metrics
	booking         config.BookingConfig
}

// NewReservationService は予約サービスを作成する
// lockManager・cache・m は nil でもよい
func NewReservationService(
	txm transaction.Manager,
	rr reservation.Repository,
	resolver *ConflictResolver,
	lockManager LockManager,
	cache AvailabilityCache,
	m *metrics.Metrics,
	booking config.BookingConfig,
) *ReservationService {
	return &ReservationService{
		txManager:       txm,
		reservationRepo: rr,
		resolver:        resolver,
		lockManager:     lockManager,
		cache:           cache,
		metrics:         m,
		booking:         booking,
	}
}

type CreateReservationInput struct {
	StartDate     calendar.Date
	EndDate       calendar.Date
	Guest         reservation.Guest
	PaymentMethod reservation.PaymentMethod
}

type CreateReservationResult struct {
	Reservation         *reservation.Reservation
	PaymentInstructions string
}

func (s *ReservationService) CreateReservation(ctx context.Context, input CreateReservationInput) (*CreateReservationResult, error) {
	res := reservation.NewReservation(input.StartDate, input.EndDate, input.Guest, input.PaymentMethod)
	if err := res.Validate(); err != nil {
		s.countReservation("invalid")
		return nil, err
	}
	monthKeys := res.Range().MonthKeys()

	// 分散ロックを取得（月キーは昇順なのでデッドロックしない）
	if lock := s.acquireMonthLocks(ctx, monthKeys); lock != nil {
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("暦ロックの解放に失敗", zap.Strings("months", monthKeys), zap.Error(err))
			}
		}()
	}

	if err := s.create(ctx, res, monthKeys); err != nil {
		switch {
		case errors.Is(err, reservation.ErrDatesUnavailable):
			s.countReservation("conflict")
		case errors.Is(err, reservation.ErrInvalidDateRange), errors.Is(err, reservation.ErrStayTooLong):
			s.countReservation("invalid")
		default:
			s.countReservation("error")
		}
		return nil, err
	}
	s.countReservation("success")

	invalidateMonths(ctx, s.cache, monthKeys)
	logger.Info("予約を作成しました",
		zap.String("reservation_id", res.ID),
		zap.String("start_date", res.StartDate.String()),
		zap.String("end_date", res.EndDate.String()),
	)
	return &CreateReservationResult{
		Reservation:         res,
		PaymentInstructions: s.paymentInstructions(res.PaymentMethod),
	}, nil
}

// create は暦ロック下で受付判定と登録を一つのトランザクションで行う
func (s *ReservationService) create(ctx context.Context, res *reservation.Reservation, monthKeys []string) error {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.txManager.LockMonths(ctx, tx, monthKeys); err != nil {
		return err
	}
	if err := s.resolver.checkAdmission(ctx, tx, res.StartDate, res.EndDate); err != nil {
		return err
	}
	if err := s.reservationRepo.Create(ctx, tx, res); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return transaction.Wrap("コミットに失敗", err)
	}
	return nil
}

// acquireMonthLocks は Redis の暦ロックを取得する
// 取得できなくてもストア側のロックで整合性は保たれるため、警告だけ出して続行する
func (s *ReservationService) acquireMonthLocks(ctx context.Context, monthKeys []string) redisinfra.Lock {
	if s.lockManager == nil {
		return nil
	}
	start := time.Now()
	lock, err := s.lockManager.AcquireMonthLocks(ctx, monthKeys, s.booking.LockTTL, s.booking.LockRetries, s.booking.LockRetryInterval)
	if err != nil {
		s.observeLock("failed", start)
		if errors.Is(err, redisinfra.ErrLockNotAcquired) {
			s.countReservation("lock_failed")
		}
		logger.Warn("暦ロックを取得できませんでした", zap.Strings("months", monthKeys), zap.Error(err))
		return nil
	}
	s.observeLock("success", start)
	return lock
}

func (s *ReservationService) paymentInstructions(method reservation.PaymentMethod) string {
	if method == reservation.PaymentMethodEWallet {
		return fmt.Sprintf(eWalletInstructions, s.booking.EWalletNumber)
	}
	return cashInstructions
}

func (s *ReservationService) GetReservation(ctx context.Context, id string) (*reservation.Reservation, error) {
	return s.reservationRepo.GetByID(ctx, nil, id)
}

// ListReservations は全予約を新しい順に返す
func (s *ReservationService) ListReservations(ctx context.Context) ([]*reservation.Reservation, error) {
	return s.reservationRepo.List(ctx)
}

// UpdateReservation は指定されたフィールドだけを更新する
func (s *ReservationService) UpdateReservation(ctx context.Context, id string, u reservation.Update) (*reservation.Reservation, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := s.reservationRepo.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	monthKeys := res.Range().MonthKeys()
	if err := s.txManager.LockMonths(ctx, tx, monthKeys); err != nil {
		return nil, err
	}
	if err := res.Apply(u); err != nil {
		return nil, err
	}
	if err := s.reservationRepo.Update(ctx, tx, res); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, transaction.Wrap("コミットに失敗", err)
	}

	invalidateMonths(ctx, s.cache, monthKeys)
	logger.Info("予約を更新しました",
		zap.String("reservation_id", res.ID),
		zap.String("status", string(res.Status)),
		zap.String("payment_status", string(res.PaymentStatus)),
	)
	return res, nil
}

// DeleteReservation は予約を物理削除する
func (s *ReservationService) DeleteReservation(ctx context.Context, id string) error {
	res, err := s.reservationRepo.GetByID(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := s.reservationRepo.Delete(ctx, id); err != nil {
		return err
	}
	invalidateMonths(ctx, s.cache, res.Range().MonthKeys())
	logger.Info("予約を削除しました", zap.String("reservation_id", id))
	return nil
}

// CountByStatus はステータスごとの予約件数を返す
func (s *ReservationService) CountByStatus(ctx context.Context) (map[reservation.Status]int, error) {
	return s.reservationRepo.CountByStatus(ctx)
}

func (s *ReservationService) countReservation(status string) {
	if s.metrics != nil {
		s.metrics.ReservationsTotal.WithLabelValues(status).Inc()
	}
}

func (s *ReservationService) observeLock(status string, start time.Time) {
	if s.metrics != nil {
		s.metrics.DistributedLockDuration.WithLabelValues("acquire", status).Observe(time.Since(start).Seconds())
	}
}
