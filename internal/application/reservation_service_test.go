package application

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-stay-reservation/internal/config"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/block"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/calendar"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/reservation"
)

func TestReservationService_CreateReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("保留中の予約が作成される", func(t *testing.T) {
		env := newTestEnv(config.AdmissionConfirmedOnly)
		in := input("2025-12-25", "2025-12-27")
		in.Guest.FullName = "  Juan Dela Cruz  "
		in.Guest.GuestNames = []string{"Maria", " ", ""}

		result, err := env.reservation.CreateReservation(ctx, in)
		require.NoError(t, err)
		res := result.Reservation
		assert.NotEmpty(t, res.ID)
		assert.Equal(t, reservation.StatusPending, res.Status)
		assert.Equal(t, reservation.PaymentStatusPending, res.PaymentStatus)
		assert.Equal(t, "Juan Dela Cruz", res.Guest.FullName)
		assert.Equal(t, []string{"Maria"}, res.Guest.GuestNames)
		assert.Equal(t, "Please contact the owner to arrange cash payment.", result.PaymentInstructions)
	})

	t.Run("電子ウォレット払いは送金先を案内する", func(t *testing.T) {
		env := newTestEnv(config.AdmissionConfirmedOnly)
		in := input("2025-12-25", "2025-12-27")
		in.PaymentMethod = reservation.PaymentMethodEWallet

		result, err := env.reservation.CreateReservation(ctx, in)
		require.NoError(t, err)
		assert.Equal(t,
			"Send payment to e-wallet number: 09170000000. Please screenshot your receipt and contact the owner.",
			result.PaymentInstructions)
	})

	t.Run("開始日が終了日より後なら作成しない", func(t *testing.T) {
		env := newTestEnv(config.AdmissionConfirmedOnly)
		_, err := env.reservation.CreateReservation(ctx, input("2025-01-10", "2025-01-05"))
		assert.ErrorIs(t, err, reservation.ErrInvalidDateRange)

		list, err := env.reservation.ListReservations(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("確定済み予約と境界日を共有する期間は作成できない", func(t *testing.T) {
		env := newTestEnv(config.AdmissionConfirmedOnly)
		first, err := env.reservation.CreateReservation(ctx, input("2025-12-25", "2025-12-27"))
		require.NoError(t, err)
		_, err = env.confirm(ctx, first.Reservation.ID)
		require.NoError(t, err)

		dates, err := env.availability.UnavailableDates(ctx, 12, 2025)
		require.NoError(t, err)
		assert.Equal(t, []calendar.Date{date("2025-12-25"), date("2025-12-26"), date("2025-12-27")}, dates)

		_, err = env.reservation.CreateReservation(ctx, input("2025-12-27", "2025-12-29"))
		assert.ErrorIs(t, err, reservation.ErrDatesUnavailable)
	})

	t.Run("ブロック日を含む期間は作成できない", func(t *testing.T) {
		env := newTestEnv(config.AdmissionConfirmedOnly)
		require.NoError(t, env.blocks.Create(ctx, block.NewDateBlock(date("2025-06-01"), "")))

		_, err := env.reservation.CreateReservation(ctx, input("2025-05-30", "2025-06-02"))
		assert.ErrorIs(t, err, reservation.ErrDatesBlocked)
	})

	tests := []struct {
		name    string
		modify  func(in *CreateReservationInput)
		wantErr error
	}{
		{name: "氏名は必須", modify: func(in *CreateReservationInput) { in.Guest.FullName = " " }, wantErr: reservation.ErrFullNameRequired},
		{name: "住所は必須", modify: func(in *CreateReservationInput) { in.Guest.Address = "" }, wantErr: reservation.ErrAddressRequired},
		{name: "携帯番号の形式", modify: func(in *CreateReservationInput) { in.Guest.MobileNumber = "12345" }, wantErr: reservation.ErrInvalidMobileNumber},
		{name: "宿泊人数は1以上", modify: func(in *CreateReservationInput) { in.Guest.NumberOfGuests = 0 }, wantErr: reservation.ErrInvalidNumberOfGuests},
		{name: "支払い方法", modify: func(in *CreateReservationInput) { in.PaymentMethod = "card" }, wantErr: reservation.ErrInvalidPaymentMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(config.AdmissionConfirmedOnly)
			in := input("2025-02-01", "2025-02-03")
			tt.modify(&in)
			_, err := env.reservation.CreateReservation(ctx, in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReservationService_ConfirmedNeverOverlap(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(config.AdmissionConfirmedOnly)

	ranges := [][2]string{
		{"2025-07-01", "2025-07-05"},
		{"2025-07-03", "2025-07-08"},
		{"2025-07-05", "2025-07-06"},
		{"2025-07-06", "2025-07-10"},
		{"2025-07-11", "2025-07-12"},
		{"2025-06-28", "2025-07-01"},
	}
	for _, r := range ranges {
		created, err := env.reservation.CreateReservation(ctx, input(r[0], r[1]))
		if err != nil {
			require.ErrorIs(t, err, reservation.ErrDatesUnavailable)
			continue
		}
		_, err = env.confirm(ctx, created.Reservation.ID)
		if err != nil {
			require.ErrorIs(t, err, reservation.ErrDatesUnavailable)
		}
	}

	all, err := env.reservation.ListReservations(ctx)
	require.NoError(t, err)
	var confirmed []*reservation.Reservation
	for _, res := range all {
		if res.IsConfirmed() {
			confirmed = append(confirmed, res)
		}
	}
	require.NotEmpty(t, confirmed)
	for i := range confirmed {
		for j := i + 1; j < len(confirmed); j++ {
			a, b := confirmed[i], confirmed[j]
			assert.True(t, a.StartDate.After(b.EndDate) || a.EndDate.Before(b.StartDate),
				"%s..%s と %s..%s が重なっている", a.StartDate, a.EndDate, b.StartDate, b.EndDate)
		}
	}
}

func TestReservationService_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(config.AdmissionHoldPending)

	const goroutines = 50
	var wg sync.WaitGroup
	var successCount, conflictCount int32
	start := make(chan struct{})

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			// 全員が 9/10 を含む期間を申し込む
			in := input("2025-09-10", "2025-09-12")
			if i%2 == 1 {
				in = input("2025-09-08", "2025-09-10")
			}
			_, err := env.reservation.CreateReservation(ctx, in)
			switch {
			case err == nil:
				atomic.AddInt32(&successCount, 1)
			case assert.ErrorIs(t, err, reservation.ErrDatesUnavailable):
				atomic.AddInt32(&conflictCount, 1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successCount)
	assert.Equal(t, int32(goroutines-1), conflictCount)

	counts, err := env.reservation.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[reservation.StatusPending])
}

func TestReservationService_UpdateReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("ステータスだけが変わり他の項目は作成時のまま", func(t *testing.T) {
		env := newTestEnv(config.AdmissionConfirmedOnly)
		created, err := env.reservation.CreateReservation(ctx, input("2025-10-01", "2025-10-03"))
		require.NoError(t, err)
		before := created.Reservation

		_, err = env.confirm(ctx, before.ID)
		require.NoError(t, err)

		got, err := env.reservation.GetReservation(ctx, before.ID)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusConfirmed, got.Status)
		assert.Equal(t, before.PaymentStatus, got.PaymentStatus)
		assert.Equal(t, before.StartDate, got.StartDate)
		assert.Equal(t, before.EndDate, got.EndDate)
		assert.Equal(t, before.Guest, got.Guest)
		assert.Equal(t, before.PaymentMethod, got.PaymentMethod)
		assert.Equal(t, before.Notes, got.Notes)
		assert.True(t, before.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("支払いステータスとメモを更新できる", func(t *testing.T) {
		env := newTestEnv(config.AdmissionConfirmedOnly)
		created, err := env.reservation.CreateReservation(ctx, input("2025-10-01", "2025-10-03"))
		require.NoError(t, err)

		paid := reservation.PaymentStatusPaid
		notes := "arrives late"
		updated, err := env.reservation.UpdateReservation(ctx, created.Reservation.ID, reservation.Update{PaymentStatus: &paid, Notes: &notes})
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusPending, updated.Status)
		assert.Equal(t, reservation.PaymentStatusPaid, updated.PaymentStatus)
		assert.Equal(t, "arrives late", updated.Notes)
	})

	t.Run("重なる予約を確定しようとするとエラー", func(t *testing.T) {
		env := newTestEnv(config.AdmissionConfirmedOnly)
		a, err := env.reservation.CreateReservation(ctx, input("2025-10-01", "2025-10-03"))
		require.NoError(t, err)
		b, err := env.reservation.CreateReservation(ctx, input("2025-10-03", "2025-10-05"))
		require.NoError(t, err)

		_, err = env.confirm(ctx, a.Reservation.ID)
		require.NoError(t, err)
		_, err = env.confirm(ctx, b.Reservation.ID)
		assert.ErrorIs(t, err, reservation.ErrDatesUnavailable)

		got, err := env.reservation.GetReservation(ctx, b.Reservation.ID)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusPending, got.Status)
	})

	t.Run("範囲外のステータスは拒否する", func(t *testing.T) {
		env := newTestEnv(config.AdmissionConfirmedOnly)
		invalid := reservation.Status("archived")
		_, err := env.reservation.UpdateReservation(ctx, "any", reservation.Update{Status: &invalid})
		assert.ErrorIs(t, err, reservation.ErrInvalidStatus)
	})

	t.Run("存在しない予約はErrReservationNotFound", func(t *testing.T) {
		env := newTestEnv(config.AdmissionConfirmedOnly)
		_, err := env.confirm(ctx, "missing")
		assert.ErrorIs(t, err, reservation.ErrReservationNotFound)
	})
}

func TestReservationService_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(config.AdmissionConfirmedOnly)

	first, err := env.reservation.CreateReservation(ctx, input("2025-11-01", "2025-11-02"))
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := env.reservation.CreateReservation(ctx, input("2025-11-05", "2025-11-06"))
	require.NoError(t, err)

	t.Run("新しい順に並ぶ", func(t *testing.T) {
		list, err := env.reservation.ListReservations(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.Reservation.ID, list[0].ID)
		assert.Equal(t, first.Reservation.ID, list[1].ID)
	})

	t.Run("削除後は取得できない", func(t *testing.T) {
		require.NoError(t, env.reservation.DeleteReservation(ctx, first.Reservation.ID))
		_, err := env.reservation.GetReservation(ctx, first.Reservation.ID)
		assert.ErrorIs(t, err, reservation.ErrReservationNotFound)
		assert.ErrorIs(t, env.reservation.DeleteReservation(ctx, first.Reservation.ID), reservation.ErrReservationNotFound)
	})
}
