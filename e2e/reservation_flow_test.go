package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-stay-reservation/internal/api/handler"
)

func reservationBody(start, end, method string) map[string]interface{} {
	return map[string]interface{}{
		"start_date":       start,
		"end_date":         end,
		"full_name":        "Juan Dela Cruz",
		"address":          "123 Mabini St, Cebu City",
		"mobile_number":    "+639171234567",
		"number_of_guests": 2,
		"guest_names":      []string{"Juan Dela Cruz", "Maria Dela Cruz"},
		"payment_method":   method,
	}
}

func createReservation(t *testing.T, s *TestServer, start, end string) handler.CreateReservationResponse {
	t.Helper()
	rec := s.Request(http.MethodPost, "/api/v1/reservations", reservationBody(start, end, "cash"), false)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp handler.CreateReservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func unavailableDates(t *testing.T, s *TestServer, month, year int) []string {
	t.Helper()
	rec := s.Request(http.MethodGet, fmt.Sprintf("/api/v1/reservations/available-dates?month=%d&year=%d", month, year), nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		UnavailableDates []string `json:"unavailable_dates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.UnavailableDates
}

// TestE2E_HealthCheck はヘルスチェックをテスト
func TestE2E_HealthCheck(t *testing.T) {
	server := getTestServer(t)

	rec := server.Request(http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp handler.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Checks["database"])
}

// TestE2E_CompleteStayJourney は予約から確定・削除までの流れをテスト
func TestE2E_CompleteStayJourney(t *testing.T) {
	server := getTestServer(t)
	var reservationID string

	t.Run("予約作成", func(t *testing.T) {
		rec := server.Request(http.MethodPost, "/api/v1/reservations", reservationBody("2030-12-25", "2030-12-27", "e-wallet"), false)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp handler.CreateReservationResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		reservationID = resp.Reservation.ID
		assert.NotEmpty(t, reservationID)
		assert.Equal(t, "pending", resp.Reservation.Status)
		assert.Equal(t, []string{"Juan Dela Cruz", "Maria Dela Cruz"}, resp.Reservation.Guest.GuestNames)
		assert.Contains(t, resp.PaymentInstructions, "09170000000")
	})

	t.Run("保留中は予約不可日にならない", func(t *testing.T) {
		assert.Empty(t, unavailableDates(t, server, 12, 2030))
	})

	t.Run("予約確定", func(t *testing.T) {
		rec := server.Request(http.MethodPatch, "/api/v1/reservations/"+reservationID,
			map[string]string{"status": "confirmed", "payment_status": "paid"}, true)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp handler.ReservationResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "confirmed", resp.Status)
		assert.Equal(t, "paid", resp.PaymentStatus)
		assert.Equal(t, "Juan Dela Cruz", resp.Guest.FullName)
	})

	t.Run("確定後は予約不可日になる", func(t *testing.T) {
		assert.Equal(t, []string{"2030-12-25", "2030-12-26", "2030-12-27"}, unavailableDates(t, server, 12, 2030))
	})

	t.Run("予約詳細確認", func(t *testing.T) {
		rec := server.Request(http.MethodGet, "/api/v1/reservations/"+reservationID, nil, true)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp handler.ReservationResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, reservationID, resp.ID)
	})

	t.Run("予約削除", func(t *testing.T) {
		rec := server.Request(http.MethodDelete, "/api/v1/reservations/"+reservationID, nil, true)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = server.Request(http.MethodGet, "/api/v1/reservations/"+reservationID, nil, true)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, unavailableDates(t, server, 12, 2030))
	})
}

// TestE2E_ConfirmedBoundaryConflict は境界日を含めた衝突をテスト
func TestE2E_ConfirmedBoundaryConflict(t *testing.T) {
	server := getTestServer(t)

	first := createReservation(t, server, "2030-12-25", "2030-12-27")
	rec := server.Request(http.MethodPatch, "/api/v1/reservations/"+first.Reservation.ID, map[string]string{"status": "confirmed"}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	tests := []struct {
		name       string
		start, end string
		wantStatus int
	}{
		{name: "終了日に開始", start: "2030-12-27", end: "2030-12-29", wantStatus: http.StatusConflict},
		{name: "開始日に終了", start: "2030-12-23", end: "2030-12-25", wantStatus: http.StatusConflict},
		{name: "内側", start: "2030-12-25", end: "2030-12-26", wantStatus: http.StatusConflict},
		{name: "翌日から", start: "2030-12-28", end: "2030-12-29", wantStatus: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := server.Request(http.MethodPost, "/api/v1/reservations", reservationBody(tt.start, tt.end, "cash"), false)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

// TestE2E_ConcurrentConfirmation は重なる保留中予約の同時確定で1件だけ成功することをテスト
func TestE2E_ConcurrentConfirmation(t *testing.T) {
	server := getTestServer(t)

	const n = 10
	ids := make([]string, n)
	for i := range ids {
		ids[i] = createReservation(t, server, "2031-01-30", "2031-02-02").Reservation.ID
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			rec := server.Request(http.MethodPatch, "/api/v1/reservations/"+id, map[string]string{"status": "confirmed"}, true)
			mu.Lock()
			defer mu.Unlock()
			switch rec.Code {
			case http.StatusOK:
				succeeded++
			case http.StatusConflict:
				conflicts++
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, n-1, conflicts)
	// 月をまたぐ予約は両月に反映される
	assert.Equal(t, []string{"2031-01-30", "2031-01-31"}, unavailableDates(t, server, 1, 2031))
	assert.Equal(t, []string{"2031-02-01", "2031-02-02"}, unavailableDates(t, server, 2, 2031))
}

// TestE2E_BlockDates はオーナーによるブロックをテスト
func TestE2E_BlockDates(t *testing.T) {
	server := getTestServer(t)

	t.Run("トークンなしは401", func(t *testing.T) {
		rec := server.Request(http.MethodPost, "/api/v1/reservations/block-date", map[string]string{"date": "2030-06-01"}, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("反転でブロックされる", func(t *testing.T) {
		rec := server.Request(http.MethodPost, "/api/v1/reservations/block-date", map[string]string{"date": "2030-06-01"}, true)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"blocked":true`)
		assert.Equal(t, []string{"2030-06-01"}, unavailableDates(t, server, 6, 2030))
	})

	t.Run("ブロック日を含む予約は409", func(t *testing.T) {
		rec := server.Request(http.MethodPost, "/api/v1/reservations", reservationBody("2030-05-31", "2030-06-02", "cash"), false)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("設定は冪等", func(t *testing.T) {
		rec := server.Request(http.MethodPut, "/api/v1/blocked-dates/2030-06-01", map[string]bool{"blocked": true}, true)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"changed":false`)
	})

	t.Run("一覧に既定の理由が入る", func(t *testing.T) {
		rec := server.Request(http.MethodGet, "/api/v1/blocked-dates?month=6&year=2030", nil, true)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp []handler.BlockResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, "Blocked by owner", resp[0].Reason)
	})

	t.Run("再度の反転で解除される", func(t *testing.T) {
		rec := server.Request(http.MethodPost, "/api/v1/reservations/block-date", map[string]string{"date": "2030-06-01"}, true)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"blocked":false`)
		assert.Empty(t, unavailableDates(t, server, 6, 2030))
	})
}
