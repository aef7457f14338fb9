package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-stay-reservation/internal/auth"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/block"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/calendar"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-stay-reservation/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// badRequestErrors は入力不備として 400 を返すドメインエラー
var badRequestErrors = []error{
	reservation.ErrInvalidDateRange,
	reservation.ErrStayTooLong,
	reservation.ErrFullNameRequired,
	reservation.ErrAddressRequired,
	reservation.ErrInvalidMobileNumber,
	reservation.ErrInvalidNumberOfGuests,
	reservation.ErrInvalidPaymentMethod,
	reservation.ErrInvalidStatus,
	reservation.ErrInvalidPaymentStatus,
	block.ErrDateRequired,
	calendar.ErrInvalidDate,
}

// StatusFor はエラーに対応する HTTP ステータスとクライアント向けメッセージを返す
func StatusFor(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(string); ok {
			return he.Code, m
		}
		return he.Code, http.StatusText(he.Code)
	}

	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, err.Error()
		}
	}

	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized, auth.ErrUnauthorized.Error()
	case errors.Is(err, reservation.ErrReservationNotFound):
		return http.StatusNotFound, reservation.ErrReservationNotFound.Error()
	case errors.Is(err, block.ErrBlockNotFound):
		return http.StatusNotFound, block.ErrBlockNotFound.Error()
	case errors.Is(err, reservation.ErrDatesBlocked):
		return http.StatusConflict, reservation.ErrDatesBlocked.Error()
	case errors.Is(err, reservation.ErrDatesUnavailable):
		return http.StatusConflict, reservation.ErrDatesUnavailable.Error()
	case errors.Is(err, block.ErrBlockAlreadyExists):
		return http.StatusConflict, block.ErrBlockAlreadyExists.Error()
	case errors.Is(err, transaction.ErrStoreFailure), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, transaction.ErrStoreFailure.Error()
	}
	return http.StatusInternalServerError, "内部サーバーエラー"
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, message := StatusFor(err)

	// エラーログを出力（5xx エラーの場合）
	if code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	var sendErr error
	if c.Request().Method == http.MethodHead {
		sendErr = c.NoContent(code)
	} else {
		sendErr = c.JSON(code, ErrorResponse{Error: message, Code: code})
	}
	if sendErr != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(sendErr))
	}
}
