package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sanosuguru/go-stay-reservation/internal/pkg/metrics"
)

// SetupMiddleware は共通ミドルウェアを設定する
// storeTimeout が正の場合、各リクエストのコンテキストにその上限時間を設定する
func SetupMiddleware(e *echo.Echo, m *metrics.Metrics, storeTimeout time.Duration) {
	// リクエストID
	e.Use(middleware.RequestID())

	// 構造化リクエストログ（zap）
	e.Use(RequestLogger())

	// パニックリカバリー
	e.Use(middleware.Recover())

	if m != nil {
		e.Use(PrometheusMiddleware(m))
	}

	// CORS
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.PUT, echo.PATCH, echo.POST, echo.DELETE},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	if storeTimeout > 0 {
		e.Use(middleware.ContextTimeout(storeTimeout))
	}
}
