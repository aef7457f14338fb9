package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-stay-reservation/internal/api/handler"
	"github.com/sanosuguru/go-stay-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-stay-reservation/internal/auth"
	"github.com/sanosuguru/go-stay-reservation/internal/config"
)

// Handlers はルーティングに登録するハンドラー群
type Handlers struct {
	Health       *handler.HealthHandler
	Availability *handler.AvailabilityHandler
	Reservation  *handler.ReservationHandler
	Block        *handler.BlockHandler
	// Metrics は /metrics で公開するハンドラー（nil なら公開しない）
	Metrics http.Handler
}

// Register は全ルートを登録する
// オーナー専用ルートは verifier で Bearer トークンを検証する
func Register(e *echo.Echo, h Handlers, verifier auth.Verifier, metricsCfg config.MetricsConfig) {
	e.GET("/health", h.Health.Check)
	if h.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(h.Metrics), middleware.MetricsBasicAuth(metricsCfg))
	}

	v1 := e.Group("/api/v1")
	owner := middleware.OwnerAuth(verifier)

	reservations := v1.Group("/reservations")
	reservations.GET("/available-dates", h.Availability.UnavailableDates)
	reservations.GET("/admission", h.Availability.CheckAdmission)
	reservations.POST("", h.Reservation.Create)
	reservations.GET("", h.Reservation.List, owner)
	reservations.GET("/:id", h.Reservation.GetByID, owner)
	reservations.PATCH("/:id", h.Reservation.Update, owner)
	reservations.DELETE("/:id", h.Reservation.Delete, owner)
	reservations.POST("/block-date", h.Block.Toggle, owner)

	blocked := v1.Group("/blocked-dates", owner)
	blocked.GET("", h.Block.List)
	blocked.GET("/:date", h.Block.Get)
	blocked.PUT("/:date", h.Block.Set)
}
