package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-stay-reservation/internal/api"
	"github.com/sanosuguru/go-stay-reservation/internal/api/handler"
	"github.com/sanosuguru/go-stay-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-stay-reservation/internal/api/router"
	"github.com/sanosuguru/go-stay-reservation/internal/application"
	"github.com/sanosuguru/go-stay-reservation/internal/auth"
	"github.com/sanosuguru/go-stay-reservation/internal/config"
	redisinfra "github.com/sanosuguru/go-stay-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-stay-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-stay-reservation/internal/pkg/metrics"
	"github.com/sanosuguru/go-stay-reservation/internal/worker"
)

func main() {
	// .env はローカル開発用（存在しなくてもよい）
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.Env)
	defer logger.Sync()

	// ストア
	store := openStorage(cfg)
	defer store.close()

	healthChecks := map[string]handler.HealthCheck{}
	if store.health != nil {
		healthChecks["database"] = store.health
	}

	// Redis（任意）
	var (
		redisClient *goredis.Client
		lockManager application.LockManager
		cache       application.AvailabilityCache
	)
	if cfg.Redis.Enabled {
		redisClient = redisinfra.NewClient(&cfg.Redis)
		defer redisClient.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisinfra.Ping(ctx, redisClient); err != nil {
			logger.Warn("Redisに接続できません。ロックとキャッシュなしで起動します", zap.Error(err))
		}
		cancel()

		lockManager = redisinfra.NewLockManager(redisClient)
		cache = redisinfra.NewAvailabilityCache(redisClient)
		healthChecks["redis"] = func(ctx context.Context) error { return redisinfra.Ping(ctx, redisClient) }
	}

	if cfg.Owner.JWTSecret == "" {
		logger.Warn("JWT_SECRET が未設定のため、オーナー用APIはすべて拒否されます")
	}

	m := metrics.New()

	// リポジトリとサービス
	reservationRepo := store.reservations
	blockRepo := store.blocks
	txManager := store.txManager

	resolver := application.NewConflictResolver(reservationRepo, blockRepo, cfg.Booking.AdmissionPolicy)
	availabilityService := application.NewAvailabilityService(reservationRepo, blockRepo, resolver, cache, cfg.Booking.AvailabilityCacheTTL, m)
	reservationService := application.NewReservationService(txManager, reservationRepo, resolver, lockManager, cache, m, cfg.Booking)
	blockService := application.NewBlockService(blockRepo, cache)

	// Echo インスタンス作成
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	middleware.SetupMiddleware(e, m, cfg.Server.StoreTimeout)
	router.Register(e, router.Handlers{
		Health:       handler.NewHealthHandler(healthChecks),
		Availability: handler.NewAvailabilityHandler(availabilityService, resolver),
		Reservation:  handler.NewReservationHandler(reservationService),
		Block:        handler.NewBlockHandler(blockService),
		Metrics:      promhttp.Handler(),
	}, auth.NewJWTVerifier(cfg.Owner.JWTSecret, cfg.Owner.Issuer), cfg.Metrics)

	// 予約統計コレクター
	collector := worker.NewReservationStatsCollector(reservationService, m, cfg.Booking.StatsInterval)
	go collector.Start(context.Background())

	// サーバー起動
	go func() {
		logger.Info("サーバーを起動します",
			zap.String("port", cfg.Server.Port),
			zap.String("store", string(cfg.Store)),
			zap.String("admission_policy", string(cfg.Booking.AdmissionPolicy)),
			zap.Bool("redis", cfg.Redis.Enabled),
		)
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")
	collector.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
		return
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
