package application

import (
	"context"
	"time"

	"github.com/sanosuguru/go-stay-reservation/internal/domain/calendar"
	redisinfra "github.com/sanosuguru/go-stay-reservation/internal/infrastructure/redis"
)

// LockManager は月単位の暦ロックを取得する
// Redis を無効にしている場合は nil を渡す
type LockManager interface {
	AcquireMonthLocks(ctx context.Context, monthKeys []string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (redisinfra.Lock, error)
}

// AvailabilityCache は月ごとの予約不可日のキャッシュ
// Redis を無効にしている場合は nil を渡す
// SetUnavailableDates は Generation で読んだ世代から無効化が挟まっていれば保存しない
type AvailabilityCache interface {
	GetUnavailableDates(ctx context.Context, monthKey string) ([]calendar.Date, error)
	Generation(ctx context.Context, monthKey string) (int64, error)
	SetUnavailableDates(ctx context.Context, monthKey string, generation int64, dates []calendar.Date, ttl time.Duration) error
	Invalidate(ctx context.Context, monthKeys ...string) error
}

var (
	_ LockManager       = (*redisinfra.LockManager)(nil)
	_ AvailabilityCache = (*redisinfra.AvailabilityCache)(nil)
)
