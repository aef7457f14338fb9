package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("ロックを取得できませんでした")
	ErrLockNotOwned    = errors.New("ロックの所有者ではありません")
)

const releaseScript = `
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`

// Lock は解放可能なロック
type Lock interface {
	Release(ctx context.Context) error
}

// DistributedLock は Redis を使用した分散ロック
type DistributedLock struct {
	client *redis.Client
	key    string
	value  string
}

// LockManager は分散ロックを管理する
type LockManager struct {
	client *redis.Client
}

func NewLockManager(client *redis.Client) *LockManager {
	return &LockManager{client: client}
}

// AcquireLock はロックを取得する
func (m *LockManager) AcquireLock(ctx context.Context, key string, ttl time.Duration) (*DistributedLock, error) {
	lockKey := fmt.Sprintf("lock:%s", key)
	lockValue := uuid.New().String()

	// SetNX を使用してロックを取得（キーが存在しない場合のみ設定）
	ok, err := m.client.SetNX(ctx, lockKey, lockValue, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("ロック取得に失敗: %w", err)
	}
	if !ok {
		return nil, ErrLockNotAcquired
	}

	return &DistributedLock{
		client: m.client,
		key:    lockKey,
		value:  lockValue,
	}, nil
}

// AcquireLockWithRetry はリトライ付きでロックを取得する
// 待ち時間は試行ごとに retryDelay ずつ伸ばす
func (m *LockManager) AcquireLockWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (*DistributedLock, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		lock, err := m.AcquireLock(ctx, key, ttl)
		if err == nil {
			return lock, nil
		}
		lastErr = err
		if !errors.Is(err, ErrLockNotAcquired) {
			return nil, err
		}
		if i == maxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay * time.Duration(i+1)):
		}
	}
	return nil, lastErr
}

// AcquireMonthLocks は月キーごとの暦ロックを渡された順に取得する
// 途中で失敗した場合は取得済みのロックを解放してエラーを返す
func (m *LockManager) AcquireMonthLocks(ctx context.Context, monthKeys []string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (Lock, error) {
	locks := make(monthLocks, 0, len(monthKeys))
	for _, key := range monthKeys {
		lock, err := m.AcquireLockWithRetry(ctx, "calendar:"+key, ttl, maxRetries, retryDelay)
		if err != nil {
			_ = locks.Release(context.WithoutCancel(ctx))
			return nil, err
		}
		locks = append(locks, lock)
	}
	return locks, nil
}

// monthLocks は取得順に並んだ暦ロック
type monthLocks []*DistributedLock

// Release は取得と逆順に全てのロックを解放し、最初のエラーを返す
func (l monthLocks) Release(ctx context.Context) error {
	var first error
	for i := len(l) - 1; i >= 0; i-- {
		if err := l[i].Release(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Release はロックを解放する（Lua スクリプトで安全に解放）
func (l *DistributedLock) Release(ctx context.Context) error {
	result, err := l.client.Eval(ctx, releaseScript, []string{l.key}, l.value).Int()
	if err != nil {
		return fmt.Errorf("ロック解放に失敗: %w", err)
	}
	if result == 0 {
		return ErrLockNotOwned
	}
	return nil
}
