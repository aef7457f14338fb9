package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-stay-reservation/internal/domain/calendar"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
	// ErrStaleGeneration は読み取り後に月が無効化されたため保存しなかったことを表す
	ErrStaleGeneration = errors.New("キャッシュの世代が更新されています")
)

// setIfGenerationScript は世代カウンタが読み取り時と同じ場合だけ値を保存する
// KEYS[1]=世代キー KEYS[2]=値キー ARGV[1]=世代 ARGV[2]=値 ARGV[3]=TTL(ms)
const setIfGenerationScript = `
	local gen = redis.call("GET", KEYS[1]) or "0"
	if gen ~= ARGV[1] then
		return 0
	end
	local ttl = tonumber(ARGV[3])
	if ttl > 0 then
		redis.call("SET", KEYS[2], ARGV[2], "PX", ttl)
	else
		redis.call("SET", KEYS[2], ARGV[2])
	end
	return 1
`

// AvailabilityCache は月ごとの予約不可日をキャッシュする
// 月ごとに世代カウンタを持ち、無効化のたびに進める
type AvailabilityCache struct {
	client *redis.Client
}

// NewAvailabilityCache は新しいAvailabilityCacheインスタンスを作成する
func NewAvailabilityCache(client *redis.Client) *AvailabilityCache {
	return &AvailabilityCache{client: client}
}

// GetUnavailableDates は月の予約不可日をキャッシュから取得する
func (c *AvailabilityCache) GetUnavailableDates(ctx context.Context, monthKey string) ([]calendar.Date, error) {
	raw, err := c.client.Get(ctx, c.key(monthKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	var dates []calendar.Date
	if err := json.Unmarshal(raw, &dates); err != nil {
		return nil, fmt.Errorf("キャッシュの復元に失敗: %w", err)
	}
	return dates, nil
}

// Generation は月の現在の世代を返す（一度も無効化されていなければ 0）
func (c *AvailabilityCache) Generation(ctx context.Context, monthKey string) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey(monthKey)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("キャッシュ世代の取得に失敗: %w", err)
	}
	return gen, nil
}

// SetUnavailableDates は世代が generation のままの場合だけ予約不可日を保存する
// 世代が進んでいれば ErrStaleGeneration を返す
func (c *AvailabilityCache) SetUnavailableDates(ctx context.Context, monthKey string, generation int64, dates []calendar.Date, ttl time.Duration) error {
	if dates == nil {
		dates = []calendar.Date{}
	}
	raw, err := json.Marshal(dates)
	if err != nil {
		return fmt.Errorf("キャッシュの変換に失敗: %w", err)
	}
	stored, err := c.client.Eval(ctx, setIfGenerationScript,
		[]string{c.genKey(monthKey), c.key(monthKey)},
		generation, raw, ttl.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	if stored == 0 {
		return ErrStaleGeneration
	}
	return nil
}

// Invalidate は指定した月の世代を進めてキャッシュを削除する
func (c *AvailabilityCache) Invalidate(ctx context.Context, monthKeys ...string) error {
	if len(monthKeys) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range monthKeys {
			pipe.Incr(ctx, c.genKey(k))
			pipe.Del(ctx, c.key(k))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *AvailabilityCache) key(monthKey string) string {
	return fmt.Sprintf("availability:%s", monthKey)
}

func (c *AvailabilityCache) genKey(monthKey string) string {
	return fmt.Sprintf("availability:gen:%s", monthKey)
}
