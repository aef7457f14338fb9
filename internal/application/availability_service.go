package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-stay-reservation/internal/domain/block"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/calendar"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/reservation"
	redisinfra "github.com/sanosuguru/go-stay-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-stay-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-stay-reservation/internal/pkg/metrics"
)

// AvailabilityService は月ごとの予約不可日を算出する
type AvailabilityService struct {
	reservationRepo reservation.Repository
	blockRepo       block.Repository
	resolver        *ConflictResolver
	cache           AvailabilityCache
	cacheTTL        time.Duration
	metrics         *metrics.Metrics
}

// NewAvailabilityService は AvailabilityService を作成する
// cache と m は nil でもよい
func NewAvailabilityService(rr reservation.Repository, br block.Repository, resolver *ConflictResolver, cache AvailabilityCache, cacheTTL time.Duration, m *metrics.Metrics) *AvailabilityService {
	return &AvailabilityService{reservationRepo: rr, blockRepo: br, resolver: resolver, cache: cache, cacheTTL: cacheTTL, metrics: m}
}

// UnavailableDates は指定月の予約不可日を昇順・重複なしで返す
// 不正な月・年の場合は空の結果を返す
func (s *AvailabilityService) UnavailableDates(ctx context.Context, month, year int) ([]calendar.Date, error) {
	window, ok := calendar.MonthWindow(month, year)
	if !ok {
		return []calendar.Date{}, nil
	}
	monthKey := window.Start.MonthKey()

	if s.cache == nil {
		return s.compute(ctx, window)
	}

	dates, err := s.cache.GetUnavailableDates(ctx, monthKey)
	switch {
	case err == nil:
		s.countCache("hit")
		return dates, nil
	case errors.Is(err, redisinfra.ErrCacheMiss):
		s.countCache("miss")
	default:
		s.countCache("error")
		logger.Warn("空き状況キャッシュの取得に失敗", zap.String("month", monthKey), zap.Error(err))
	}

	// 世代はストアを読む前に取得する
	gen, genErr := s.cache.Generation(ctx, monthKey)
	if genErr != nil {
		logger.Warn("空き状況キャッシュの世代取得に失敗", zap.String("month", monthKey), zap.Error(genErr))
	}

	dates, err = s.compute(ctx, window)
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		return dates, nil
	}

	err = s.cache.SetUnavailableDates(ctx, monthKey, gen, dates, s.cacheTTL)
	switch {
	case err == nil:
	case errors.Is(err, redisinfra.ErrStaleGeneration):
		logger.Debug("算出中に無効化されたためキャッシュしません", zap.String("month", monthKey))
	default:
		logger.Warn("空き状況キャッシュの保存に失敗", zap.String("month", monthKey), zap.Error(err))
	}
	return dates, nil
}

func (s *AvailabilityService) compute(ctx context.Context, window calendar.Range) ([]calendar.Date, error) {
	reservations, err := s.reservationRepo.FindOverlapping(ctx, nil, window, s.resolver.blockingStatuses()...)
	if err != nil {
		return nil, fmt.Errorf("予約の取得に失敗: %w", err)
	}
	blocks, err := s.blockRepo.ListInRange(ctx, nil, window)
	if err != nil {
		return nil, fmt.Errorf("ブロック日の取得に失敗: %w", err)
	}

	seen := make(map[calendar.Date]struct{})
	for _, res := range reservations {
		clipped, ok := res.Range().Intersect(window)
		if !ok {
			continue
		}
		for _, d := range clipped.Days() {
			seen[d] = struct{}{}
		}
	}
	for _, b := range blocks {
		if window.Contains(b.Date) {
			seen[b.Date] = struct{}{}
		}
	}

	dates := make([]calendar.Date, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

func (s *AvailabilityService) countCache(result string) {
	if s.metrics != nil {
		s.metrics.AvailabilityCacheTotal.WithLabelValues(result).Inc()
	}
}

// invalidateMonths は範囲が触れる月のキャッシュを無効化する
func invalidateMonths(ctx context.Context, cache AvailabilityCache, monthKeys []string) {
	if cache == nil || len(monthKeys) == 0 {
		return
	}
	if err := cache.Invalidate(ctx, monthKeys...); err != nil {
		logger.Warn("空き状況キャッシュの無効化に失敗", zap.Strings("months", monthKeys), zap.Error(err))
	}
}
