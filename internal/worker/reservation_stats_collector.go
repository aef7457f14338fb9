package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-stay-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-stay-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-stay-reservation/internal/pkg/metrics"
)

// ReservationCounter は状態ごとの予約数を返すインターフェース
type ReservationCounter interface {
	CountByStatus(ctx context.Context) (map[reservation.Status]int, error)
}

var trackedStatuses = []string{
	string(reservation.StatusPending),
	string(reservation.StatusConfirmed),
	string(reservation.StatusCancelled),
}

// ReservationStatsCollector は予約数を定期的に集計してメトリクスに反映するワーカー
type ReservationStatsCollector struct {
	counter  ReservationCounter
	metrics  *metrics.Metrics
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// defaultStatsInterval は interval が正でない場合の集計間隔
const defaultStatsInterval = time.Minute

// NewReservationStatsCollector は新しいコレクターを作成
func NewReservationStatsCollector(rc ReservationCounter, m *metrics.Metrics, interval time.Duration) *ReservationStatsCollector {
	if interval <= 0 {
		interval = defaultStatsInterval
	}
	return &ReservationStatsCollector{
		counter:  rc,
		metrics:  m,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start はコレクターを開始する（起動直後に一度集計する）
func (c *ReservationStatsCollector) Start(ctx context.Context) {
	logger.Info("予約統計コレクター開始", zap.Duration("interval", c.interval))

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.doneCh)

	c.collect(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("予約統計コレクター停止（コンテキストキャンセル）")
			return
		case <-c.stopCh:
			logger.Info("予約統計コレクター停止（シグナル受信）")
			return
		case <-ticker.C:
			c.collect(ctx)
		}
	}
}

// Stop はコレクターを停止し、終了を待つ
func (c *ReservationStatsCollector) Stop() {
	close(c.stopCh)
	<-c.doneCh
}

func (c *ReservationStatsCollector) collect(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.interval)
	defer cancel()

	counts, err := c.counter.CountByStatus(ctx)
	if err != nil {
		logger.Error("予約数の集計に失敗", zap.Error(err))
		return
	}

	byName := make(map[string]int, len(counts))
	for status, n := range counts {
		byName[string(status)] = n
	}
	c.metrics.SetReservationCounts(trackedStatuses, byName)
	logger.Debug("予約数を集計",
		zap.Int("pending", byName[string(reservation.StatusPending)]),
		zap.Int("confirmed", byName[string(reservation.StatusConfirmed)]),
	)
}
