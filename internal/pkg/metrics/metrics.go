package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 予約作成の試行数（status: success, conflict, invalid, lock_failed, error）
	ReservationsTotal *prometheus.CounterVec

	// カレンダーロックの取得時間（operation: acquire, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec

	// 状態ごとの予約数（status: pending, confirmed, cancelled）
	ActiveReservations *prometheus.GaugeVec

	// 空き状況キャッシュの参照結果（result: hit, miss, error）
	AvailabilityCacheTotal *prometheus.CounterVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ReservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservations_total",
				Help: "Total number of reservation attempts",
			},
			[]string{"status"},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "calendar_lock_duration_seconds",
				Help:    "Time spent acquiring calendar month locks",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
		ActiveReservations: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "reservations_by_status",
				Help: "Current number of stored reservations by status",
			},
			[]string{"status"},
		),
		AvailabilityCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "availability_cache_requests_total",
				Help: "Availability cache lookups by result",
			},
			[]string{"result"},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ReservationsTotal,
		m.DistributedLockDuration,
		m.ActiveReservations,
		m.AvailabilityCacheTotal,
	)

	return m
}

// SetReservationCounts は状態ごとの予約数をゲージに反映する
// counts に含まれない状態は 0 にする
func (m *Metrics) SetReservationCounts(statuses []string, counts map[string]int) {
	for _, s := range statuses {
		m.ActiveReservations.WithLabelValues(s).Set(float64(counts[s]))
	}
}
