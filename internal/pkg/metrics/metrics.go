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

	// 仮押さえの総数（status: success, failure）
	HoldsTotal *prometheus.CounterVec

	// 予約確定の総数（status: success, failure）
	ReservationsTotal *prometheus.CounterVec

	// 分散ロックの操作時間（operation: acquire/release, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec

	// 会場の空席数（venue_id）
	SeatsAvailable *prometheus.GaugeVec
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
		HoldsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_holds_total",
				Help: "Total number of seat hold attempts",
			},
			[]string{"status"},
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
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on distributed lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
		SeatsAvailable: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "seats_available",
				Help: "Current number of available seats per venue",
			},
			[]string{"venue_id"},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HoldsTotal,
		m.ReservationsTotal,
		m.DistributedLockDuration,
		m.SeatsAvailable,
	)

	return m
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}

// RecordHold は仮押さえ試行を記録する。未初期化時は何もしない
func RecordHold(status string) {
	if defaultMetrics != nil {
		defaultMetrics.HoldsTotal.WithLabelValues(status).Inc()
	}
}

// RecordReservation は予約確定試行を記録する。未初期化時は何もしない
func RecordReservation(status string) {
	if defaultMetrics != nil {
		defaultMetrics.ReservationsTotal.WithLabelValues(status).Inc()
	}
}

// SetSeatsAvailable は会場の空席数を記録する。未初期化時は何もしない
func SetSeatsAvailable(venueID string, count int) {
	if defaultMetrics != nil {
		defaultMetrics.SeatsAvailable.WithLabelValues(venueID).Set(float64(count))
	}
}
