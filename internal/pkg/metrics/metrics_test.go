package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	// 各テストで新しいレジストリを使用
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	require.NotNil(t, m)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.HoldsTotal)
	assert.NotNil(t, m.ReservationsTotal)
	assert.NotNil(t, m.DistributedLockDuration)
	assert.NotNil(t, m.SeatsAvailable)
}

func TestHTTPRequestsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	// リクエストをカウント
	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/venue/availability", "200").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/holds", "201").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/holds", "409").Inc()

	// メトリクスが正しく収集されているか確認
	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "http_requests_total" {
			found = true
			assert.Equal(t, 3, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "http_requests_total metric not found")
}

func TestHoldsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	// 仮押さえ成功・失敗をカウント
	m.HoldsTotal.WithLabelValues("success").Inc()
	m.HoldsTotal.WithLabelValues("success").Inc()
	m.HoldsTotal.WithLabelValues("failure").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "seat_holds_total" {
			found = true
			assert.Equal(t, 2, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "seat_holds_total metric not found")
}

func TestReservationsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	// 予約確定成功・失敗をカウント
	m.ReservationsTotal.WithLabelValues("success").Inc()
	m.ReservationsTotal.WithLabelValues("success").Inc()
	m.ReservationsTotal.WithLabelValues("failure").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "reservations_total" {
			found = true
			assert.Equal(t, 2, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "reservations_total metric not found")
}

func TestDistributedLockDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	// ロック取得時間を観測
	m.DistributedLockDuration.WithLabelValues("acquire", "success").Observe(0.015)
	m.DistributedLockDuration.WithLabelValues("acquire", "failed").Observe(0.005)
	m.DistributedLockDuration.WithLabelValues("release", "success").Observe(0.002)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "distributed_lock_duration_seconds" {
			found = true
		}
	}
	assert.True(t, found, "distributed_lock_duration_seconds metric not found")
}

func TestSeatsAvailable(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	// 空席数を記録
	m.SeatsAvailable.WithLabelValues("venue-1").Set(42)
	m.SeatsAvailable.WithLabelValues("venue-1").Set(40) // 最新値で上書き

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "seats_available" {
			found = true
			require.Equal(t, 1, len(f.GetMetric()))
			assert.Equal(t, float64(40), f.GetMetric()[0].GetGauge().GetValue())
		}
	}
	assert.True(t, found, "seats_available metric not found")
}

func TestHTTPRequestDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	// レイテンシを観測
	m.HTTPRequestDuration.WithLabelValues("GET", "/api/v1/venue/availability").Observe(0.025)
	m.HTTPRequestDuration.WithLabelValues("POST", "/api/v1/holds").Observe(0.150)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "http_request_duration_seconds" {
			found = true
		}
	}
	assert.True(t, found, "http_request_duration_seconds metric not found")
}

func TestRecordHelpers_NilSafe(t *testing.T) {
	// 既存のdefaultMetricsをバックアップ
	oldMetrics := defaultMetrics
	defer func() { defaultMetrics = oldMetrics }()

	// 未初期化でもパニックしない
	defaultMetrics = nil
	RecordHold("success")
	RecordReservation("failure")
	SetSeatsAvailable("venue-1", 10)

	// 初期化後は記録される
	reg := prometheus.NewRegistry()
	defaultMetrics = NewWithRegistry(reg)
	RecordHold("success")
	SetSeatsAvailable("venue-1", 10)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["seat_holds_total"])
	assert.True(t, names["seats_available"])
}

func TestGet_ReturnsDefaultMetrics(t *testing.T) {
	// 既存のdefaultMetricsをバックアップ
	oldMetrics := defaultMetrics
	defer func() { defaultMetrics = oldMetrics }()

	// 新しいレジストリでテスト用メトリクスを作成してdefaultMetricsにセット
	// 注意: Initを呼ぶとデフォルトレジストリに登録するため、テストでは直接セット
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)
	defaultMetrics = m

	got := Get()
	assert.NotNil(t, got)
	assert.Equal(t, m, got)
}
