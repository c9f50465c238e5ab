// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
	storageLatency *prometheus.HistogramVec
	storageFail    *prometheus.CounterVec
	donorsCreated  prometheus.Counter
	donorsDeleted  prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "donordesk_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "donordesk_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		storageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "donordesk_storage_operation_seconds",
			Help:    "ストレージ操作のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		storageFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "donordesk_storage_failure_total",
			Help: "ストレージ操作失敗の合計数",
		}, []string{"operation"}),
		donorsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "donordesk_donors_created_total",
			Help: "登録されたドナーの合計数",
		}),
		donorsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "donordesk_donors_deleted_total",
			Help: "削除されたドナーの合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.storageLatency,
		c.storageFail,
		c.donorsCreated,
		c.donorsDeleted,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordStorageLatency はストレージ操作のレイテンシを操作名別に記録する。
func (c *Collector) RecordStorageLatency(operation string, duration time.Duration) {
	c.storageLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordStorageFailure はストレージ操作の失敗を操作名別に記録する。
func (c *Collector) RecordStorageFailure(operation string) {
	c.storageFail.WithLabelValues(operation).Inc()
}

// RecordDonorCreated はドナー登録を記録する。
func (c *Collector) RecordDonorCreated() {
	c.donorsCreated.Inc()
}

// RecordDonorDeleted はドナー削除を記録する。
func (c *Collector) RecordDonorDeleted() {
	c.donorsDeleted.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
