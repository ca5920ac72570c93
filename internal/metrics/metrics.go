// Package metrics содержит Prometheus-метрики шлюза: HTTP-запросы,
// выполнение пакетов и отдельных подзапросов.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Исходы обработки пакета
const (
	OutcomeCompleted = "completed"
	OutcomeRejected  = "rejected"
	OutcomeCyclic    = "cyclic"
	OutcomeFailed    = "failed"
)

var (
	// APIRequestsTotal считает HTTP-запросы по методу, шаблону маршрута и статусу
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_http_requests_total",
			Help: "Total number of HTTP requests handled by the gateway",
		},
		[]string{"method", "route", "status"},
	)

	// APIRequestDuration распределение времени обработки HTTP-запросов
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// BatchesTotal считает запросы $batch по исходу: completed, rejected, cyclic, failed
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_batches_total",
			Help: "Total number of $batch requests by outcome",
		},
		[]string{"outcome"},
	)

	// BatchSize число подзапросов в принятых пакетах
	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gateway_batch_size",
			Help:    "Number of sub-requests per accepted batch",
			Buckets: []float64{1, 2, 5, 10, 20, 50},
		},
	)

	// BatchItemsTotal считает элементы ответа пакета по статусу, включая 424
	BatchItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_batch_items_total",
			Help: "Total number of batch sub-request results by status code",
		},
		[]string{"status"},
	)

	// BatchItemDuration время выполнения подзапроса, включая ожидание после таймаута
	BatchItemDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_batch_item_duration_seconds",
			Help:    "Duration of dispatched batch sub-requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// RecordAPIRequest фиксирует обработанный HTTP-запрос и его длительность
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordBatch фиксирует исход обработки пакета
func RecordBatch(outcome string, size int) {
	BatchesTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeCompleted {
		BatchSize.Observe(float64(size))
	}
}

// RecordBatchItem фиксирует статус элемента ответа пакета
func RecordBatchItem(status int) {
	BatchItemsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

// ObserveDispatch фиксирует длительность выполнения подзапроса
func ObserveDispatch(method string, duration time.Duration) {
	BatchItemDuration.WithLabelValues(method).Observe(duration.Seconds())
}
