// Package metrics exposes Gemmy's Prometheus instrumentation: order and
// trade counters, matching latency, live depth gauges, and event-bus
// traffic counters.
package metrics

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pepemon42069/gemmy/pkg/log"
)

// Metrics bundles every Prometheus collector Gemmy exposes under one
// registry, scoped to a namespace (typically the instrument's ticker).
type Metrics struct {
	namespace string
	registry  *prometheus.Registry
	logger    log.Logger

	ordersProcessed prometheus.CounterVec
	ordersRejected  prometheus.CounterVec
	tradesExecuted  prometheus.Counter
	orderBookDepth  prometheus.GaugeVec
	matchingLatency prometheus.Histogram
	rfqRequests     prometheus.Counter

	eventsPublished prometheus.Counter
	eventsFailed    prometheus.Counter

	memoryUsage prometheus.Gauge
	goroutines  prometheus.Gauge
}

// New creates and registers every collector under namespace. Call
// StartServer to expose them over HTTP.
func New(namespace string) (*Metrics, error) {
	logger := log.NewLogger("metrics")
	registry := prometheus.NewRegistry()

	m := &Metrics{
		namespace: namespace,
		registry:  registry,
		logger:    logger,

		ordersProcessed: *prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_processed_total",
			Help:      "Total number of order operations accepted by kind",
		}, []string{"kind"}),

		ordersRejected: *prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Total number of order operations rejected by reason",
		}, []string{"reason"}),

		tradesExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_executed_total",
			Help:      "Total number of individual fill records produced",
		}),

		orderBookDepth: *prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "orderbook_depth",
			Help:      "Current aggregate resting quantity by side",
		}, []string{"side"}),

		matchingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "matching_latency_nanoseconds",
			Help:      "Execute() wall-clock latency in nanoseconds",
			Buckets:   []float64{100, 250, 500, 1000, 2500, 5000, 10000, 25000, 50000, 100000},
		}),

		rfqRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rfq_requests_total",
			Help:      "Total number of RFQ evaluations served",
		}),

		eventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eventbus_published_total",
			Help:      "Total number of events published to the event bus",
		}),

		eventsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eventbus_publish_failures_total",
			Help:      "Total number of event bus publish failures",
		}),

		memoryUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_usage_bytes",
			Help:      "Current process heap allocation in bytes",
		}),

		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "goroutines_count",
			Help:      "Current number of live goroutines",
		}),
	}

	registry.MustRegister(
		m.ordersProcessed,
		m.ordersRejected,
		m.tradesExecuted,
		m.orderBookDepth,
		m.matchingLatency,
		m.rfqRequests,
		m.eventsPublished,
		m.eventsFailed,
		m.memoryUsage,
		m.goroutines,
	)

	logger.Info("metrics registry initialized", "namespace", namespace)
	return m, nil
}

// StartServer exposes the registry on /metrics over HTTP in a background
// goroutine. It does not block the caller.
func (m *Metrics) StartServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			m.logger.Error("metrics server stopped", "error", err)
		}
	}()

	m.logger.Info("metrics endpoint listening", "addr", addr)
}

func (m *Metrics) RecordOrderAccepted(kind string) { m.ordersProcessed.WithLabelValues(kind).Inc() }

func (m *Metrics) RecordOrderRejected(reason string) { m.ordersRejected.WithLabelValues(reason).Inc() }

func (m *Metrics) RecordTrades(n int) { m.tradesExecuted.Add(float64(n)) }

func (m *Metrics) RecordMatchingLatency(d time.Duration) {
	m.matchingLatency.Observe(float64(d.Nanoseconds()))
}

func (m *Metrics) UpdateDepth(side string, quantity uint64) {
	m.orderBookDepth.WithLabelValues(side).Set(float64(quantity))
}

func (m *Metrics) RecordRfqRequest() { m.rfqRequests.Inc() }

func (m *Metrics) RecordEventPublished() { m.eventsPublished.Inc() }

func (m *Metrics) RecordEventFailed() { m.eventsFailed.Inc() }

// CollectRuntimeMetrics samples heap and goroutine counts every interval
// until ctx is cancelled. Intended to run in its own goroutine.
func (m *Metrics) CollectRuntimeMetrics(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var memStats runtime.MemStats
			runtime.ReadMemStats(&memStats)
			m.memoryUsage.Set(float64(memStats.Alloc))
			m.goroutines.Set(float64(runtime.NumGoroutine()))
		}
	}
}
