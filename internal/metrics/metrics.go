// Package metrics exposes Prometheus collectors for the crawl pipeline
// and the SSE server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	registry         prometheus.Registerer
	crawlsTotal      *prometheus.CounterVec
	crawlDuration    prometheus.Histogram
	newsItemsTotal   *prometheus.CounterVec
	platformFailures *prometheus.CounterVec
	pushTotal        *prometheus.CounterVec
	sseClients       prometheus.Gauge
	sseEventsDropped prometheus.Counter
}

// New registers and returns the pipeline metrics. A nil registerer uses
// the default registry.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		registry: reg,
		crawlsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "crawls_total",
				Help:      "Total number of crawl runs",
			},
			[]string{"status"},
		),
		crawlDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "crawl_duration_seconds",
				Help:      "Duration of crawl runs",
				Buckets:   []float64{.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
		newsItemsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "news_items_total",
				Help:      "Total number of news items fetched",
			},
			[]string{"platform"},
		),
		platformFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "platform_failures_total",
				Help:      "Total number of failed platform fetches",
			},
			[]string{"platform"},
		),
		pushTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "push_total",
				Help:      "Total number of notification deliveries",
			},
			[]string{"channel", "status"},
		),
		sseClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sse_clients",
				Help:      "Number of connected SSE clients",
			},
		),
		sseEventsDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sse_events_dropped_total",
				Help:      "Events dropped because an SSE client stalled",
			},
		),
	}

	reg.MustRegister(
		m.crawlsTotal,
		m.crawlDuration,
		m.newsItemsTotal,
		m.platformFailures,
		m.pushTotal,
		m.sseClients,
		m.sseEventsDropped,
	)

	return m
}

// RecordCrawl records the outcome and duration of one crawl run.
func (m *Metrics) RecordCrawl(status string, duration time.Duration) {
	m.crawlsTotal.WithLabelValues(status).Inc()
	m.crawlDuration.Observe(duration.Seconds())
}

// RecordItems adds the number of items fetched for a platform.
func (m *Metrics) RecordItems(platform string, count int) {
	m.newsItemsTotal.WithLabelValues(platform).Add(float64(count))
}

// RecordPlatformFailure counts a platform fetch that gave up.
func (m *Metrics) RecordPlatformFailure(platform string) {
	m.platformFailures.WithLabelValues(platform).Inc()
}

// RecordPush counts a notification delivery.
func (m *Metrics) RecordPush(channel, status string) {
	m.pushTotal.WithLabelValues(channel, status).Inc()
}

// SSEClientConnected bumps the connected-clients gauge.
func (m *Metrics) SSEClientConnected() { m.sseClients.Inc() }

// SSEClientDisconnected lowers the connected-clients gauge.
func (m *Metrics) SSEClientDisconnected() { m.sseClients.Dec() }

// SSEEventDropped counts a dropped SSE delivery.
func (m *Metrics) SSEEventDropped() { m.sseEventsDropped.Inc() }
