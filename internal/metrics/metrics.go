package metrics

import (
	"context"
	"document-archive/internal/archive"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	ArchiveChanges  *prometheus.CounterVec
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	IndexedDocs     prometheus.Gauge
}

// New registers the service metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ArchiveChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "archive_changes_total",
				Help: "Committed archive, restore and purge operations.",
			},
			[]string{"action"},
		),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP requests by route and status.",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		IndexedDocs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "search_indexed_documents",
			Help: "Documents in the search index after the last rebuild.",
		}),
	}
	reg.MustRegister(m.ArchiveChanges, m.Requests, m.RequestDuration, m.IndexedDocs)
	return m
}

// Middleware records every request under its route pattern.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Changed counts committed archive changes.
func (m *Metrics) Changed(_ context.Context, change archive.Change) {
	m.ArchiveChanges.WithLabelValues(change.Action).Inc()
}

func (m *Metrics) Indexed(n int) {
	m.IndexedDocs.Set(float64(n))
}
