// Package metrics exposes Prometheus metrics for imports, logins and HTTP
// responses.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records metrics into a Prometheus registry. It satisfies
// core.Recorder.
type Collector struct {
	importRows     *prometheus.CounterVec
	importDuration prometheus.Histogram
	logins         *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_users_import_rows_total",
			Help: "Import rows by reconciliation outcome.",
		}, []string{"action"}),
		importDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "studio_users_import_duration_seconds",
			Help:    "Time spent reconciling one import.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_users_logins_total",
			Help: "Admin login attempts by result.",
		}, []string{"result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_users_http_responses_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(c.importRows, c.importDuration, c.logins, c.httpStatus)
	return c
}

// RecordImportRows adds n rows with the given outcome.
func (c *Collector) RecordImportRows(action string, n int) {
	if n <= 0 {
		return
	}
	c.importRows.WithLabelValues(action).Add(float64(n))
}

// RecordImportDuration observes how long an import took.
func (c *Collector) RecordImportDuration(d time.Duration) {
	c.importDuration.Observe(d.Seconds())
}

// RecordLogin counts a login attempt.
func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

// RecordHTTPStatus counts a response.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
