package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/safety-management/internal/compliance"
	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	certificateStates   *prometheus.GaugeVec
	coveragePercent     *prometheus.GaugeVec
	importRows          *prometheus.CounterVec
	statusSyncUpdates   prometheus.Counter
}

// New registers every collector on reg. Pass prometheus.NewRegistry() in
// tests to keep them isolated from the default registry.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		certificateStates: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aso_current_certificates",
				Help: "Current certificates per lifecycle state, as of the last dashboard computation",
			},
			[]string{"tenant", "state"},
		),
		coveragePercent: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aso_coverage_percent",
				Help: "Share of employees holding a valid or expiring certificate",
			},
			[]string{"tenant"},
		),
		importRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aso_import_rows_total",
				Help: "Certificate import rows by outcome",
			},
			[]string{"outcome"},
		),
		statusSyncUpdates: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "aso_status_sync_updates_total",
				Help: "Persisted certificate statuses rewritten by status sync",
			},
		),
	}
}

func (m *Metrics) ObserveReport(tenantID int64, r compliance.Report) {
	tenant := strconv.FormatInt(tenantID, 10)
	m.certificateStates.WithLabelValues(tenant, string(compliance.StateValid)).Set(float64(r.Current.Valid))
	m.certificateStates.WithLabelValues(tenant, string(compliance.StateExpiringSoon)).Set(float64(r.Current.ExpiringSoon))
	m.certificateStates.WithLabelValues(tenant, string(compliance.StateOverdue)).Set(float64(r.Current.Overdue))
	m.certificateStates.WithLabelValues(tenant, string(compliance.StateUnknown)).Set(float64(r.Current.Unknown))
	m.coveragePercent.WithLabelValues(tenant).Set(float64(r.Coverage.Percentage))
}

func (m *Metrics) ObserveImport(succeeded, failed int) {
	m.importRows.WithLabelValues("succeeded").Add(float64(succeeded))
	m.importRows.WithLabelValues("failed").Add(float64(failed))
}

func (m *Metrics) ObserveStatusSync(updated int) {
	m.statusSyncUpdates.Add(float64(updated))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and latencies labelled by route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}

		m.httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(ww.status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
