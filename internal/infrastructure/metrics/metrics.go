// Package metrics expone métricas Prometheus de la aplicación (HTTP, patrimonios, importación).
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/inventario-patrimonio/internal/application/ports"
)

var _ ports.Metrics = (*Metrics)(nil)

const namespace = "patrimonio"

// Metrics colectores propios sobre un registro dedicado (no el global).
type Metrics struct {
	reg *prometheus.Registry

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	assetMutations *prometheus.CounterVec
	importRows     *prometheus.CounterVec
	importRuns     prometheus.Counter
}

// New crea y registra los colectores.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		assetMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asset_mutations_total",
			Help:      "Asset writes by operation.",
		}, []string{"op"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spreadsheet_import_rows_total",
			Help:      "Spreadsheet rows processed by import, by result.",
		}, []string{"result"}),
		importRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spreadsheet_imports_total",
			Help:      "Completed spreadsheet imports.",
		}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpInFlight, m.httpRequestsTotal, m.httpRequestDuration,
		m.assetMutations, m.importRows, m.importRuns,
	)
	return m
}

// Handler endpoint de scrape.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Registry registro subyacente (tests).
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// RequestStarted incrementa las peticiones en vuelo; llamar al done devuelto al terminar.
func (m *Metrics) RequestStarted() (done func(method, route string, status int)) {
	m.httpInFlight.Inc()
	start := time.Now()
	return func(method, route string, status int) {
		code := strconv.Itoa(status)
		m.httpRequestDuration.WithLabelValues(method, route, code).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(method, route, code).Inc()
		m.httpInFlight.Dec()
	}
}

// AssetMutation cuenta una escritura de patrimonio (create, update, status, delete, quick_add, purge).
func (m *Metrics) AssetMutation(op string) {
	m.assetMutations.WithLabelValues(op).Inc()
}

// ObserveImport registra el resultado de una importación.
func (m *Metrics) ObserveImport(imported, skipped int) {
	m.importRuns.Inc()
	m.importRows.WithLabelValues("imported").Add(float64(imported))
	m.importRows.WithLabelValues("skipped").Add(float64(skipped))
}
