// Package metrics expone las métricas Prometheus del servicio: movimientos aceptados y rechazados,
// fallas de proyección, reconstrucciones y latencia HTTP.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jhoicas/aromas-stock/internal/application/ports"
	"github.com/jhoicas/aromas-stock/internal/domain/entity"
)

var _ ports.StockMetrics = (*Metrics)(nil)

// Metrics contadores e histogramas registrados en un único registry.
type Metrics struct {
	// --- Stock ---
	MovementsAccepted  *prometheus.CounterVec
	MovementsRejected  *prometheus.CounterVec
	ProjectionFailures *prometheus.CounterVec

	// --- Reconstrucción ---
	RebuildDuration        prometheus.Histogram
	RebuildProductsUpdated prometheus.Gauge
	RebuildProductsFailed  prometheus.Gauge

	// --- HTTP ---
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New crea y registra las métricas en reg (prometheus.DefaultRegisterer en producción).
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		MovementsAccepted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_movements_accepted_total",
			Help: "Movimientos registrados en el libro",
		}, []string{"type"}),

		MovementsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_movements_rejected_total",
			Help: "Operaciones rechazadas por motivo",
		}, []string{"type", "reason"}),

		ProjectionFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_projection_failures_total",
			Help: "Movimientos registrados cuyo saldo materializado no pudo actualizarse",
		}, []string{"type"}),

		RebuildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "stock_rebuild_duration_seconds",
			Help:    "Duración de la reconstrucción completa de saldos",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),

		RebuildProductsUpdated: f.NewGauge(prometheus.GaugeOpts{
			Name: "stock_rebuild_products_updated",
			Help: "Productos actualizados en la última reconstrucción",
		}),

		RebuildProductsFailed: f.NewGauge(prometheus.GaugeOpts{
			Name: "stock_rebuild_products_failed",
			Help: "Productos que no pudieron actualizarse en la última reconstrucción",
		}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Solicitudes HTTP por ruta, método y código",
		}, []string{"method", "route", "status"}),

		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de las solicitudes HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) MovementAccepted(kind entity.MovementKind) {
	m.MovementsAccepted.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) MovementRejected(kind entity.MovementKind, reason string) {
	m.MovementsRejected.WithLabelValues(string(kind), reason).Inc()
}

func (m *Metrics) ProjectionFailed(kind entity.MovementKind) {
	m.ProjectionFailures.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) RebuildCompleted(elapsed time.Duration, updated, failed int) {
	m.RebuildDuration.Observe(elapsed.Seconds())
	m.RebuildProductsUpdated.Set(float64(updated))
	m.RebuildProductsFailed.Set(float64(failed))
}

// ObserveHTTP registra una solicitud terminada.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, statusLabel(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
