package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stockledger-api/internal/application/ports"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

const namespace = "stockledger"

// Prometheus implementa ports.Metrics sobre un registro propio (no el global).
type Prometheus struct {
	registry *prometheus.Registry

	deliveries        prometheus.Counter
	deliveryNCRs      prometheus.Histogram
	ncrs              *prometheus.CounterVec
	issues            prometheus.Counter
	transfers         *prometheus.CounterVec
	periodCloses      *prometheus.CounterVec
	insufficientStock prometheus.Counter
	httpRequests      *prometheus.HistogramVec
}

var _ ports.Metrics = (*Prometheus)(nil)

// New crea los colectores y los registra, junto con los de runtime de Go y del proceso.
func New() *Prometheus {
	registry := prometheus.NewRegistry()

	m := &Prometheus{
		registry: registry,
		deliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_posted_total",
			Help:      "Entregas contabilizadas",
		}),
		deliveryNCRs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delivery_price_variance_ncrs",
			Help:      "NCR de variación de precio generadas por entrega",
			Buckets:   prometheus.LinearBuckets(0, 1, 6),
		}),
		ncrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ncrs_created_total",
			Help:      "NCR creadas por tipo",
		}, []string{"type"}),
		issues: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issues_posted_total",
			Help:      "Salidas contabilizadas",
		}),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_finished_total",
			Help:      "Transferencias finalizadas por resultado",
		}, []string{"outcome"}),
		periodCloses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "period_close_total",
			Help:      "Eventos de cierre de periodo por resultado",
		}, []string{"outcome"}),
		insufficientStock: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insufficient_stock_total",
			Help:      "Operaciones rechazadas por stock insuficiente",
		}),
		httpRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de las peticiones HTTP",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.deliveries,
		m.deliveryNCRs,
		m.ncrs,
		m.issues,
		m.transfers,
		m.periodCloses,
		m.insufficientStock,
		m.httpRequests,
	)
	return m
}

func (m *Prometheus) DeliveryPosted(ncrs int) {
	m.deliveries.Inc()
	m.deliveryNCRs.Observe(float64(ncrs))
}

func (m *Prometheus) NCRCreated(t entity.NCRType) {
	m.ncrs.WithLabelValues(string(t)).Inc()
}

func (m *Prometheus) IssuePosted() { m.issues.Inc() }

func (m *Prometheus) TransferFinished(outcome string) {
	m.transfers.WithLabelValues(outcome).Inc()
}

func (m *Prometheus) PeriodClose(outcome string) {
	m.periodCloses.WithLabelValues(outcome).Inc()
}

func (m *Prometheus) InsufficientStock() { m.insufficientStock.Inc() }

// ObserveRequest registra la latencia de una petición; route es el patrón de la ruta, no la URL.
func (m *Prometheus) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler expone el registro en formato de exposición de Prometheus.
func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry acceso al registro (tests).
func (m *Prometheus) Registry() *prometheus.Registry {
	return m.registry
}
