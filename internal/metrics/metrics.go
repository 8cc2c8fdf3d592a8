package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
)

const namespace = "storefront"

// NewRegistry returns a registry preloaded with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler exposes reg in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// OrderMetrics records order flow outcomes as Prometheus series.
type OrderMetrics struct {
	placed      prometheus.Counter
	value       prometheus.Histogram
	lines       prometheus.Histogram
	rejected    *prometheus.CounterVec
	cancelled   *prometheus.CounterVec
	transitions *prometheus.CounterVec
	collisions  prometheus.Counter
}

// NewOrderMetrics creates and registers the order collectors.
func NewOrderMetrics(reg *prometheus.Registry) (*OrderMetrics, error) {
	m := &OrderMetrics{
		placed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Orders committed by checkout.",
		}),
		value: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_total_amount",
			Help:      "Grand total of placed orders.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
		lines: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_lines",
			Help:      "Number of lines per placed order.",
			Buckets:   prometheus.LinearBuckets(1, 2, 8),
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_rejections_total",
			Help:      "Checkouts rejected, by error code.",
		}, []string{"code"}),
		cancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_cancellations_total",
			Help:      "Orders cancelled with stock restored, by reason.",
		}, []string{"reason"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_transitions_total",
			Help:      "Order status changes.",
		}, []string{"from", "to"}),
		collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_reference_collisions_total",
			Help:      "Generated order numbers that were already taken.",
		}),
	}

	for _, c := range []prometheus.Collector{m.placed, m.value, m.lines, m.rejected, m.cancelled, m.transitions, m.collisions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *OrderMetrics) OrderPlaced(total decimal.Decimal, lines int) {
	m.placed.Inc()
	m.value.Observe(total.InexactFloat64())
	m.lines.Observe(float64(lines))
}

func (m *OrderMetrics) OrderRejected(code string) {
	m.rejected.WithLabelValues(code).Inc()
}

func (m *OrderMetrics) OrderCancelled(reason string) {
	m.cancelled.WithLabelValues(reason).Inc()
}

func (m *OrderMetrics) StatusChanged(from, to model.OrderStatus) {
	m.transitions.WithLabelValues(string(from), string(to)).Inc()
}

func (m *OrderMetrics) ReferenceCollision() {
	m.collisions.Inc()
}
