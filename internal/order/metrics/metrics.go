package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"storefront/pkg/domain"
)

// Metrics provides observability for the order module: placement volume and
// latency, rejected duplicates, and status-edge traffic.
type Metrics struct {
	OrdersPlaced       prometheus.Counter
	DuplicatesRejected prometheus.Counter
	StatusChanges      *prometheus.CounterVec
	PlaceDuration      prometheus.Histogram
	OrderAmountYen     prometheus.Histogram
}

// New creates a new Metrics instance with all order module metrics registered.
func New() *Metrics {
	return &Metrics{
		OrdersPlaced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Total number of orders placed",
		}),
		DuplicatesRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_duplicate_rejected_total",
			Help: "Total number of order placements rejected as duplicates",
		}),
		StatusChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_order_status_changes_total",
			Help: "Total number of order status transitions by edge",
		}, []string{"from", "to"}),
		PlaceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_order_place_duration_seconds",
			Help:    "Duration of order placement (checkout critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		OrderAmountYen: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_order_amount_yen",
			Help:    "Distribution of placed order totals in yen",
			Buckets: []float64{500, 1000, 2500, 5000, 10000, 25000, 50000, 100000, 500000, 1000000},
		}),
	}
}

// IncrementOrdersPlaced records a successful placement.
func (m *Metrics) IncrementOrdersPlaced() {
	m.OrdersPlaced.Inc()
}

// IncrementDuplicatesRejected records a placement rejected as a duplicate.
func (m *Metrics) IncrementDuplicatesRejected() {
	m.DuplicatesRejected.Inc()
}

// ObserveStatusChange records a status transition edge.
func (m *Metrics) ObserveStatusChange(from, to domain.Status) {
	m.StatusChanges.WithLabelValues(string(from), string(to)).Inc()
}

// ObservePlace records the duration of a placement. Call with time.Now()
// taken at the start of the operation.
func (m *Metrics) ObservePlace(start time.Time) {
	m.PlaceDuration.Observe(time.Since(start).Seconds())
}

// ObserveOrderAmount records a placed order's total.
func (m *Metrics) ObserveOrderAmount(total domain.Money) {
	m.OrderAmountYen.Observe(float64(total.Amount()))
}
