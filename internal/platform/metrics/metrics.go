package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application-wide Prometheus metrics. Module-specific
// metrics (order placement latency and the like) live next to their module.
type Metrics struct {
	UsersCreated       prometheus.Counter
	ProductsRegistered prometheus.Counter
	CartItemsAdded     prometheus.Counter
}

// New creates and registers all application-wide Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storefront_users_created_total",
			Help: "Total number of users registered",
		}),
		ProductsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storefront_products_registered_total",
			Help: "Total number of products registered in the catalog",
		}),
		CartItemsAdded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storefront_cart_items_added_total",
			Help: "Total number of cart line additions (merges included)",
		}),
	}
}

// IncrementUsersCreated records a successful registration.
func (m *Metrics) IncrementUsersCreated() {
	m.UsersCreated.Inc()
}

// IncrementProductsRegistered records a successful product registration.
func (m *Metrics) IncrementProductsRegistered() {
	m.ProductsRegistered.Inc()
}

// IncrementCartItemsAdded records a cart line addition.
func (m *Metrics) IncrementCartItemsAdded() {
	m.CartItemsAdded.Inc()
}
