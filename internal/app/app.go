// Package app assembles the storefront: stores, rule services and
// application services wired together. main and the end-to-end tests share
// this composition root.
package app

import (
	"log/slog"

	cartports "storefront/internal/cart/ports"
	cartservice "storefront/internal/cart/service"
	cartstore "storefront/internal/cart/store"
	catalogports "storefront/internal/catalog/ports"
	catalogservice "storefront/internal/catalog/service"
	catalogstore "storefront/internal/catalog/store"
	ordermetrics "storefront/internal/order/metrics"
	orderports "storefront/internal/order/ports"
	orderservice "storefront/internal/order/service"
	orderstore "storefront/internal/order/store"
	"storefront/internal/platform/metrics"
	userports "storefront/internal/user/ports"
	userservice "storefront/internal/user/service"
	userstore "storefront/internal/user/store"
	"storefront/pkg/platform/audit"
)

// App exposes the storefront's application services.
type App struct {
	Users   *userservice.Service
	Catalog *catalogservice.Service
	Carts   *cartservice.Service
	Orders  *orderservice.Service
}

// Deps carries the swappable edges of the application. Nil stores default to
// process memory; nil observability fields stay off.
type Deps struct {
	Logger       *slog.Logger
	Publisher    audit.Publisher
	UserStore    userports.Store
	CatalogStore catalogports.Store
	CartStore    cartports.Store
	OrderStore   orderports.Store
	AppMetrics   *metrics.Metrics
	OrderMetrics *ordermetrics.Metrics
}

// New builds the full service graph.
func New(deps Deps) (*App, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.UserStore == nil {
		deps.UserStore = userstore.NewInMemory()
	}
	if deps.CatalogStore == nil {
		deps.CatalogStore = catalogstore.NewInMemory()
	}
	if deps.CartStore == nil {
		deps.CartStore = cartstore.NewInMemory()
	}
	if deps.OrderStore == nil {
		deps.OrderStore = orderstore.NewInMemory()
	}

	userRules, err := userservice.NewRules(deps.UserStore, userservice.WithRulesLogger(deps.Logger))
	if err != nil {
		return nil, err
	}
	users, err := userservice.New(deps.UserStore, userRules,
		userservice.WithLogger(deps.Logger),
		userservice.WithAuditPublisher(deps.Publisher),
		userservice.WithMetrics(deps.AppMetrics))
	if err != nil {
		return nil, err
	}

	catalogRules, err := catalogservice.NewRules(deps.CatalogStore, catalogservice.WithRulesLogger(deps.Logger))
	if err != nil {
		return nil, err
	}
	catalog, err := catalogservice.New(deps.CatalogStore, catalogRules,
		catalogservice.WithLogger(deps.Logger),
		catalogservice.WithAuditPublisher(deps.Publisher),
		catalogservice.WithMetrics(deps.AppMetrics))
	if err != nil {
		return nil, err
	}

	carts, err := cartservice.New(deps.CartStore, deps.CatalogStore, cartservice.NewRules(),
		cartservice.WithLogger(deps.Logger),
		cartservice.WithAuditPublisher(deps.Publisher),
		cartservice.WithMetrics(deps.AppMetrics))
	if err != nil {
		return nil, err
	}

	orderRules, err := orderservice.NewRules(deps.OrderStore, orderservice.WithRulesLogger(deps.Logger))
	if err != nil {
		return nil, err
	}
	orders, err := orderservice.New(deps.OrderStore, deps.UserStore, deps.CartStore, deps.CatalogStore, orderRules,
		orderservice.WithLogger(deps.Logger),
		orderservice.WithAuditPublisher(deps.Publisher),
		orderservice.WithMetrics(deps.OrderMetrics))
	if err != nil {
		return nil, err
	}

	return &App{
		Users:   users,
		Catalog: catalog,
		Carts:   carts,
		Orders:  orders,
	}, nil
}

// Inventory names the wired bounded contexts, for startup logging.
func (a *App) Inventory() []string {
	return []string{"user", "catalog", "cart", "order"}
}
