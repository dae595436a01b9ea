package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	cartmodels "storefront/internal/cart/models"
	cartports "storefront/internal/cart/ports"
	catalogmodels "storefront/internal/catalog/models"
	catalogports "storefront/internal/catalog/ports"
	"storefront/internal/order/metrics"
	ordermodels "storefront/internal/order/models"
	orderports "storefront/internal/order/ports"
	usermodels "storefront/internal/user/models"
	userports "storefront/internal/user/ports"
	"storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/audit"
	"storefront/pkg/platform/keyedlock"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/requestcontext"
)

// ShippingInput carries the delivery details for a placement.
type ShippingInput struct {
	Address string
	Phone   string
	Notes   string
}

// Service orchestrates order operations. Placement is serialized per user
// through a keyed lock so the daily and open-order ceiling checks cannot
// interleave with a concurrent placement by the same user.
type Service struct {
	orders    orderports.Store
	users     userports.Store
	carts     cartports.Store
	catalog   catalogports.Store
	rules     *Rules
	locks     *keyedlock.Mutex
	publisher audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithAuditPublisher attaches an audit event sink.
func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

// WithMetrics attaches order module metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs the order application service.
func New(orders orderports.Store, users userports.Store, carts cartports.Store, catalog catalogports.Store, rules *Rules, opts ...Option) (*Service, error) {
	if orders == nil || users == nil || carts == nil || catalog == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "order, user, cart and catalog stores are required")
	}
	if rules == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "order rules are required")
	}
	svc := &Service{
		orders:  orders,
		users:   users,
		carts:   carts,
		catalog: catalog,
		rules:   rules,
		locks:   keyedlock.New(),
		logger:  slog.Default(),
		tracer:  otel.Tracer("storefront/order"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Place turns the session's cart into a pending order: duplicate check,
// creation rules, price snapshot into lines, stock decrease, order insert,
// cart clear.
func (s *Service) Place(ctx context.Context, userID domain.UserID, sessionID domain.SessionID, shipping ShippingInput) (ordermodels.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.Place",
		trace.WithAttributes(
			attribute.String("user.id", userID.String()),
			attribute.String("cart.session_id", sessionID.String()),
		))
	defer span.End()
	start := time.Now()

	var placed ordermodels.Order
	err := s.locks.Do("user:"+userID.String(), func() error {
		user, err := s.loadUser(ctx, userID)
		if err != nil {
			return err
		}

		cart, err := s.carts.FindBySession(ctx, sessionID)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load cart")
		}
		if errors.Is(err, sentinel.ErrNotFound) || cart.IsEmpty() {
			return dErrors.New(dErrors.CodeBusinessRule, "cannot place an order from an empty cart")
		}

		products, err := s.catalog.FindByIDs(ctx, cart.ProductIDs())
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load catalog snapshot")
		}

		now := requestcontext.Now(ctx)

		duplicate, err := s.rules.DetectDuplicateOrder(ctx, userID, cart, now)
		if err != nil {
			return err
		}
		if duplicate {
			s.logger.WarnContext(ctx, "duplicate order rejected", "user_id", userID, "session_id", sessionID)
			if s.metrics != nil {
				s.metrics.IncrementDuplicatesRejected()
			}
			s.emit(ctx, audit.EventDuplicateOrder, userID, 0, "identical product set within the last hour")
			return dErrors.New(dErrors.CodeBusinessRule,
				"an identical order was placed within the last hour; wait before resubmitting")
		}

		if err := s.rules.ValidateCreation(ctx, user, cart, products, now); err != nil {
			if errors.Is(err, errOrderCeiling) {
				s.emit(ctx, audit.EventOrderCeilingReached, userID, 0, err.Error())
			}
			return err
		}

		order, updatedProducts, err := s.buildOrder(ctx, userID, cart, products, shipping, now)
		if err != nil {
			return err
		}

		// Stock is decreased before the insert; ValidateCreation checked
		// every line, so a failure here means catalog drift mid-placement.
		for _, product := range updatedProducts {
			if err := s.catalog.Update(ctx, product); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save stock decrease")
			}
		}
		if err := s.orders.Create(ctx, order); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create order")
		}
		if err := s.carts.Delete(ctx, sessionID); err != nil {
			s.logger.WarnContext(ctx, "failed to clear cart after placement",
				"session_id", sessionID, "order_id", order.ID, "error", err)
		}
		placed = order
		return nil
	})
	if err != nil {
		return ordermodels.Order{}, err
	}

	span.SetAttributes(
		attribute.String("order.id", placed.ID.String()),
		attribute.Int64("order.total_yen", placed.TotalAmount.Amount()),
	)
	s.logger.InfoContext(ctx, "order placed",
		"order_id", placed.ID, "user_id", userID, "total", placed.TotalAmount.Format())
	if s.metrics != nil {
		s.metrics.IncrementOrdersPlaced()
		s.metrics.ObserveOrderAmount(placed.TotalAmount)
		s.metrics.ObservePlace(start)
	}
	s.emit(ctx, audit.EventOrderPlaced, userID, placed.ID, "")

	return placed, nil
}

// buildOrder assembles the order aggregate from the cart against the catalog
// snapshot, snapshotting unit prices, and returns the products with their
// stock already decreased.
func (s *Service) buildOrder(ctx context.Context, userID domain.UserID, cart cartmodels.Cart, products []catalogmodels.Product, shipping ShippingInput, now time.Time) (ordermodels.Order, []catalogmodels.Product, error) {
	orderID, err := s.orders.NextID(ctx)
	if err != nil {
		return ordermodels.Order{}, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate order id")
	}
	order, err := ordermodels.NewOrder(orderID, userID, shipping.Address, shipping.Phone, shipping.Notes, now)
	if err != nil {
		return ordermodels.Order{}, nil, err
	}

	byID := make(map[domain.ProductID]catalogmodels.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	updated := make([]catalogmodels.Product, 0, len(cart.Lines))
	for _, cartLine := range cart.Lines {
		product, ok := byID[cartLine.ProductID]
		if !ok {
			return ordermodels.Order{}, nil, dErrors.Newf(dErrors.CodeNotFound, "product %s no longer exists", cartLine.ProductID)
		}

		lineID, err := s.orders.NextLineID(ctx)
		if err != nil {
			return ordermodels.Order{}, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate order line id")
		}
		line, err := ordermodels.NewLine(lineID, orderID, cartLine.ProductID, cartLine.Quantity, product.Price, now)
		if err != nil {
			return ordermodels.Order{}, nil, err
		}
		order, err = order.AddLine(line)
		if err != nil {
			return ordermodels.Order{}, nil, err
		}

		decreased, err := product.DecreaseStock(cartLine.Quantity, now)
		if err != nil {
			return ordermodels.Order{}, nil, err
		}
		byID[product.ID] = decreased
		updated = append(updated, decreased)
	}

	total, err := order.RecalculateTotalAmount()
	if err != nil {
		return ordermodels.Order{}, nil, err
	}
	return order.WithTotalAmount(total, now), updated, nil
}

// ChangeStatus moves the order along its lifecycle on behalf of actor.
func (s *Service) ChangeStatus(ctx context.Context, actorID domain.UserID, orderID domain.OrderID, next domain.Status) (ordermodels.Order, error) {
	actor, err := s.loadUser(ctx, actorID)
	if err != nil {
		return ordermodels.Order{}, err
	}
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return ordermodels.Order{}, err
	}

	now := requestcontext.Now(ctx)
	if err := s.rules.ValidateStatusChange(ctx, actor, order, next, now); err != nil {
		return ordermodels.Order{}, err
	}

	previous := order.Status
	updated, err := order.UpdateStatus(next, now)
	if err != nil {
		return ordermodels.Order{}, err
	}
	if err := s.orders.Update(ctx, updated); err != nil {
		return ordermodels.Order{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save status change")
	}

	s.logger.InfoContext(ctx, "order status changed",
		"order_id", orderID, "from", previous, "to", next, "actor_id", actorID)
	if s.metrics != nil {
		s.metrics.ObserveStatusChange(previous, next)
	}
	event := audit.EventOrderStatusChanged
	if next == domain.StatusCancelled {
		event = audit.EventOrderCancelled
	}
	s.emit(ctx, event, actorID, orderID, string(previous)+" -> "+string(next))

	return updated, nil
}

// Confirm is a convenience wrapper around ChangeStatus.
func (s *Service) Confirm(ctx context.Context, actorID domain.UserID, orderID domain.OrderID) (ordermodels.Order, error) {
	return s.ChangeStatus(ctx, actorID, orderID, domain.StatusConfirmed)
}

// Ship is a convenience wrapper around ChangeStatus.
func (s *Service) Ship(ctx context.Context, actorID domain.UserID, orderID domain.OrderID) (ordermodels.Order, error) {
	return s.ChangeStatus(ctx, actorID, orderID, domain.StatusShipped)
}

// Deliver is a convenience wrapper around ChangeStatus.
func (s *Service) Deliver(ctx context.Context, actorID domain.UserID, orderID domain.OrderID) (ordermodels.Order, error) {
	return s.ChangeStatus(ctx, actorID, orderID, domain.StatusDelivered)
}

// Cancel is a convenience wrapper around ChangeStatus.
func (s *Service) Cancel(ctx context.Context, actorID domain.UserID, orderID domain.OrderID) (ordermodels.Order, error) {
	return s.ChangeStatus(ctx, actorID, orderID, domain.StatusCancelled)
}

// Get returns the order by id.
func (s *Service) Get(ctx context.Context, orderID domain.OrderID) (ordermodels.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return ordermodels.Order{}, dErrors.Newf(dErrors.CodeNotFound, "order %s not found", orderID)
		}
		return ordermodels.Order{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load order")
	}
	return order, nil
}

// ListForUser returns the user's orders, newest first.
func (s *Service) ListForUser(ctx context.Context, userID domain.UserID) ([]ordermodels.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list orders")
	}
	return orders, nil
}

// SearchByDateRange returns orders created within [from, to).
func (s *Service) SearchByDateRange(ctx context.Context, from, to time.Time) ([]ordermodels.Order, error) {
	orders, err := s.orders.SearchByDateRange(ctx, from, to)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search orders")
	}
	return orders, nil
}

// SearchByAmountRange returns orders whose total lies within [low, high].
func (s *Service) SearchByAmountRange(ctx context.Context, low, high domain.Money) ([]ordermodels.Order, error) {
	orders, err := s.orders.SearchByAmountRange(ctx, low, high)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search orders")
	}
	return orders, nil
}

// Stats aggregates delivered-order count and revenue over [from, to).
func (s *Service) Stats(ctx context.Context, from, to time.Time) (orderports.SalesStats, error) {
	stats, err := s.orders.SalesStats(ctx, from, to)
	if err != nil {
		return orderports.SalesStats{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to aggregate sales")
	}
	return stats, nil
}

func (s *Service) loadUser(ctx context.Context, userID domain.UserID) (usermodels.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return usermodels.User{}, dErrors.Newf(dErrors.CodeNotFound, "user %s not found", userID)
		}
		return usermodels.User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

func (s *Service) emit(ctx context.Context, event audit.AuditEvent, userID domain.UserID, orderID domain.OrderID, reason string) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Emit(ctx, audit.Event{
		Category:  audit.CategoryOf(event),
		Timestamp: requestcontext.Now(ctx),
		Action:    string(event),
		UserID:    userID,
		OrderID:   orderID,
		ActorID:   requestcontext.UserID(ctx),
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "event", event, "error", err)
	}
}
