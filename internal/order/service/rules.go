package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	cartmodels "storefront/internal/cart/models"
	catalogmodels "storefront/internal/catalog/models"
	ordermodels "storefront/internal/order/models"
	"storefront/internal/order/ports"
	usermodels "storefront/internal/user/models"
	"storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
)

const (
	// maxDailyOrders caps placements per calendar day for non-admins.
	maxDailyOrders = 5
	// maxOpenOrders caps a user's orders in a non-terminal status.
	maxOpenOrders = 10

	minOrderTotalYen = 100
	maxOrderTotalYen = 1_000_000

	// deliveryWindow is how long after the last update a shipped order may
	// still be marked delivered.
	deliveryWindow = 30 * 24 * time.Hour
	// cancellationWindow is how long after confirmation an order may still
	// be cancelled.
	cancellationWindow = 24 * time.Hour

	// duplicateLookback is the window within which an identical product set
	// counts as a resubmission.
	duplicateLookback = time.Hour
)

// errOrderCeiling marks daily and open-order ceiling rejections so the
// application service can raise the security audit signal for them.
var errOrderCeiling = errors.New("order ceiling reached")

// Rules enforces the cross-entity order invariants: placement ceilings,
// availability and stock across the whole cart, total bounds, status-change
// permissions and time boxes, and duplicate detection.
//
// Rules are read-only: a failed call has made no entity mutation.
type Rules struct {
	orders ports.Store
	logger *slog.Logger
}

// RulesOption configures a Rules instance.
type RulesOption func(*Rules)

// WithRulesLogger attaches a structured logger.
func WithRulesLogger(logger *slog.Logger) RulesOption {
	return func(r *Rules) { r.logger = logger }
}

// NewRules constructs the order rule service.
func NewRules(orders ports.Store, opts ...RulesOption) (*Rules, error) {
	if orders == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "order store is required")
	}
	r := &Rules{
		orders: orders,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// ValidateCreation checks whether user may turn cart into an order, against
// the supplied catalog snapshot. The chain is ordered: cart non-empty, daily
// ceiling (admins exempt), open-order ceiling, per-line availability,
// per-line stock, total bounds.
func (r *Rules) ValidateCreation(ctx context.Context, user usermodels.User, cart cartmodels.Cart, products []catalogmodels.Product, now time.Time) error {
	if cart.IsEmpty() {
		return dErrors.New(dErrors.CodeBusinessRule, "cannot place an order from an empty cart")
	}

	if !user.Admin {
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		placedToday, err := r.orders.CountByUserSince(ctx, user.ID, startOfDay)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count today's orders")
		}
		if placedToday >= maxDailyOrders {
			return dErrors.Wrap(errOrderCeiling, dErrors.CodeBusinessRule,
				fmt.Sprintf("daily limit of %d orders reached", maxDailyOrders))
		}
	}

	open, err := r.orders.CountOpenByUser(ctx, user.ID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count open orders")
	}
	if open >= maxOpenOrders {
		return dErrors.Wrap(errOrderCeiling, dErrors.CodeBusinessRule,
			fmt.Sprintf("limit of %d open orders reached", maxOpenOrders))
	}

	byID := make(map[domain.ProductID]catalogmodels.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, line := range cart.Lines {
		product, ok := byID[line.ProductID]
		if !ok {
			return dErrors.Newf(dErrors.CodeNotFound, "product %s no longer exists", line.ProductID)
		}
		if !product.IsAvailableForSale() {
			return dErrors.Newf(dErrors.CodeBusinessRule, "product %q is no longer available", product.Name)
		}
		if line.Quantity.Value() > product.Stock {
			return dErrors.Newf(dErrors.CodeInsufficientStock,
				"requested %d units of %q but only %d in stock", line.Quantity.Value(), product.Name, product.Stock)
		}
	}

	total, err := cart.TotalAmount(products)
	if err != nil {
		return err
	}
	if total.Amount() < minOrderTotalYen {
		return dErrors.Newf(dErrors.CodeBusinessRule, "order total %s is below the ¥%d minimum", total.Format(), int64(minOrderTotalYen))
	}
	if total.Amount() > maxOrderTotalYen {
		return dErrors.Newf(dErrors.CodeBusinessRule, "order total %s exceeds the ¥%d maximum", total.Format(), int64(maxOrderTotalYen))
	}
	return nil
}

// ValidateStatusChange layers permission and time-box policy on top of the
// entity's own transition legality: owners may cancel their own orders,
// every other transition requires an admin; shipped orders cannot be marked
// delivered more than 30 days after the last update; confirmed orders cannot
// be cancelled more than 24 hours after confirmation.
func (r *Rules) ValidateStatusChange(_ context.Context, actor usermodels.User, order ordermodels.Order, next domain.Status, now time.Time) error {
	if !next.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid status")
	}
	if !order.Status.CanTransitionTo(next) {
		return dErrors.Newf(dErrors.CodeInvalidTransition,
			"cannot transition order %s from %s to %s (valid transitions: %v)",
			order.ID, order.Status, next, order.Status.ValidTransitions())
	}

	ownerCancelling := actor.ID == order.UserID && next == domain.StatusCancelled
	if !ownerCancelling && !actor.Admin {
		return dErrors.Newf(dErrors.CodePermission, "changing an order to %s requires an administrator", next)
	}

	if order.Status == domain.StatusShipped && next == domain.StatusDelivered {
		if now.Sub(order.UpdatedAt) > deliveryWindow {
			return dErrors.Newf(dErrors.CodeBusinessRule,
				"order %s shipped more than %d days ago and can no longer be marked delivered",
				order.ID, int(deliveryWindow.Hours()/24))
		}
	}
	if order.Status == domain.StatusConfirmed && next == domain.StatusCancelled {
		if now.Sub(order.UpdatedAt) > cancellationWindow {
			return dErrors.Newf(dErrors.CodeBusinessRule,
				"order %s was confirmed more than %d hours ago and can no longer be cancelled",
				order.ID, int(cancellationWindow.Hours()))
		}
	}
	return nil
}

// DetectDuplicateOrder reports whether the cart looks like a resubmission:
// some order of the user's within the lookback window has a product-id set
// exactly equal (order-independent) to the cart's.
func (r *Rules) DetectDuplicateOrder(ctx context.Context, userID domain.UserID, cart cartmodels.Cart, now time.Time) (bool, error) {
	if cart.IsEmpty() {
		return false, nil
	}

	recent, err := r.orders.ListByUserSince(ctx, userID, now.Add(-duplicateLookback))
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list recent orders")
	}

	cartSet := make(map[domain.ProductID]struct{}, len(cart.Lines))
	for _, line := range cart.Lines {
		cartSet[line.ProductID] = struct{}{}
	}

	for _, order := range recent {
		if sameProductSet(cartSet, order.ProductIDSet()) {
			return true, nil
		}
	}
	return false, nil
}

func sameProductSet(a, b map[domain.ProductID]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}
