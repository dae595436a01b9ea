// Package ports defines the persistence collaborators of the order context.
package ports

import (
	"context"
	"time"

	"storefront/internal/order/models"
	"storefront/pkg/domain"
)

// SalesStats is an aggregate over delivered orders. TotalRevenue is a plain
// yen sum: the Money range invariant bounds a single order's total, not a
// period's revenue, which legitimately exceeds it.
type SalesStats struct {
	OrderCount   int
	TotalRevenue int64
}

// Store manages placed orders.
//
// Implementations return sentinel errors (pkg/platform/sentinel) for
// infrastructure facts; services translate them into domain codes.
type Store interface {
	// FindByID returns the order with its lines or sentinel.ErrNotFound.
	FindByID(ctx context.Context, orderID domain.OrderID) (models.Order, error)

	// Create inserts a new order, returning sentinel.ErrConflict when the id
	// is taken.
	Create(ctx context.Context, order models.Order) error

	// Update replaces an existing record or returns sentinel.ErrNotFound.
	Update(ctx context.Context, order models.Order) error

	// ListByUser returns a user's orders, newest first.
	ListByUser(ctx context.Context, userID domain.UserID) ([]models.Order, error)

	// ListByUserSince returns a user's orders created at or after the cutoff,
	// newest first. Daily quota and duplicate detection read through this.
	ListByUserSince(ctx context.Context, userID domain.UserID, cutoff time.Time) ([]models.Order, error)

	// CountByUserSince counts a user's orders created at or after the cutoff,
	// regardless of status.
	CountByUserSince(ctx context.Context, userID domain.UserID, cutoff time.Time) (int, error)

	// CountOpenByUser counts a user's orders in a non-terminal status.
	CountOpenByUser(ctx context.Context, userID domain.UserID) (int, error)

	// SearchByDateRange returns orders created within [from, to), newest first.
	SearchByDateRange(ctx context.Context, from, to time.Time) ([]models.Order, error)

	// SearchByAmountRange returns orders whose total lies within
	// [low, high], newest first.
	SearchByAmountRange(ctx context.Context, low, high domain.Money) ([]models.Order, error)

	// SalesStats aggregates count and revenue over delivered orders created
	// within [from, to).
	SalesStats(ctx context.Context, from, to time.Time) (SalesStats, error)

	// NextID allocates a fresh order id.
	NextID(ctx context.Context) (domain.OrderID, error)

	// NextLineID allocates a fresh order line id.
	NextLineID(ctx context.Context) (domain.OrderLineID, error)
}
