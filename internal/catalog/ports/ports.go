// Package ports defines the persistence collaborators of the catalog
// context.
package ports

import (
	"context"

	"storefront/internal/catalog/models"
	"storefront/pkg/domain"
)

// SortOrder directs list sorting.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListFilter bounds and orders a catalog listing.
type ListFilter struct {
	Category   domain.Category // zero value: all categories
	ActiveOnly bool
	Limit      int
	Offset     int
	SortBy     string // "name", "price", "created_at"; default id order
	SortOrder  SortOrder
}

// Store manages catalog products.
//
// Implementations return sentinel errors (pkg/platform/sentinel) for
// infrastructure facts; services translate them into domain codes.
type Store interface {
	// FindByID returns the product or sentinel.ErrNotFound.
	FindByID(ctx context.Context, productID domain.ProductID) (models.Product, error)

	// FindByIDs returns the products for the given ids, skipping missing
	// ones. Used to build catalog snapshots for cart/order validation.
	FindByIDs(ctx context.Context, productIDs []domain.ProductID) ([]models.Product, error)

	// FindByName returns the product with the exact (case-insensitive) name
	// or sentinel.ErrNotFound.
	FindByName(ctx context.Context, name string) (models.Product, error)

	// ExistsByName reports whether the name is taken (case-insensitive).
	ExistsByName(ctx context.Context, name string) (bool, error)

	// CreateIfNameAvailable atomically checks name uniqueness and inserts,
	// returning sentinel.ErrAlreadyUsed on a clash.
	CreateIfNameAvailable(ctx context.Context, product models.Product) error

	// Update replaces an existing record or returns sentinel.ErrNotFound.
	Update(ctx context.Context, product models.Product) error

	// Delete removes a record or returns sentinel.ErrNotFound.
	Delete(ctx context.Context, productID domain.ProductID) error

	// List returns products matching the filter.
	List(ctx context.Context, filter ListFilter) ([]models.Product, error)

	// ListActiveByCategory returns all active products in a category.
	// Pricing analysis compares against this population.
	ListActiveByCategory(ctx context.Context, category domain.Category) ([]models.Product, error)

	// Count returns the total number of products.
	Count(ctx context.Context) (int, error)

	// NextID allocates a fresh product id.
	NextID(ctx context.Context) (domain.ProductID, error)
}
