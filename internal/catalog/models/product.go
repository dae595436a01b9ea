package models

import (
	"strings"
	"time"

	"storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
)

const (
	maxProductNameLength = 200
	maxDescriptionLength = 1000
)

// Product is a sellable catalog entry.
//
// Invariants:
//   - Name is non-empty and at most 200 characters
//   - Description is at most 1000 characters
//   - Stock is a non-negative unit level (plain int, not domain.Count: a
//     sold-out product sits at level 0, which Count cannot represent)
//   - IsAvailableForSale ⇔ Active ∧ Stock > 0
//
// Product is immutable: every mutating method returns a new instance.
type Product struct {
	ID          domain.ProductID
	Name        string
	Description string
	Price       domain.Money
	Stock       int
	Category    domain.Category
	Active      bool
	ImageRef    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProduct creates a fresh active product with both timestamps set to now.
func NewProduct(productID domain.ProductID, name, description string, price domain.Money, stock int, category domain.Category, imageRef string, now time.Time) (Product, error) {
	if productID.IsNil() {
		return Product{}, dErrors.New(dErrors.CodeValidation, "product id is required")
	}
	if err := validateListing(name, description, stock, category); err != nil {
		return Product{}, err
	}
	return Product{
		ID:          productID,
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
		Category:    category,
		Active:      true,
		ImageRef:    imageRef,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// RestoreProduct rehydrates a product from a store, preserving original
// timestamps and active flag.
func RestoreProduct(productID domain.ProductID, name, description string, price domain.Money, stock int, category domain.Category, active bool, imageRef string, createdAt, updatedAt time.Time) (Product, error) {
	p, err := NewProduct(productID, name, description, price, stock, category, imageRef, createdAt)
	if err != nil {
		return Product{}, err
	}
	p.Active = active
	p.UpdatedAt = updatedAt
	return p, nil
}

func validateListing(name, description string, stock int, category domain.Category) error {
	if strings.TrimSpace(name) == "" {
		return dErrors.New(dErrors.CodeValidation, "product name cannot be empty")
	}
	if len(name) > maxProductNameLength {
		return dErrors.Newf(dErrors.CodeValidation, "product name cannot exceed %d characters", maxProductNameLength)
	}
	if len(description) > maxDescriptionLength {
		return dErrors.Newf(dErrors.CodeValidation, "description cannot exceed %d characters", maxDescriptionLength)
	}
	if stock < 0 {
		return dErrors.New(dErrors.CodeValidation, "stock cannot be negative")
	}
	if !category.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid category")
	}
	return nil
}

// IsAvailableForSale reports whether the product can currently be sold.
func (p Product) IsAvailableForSale() bool {
	return p.Active && p.Stock > 0
}

// DecreaseStock returns a copy with the stock level reduced by qty.
// Fails when the product is not available for sale or qty exceeds the
// current level.
func (p Product) DecreaseStock(qty domain.Count, now time.Time) (Product, error) {
	if !p.IsAvailableForSale() {
		return Product{}, dErrors.Newf(dErrors.CodeInsufficientStock, "product %q is not available for sale", p.Name)
	}
	if qty.Value() > p.Stock {
		return Product{}, dErrors.Newf(dErrors.CodeInsufficientStock, "requested %d units of %q but only %d in stock", qty.Value(), p.Name, p.Stock)
	}
	p.Stock -= qty.Value()
	p.UpdatedAt = now
	return p, nil
}

// IncreaseStock returns a copy with the stock level raised by qty.
func (p Product) IncreaseStock(qty domain.Count, now time.Time) Product {
	p.Stock += qty.Value()
	p.UpdatedAt = now
	return p
}

// Activate returns a copy with the active flag set. When the product is
// already active the receiver is returned unchanged so repeated calls do not
// bump UpdatedAt.
func (p Product) Activate(now time.Time) Product {
	if p.Active {
		return p
	}
	p.Active = true
	p.UpdatedAt = now
	return p
}

// Deactivate returns a copy with the active flag cleared. A no-op when
// already inactive, like Activate.
func (p Product) Deactivate(now time.Time) Product {
	if !p.Active {
		return p
	}
	p.Active = false
	p.UpdatedAt = now
	return p
}

// ChangePrice returns a copy with a new price.
func (p Product) ChangePrice(price domain.Money, now time.Time) Product {
	p.Price = price
	p.UpdatedAt = now
	return p
}
