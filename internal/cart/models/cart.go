package models

import (
	"time"

	catalog "storefront/internal/catalog/models"
	"storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
)

// Line is a single product selection within a session cart.
//
// Invariants:
//   - belongs to exactly one session
//   - quantity is a valid domain.Count (1-999)
type Line struct {
	ID        domain.CartLineID
	SessionID domain.SessionID
	ProductID domain.ProductID
	Quantity  domain.Count
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewLine creates a cart line with both timestamps set to now.
func NewLine(lineID domain.CartLineID, sessionID domain.SessionID, productID domain.ProductID, qty domain.Count, now time.Time) (Line, error) {
	if lineID.IsNil() {
		return Line{}, dErrors.New(dErrors.CodeValidation, "cart line id is required")
	}
	if sessionID.IsNil() {
		return Line{}, dErrors.New(dErrors.CodeValidation, "session id is required")
	}
	if productID.IsNil() {
		return Line{}, dErrors.New(dErrors.CodeValidation, "product id is required")
	}
	return Line{
		ID:        lineID,
		SessionID: sessionID,
		ProductID: productID,
		Quantity:  qty,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// RestoreLine rehydrates a cart line from a store.
func RestoreLine(lineID domain.CartLineID, sessionID domain.SessionID, productID domain.ProductID, qty domain.Count, createdAt, updatedAt time.Time) (Line, error) {
	l, err := NewLine(lineID, sessionID, productID, qty, createdAt)
	if err != nil {
		return Line{}, err
	}
	l.UpdatedAt = updatedAt
	return l, nil
}

// Cart is one session's in-progress selection: an ordered collection of
// lines with a unique product id per line.
//
// Invariants:
//   - every line's session id equals the cart's
//   - at most one line per product id (AddLine merges)
//
// Cart is immutable: every mutating method returns a new instance with a
// freshly copied line slice.
type Cart struct {
	SessionID domain.SessionID
	Lines     []Line
}

// NewCart creates an empty cart for a session.
func NewCart(sessionID domain.SessionID) (Cart, error) {
	if sessionID.IsNil() {
		return Cart{}, dErrors.New(dErrors.CodeValidation, "session id is required")
	}
	return Cart{SessionID: sessionID}, nil
}

// RestoreCart rehydrates a cart, enforcing session consistency across lines.
func RestoreCart(sessionID domain.SessionID, lines []Line) (Cart, error) {
	cart, err := NewCart(sessionID)
	if err != nil {
		return Cart{}, err
	}
	for _, line := range lines {
		cart, err = cart.AddLine(line)
		if err != nil {
			return Cart{}, err
		}
	}
	return cart, nil
}

func (c Cart) copyLines() []Line {
	out := make([]Line, len(c.Lines))
	copy(out, c.Lines)
	return out
}

// AddLine returns a cart containing the line. When a line for the same
// product already exists the two are merged into one line whose quantity is
// the sum of both; otherwise the line is appended. Fails when the line
// belongs to a different session.
func (c Cart) AddLine(line Line) (Cart, error) {
	if line.SessionID != c.SessionID {
		return Cart{}, dErrors.New(dErrors.CodeValidation, "cart line belongs to a different session")
	}

	lines := c.copyLines()
	for i, existing := range lines {
		if existing.ProductID == line.ProductID {
			merged, err := existing.Quantity.Add(line.Quantity)
			if err != nil {
				return Cart{}, err
			}
			existing.Quantity = merged
			existing.UpdatedAt = line.CreatedAt
			lines[i] = existing
			c.Lines = lines
			return c, nil
		}
	}

	c.Lines = append(lines, line)
	return c, nil
}

// UpdateLine returns a cart with the identified line's quantity replaced.
func (c Cart) UpdateLine(lineID domain.CartLineID, qty domain.Count, now time.Time) (Cart, error) {
	lines := c.copyLines()
	for i, line := range lines {
		if line.ID == lineID {
			line.Quantity = qty
			line.UpdatedAt = now
			lines[i] = line
			c.Lines = lines
			return c, nil
		}
	}
	return Cart{}, dErrors.Newf(dErrors.CodeNotFound, "cart line %s not found", lineID)
}

// RemoveLine returns a cart without the identified line.
func (c Cart) RemoveLine(lineID domain.CartLineID) (Cart, error) {
	lines := c.copyLines()
	for i, line := range lines {
		if line.ID == lineID {
			c.Lines = append(lines[:i], lines[i+1:]...)
			return c, nil
		}
	}
	return Cart{}, dErrors.Newf(dErrors.CodeNotFound, "cart line %s not found", lineID)
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// DistinctProductCount returns the number of lines (one per product).
func (c Cart) DistinctProductCount() int {
	return len(c.Lines)
}

// TotalQuantity returns the unit count summed across lines.
func (c Cart) TotalQuantity() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity.Value()
	}
	return total
}

// QuantityOf returns the units of a product currently in the cart, zero
// when absent.
func (c Cart) QuantityOf(productID domain.ProductID) int {
	for _, line := range c.Lines {
		if line.ProductID == productID {
			return line.Quantity.Value()
		}
	}
	return 0
}

// ProductIDs returns the product ids across lines, in line order.
func (c Cart) ProductIDs() []domain.ProductID {
	out := make([]domain.ProductID, 0, len(c.Lines))
	for _, line := range c.Lines {
		out = append(out, line.ProductID)
	}
	return out
}

// TotalAmount sums price × quantity across lines against the supplied
// catalog snapshot. Fails when any line's product is missing from the
// snapshot: staleness is the caller's problem and must be explicit, so no
// caching happens here.
func (c Cart) TotalAmount(products []catalog.Product) (domain.Money, error) {
	byID := indexProducts(products)
	total, _ := domain.NewMoney(0)
	for _, line := range c.Lines {
		product, ok := byID[line.ProductID]
		if !ok {
			return domain.Money{}, dErrors.Newf(dErrors.CodeNotFound, "product %s not in catalog snapshot", line.ProductID)
		}
		subtotal, err := product.Price.MulCount(line.Quantity)
		if err != nil {
			return domain.Money{}, err
		}
		total, err = total.Add(subtotal)
		if err != nil {
			return domain.Money{}, err
		}
	}
	return total, nil
}

// AllItemsAvailable reports whether every line can be fulfilled from the
// snapshot: product present, active, and stocked to at least the line
// quantity.
func (c Cart) AllItemsAvailable(products []catalog.Product) bool {
	byID := indexProducts(products)
	for _, line := range c.Lines {
		product, ok := byID[line.ProductID]
		if !ok || !product.Active || product.Stock < line.Quantity.Value() {
			return false
		}
	}
	return true
}

// HasUnavailableItems is the negation of AllItemsAvailable.
func (c Cart) HasUnavailableItems(products []catalog.Product) bool {
	return !c.AllItemsAvailable(products)
}

func indexProducts(products []catalog.Product) map[domain.ProductID]catalog.Product {
	byID := make(map[domain.ProductID]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID
}
