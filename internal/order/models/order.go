package models

import (
	"strings"
	"time"

	"storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
)

const (
	maxAddressLength = 500
	maxPhoneLength   = 20
	maxNotesLength   = 1000
)

// Line is a single product purchase within an order. UnitPrice is the
// product price snapshotted at purchase time; later catalog price changes
// never affect it.
type Line struct {
	ID        domain.OrderLineID
	OrderID   domain.OrderID
	ProductID domain.ProductID
	Quantity  domain.Count
	UnitPrice domain.Money
	CreatedAt time.Time
}

// NewLine creates an order line.
func NewLine(lineID domain.OrderLineID, orderID domain.OrderID, productID domain.ProductID, qty domain.Count, unitPrice domain.Money, now time.Time) (Line, error) {
	if lineID.IsNil() {
		return Line{}, dErrors.New(dErrors.CodeValidation, "order line id is required")
	}
	if orderID.IsNil() {
		return Line{}, dErrors.New(dErrors.CodeValidation, "order id is required")
	}
	if productID.IsNil() {
		return Line{}, dErrors.New(dErrors.CodeValidation, "product id is required")
	}
	return Line{
		ID:        lineID,
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  qty,
		UnitPrice: unitPrice,
		CreatedAt: now,
	}, nil
}

// Subtotal returns price-at-purchase × quantity.
func (l Line) Subtotal() (domain.Money, error) {
	return l.UnitPrice.MulCount(l.Quantity)
}

// Order is a placed order: an aggregate of lines with a lifecycle status.
//
// Invariants:
//   - every line's order id equals the order's
//   - at most one line per product id
//   - ShippingAddress and ShippingPhone are non-empty and bounded
//   - Notes is at most 1000 characters
//   - Status only changes along the domain.Status transition table
//
// Order is immutable: every mutating method returns a new instance.
type Order struct {
	ID              domain.OrderID
	UserID          domain.UserID
	TotalAmount     domain.Money
	Status          domain.Status
	ShippingAddress string
	ShippingPhone   string
	Notes           string
	Lines           []Line
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewOrder creates a fresh pending order with no lines.
func NewOrder(orderID domain.OrderID, userID domain.UserID, shippingAddress, shippingPhone, notes string, now time.Time) (Order, error) {
	if orderID.IsNil() {
		return Order{}, dErrors.New(dErrors.CodeValidation, "order id is required")
	}
	if userID.IsNil() {
		return Order{}, dErrors.New(dErrors.CodeValidation, "user id is required")
	}
	if err := validateShipping(shippingAddress, shippingPhone, notes); err != nil {
		return Order{}, err
	}
	total, _ := domain.NewMoney(0)
	return Order{
		ID:              orderID,
		UserID:          userID,
		TotalAmount:     total,
		Status:          domain.StatusPending,
		ShippingAddress: shippingAddress,
		ShippingPhone:   shippingPhone,
		Notes:           notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// RestoreOrder rehydrates an order from a store, preserving status, total
// and timestamps.
func RestoreOrder(orderID domain.OrderID, userID domain.UserID, total domain.Money, status domain.Status, shippingAddress, shippingPhone, notes string, lines []Line, createdAt, updatedAt time.Time) (Order, error) {
	o, err := NewOrder(orderID, userID, shippingAddress, shippingPhone, notes, createdAt)
	if err != nil {
		return Order{}, err
	}
	if !status.IsValid() {
		return Order{}, dErrors.New(dErrors.CodeValidation, "invalid status")
	}
	for _, line := range lines {
		o, err = o.AddLine(line)
		if err != nil {
			return Order{}, err
		}
	}
	o.TotalAmount = total
	o.Status = status
	o.UpdatedAt = updatedAt
	return o, nil
}

func validateShipping(address, phone, notes string) error {
	if strings.TrimSpace(address) == "" {
		return dErrors.New(dErrors.CodeValidation, "shipping address cannot be empty")
	}
	if len(address) > maxAddressLength {
		return dErrors.Newf(dErrors.CodeValidation, "shipping address cannot exceed %d characters", maxAddressLength)
	}
	if strings.TrimSpace(phone) == "" {
		return dErrors.New(dErrors.CodeValidation, "shipping phone cannot be empty")
	}
	if len(phone) > maxPhoneLength {
		return dErrors.Newf(dErrors.CodeValidation, "shipping phone cannot exceed %d characters", maxPhoneLength)
	}
	if len(notes) > maxNotesLength {
		return dErrors.Newf(dErrors.CodeValidation, "notes cannot exceed %d characters", maxNotesLength)
	}
	return nil
}

func (o Order) copyLines() []Line {
	out := make([]Line, len(o.Lines))
	copy(out, o.Lines)
	return out
}

// AddLine returns an order containing the line, merging quantities when a
// line for the same product already exists (same rule as the cart). Fails
// when the line references a different order.
func (o Order) AddLine(line Line) (Order, error) {
	if line.OrderID != o.ID {
		return Order{}, dErrors.New(dErrors.CodeValidation, "order line belongs to a different order")
	}

	lines := o.copyLines()
	for i, existing := range lines {
		if existing.ProductID == line.ProductID {
			merged, err := existing.Quantity.Add(line.Quantity)
			if err != nil {
				return Order{}, err
			}
			existing.Quantity = merged
			lines[i] = existing
			o.Lines = lines
			return o, nil
		}
	}

	o.Lines = append(lines, line)
	return o, nil
}

// UpdateStatus returns an order in the next status. Fails with an invalid
// transition error naming the refused edge and the legal alternatives; a
// transition to the current status is always refused.
func (o Order) UpdateStatus(next domain.Status, now time.Time) (Order, error) {
	if !next.IsValid() {
		return Order{}, dErrors.New(dErrors.CodeValidation, "invalid status")
	}
	if !o.Status.CanTransitionTo(next) {
		return Order{}, dErrors.Newf(dErrors.CodeInvalidTransition,
			"cannot transition order %s from %s to %s (valid transitions: %v)",
			o.ID, o.Status, next, o.Status.ValidTransitions())
	}
	o.Status = next
	o.UpdatedAt = now
	return o, nil
}

// Confirm is a convenience wrapper around UpdateStatus.
func (o Order) Confirm(now time.Time) (Order, error) {
	return o.UpdateStatus(domain.StatusConfirmed, now)
}

// Ship is a convenience wrapper around UpdateStatus.
func (o Order) Ship(now time.Time) (Order, error) {
	return o.UpdateStatus(domain.StatusShipped, now)
}

// Deliver is a convenience wrapper around UpdateStatus.
func (o Order) Deliver(now time.Time) (Order, error) {
	return o.UpdateStatus(domain.StatusDelivered, now)
}

// Cancel is a convenience wrapper around UpdateStatus.
func (o Order) Cancel(now time.Time) (Order, error) {
	return o.UpdateStatus(domain.StatusCancelled, now)
}

// WithTotalAmount returns an order with the stored total replaced.
func (o Order) WithTotalAmount(total domain.Money, now time.Time) Order {
	o.TotalAmount = total
	o.UpdatedAt = now
	return o
}

// RecalculateTotalAmount sums the line subtotals independently of the stored
// TotalAmount. It exists to detect drift between the two; reconciling them
// is the caller's responsibility.
func (o Order) RecalculateTotalAmount() (domain.Money, error) {
	total, _ := domain.NewMoney(0)
	for _, line := range o.Lines {
		subtotal, err := line.Subtotal()
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

// IsOpen reports whether the order still occupies fulfilment capacity
// (pending, confirmed or shipped).
func (o Order) IsOpen() bool {
	return !o.Status.IsTerminal()
}

// ProductIDSet returns the set of product ids across lines.
func (o Order) ProductIDSet() map[domain.ProductID]struct{} {
	set := make(map[domain.ProductID]struct{}, len(o.Lines))
	for _, line := range o.Lines {
		set[line.ProductID] = struct{}{}
	}
	return set
}
