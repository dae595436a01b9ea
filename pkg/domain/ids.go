// Package domain holds the self-validating value types of the storefront
// domain model. Construct values via the NewX/ParseX functions at trust
// boundaries; direct conversion bypasses validation.
package domain

import (
	"strconv"

	"github.com/google/uuid"

	dErrors "storefront/pkg/domain-errors"
)

// Typed identifiers. User, product and order ids share an integer
// representation but are distinct nominal types so the compiler rejects
// cross-kind misuse.
type (
	// UserID identifies a registered user.
	UserID int64
	// ProductID identifies a catalog product.
	ProductID int64
	// OrderID identifies a placed order.
	OrderID int64
	// CartLineID identifies a single line within a session cart.
	CartLineID int64
	// OrderLineID identifies a single line within an order.
	OrderLineID int64
)

// NewUserID validates and returns a UserID.
func NewUserID(v int64) (UserID, error) {
	if v <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "user id must be positive")
	}
	return UserID(v), nil
}

// NewProductID validates and returns a ProductID.
func NewProductID(v int64) (ProductID, error) {
	if v <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "product id must be positive")
	}
	return ProductID(v), nil
}

// NewOrderID validates and returns an OrderID.
func NewOrderID(v int64) (OrderID, error) {
	if v <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "order id must be positive")
	}
	return OrderID(v), nil
}

// NewCartLineID validates and returns a CartLineID.
func NewCartLineID(v int64) (CartLineID, error) {
	if v <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "cart line id must be positive")
	}
	return CartLineID(v), nil
}

// NewOrderLineID validates and returns an OrderLineID.
func NewOrderLineID(v int64) (OrderLineID, error) {
	if v <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "order line id must be positive")
	}
	return OrderLineID(v), nil
}

func (id UserID) IsNil() bool      { return id == 0 }
func (id ProductID) IsNil() bool   { return id == 0 }
func (id OrderID) IsNil() bool     { return id == 0 }
func (id CartLineID) IsNil() bool  { return id == 0 }
func (id OrderLineID) IsNil() bool { return id == 0 }

func (id UserID) String() string      { return strconv.FormatInt(int64(id), 10) }
func (id ProductID) String() string   { return strconv.FormatInt(int64(id), 10) }
func (id OrderID) String() string     { return strconv.FormatInt(int64(id), 10) }
func (id CartLineID) String() string  { return strconv.FormatInt(int64(id), 10) }
func (id OrderLineID) String() string { return strconv.FormatInt(int64(id), 10) }

// SessionID identifies an in-progress cart session. Sessions are minted by
// the edge layer, so unlike the integer entity ids this is uuid-backed.
type SessionID uuid.UUID

// NewSessionID mints a fresh session identifier.
func NewSessionID() SessionID {
	return SessionID(uuid.New())
}

// ParseSessionID constructs a SessionID from external input.
func ParseSessionID(s string) (SessionID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return SessionID{}, dErrors.New(dErrors.CodeValidation, "invalid session id")
	}
	if u == uuid.Nil {
		return SessionID{}, dErrors.New(dErrors.CodeValidation, "session id cannot be nil")
	}
	return SessionID(u), nil
}

func (id SessionID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

func (id SessionID) String() string {
	return uuid.UUID(id).String()
}
