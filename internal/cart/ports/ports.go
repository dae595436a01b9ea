// Package ports defines the persistence collaborators of the cart context.
package ports

import (
	"context"

	"storefront/internal/cart/models"
	"storefront/pkg/domain"
)

// Store manages session carts. A cart is stored and replaced whole: the
// aggregate is small and copy-on-write, so partial line updates are not part
// of the contract.
//
// Implementations return sentinel errors (pkg/platform/sentinel) for
// infrastructure facts; services translate them into domain codes.
type Store interface {
	// FindBySession returns the session's cart or sentinel.ErrNotFound when
	// no cart has been saved for it yet.
	FindBySession(ctx context.Context, sessionID domain.SessionID) (models.Cart, error)

	// Save writes the cart, replacing any previous version for the session.
	Save(ctx context.Context, cart models.Cart) error

	// Delete removes the session's cart. Deleting an absent cart is not an
	// error: checkout clears the cart without caring whether it raced.
	Delete(ctx context.Context, sessionID domain.SessionID) error

	// NextLineID allocates a fresh cart line id.
	NextLineID(ctx context.Context) (domain.CartLineID, error)
}
