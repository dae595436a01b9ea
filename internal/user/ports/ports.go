// Package ports defines the persistence collaborators of the user context.
// Rule and application services depend on these shapes, never on a concrete
// storage technology.
package ports

import (
	"context"

	"storefront/internal/user/models"
	"storefront/pkg/domain"
)

// Store manages user records.
//
// Implementations return sentinel errors (pkg/platform/sentinel) for
// infrastructure facts; services translate them into domain codes.
type Store interface {
	// FindByID returns the user or sentinel.ErrNotFound.
	FindByID(ctx context.Context, userID domain.UserID) (models.User, error)

	// FindByEmail returns the user with the given (already normalized)
	// email or sentinel.ErrNotFound.
	FindByEmail(ctx context.Context, email domain.EmailAddress) (models.User, error)

	// ExistsByEmail reports whether the email is taken.
	ExistsByEmail(ctx context.Context, email domain.EmailAddress) (bool, error)

	// CreateIfEmailAvailable atomically checks email uniqueness and inserts,
	// returning sentinel.ErrAlreadyUsed on a clash.
	CreateIfEmailAvailable(ctx context.Context, user models.User) error

	// Update replaces an existing record or returns sentinel.ErrNotFound.
	Update(ctx context.Context, user models.User) error

	// Delete removes a record or returns sentinel.ErrNotFound.
	Delete(ctx context.Context, userID domain.UserID) error

	// List returns users ordered by id with limit/offset pagination.
	List(ctx context.Context, limit, offset int) ([]models.User, error)

	// Count returns the total number of users.
	Count(ctx context.Context) (int, error)

	// CountAdmins returns the number of users with the admin flag set.
	CountAdmins(ctx context.Context) (int, error)

	// NextID allocates a fresh user id.
	NextID(ctx context.Context) (domain.UserID, error)
}
