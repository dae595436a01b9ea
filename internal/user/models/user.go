package models

import (
	"strings"
	"time"

	"storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
)

const (
	maxNameLength  = 50
	maxPhoneLength = 20
)

// User is a registered customer or administrator.
//
// Invariants:
//   - FirstName and LastName are non-empty and at most 50 characters
//   - Phone, when present, is at most 20 characters
//   - CreatedAt is immutable after construction
//
// User is immutable: every mutating method returns a new instance and leaves
// the receiver untouched, so concurrent readers never need defensive copies.
type User struct {
	ID        domain.UserID
	Email     domain.EmailAddress
	FirstName string
	LastName  string
	Phone     string
	Admin     bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser creates a fresh non-admin user with both timestamps set to now.
func NewUser(userID domain.UserID, email domain.EmailAddress, firstName, lastName, phone string, now time.Time) (User, error) {
	if err := validateProfile(firstName, lastName, phone); err != nil {
		return User{}, err
	}
	if userID.IsNil() {
		return User{}, dErrors.New(dErrors.CodeValidation, "user id is required")
	}
	if email.IsNil() {
		return User{}, dErrors.New(dErrors.CodeValidation, "email is required")
	}
	return User{
		ID:        userID,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// RestoreUser rehydrates a user from a store, preserving original
// timestamps and admin flag. The same invariants apply.
func RestoreUser(userID domain.UserID, email domain.EmailAddress, firstName, lastName, phone string, admin bool, createdAt, updatedAt time.Time) (User, error) {
	u, err := NewUser(userID, email, firstName, lastName, phone, createdAt)
	if err != nil {
		return User{}, err
	}
	u.Admin = admin
	u.UpdatedAt = updatedAt
	return u, nil
}

func validateProfile(firstName, lastName, phone string) error {
	if strings.TrimSpace(firstName) == "" {
		return dErrors.New(dErrors.CodeValidation, "first name cannot be empty")
	}
	if len(firstName) > maxNameLength {
		return dErrors.Newf(dErrors.CodeValidation, "first name cannot exceed %d characters", maxNameLength)
	}
	if strings.TrimSpace(lastName) == "" {
		return dErrors.New(dErrors.CodeValidation, "last name cannot be empty")
	}
	if len(lastName) > maxNameLength {
		return dErrors.Newf(dErrors.CodeValidation, "last name cannot exceed %d characters", maxNameLength)
	}
	if len(phone) > maxPhoneLength {
		return dErrors.Newf(dErrors.CodeValidation, "phone cannot exceed %d characters", maxPhoneLength)
	}
	return nil
}

// FullName returns the display name.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Promote returns a copy with the admin flag set. A no-op when the user is
// already an admin (the receiver is returned unchanged, UpdatedAt untouched).
func (u User) Promote(now time.Time) User {
	if u.Admin {
		return u
	}
	u.Admin = true
	u.UpdatedAt = now
	return u
}

// Demote returns a copy with the admin flag cleared. A no-op when the user
// is not an admin.
func (u User) Demote(now time.Time) User {
	if !u.Admin {
		return u
	}
	u.Admin = false
	u.UpdatedAt = now
	return u
}

// WithProfile returns a copy with updated name and phone fields.
func (u User) WithProfile(firstName, lastName, phone string, now time.Time) (User, error) {
	if err := validateProfile(firstName, lastName, phone); err != nil {
		return User{}, err
	}
	u.FirstName = firstName
	u.LastName = lastName
	u.Phone = phone
	u.UpdatedAt = now
	return u, nil
}
