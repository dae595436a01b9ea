package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"storefront/internal/user/models"
	"storefront/internal/user/ports"
	"storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
)

const (
	// maxAdmins caps the number of concurrent administrators.
	maxAdmins = 5

	prohibitedNameRunes = `<>{}[]()/\|;"'` + "`"
)

// reservedNames may not be used as a first or last name; they collide with
// role vocabulary shown in support tooling.
var reservedNames = map[string]bool{
	"admin":         true,
	"administrator": true,
	"root":          true,
	"system":        true,
	"support":       true,
	"staff":         true,
}

// Rules enforces the user invariants no single entity can enforce alone:
// email uniqueness, name policy, and the admin-count safety rules.
//
// Rules are read-only: a failed call has made no entity mutation.
type Rules struct {
	store  ports.Store
	logger *slog.Logger
}

// RulesOption configures a Rules instance.
type RulesOption func(*Rules)

// WithRulesLogger attaches a structured logger.
func WithRulesLogger(logger *slog.Logger) RulesOption {
	return func(r *Rules) { r.logger = logger }
}

// NewRules constructs the user rule service.
func NewRules(store ports.Store, opts ...RulesOption) (*Rules, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "user store is required")
	}
	r := &Rules{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// ValidateRegistration checks email uniqueness and the name policy for a
// prospective registration.
func (r *Rules) ValidateRegistration(ctx context.Context, email domain.EmailAddress, firstName, lastName string) error {
	taken, err := r.store.ExistsByEmail(ctx, email)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check email uniqueness")
	}
	if taken {
		return dErrors.Newf(dErrors.CodeBusinessRule, "email %s is already registered", email)
	}

	for _, name := range []string{firstName, lastName} {
		if err := validateNamePolicy(name); err != nil {
			return err
		}
	}
	return nil
}

// validateNamePolicy rejects names with prohibited characters, purely
// numeric names, and reserved words.
func validateNamePolicy(name string) error {
	if strings.ContainsAny(name, prohibitedNameRunes) {
		return dErrors.Newf(dErrors.CodeBusinessRule, "name %q contains prohibited characters", name)
	}
	if isPurelyNumeric(name) {
		return dErrors.Newf(dErrors.CodeBusinessRule, "name %q cannot be purely numeric", name)
	}
	if reservedNames[strings.ToLower(strings.TrimSpace(name))] {
		return dErrors.Newf(dErrors.CodeBusinessRule, "name %q is reserved", name)
	}
	return nil
}

func isPurelyNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ValidateAdminPromotion checks whether actor may grant target the admin
// flag: actor must be an admin, may not target themselves, target must not
// already be one, and the promotion must not exceed the admin ceiling.
func (r *Rules) ValidateAdminPromotion(ctx context.Context, actor, target models.User) error {
	if !actor.Admin {
		return dErrors.New(dErrors.CodePermission, "only administrators can promote users")
	}
	if actor.ID == target.ID {
		return dErrors.New(dErrors.CodePermission, "administrators cannot change their own role")
	}
	if target.Admin {
		return dErrors.Newf(dErrors.CodeBusinessRule, "user %s is already an administrator", target.ID)
	}

	admins, err := r.store.CountAdmins(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count administrators")
	}
	if admins >= maxAdmins {
		return dErrors.Newf(dErrors.CodeBusinessRule, "administrator ceiling of %d reached", maxAdmins)
	}
	return nil
}

// ValidateAdminDemotion checks whether actor may clear target's admin flag:
// actor must be an admin, may not target themselves, target must be an
// admin, and the demotion must not leave the system without administrators.
func (r *Rules) ValidateAdminDemotion(ctx context.Context, actor, target models.User) error {
	if !actor.Admin {
		return dErrors.New(dErrors.CodePermission, "only administrators can demote users")
	}
	if actor.ID == target.ID {
		return dErrors.New(dErrors.CodePermission, "administrators cannot change their own role")
	}
	if !target.Admin {
		return dErrors.Newf(dErrors.CodeBusinessRule, "user %s is not an administrator", target.ID)
	}

	admins, err := r.store.CountAdmins(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count administrators")
	}
	if admins <= 1 {
		return dErrors.New(dErrors.CodeBusinessRule, "cannot demote the sole remaining administrator")
	}
	return nil
}
