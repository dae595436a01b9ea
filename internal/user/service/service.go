package service

import (
	"context"
	"errors"
	"log/slog"

	"storefront/internal/platform/metrics"
	"storefront/internal/user/models"
	"storefront/internal/user/ports"
	"storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/email"
	"storefront/pkg/platform/audit"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/requestcontext"
)

// RegisterInput carries the raw registration fields. FirstName and LastName
// may be blank; they are then derived from the email local part so the name
// policy always has something to check.
type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

// Service orchestrates user operations: load, rules, entity mutation, store,
// audit.
type Service struct {
	store     ports.Store
	rules     *Rules
	publisher audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithAuditPublisher attaches an audit event sink.
func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

// WithMetrics attaches application metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs the user application service.
func New(store ports.Store, rules *Rules, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "user store is required")
	}
	if rules == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "user rules are required")
	}
	svc := &Service{
		store:  store,
		rules:  rules,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Register creates a new non-admin user after the registration rules pass.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	addr, err := domain.ParseEmailAddress(in.Email)
	if err != nil {
		return models.User{}, err
	}

	firstName, lastName := in.FirstName, in.LastName
	if firstName == "" || lastName == "" {
		derivedFirst, derivedLast := email.DeriveNameFromEmail(addr.String())
		if firstName == "" {
			firstName = derivedFirst
		}
		if lastName == "" {
			lastName = derivedLast
		}
	}

	if err := s.rules.ValidateRegistration(ctx, addr, firstName, lastName); err != nil {
		return models.User{}, err
	}

	userID, err := s.store.NextID(ctx)
	if err != nil {
		return models.User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate user id")
	}

	now := requestcontext.Now(ctx)
	user, err := models.NewUser(userID, addr, firstName, lastName, in.Phone, now)
	if err != nil {
		return models.User{}, err
	}

	// The rules check above and this insert are not atomic; the store
	// re-checks under its own lock.
	if err := s.store.CreateIfEmailAvailable(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return models.User{}, dErrors.Newf(dErrors.CodeConflict, "email %s is already registered", addr)
		}
		return models.User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "email", addr)
	if s.metrics != nil {
		s.metrics.IncrementUsersCreated()
	}
	s.emit(ctx, audit.EventUserRegistered, user.ID, user.ID, "")

	return user, nil
}

// Get returns the user by id.
func (s *Service) Get(ctx context.Context, userID domain.UserID) (models.User, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.User{}, dErrors.Newf(dErrors.CodeNotFound, "user %s not found", userID)
		}
		return models.User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

// GetByEmail returns the user with the given email.
func (s *Service) GetByEmail(ctx context.Context, rawEmail string) (models.User, error) {
	addr, err := domain.ParseEmailAddress(rawEmail)
	if err != nil {
		return models.User{}, err
	}
	user, err := s.store.FindByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.User{}, dErrors.Newf(dErrors.CodeNotFound, "no user registered as %s", addr)
		}
		return models.User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

// Promote grants target the admin flag on behalf of actor.
func (s *Service) Promote(ctx context.Context, actorID, targetID domain.UserID) (models.User, error) {
	actor, err := s.Get(ctx, actorID)
	if err != nil {
		return models.User{}, err
	}
	target, err := s.Get(ctx, targetID)
	if err != nil {
		return models.User{}, err
	}

	if err := s.rules.ValidateAdminPromotion(ctx, actor, target); err != nil {
		return models.User{}, err
	}

	promoted := target.Promote(requestcontext.Now(ctx))
	if err := s.store.Update(ctx, promoted); err != nil {
		return models.User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save promotion")
	}

	s.logger.InfoContext(ctx, "user promoted", "actor_id", actorID, "target_id", targetID)
	s.emit(ctx, audit.EventUserPromoted, targetID, actorID, "")
	return promoted, nil
}

// Demote clears target's admin flag on behalf of actor.
func (s *Service) Demote(ctx context.Context, actorID, targetID domain.UserID) (models.User, error) {
	actor, err := s.Get(ctx, actorID)
	if err != nil {
		return models.User{}, err
	}
	target, err := s.Get(ctx, targetID)
	if err != nil {
		return models.User{}, err
	}

	if err := s.rules.ValidateAdminDemotion(ctx, actor, target); err != nil {
		return models.User{}, err
	}

	demoted := target.Demote(requestcontext.Now(ctx))
	if err := s.store.Update(ctx, demoted); err != nil {
		return models.User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save demotion")
	}

	s.logger.InfoContext(ctx, "user demoted", "actor_id", actorID, "target_id", targetID)
	s.emit(ctx, audit.EventUserDemoted, targetID, actorID, "")
	return demoted, nil
}

// UpdateProfile replaces the user's name and phone fields.
func (s *Service) UpdateProfile(ctx context.Context, userID domain.UserID, firstName, lastName, phone string) (models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	for _, name := range []string{firstName, lastName} {
		if err := validateNamePolicy(name); err != nil {
			return models.User{}, err
		}
	}

	updated, err := user.WithProfile(firstName, lastName, phone, requestcontext.Now(ctx))
	if err != nil {
		return models.User{}, err
	}
	if err := s.store.Update(ctx, updated); err != nil {
		return models.User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save profile")
	}
	return updated, nil
}

// Delete removes the user.
func (s *Service) Delete(ctx context.Context, actorID, targetID domain.UserID) error {
	actor, err := s.Get(ctx, actorID)
	if err != nil {
		return err
	}
	if actorID != targetID && !actor.Admin {
		return dErrors.New(dErrors.CodePermission, "only administrators can delete other users")
	}

	if err := s.store.Delete(ctx, targetID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Newf(dErrors.CodeNotFound, "user %s not found", targetID)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user")
	}

	s.logger.InfoContext(ctx, "user deleted", "actor_id", actorID, "target_id", targetID)
	s.emit(ctx, audit.EventUserDeleted, targetID, actorID, "")
	return nil
}

// List returns users ordered by id.
func (s *Service) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	users, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

func (s *Service) emit(ctx context.Context, event audit.AuditEvent, userID, actorID domain.UserID, reason string) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Emit(ctx, audit.Event{
		Category:  audit.CategoryOf(event),
		Timestamp: requestcontext.Now(ctx),
		Action:    string(event),
		UserID:    userID,
		ActorID:   actorID,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "event", event, "error", err)
	}
}
