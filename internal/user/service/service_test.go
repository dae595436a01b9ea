package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"storefront/internal/user/models"
	"storefront/internal/user/store"
	"storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/requestcontext"
)

type UserServiceSuite struct {
	suite.Suite
	store *store.InMemory
	svc   *Service
	ctx   context.Context
}

func (s *UserServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	rules, err := NewRules(s.store)
	s.Require().NoError(err)
	s.svc, err = New(s.store, rules)
	s.Require().NoError(err)
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) register(email string) models.User {
	user, err := s.svc.Register(s.ctx, RegisterInput{
		Email:     email,
		FirstName: "Taro",
		LastName:  "Yamada",
	})
	s.Require().NoError(err)
	return user
}

func (s *UserServiceSuite) registerAdmin(email string) models.User {
	user := s.register(email)
	promoted := user.Promote(time.Now())
	s.Require().NoError(s.store.Update(s.ctx, promoted))
	return promoted
}

// TestRegistration covers the happy path, name derivation, and policy checks.
func (s *UserServiceSuite) TestRegistration() {
	s.Run("registers a user", func() {
		user := s.register("taro@example.com")
		s.False(user.Admin)
		s.Equal("Taro Yamada", user.FullName())
	})

	s.Run("derives blank names from the email local part", func() {
		user, err := s.svc.Register(s.ctx, RegisterInput{Email: "hanako.sato@example.com"})
		s.Require().NoError(err)
		s.Equal("Hanako", user.FirstName)
		s.Equal("Sato", user.LastName)
	})

	s.Run("rejects duplicate email", func() {
		_, err := s.svc.Register(s.ctx, RegisterInput{
			Email: "taro@example.com", FirstName: "Jiro", LastName: "Suzuki",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBusinessRule))
	})

	s.Run("rejects reserved names", func() {
		_, err := s.svc.Register(s.ctx, RegisterInput{
			Email: "boss@example.com", FirstName: "Admin", LastName: "Yamada",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBusinessRule))
	})

	s.Run("rejects purely numeric names", func() {
		_, err := s.svc.Register(s.ctx, RegisterInput{
			Email: "num@example.com", FirstName: "12345", LastName: "Yamada",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBusinessRule))
	})

	s.Run("rejects names with prohibited characters", func() {
		_, err := s.svc.Register(s.ctx, RegisterInput{
			Email: "angle@example.com", FirstName: "<script>", LastName: "Yamada",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBusinessRule))
	})

	s.Run("rejects malformed email", func() {
		_, err := s.svc.Register(s.ctx, RegisterInput{Email: "not-an-email"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// TestPromotion covers actor authority, self-targeting, and the admin ceiling.
func (s *UserServiceSuite) TestPromotion() {
	s.Run("admin promotes a customer", func() {
		admin := s.registerAdmin("admin@example.com")
		customer := s.register("customer@example.com")

		promoted, err := s.svc.Promote(s.ctx, admin.ID, customer.ID)
		s.Require().NoError(err)
		s.True(promoted.Admin)
	})

	s.Run("non-admin cannot promote", func() {
		actor := s.register("plain@example.com")
		target := s.register("target@example.com")

		_, err := s.svc.Promote(s.ctx, actor.ID, target.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodePermission))
	})

	s.Run("cannot promote self", func() {
		admin := s.registerAdmin("self@example.com")

		_, err := s.svc.Promote(s.ctx, admin.ID, admin.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodePermission))
	})

	s.Run("cannot promote an existing admin", func() {
		actor := s.registerAdmin("actor2@example.com")
		other := s.registerAdmin("other2@example.com")

		_, err := s.svc.Promote(s.ctx, actor.ID, other.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBusinessRule))
	})

	s.Run("enforces the admin ceiling", func() {
		// previous subtests already seeded the ceiling of 5 admins
		admin := s.registerAdmin("ceiling@example.com")

		target := s.register("hopeful@example.com")
		_, err := s.svc.Promote(s.ctx, admin.ID, target.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBusinessRule))
	})
}

// TestDemotion covers authority, self-targeting, and sole-admin protection.
func (s *UserServiceSuite) TestDemotion() {
	s.Run("admin demotes another admin", func() {
		first := s.registerAdmin("first@example.com")
		second := s.registerAdmin("second@example.com")

		demoted, err := s.svc.Demote(s.ctx, first.ID, second.ID)
		s.Require().NoError(err)
		s.False(demoted.Admin)
	})

	s.Run("cannot demote a non-admin", func() {
		admin := s.registerAdmin("third@example.com")
		customer := s.register("fourth@example.com")

		_, err := s.svc.Demote(s.ctx, admin.ID, customer.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBusinessRule))
	})

	s.Run("cannot demote self", func() {
		admin := s.registerAdmin("fifth@example.com")

		_, err := s.svc.Demote(s.ctx, admin.ID, admin.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodePermission))
	})
}

// TestSoleAdminProtection verifies the last administrator cannot be demoted.
func (s *UserServiceSuite) TestSoleAdminProtection() {
	sole := s.registerAdmin("sole@example.com")

	// Every admin actor in the store would be the target itself, so drive
	// the rule directly with an admin actor that is not persisted.
	rules, err := NewRules(s.store)
	s.Require().NoError(err)

	actorEmail, err := domain.ParseEmailAddress("ghost-admin@example.com")
	s.Require().NoError(err)
	actorID, err := domain.NewUserID(999)
	s.Require().NoError(err)
	actor, err := models.RestoreUser(actorID, actorEmail, "Ghost", "Actor", "", true, time.Now(), time.Now())
	s.Require().NoError(err)

	err = rules.ValidateAdminDemotion(s.ctx, actor, sole)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBusinessRule))
}

// TestDeletion covers permission checks on delete.
func (s *UserServiceSuite) TestDeletion() {
	s.Run("user deletes own account", func() {
		user := s.register("bye@example.com")
		s.Require().NoError(s.svc.Delete(s.ctx, user.ID, user.ID))

		_, err := s.svc.Get(s.ctx, user.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("non-admin cannot delete another user", func() {
		actor := s.register("actor@example.com")
		victim := s.register("victim@example.com")

		err := s.svc.Delete(s.ctx, actor.ID, victim.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodePermission))
	})

	s.Run("admin deletes another user", func() {
		admin := s.registerAdmin("mod@example.com")
		victim := s.register("victim2@example.com")

		s.Require().NoError(s.svc.Delete(s.ctx, admin.ID, victim.ID))
	})
}
