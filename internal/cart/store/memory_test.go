package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"storefront/internal/cart/models"
	"storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

type CartStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *CartStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestCartStoreSuite(t *testing.T) {
	suite.Run(t, new(CartStoreSuite))
}

func (s *CartStoreSuite) newCartWithLine(sessionID domain.SessionID, productID int64, qty int) models.Cart {
	cart, err := models.NewCart(sessionID)
	s.Require().NoError(err)

	lineID, err := s.store.NextLineID(s.ctx)
	s.Require().NoError(err)
	pid, err := domain.NewProductID(productID)
	s.Require().NoError(err)
	count, err := domain.NewCount(qty)
	s.Require().NoError(err)
	line, err := models.NewLine(lineID, sessionID, pid, count, time.Now())
	s.Require().NoError(err)

	cart, err = cart.AddLine(line)
	s.Require().NoError(err)
	return cart
}

// TestSaveAndFind verifies whole-cart save and retrieval per session.
func (s *CartStoreSuite) TestSaveAndFind() {
	s.Run("saves and finds a cart by session", func() {
		sessionID := domain.NewSessionID()
		cart := s.newCartWithLine(sessionID, 1, 2)
		s.Require().NoError(s.store.Save(s.ctx, cart))

		found, err := s.store.FindBySession(s.ctx, sessionID)
		s.Require().NoError(err)
		s.Equal(2, found.TotalQuantity())
	})

	s.Run("returns ErrNotFound for a session without a cart", func() {
		_, err := s.store.FindBySession(s.ctx, domain.NewSessionID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("save replaces the previous version", func() {
		sessionID := domain.NewSessionID()
		s.Require().NoError(s.store.Save(s.ctx, s.newCartWithLine(sessionID, 1, 2)))
		s.Require().NoError(s.store.Save(s.ctx, s.newCartWithLine(sessionID, 2, 5)))

		found, err := s.store.FindBySession(s.ctx, sessionID)
		s.Require().NoError(err)
		s.Equal(5, found.TotalQuantity())
	})
}

// TestDelete verifies idempotent cart removal.
func (s *CartStoreSuite) TestDelete() {
	s.Run("removes the cart", func() {
		sessionID := domain.NewSessionID()
		s.Require().NoError(s.store.Save(s.ctx, s.newCartWithLine(sessionID, 1, 1)))
		s.Require().NoError(s.store.Delete(s.ctx, sessionID))

		_, err := s.store.FindBySession(s.ctx, sessionID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("deleting an absent cart is not an error", func() {
		s.Require().NoError(s.store.Delete(s.ctx, domain.NewSessionID()))
	})
}

// TestLineIDAllocation verifies monotonically increasing line ids.
func (s *CartStoreSuite) TestLineIDAllocation() {
	first, err := s.store.NextLineID(s.ctx)
	s.Require().NoError(err)
	second, err := s.store.NextLineID(s.ctx)
	s.Require().NoError(err)
	s.True(first < second)
}
