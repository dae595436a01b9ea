//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	cartmodels "storefront/internal/cart/models"
	"storefront/internal/cart/store"
	"storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/testutil/containers"
)

type RedisCartStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.Redis
}

func TestRedisCartStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCartStoreSuite))
}

func (s *RedisCartStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = store.NewRedis(s.redis.Client)
}

func (s *RedisCartStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCartStoreSuite) buildCart(sessionID domain.SessionID, productIDs ...int64) cartmodels.Cart {
	ctx := context.Background()
	cart, err := cartmodels.NewCart(sessionID)
	s.Require().NoError(err)

	for _, raw := range productIDs {
		lineID, err := s.store.NextLineID(ctx)
		s.Require().NoError(err)
		productID, err := domain.NewProductID(raw)
		s.Require().NoError(err)
		qty, err := domain.NewCount(2)
		s.Require().NoError(err)
		line, err := cartmodels.NewLine(lineID, sessionID, productID, qty, time.Now())
		s.Require().NoError(err)
		cart, err = cart.AddLine(line)
		s.Require().NoError(err)
	}
	return cart
}

// TestRoundTrip verifies a cart survives the JSON document round trip.
func (s *RedisCartStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	sessionID := domain.NewSessionID()
	cart := s.buildCart(sessionID, 10, 20, 30)

	s.Require().NoError(s.store.Save(ctx, cart))

	found, err := s.store.FindBySession(ctx, sessionID)
	s.Require().NoError(err)
	s.Equal(cart.SessionID, found.SessionID)
	s.Equal(3, found.DistinctProductCount())
	s.Equal(6, found.TotalQuantity())
	s.Equal(cart.ProductIDs(), found.ProductIDs())
}

// TestMissingCart verifies the not-found sentinel for unsaved sessions.
func (s *RedisCartStoreSuite) TestMissingCart() {
	_, err := s.store.FindBySession(context.Background(), domain.NewSessionID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

// TestDelete verifies checkout-time cart clearing.
func (s *RedisCartStoreSuite) TestDelete() {
	ctx := context.Background()
	sessionID := domain.NewSessionID()
	s.Require().NoError(s.store.Save(ctx, s.buildCart(sessionID, 1)))

	s.Require().NoError(s.store.Delete(ctx, sessionID))
	_, err := s.store.FindBySession(ctx, sessionID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	// idempotent
	s.Require().NoError(s.store.Delete(ctx, sessionID))
}

// TestTTLApplied verifies carts carry an expiry.
func (s *RedisCartStoreSuite) TestTTLApplied() {
	ctx := context.Background()
	sessionID := domain.NewSessionID()
	short := store.NewRedis(s.redis.Client, store.WithTTL(time.Hour))
	s.Require().NoError(short.Save(ctx, s.buildCart(sessionID, 1)))

	ttl, err := s.redis.Client.TTL(ctx, "cart:session:"+sessionID.String()).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Hour)
}

// TestLineIDsUniqueAcrossSessions verifies the shared counter.
func (s *RedisCartStoreSuite) TestLineIDsUniqueAcrossSessions() {
	ctx := context.Background()
	seen := make(map[domain.CartLineID]bool)
	for i := 0; i < 50; i++ {
		lineID, err := s.store.NextLineID(ctx)
		s.Require().NoError(err)
		s.False(seen[lineID], "line id %s allocated twice", lineID)
		seen[lineID] = true
	}
}
