package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	cartstore "storefront/internal/cart/store"
	catalogmodels "storefront/internal/catalog/models"
	catalogstore "storefront/internal/catalog/store"
	"storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/requestcontext"
)

type CartServiceSuite struct {
	suite.Suite
	carts   *cartstore.InMemory
	catalog *catalogstore.InMemory
	svc     *Service
	ctx     context.Context
	now     time.Time
}

func (s *CartServiceSuite) SetupTest() {
	s.carts = cartstore.NewInMemory()
	s.catalog = catalogstore.NewInMemory()
	var err error
	s.svc, err = New(s.carts, s.catalog, NewRules())
	s.Require().NoError(err)
	s.now = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func TestCartServiceSuite(t *testing.T) {
	suite.Run(t, new(CartServiceSuite))
}

func (s *CartServiceSuite) seedProduct(name string, stock int) domain.ProductID {
	productID, err := s.catalog.NextID(s.ctx)
	s.Require().NoError(err)
	price, err := domain.NewMoney(1000)
	s.Require().NoError(err)
	product, err := catalogmodels.NewProduct(productID, name, "", price, stock, domain.CategoryBooks, "", s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.catalog.CreateIfNameAvailable(s.ctx, product))
	return productID
}

func (s *CartServiceSuite) qty(v int) domain.Count {
	c, err := domain.NewCount(v)
	s.Require().NoError(err)
	return c
}

// TestAddItem covers merging, missing products, and sellability.
func (s *CartServiceSuite) TestAddItem() {
	s.Run("merges repeated additions of the same product", func() {
		sessionID := domain.NewSessionID()
		productID := s.seedProduct("Novel", 10)

		_, err := s.svc.AddItem(s.ctx, sessionID, productID, s.qty(2))
		s.Require().NoError(err)
		cart, err := s.svc.AddItem(s.ctx, sessionID, productID, s.qty(3))
		s.Require().NoError(err)

		s.Equal(1, cart.DistinctProductCount())
		s.Equal(5, cart.QuantityOf(productID))
	})

	s.Run("rejects an unknown product", func() {
		unknown, err := domain.NewProductID(9999)
		s.Require().NoError(err)
		_, err = s.svc.AddItem(s.ctx, domain.NewSessionID(), unknown, s.qty(1))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("rejects an inactive product", func() {
		productID := s.seedProduct("Retired Novel", 10)
		product, err := s.catalog.FindByID(s.ctx, productID)
		s.Require().NoError(err)
		s.Require().NoError(s.catalog.Update(s.ctx, product.Deactivate(s.now)))

		_, err = s.svc.AddItem(s.ctx, domain.NewSessionID(), productID, s.qty(1))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBusinessRule))
	})

	s.Run("rejects when post-addition quantity exceeds stock", func() {
		sessionID := domain.NewSessionID()
		productID := s.seedProduct("Scarce Novel", 4)

		_, err := s.svc.AddItem(s.ctx, sessionID, productID, s.qty(3))
		s.Require().NoError(err)
		_, err = s.svc.AddItem(s.ctx, sessionID, productID, s.qty(2))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientStock))
	})
}

// TestCeilings covers the three numeric ceilings against post-addition totals.
func (s *CartServiceSuite) TestCeilings() {
	s.Run("rejects a 21st distinct product", func() {
		sessionID := domain.NewSessionID()
		for i := 0; i < 20; i++ {
			productID := s.seedProduct(fmt.Sprintf("Item %02d", i), 10)
			_, err := s.svc.AddItem(s.ctx, sessionID, productID, s.qty(1))
			s.Require().NoError(err)
		}

		extra := s.seedProduct("One Too Many", 10)
		_, err := s.svc.AddItem(s.ctx, sessionID, extra, s.qty(1))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBusinessRule))
	})

	s.Run("rejects 100 units of one product", func() {
		productID := s.seedProduct("Bulk Novel", 500)
		_, err := s.svc.AddItem(s.ctx, domain.NewSessionID(), productID, s.qty(100))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBusinessRule))
	})

	s.Run("a 198-unit cart rejects five more but accepts two", func() {
		sessionID := domain.NewSessionID()
		first := s.seedProduct("Stack A", 500)
		second := s.seedProduct("Stack B", 500)
		third := s.seedProduct("Stack C", 500)

		_, err := s.svc.AddItem(s.ctx, sessionID, first, s.qty(99))
		s.Require().NoError(err)
		_, err = s.svc.AddItem(s.ctx, sessionID, second, s.qty(99))
		s.Require().NoError(err)

		_, err = s.svc.AddItem(s.ctx, sessionID, third, s.qty(5))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBusinessRule))

		cart, err := s.svc.AddItem(s.ctx, sessionID, third, s.qty(2))
		s.Require().NoError(err)
		s.Equal(200, cart.TotalQuantity())
	})
}

// TestUpdateAndRemove covers quantity replacement and line removal.
func (s *CartServiceSuite) TestUpdateAndRemove() {
	s.Run("update replaces the quantity", func() {
		sessionID := domain.NewSessionID()
		productID := s.seedProduct("Adjustable", 50)
		cart, err := s.svc.AddItem(s.ctx, sessionID, productID, s.qty(2))
		s.Require().NoError(err)

		updated, err := s.svc.UpdateItem(s.ctx, sessionID, cart.Lines[0].ID, s.qty(7))
		s.Require().NoError(err)
		s.Equal(7, updated.QuantityOf(productID))
	})

	s.Run("update of an absent line fails", func() {
		sessionID := domain.NewSessionID()
		lineID, err := domain.NewCartLineID(4242)
		s.Require().NoError(err)
		_, err = s.svc.UpdateItem(s.ctx, sessionID, lineID, s.qty(1))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("remove drops the line", func() {
		sessionID := domain.NewSessionID()
		productID := s.seedProduct("Removable", 50)
		cart, err := s.svc.AddItem(s.ctx, sessionID, productID, s.qty(2))
		s.Require().NoError(err)

		updated, err := s.svc.RemoveItem(s.ctx, sessionID, cart.Lines[0].ID)
		s.Require().NoError(err)
		s.True(updated.IsEmpty())
	})
}

// TestTotal covers pricing against the live catalog.
func (s *CartServiceSuite) TestTotal() {
	sessionID := domain.NewSessionID()
	productID := s.seedProduct("Priced", 50)

	_, err := s.svc.AddItem(s.ctx, sessionID, productID, s.qty(3))
	s.Require().NoError(err)

	total, err := s.svc.Total(s.ctx, sessionID)
	s.Require().NoError(err)
	s.EqualValues(3000, total.Amount())
}

// TestClear covers whole-cart removal.
func (s *CartServiceSuite) TestClear() {
	sessionID := domain.NewSessionID()
	productID := s.seedProduct("Clearable", 50)
	_, err := s.svc.AddItem(s.ctx, sessionID, productID, s.qty(1))
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Clear(s.ctx, sessionID))
	cart, err := s.svc.Get(s.ctx, sessionID)
	s.Require().NoError(err)
	s.True(cart.IsEmpty())
}

// TestAbandonmentRisk covers the heuristic buckets.
func (s *CartServiceSuite) TestAbandonmentRisk() {
	s.Run("fresh multi-line cart scores low", func() {
		sessionID := domain.NewSessionID()
		for i := 0; i < 4; i++ {
			productID := s.seedProduct(fmt.Sprintf("Fresh %d", i), 10)
			_, err := s.svc.AddItem(s.ctx, sessionID, productID, s.qty(1))
			s.Require().NoError(err)
		}

		report, err := s.svc.AbandonmentRisk(s.ctx, sessionID)
		s.Require().NoError(err)
		s.Equal(RiskLow, report.Bucket)
	})

	s.Run("stale single-line cart scores high", func() {
		sessionID := domain.NewSessionID()
		productID := s.seedProduct("Stale", 10)
		_, err := s.svc.AddItem(s.ctx, sessionID, productID, s.qty(1))
		s.Require().NoError(err)

		later := requestcontext.WithTime(context.Background(), s.now.Add(96*time.Hour))
		report, err := s.svc.AbandonmentRisk(later, sessionID)
		s.Require().NoError(err)
		s.Equal(RiskHigh, report.Bucket)
		s.GreaterOrEqual(report.Score, 70)
	})

	s.Run("day-old mid-size cart scores medium", func() {
		sessionID := domain.NewSessionID()
		for _, name := range []string{"Mid A", "Mid B"} {
			productID := s.seedProduct(name, 10)
			_, err := s.svc.AddItem(s.ctx, sessionID, productID, s.qty(1))
			s.Require().NoError(err)
		}

		later := requestcontext.WithTime(context.Background(), s.now.Add(30*time.Hour))
		report, err := s.svc.AbandonmentRisk(later, sessionID)
		s.Require().NoError(err)
		s.Equal(RiskMedium, report.Bucket)
	})
}
