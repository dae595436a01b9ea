package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"storefront/internal/catalog/models"
	"storefront/internal/catalog/ports"
	"storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

type CatalogStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *CatalogStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestCatalogStoreSuite(t *testing.T) {
	suite.Run(t, new(CatalogStoreSuite))
}

func (s *CatalogStoreSuite) newProduct(name string, priceYen int64, category domain.Category) models.Product {
	productID, err := s.store.NextID(s.ctx)
	s.Require().NoError(err)
	price, err := domain.NewMoney(priceYen)
	s.Require().NoError(err)
	product, err := models.NewProduct(productID, name, "test listing", price, 10, category, "", time.Now())
	s.Require().NoError(err)
	return product
}

// TestCreationAndLookups verifies creation, id lookup, and snapshot fetches.
func (s *CatalogStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds product by ID", func() {
		product := s.newProduct("Wireless Mouse", 2980, domain.CategoryElectronics)
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, product))

		found, err := s.store.FindByID(s.ctx, product.ID)
		s.Require().NoError(err)
		s.Equal(product.Name, found.Name)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		unknown, err := domain.NewProductID(9999)
		s.Require().NoError(err)
		_, err = s.store.FindByID(s.ctx, unknown)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("FindByIDs skips missing products", func() {
		product := s.newProduct("Keyboard", 8980, domain.CategoryElectronics)
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, product))
		missing, err := domain.NewProductID(5555)
		s.Require().NoError(err)

		snapshot, err := s.store.FindByIDs(s.ctx, []domain.ProductID{product.ID, missing})
		s.Require().NoError(err)
		s.Require().Len(snapshot, 1)
		s.Equal(product.ID, snapshot[0].ID)
	})
}

// TestNameUniqueness verifies case-insensitive name uniqueness enforcement.
func (s *CatalogStoreSuite) TestNameUniqueness() {
	s.Run("rejects duplicate name", func() {
		first := s.newProduct("Running Shoes", 12800, domain.CategorySports)
		second := s.newProduct("Running Shoes", 9800, domain.CategorySports)

		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, first))
		s.Require().ErrorIs(s.store.CreateIfNameAvailable(s.ctx, second), sentinel.ErrAlreadyUsed)
	})

	s.Run("enforces case-insensitive uniqueness", func() {
		first := s.newProduct("Desk Lamp", 3980, domain.CategoryHome)
		second := s.newProduct("DESK LAMP", 4980, domain.CategoryHome)

		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, first))
		s.Require().ErrorIs(s.store.CreateIfNameAvailable(s.ctx, second), sentinel.ErrAlreadyUsed)
	})

	s.Run("finds by name case-insensitively", func() {
		product := s.newProduct("Coffee Beans", 1480, domain.CategoryFood)
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, product))

		found, err := s.store.FindByName(s.ctx, "coffee beans")
		s.Require().NoError(err)
		s.Equal(product.ID, found.ID)
	})
}

// TestUpdates verifies update semantics including name re-indexing.
func (s *CatalogStoreSuite) TestUpdates() {
	s.Run("persists stock changes", func() {
		product := s.newProduct("Novel", 880, domain.CategoryBooks)
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, product))

		qty, err := domain.NewCount(3)
		s.Require().NoError(err)
		decreased, err := product.DecreaseStock(qty, time.Now())
		s.Require().NoError(err)
		s.Require().NoError(s.store.Update(s.ctx, decreased))

		found, err := s.store.FindByID(s.ctx, product.ID)
		s.Require().NoError(err)
		s.Equal(7, found.Stock)
	})

	s.Run("rejects rename onto a taken name", func() {
		first := s.newProduct("Tent", 19800, domain.CategorySports)
		second := s.newProduct("Sleeping Bag", 8800, domain.CategorySports)
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, first))
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, second))

		second.Name = "tent"
		s.Require().ErrorIs(s.store.Update(s.ctx, second), sentinel.ErrAlreadyUsed)
	})
}

// TestListing verifies filtering, sorting, and pagination.
func (s *CatalogStoreSuite) TestListing() {
	seed := func() {
		cheap := s.newProduct("Socks", 500, domain.CategoryFashion)
		mid := s.newProduct("Shirt", 2500, domain.CategoryFashion)
		dear := s.newProduct("Coat", 25000, domain.CategoryFashion)
		inactive := s.newProduct("Old Hat", 1500, domain.CategoryFashion)
		inactive = inactive.Deactivate(time.Now())
		book := s.newProduct("Cookbook", 1800, domain.CategoryBooks)
		for _, p := range []models.Product{cheap, mid, dear, inactive, book} {
			s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, p))
		}
	}

	s.Run("filters by category and active flag", func() {
		seed()
		listed, err := s.store.List(s.ctx, ports.ListFilter{
			Category:   domain.CategoryFashion,
			ActiveOnly: true,
		})
		s.Require().NoError(err)
		s.Len(listed, 3)
	})

	s.Run("sorts by price descending", func() {
		listed, err := s.store.List(s.ctx, ports.ListFilter{
			Category:  domain.CategoryFashion,
			SortBy:    "price",
			SortOrder: ports.SortDesc,
		})
		s.Require().NoError(err)
		s.Require().NotEmpty(listed)
		s.Equal("Coat", listed[0].Name)
	})

	s.Run("paginates", func() {
		page, err := s.store.List(s.ctx, ports.ListFilter{Limit: 2, Offset: 1})
		s.Require().NoError(err)
		s.Len(page, 2)
	})

	s.Run("ListActiveByCategory excludes inactive products", func() {
		active, err := s.store.ListActiveByCategory(s.ctx, domain.CategoryFashion)
		s.Require().NoError(err)
		for _, p := range active {
			s.True(p.Active)
		}
		s.Len(active, 3)
	})
}
