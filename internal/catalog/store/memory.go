package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"storefront/internal/catalog/models"
	"storefront/internal/catalog/ports"
	"storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

// InMemory is the reference catalog store: a mutex-guarded map with a
// case-insensitive name index.
type InMemory struct {
	mu       sync.RWMutex
	products map[domain.ProductID]models.Product
	byName   map[string]domain.ProductID
	lastID   int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		products: make(map[domain.ProductID]models.Product),
		byName:   make(map[string]domain.ProductID),
	}
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *InMemory) FindByID(_ context.Context, productID domain.ProductID) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[productID]
	if !ok {
		return models.Product{}, sentinel.ErrNotFound
	}
	return product, nil
}

func (s *InMemory) FindByIDs(_ context.Context, productIDs []domain.ProductID) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, 0, len(productIDs))
	for _, id := range productIDs {
		if product, ok := s.products[id]; ok {
			out = append(out, product)
		}
	}
	return out, nil
}

func (s *InMemory) FindByName(_ context.Context, name string) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	productID, ok := s.byName[nameKey(name)]
	if !ok {
		return models.Product{}, sentinel.ErrNotFound
	}
	return s.products[productID], nil
}

func (s *InMemory) ExistsByName(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byName[nameKey(name)]
	return ok, nil
}

func (s *InMemory) CreateIfNameAvailable(_ context.Context, product models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := nameKey(product.Name)
	if _, taken := s.byName[key]; taken {
		return sentinel.ErrAlreadyUsed
	}
	if _, exists := s.products[product.ID]; exists {
		return sentinel.ErrConflict
	}
	s.products[product.ID] = product
	s.byName[key] = product.ID
	return nil
}

func (s *InMemory) Update(_ context.Context, product models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[product.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	oldKey, newKey := nameKey(existing.Name), nameKey(product.Name)
	if oldKey != newKey {
		if _, taken := s.byName[newKey]; taken {
			return sentinel.ErrAlreadyUsed
		}
		delete(s.byName, oldKey)
		s.byName[newKey] = product.ID
	}
	s.products[product.ID] = product
	return nil
}

func (s *InMemory) Delete(_ context.Context, productID domain.ProductID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[productID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.products, productID)
	delete(s.byName, nameKey(product.Name))
	return nil
}

func (s *InMemory) List(_ context.Context, filter ports.ListFilter) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.Product, 0, len(s.products))
	for _, product := range s.products {
		if filter.Category != "" && product.Category != filter.Category {
			continue
		}
		if filter.ActiveOnly && !product.Active {
			continue
		}
		matched = append(matched, product)
	}

	sortProducts(matched, filter.SortBy, filter.SortOrder)

	if filter.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return append([]models.Product(nil), matched...), nil
}

func (s *InMemory) ListActiveByCategory(_ context.Context, category domain.Category) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, 0)
	for _, product := range s.products {
		if product.Active && product.Category == category {
			out = append(out, product)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products), nil
}

func (s *InMemory) NextID(_ context.Context) (domain.ProductID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	return domain.NewProductID(s.lastID)
}

func sortProducts(products []models.Product, sortBy string, order ports.SortOrder) {
	less := func(i, j int) bool { return products[i].ID < products[j].ID }
	switch sortBy {
	case "name":
		less = func(i, j int) bool { return products[i].Name < products[j].Name }
	case "price":
		less = func(i, j int) bool { return products[i].Price.LessThan(products[j].Price) }
	case "created_at":
		less = func(i, j int) bool { return products[i].CreatedAt.Before(products[j].CreatedAt) }
	}
	if order == ports.SortDesc {
		inner := less
		less = func(i, j int) bool { return inner(j, i) }
	}
	sort.Slice(products, less)
}
