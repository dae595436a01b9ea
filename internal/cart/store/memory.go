package store

import (
	"context"
	"sync"

	"storefront/internal/cart/models"
	"storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

// InMemory is the reference cart store: one cart per session behind a mutex.
type InMemory struct {
	mu         sync.RWMutex
	carts      map[domain.SessionID]models.Cart
	lastLineID int64
}

func NewInMemory() *InMemory {
	return &InMemory{carts: make(map[domain.SessionID]models.Cart)}
}

func (s *InMemory) FindBySession(_ context.Context, sessionID domain.SessionID) (models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, ok := s.carts[sessionID]
	if !ok {
		return models.Cart{}, sentinel.ErrNotFound
	}
	return cart, nil
}

func (s *InMemory) Save(_ context.Context, cart models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[cart.SessionID] = cart
	return nil
}

func (s *InMemory) Delete(_ context.Context, sessionID domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
	return nil
}

func (s *InMemory) NextLineID(_ context.Context) (domain.CartLineID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastLineID++
	return domain.NewCartLineID(s.lastLineID)
}
