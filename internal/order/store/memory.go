package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront/internal/order/models"
	"storefront/internal/order/ports"
	"storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

// InMemory is the reference order store: a mutex-guarded map with a per-user
// index for quota and history queries.
type InMemory struct {
	mu         sync.RWMutex
	orders     map[domain.OrderID]models.Order
	byUser     map[domain.UserID][]domain.OrderID
	lastID     int64
	lastLineID int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		orders: make(map[domain.OrderID]models.Order),
		byUser: make(map[domain.UserID][]domain.OrderID),
	}
}

func (s *InMemory) FindByID(_ context.Context, orderID domain.OrderID) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[orderID]
	if !ok {
		return models.Order{}, sentinel.ErrNotFound
	}
	return order, nil
}

func (s *InMemory) Create(_ context.Context, order models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.ID]; exists {
		return sentinel.ErrConflict
	}
	s.orders[order.ID] = order
	s.byUser[order.UserID] = append(s.byUser[order.UserID], order.ID)
	return nil
}

func (s *InMemory) Update(_ context.Context, order models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[order.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.orders[order.ID] = order
	return nil
}

func (s *InMemory) ListByUser(_ context.Context, userID domain.UserID) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listByUserLocked(userID, time.Time{}), nil
}

func (s *InMemory) ListByUserSince(_ context.Context, userID domain.UserID, cutoff time.Time) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listByUserLocked(userID, cutoff), nil
}

// listByUserLocked returns the user's orders created at or after cutoff,
// newest first. A zero cutoff matches everything. Callers hold the lock.
func (s *InMemory) listByUserLocked(userID domain.UserID, cutoff time.Time) []models.Order {
	ids := s.byUser[userID]
	out := make([]models.Order, 0, len(ids))
	for _, orderID := range ids {
		order := s.orders[orderID]
		if !order.CreatedAt.Before(cutoff) {
			out = append(out, order)
		}
	}
	sortNewestFirst(out)
	return out
}

func (s *InMemory) CountByUserSince(ctx context.Context, userID domain.UserID, cutoff time.Time) (int, error) {
	orders, err := s.ListByUserSince(ctx, userID, cutoff)
	if err != nil {
		return 0, err
	}
	return len(orders), nil
}

func (s *InMemory) CountOpenByUser(_ context.Context, userID domain.UserID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, orderID := range s.byUser[userID] {
		if s.orders[orderID].IsOpen() {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) SearchByDateRange(_ context.Context, from, to time.Time) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Order, 0)
	for _, order := range s.orders {
		if !order.CreatedAt.Before(from) && order.CreatedAt.Before(to) {
			out = append(out, order)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemory) SearchByAmountRange(_ context.Context, low, high domain.Money) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Order, 0)
	for _, order := range s.orders {
		if order.TotalAmount.LessThan(low) || order.TotalAmount.GreaterThan(high) {
			continue
		}
		out = append(out, order)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemory) SalesStats(_ context.Context, from, to time.Time) (ports.SalesStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := ports.SalesStats{}
	for _, order := range s.orders {
		if order.Status != domain.StatusDelivered {
			continue
		}
		if order.CreatedAt.Before(from) || !order.CreatedAt.Before(to) {
			continue
		}
		stats.TotalRevenue += order.TotalAmount.Amount()
		stats.OrderCount++
	}
	return stats, nil
}

func (s *InMemory) NextID(_ context.Context) (domain.OrderID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	return domain.NewOrderID(s.lastID)
}

func (s *InMemory) NextLineID(_ context.Context) (domain.OrderLineID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastLineID++
	return domain.NewOrderLineID(s.lastLineID)
}

func sortNewestFirst(orders []models.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
