package store

import (
	"context"
	"sort"
	"sync"

	"storefront/internal/user/models"
	"storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

// InMemory is the reference user store: a mutex-guarded map keyed by id
// with a secondary email index for uniqueness.
type InMemory struct {
	mu      sync.RWMutex
	users   map[domain.UserID]models.User
	byEmail map[domain.EmailAddress]domain.UserID
	lastID  int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		users:   make(map[domain.UserID]models.User),
		byEmail: make(map[domain.EmailAddress]domain.UserID),
	}
}

func (s *InMemory) FindByID(_ context.Context, userID domain.UserID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return models.User{}, sentinel.ErrNotFound
	}
	return user, nil
}

func (s *InMemory) FindByEmail(_ context.Context, email domain.EmailAddress) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.byEmail[email]
	if !ok {
		return models.User{}, sentinel.ErrNotFound
	}
	return s.users[userID], nil
}

func (s *InMemory) ExistsByEmail(_ context.Context, email domain.EmailAddress) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byEmail[email]
	return ok, nil
}

func (s *InMemory) CreateIfEmailAvailable(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[user.Email]; taken {
		return sentinel.ErrAlreadyUsed
	}
	if _, exists := s.users[user.ID]; exists {
		return sentinel.ErrConflict
	}
	s.users[user.ID] = user
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *InMemory) Update(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if existing.Email != user.Email {
		if _, taken := s.byEmail[user.Email]; taken {
			return sentinel.ErrAlreadyUsed
		}
		delete(s.byEmail, existing.Email)
		s.byEmail[user.Email] = user.ID
	}
	s.users[user.ID] = user
	return nil
}

func (s *InMemory) Delete(_ context.Context, userID domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.users, userID)
	delete(s.byEmail, user.Email)
	return nil
}

func (s *InMemory) List(_ context.Context, limit, offset int) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		all = append(all, user)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	return paginate(all, limit, offset), nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func (s *InMemory) CountAdmins(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, user := range s.users {
		if user.Admin {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) NextID(_ context.Context) (domain.UserID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	return domain.NewUserID(s.lastID)
}

func paginate(users []models.User, limit, offset int) []models.User {
	if offset >= len(users) {
		return nil
	}
	users = users[offset:]
	if limit > 0 && limit < len(users) {
		users = users[:limit]
	}
	return append([]models.User(nil), users...)
}
