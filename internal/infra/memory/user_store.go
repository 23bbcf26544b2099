package memory

import (
	"context"
	"sync"

	"gamified-learning-service/internal/domain"
)

// UserStore is an in-memory implementation of app.UserStore.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.UserGameState
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.UserGameState)}
}

func (s *UserStore) Get(_ context.Context, userID string) (domain.UserGameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return domain.UserGameState{}, domain.ErrUserNotFound
	}
	user.Badges = append([]string(nil), user.Badges...)
	return user, nil
}

func (s *UserStore) Save(_ context.Context, user domain.UserGameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.Badges = append([]string(nil), user.Badges...)
	s.users[user.UserID] = user
	return nil
}
