package memory

import (
	"context"
	"sync"

	"gamified-learning-service/internal/domain"
)

// AttemptStore keeps quiz attempts in memory, newest first per user.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string][]domain.QuizAttempt // keyed by user ID
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{attempts: make(map[string][]domain.QuizAttempt)}
}

func (s *AttemptStore) Save(_ context.Context, attempt domain.QuizAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempt.UserID] = append([]domain.QuizAttempt{attempt}, s.attempts[attempt.UserID]...)
	return nil
}

func (s *AttemptStore) ByUser(_ context.Context, userID string) ([]domain.QuizAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.QuizAttempt(nil), s.attempts[userID]...), nil
}
