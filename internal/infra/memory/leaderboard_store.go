package memory

import (
	"context"
	"sort"
	"sync"

	"gamified-learning-service/internal/domain"
)

// LeaderboardStore is an in-memory implementation of app.LeaderboardStore.
// One entry per user, last write wins.
type LeaderboardStore struct {
	mu      sync.RWMutex
	entries map[string]domain.LeaderboardEntry
}

func NewLeaderboardStore() *LeaderboardStore {
	return &LeaderboardStore{entries: make(map[string]domain.LeaderboardEntry)}
}

func (s *LeaderboardStore) Upsert(_ context.Context, entry domain.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.UserID] = entry
	return nil
}

func (s *LeaderboardStore) Top(_ context.Context, n int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	entries := make([]domain.LeaderboardEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	// XP descending; equal XP ordered by user ID so ranking is deterministic.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].XP != entries[j].XP {
			return entries[i].XP > entries[j].XP
		}
		return entries[i].UserID < entries[j].UserID
	})
	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries, nil
}
