package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"gamified-learning-service/internal/domain"
)

// Leaderboard keys:
//
//	ZSET leaderboard:xp    userID -> XP score
//	HASH leaderboard:info  userID -> LeaderboardEntry JSON
//
// The sorted set gives O(log N) upserts and range reads; the hash carries the
// display fields the score alone cannot.
const (
	keyLeaderboardXP   = "leaderboard:xp"
	keyLeaderboardInfo = "leaderboard:info"
)

// LeaderboardStore is a Redis implementation of app.LeaderboardStore.
type LeaderboardStore struct {
	client *redis.Client
}

func NewLeaderboardStore(client *redis.Client) *LeaderboardStore {
	return &LeaderboardStore{client: client}
}

func (s *LeaderboardStore) Upsert(ctx context.Context, entry domain.LeaderboardEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal leaderboard entry: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, keyLeaderboardXP, redis.Z{Score: float64(entry.XP), Member: entry.UserID})
	pipe.HSet(ctx, keyLeaderboardInfo, entry.UserID, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("upsert leaderboard entry: %w", err)
	}
	return nil
}

func (s *LeaderboardStore) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	userIDs, err := s.client.ZRevRange(ctx, keyLeaderboardXP, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard range: %w", err)
	}
	if len(userIDs) == 0 {
		return []domain.LeaderboardEntry{}, nil
	}

	raw, err := s.client.HMGet(ctx, keyLeaderboardInfo, userIDs...).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard entries: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(raw))
	for _, value := range raw {
		str, ok := value.(string)
		if !ok {
			continue // score present but info missing; skip the orphan
		}
		var entry domain.LeaderboardEntry
		if err := json.Unmarshal([]byte(str), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	// Redis orders equal scores lexically by member; re-sort so ties always
	// break by ascending user ID regardless of read direction.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].XP != entries[j].XP {
			return entries[i].XP > entries[j].XP
		}
		return entries[i].UserID < entries[j].UserID
	})
	return entries, nil
}
