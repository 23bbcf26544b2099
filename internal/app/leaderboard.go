package app

import (
	"context"
	"sync"
	"time"

	"gamified-learning-service/internal/domain"
)

// DefaultLeaderboardSize caps Top reads when no limit is given.
const DefaultLeaderboardSize = 50

// LeaderboardStore persists one entry per user, last write wins. Top returns
// entries ordered by XP descending, ties broken by ascending user ID.
type LeaderboardStore interface {
	Upsert(ctx context.Context, entry domain.LeaderboardEntry) error
	Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error)
}

// Projector keeps the leaderboard in sync with user game state and fans out
// snapshots to in-process subscribers. Broadcast is fire-and-forget; a failed
// or slow delivery never affects the stored projection.
type Projector struct {
	store LeaderboardStore
	size  int
	now   func() time.Time

	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewProjector(store LeaderboardStore, size int) *Projector {
	return NewProjectorWithClock(store, size, time.Now)
}

// NewProjectorWithClock allows deterministic snapshot timestamps in tests.
func NewProjectorWithClock(store LeaderboardStore, size int, now func() time.Time) *Projector {
	if size <= 0 {
		size = DefaultLeaderboardSize
	}
	return &Projector{
		store:       store,
		size:        size,
		now:         now,
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// Project upserts the user's entry and broadcasts the refreshed snapshot.
func (p *Projector) Project(ctx context.Context, user domain.UserGameState) (domain.LeaderboardEntry, error) {
	entry := domain.LeaderboardEntry{
		UserID:      user.UserID,
		DisplayName: user.DisplayName,
		XP:          user.XP,
		Level:       user.Level,
		Badges:      append([]string(nil), user.Badges...),
	}
	if err := p.store.Upsert(ctx, entry); err != nil {
		return domain.LeaderboardEntry{}, err
	}

	snapshot, err := p.Snapshot(ctx, p.size)
	if err != nil {
		return entry, err
	}
	p.broadcast(snapshot)
	return entry, nil
}

// Snapshot reads the current top-N view.
func (p *Projector) Snapshot(ctx context.Context, n int) (domain.Leaderboard, error) {
	if n <= 0 || n > p.size {
		n = p.size
	}
	entries, err := p.store.Top(ctx, n)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: p.now()}, nil
}

// Subscribe returns a channel receiving leaderboard snapshots, primed with
// the current state. The caller must invoke cancel to avoid leaks.
func (p *Projector) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	initial, err := p.Snapshot(ctx, p.size)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan domain.Leaderboard, 8)
	p.mu.Lock()
	p.subscribers[ch] = struct{}{}
	p.mu.Unlock()

	ch <- initial

	cancel := func() {
		p.mu.Lock()
		if _, ok := p.subscribers[ch]; ok {
			delete(p.subscribers, ch)
			close(ch)
		}
		p.mu.Unlock()
	}
	return ch, cancel, nil
}

func (p *Projector) broadcast(snapshot domain.Leaderboard) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for ch := range p.subscribers {
		select {
		case ch <- snapshot:
		default:
			// Drop the stale update so slow clients never block broadcast.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}
