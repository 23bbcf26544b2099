package memory

import (
	"context"
	"sync"

	"gamified-learning-service/internal/domain"
)

// BadgeCatalog is an in-memory badge catalog keyed by criteria tag.
type BadgeCatalog struct {
	mu     sync.RWMutex
	badges map[string]domain.Badge
}

func NewBadgeCatalog(badges ...domain.Badge) *BadgeCatalog {
	catalog := &BadgeCatalog{badges: make(map[string]domain.Badge, len(badges))}
	for _, badge := range badges {
		catalog.badges[badge.Criteria] = badge
	}
	return catalog
}

// DefaultBadges is the catalog the platform ships with.
func DefaultBadges() []domain.Badge {
	return []domain.Badge{
		{ID: "badge-streak-5", Name: "5-Day Streak", Kind: "streak", Criteria: domain.CriteriaFiveDayStreak},
		{ID: "badge-streak-10", Name: "10-Day Streak", Kind: "streak", Criteria: domain.CriteriaTenDayStreak},
		{ID: "badge-perfect-quiz", Name: "Perfect Quiz", Kind: "achievement", Criteria: domain.CriteriaPerfectQuiz},
	}
}

func (c *BadgeCatalog) FindByCriteria(_ context.Context, criteria string) (domain.Badge, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	badge, ok := c.badges[criteria]
	if !ok {
		return domain.Badge{}, domain.ErrBadgeNotFound
	}
	return badge, nil
}

func (c *BadgeCatalog) Add(badge domain.Badge) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.badges[badge.Criteria] = badge
}
