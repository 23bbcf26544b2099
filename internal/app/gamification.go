package app

import (
	"context"
	"errors"
	"log"
	"time"

	"gamified-learning-service/internal/domain"
)

// XP amounts per event kind. Daily login XP is intentionally low and awarded
// at most once per calendar day.
const (
	XPDailyLogin    = 1
	XPCorrectAnswer = 10
	XPQuizComplete  = 50
)

// LevelThreshold returns the minimum XP required to advance past the given
// level. Strictly increasing in level, so the level-up loop terminates.
func LevelThreshold(level int) int {
	return level*100 + level*level*10
}

// BadgeCatalog resolves criteria tags to seeded badges. Implementations
// return domain.ErrBadgeNotFound for unknown tags.
type BadgeCatalog interface {
	FindByCriteria(ctx context.Context, criteria string) (domain.Badge, error)
}

// WithCatalogLogging wraps a catalog so skipped awards (criteria tags with no
// seeded badge) leave a trace in the log. The awarding contract is unchanged:
// a miss still results in a silent skip.
func WithCatalogLogging(catalog BadgeCatalog) BadgeCatalog {
	return loggingCatalog{inner: catalog}
}

type loggingCatalog struct {
	inner BadgeCatalog
}

func (c loggingCatalog) FindByCriteria(ctx context.Context, criteria string) (domain.Badge, error) {
	badge, err := c.inner.FindByCriteria(ctx, criteria)
	if errors.Is(err, domain.ErrBadgeNotFound) {
		log.Printf("badge award skipped: no catalog entry for criteria %q", criteria)
	}
	return badge, err
}

// Engine applies gamification events to a user's game state. It performs no
// I/O beyond badge catalog lookups; the caller persists the returned state
// and regenerates the leaderboard projection from it.
type Engine struct {
	catalog BadgeCatalog
	now     func() time.Time
}

func NewEngine(catalog BadgeCatalog) *Engine {
	return NewEngineWithClock(catalog, time.Now)
}

// NewEngineWithClock allows deterministic timestamps in tests.
func NewEngineWithClock(catalog BadgeCatalog, now func() time.Time) *Engine {
	return &Engine{catalog: catalog, now: now}
}

// Apply returns the user state after the event. Unknown event kinds are a
// no-op; the input state is never mutated.
func (e *Engine) Apply(ctx context.Context, user domain.UserGameState, event domain.Event) (domain.UserGameState, error) {
	updated := user
	updated.Badges = append([]string(nil), user.Badges...)

	switch ev := event.(type) {
	case domain.DailyLogin:
		if err := e.applyDailyLogin(ctx, &updated); err != nil {
			return user, err
		}
	case domain.QuizComplete:
		addXP(&updated, XPQuizComplete)
		addXP(&updated, ev.Correct*XPCorrectAnswer)
		if ev.Correct > 0 && ev.Correct == ev.Total {
			if err := e.award(ctx, &updated, domain.CriteriaPerfectQuiz); err != nil {
				return user, err
			}
		}
	case domain.CorrectAnswer:
		addXP(&updated, XPCorrectAnswer)
	default:
		// Unknown events are ignored, not rejected.
	}
	return updated, nil
}

// applyDailyLogin advances the streak and awards login XP when the last
// recorded login is on an earlier calendar day. Eligibility is decided by
// calendar-day difference, not by 24h duration.
func (e *Engine) applyDailyLogin(ctx context.Context, user *domain.UserGameState) error {
	now := e.now()
	eligible := false

	if user.Streak.LastLogin == nil {
		user.Streak.Count = 1
		eligible = true
	} else {
		switch days := calendarDaysBetween(*user.Streak.LastLogin, now); {
		case days == 1:
			user.Streak.Count++
			eligible = true
		case days > 1:
			user.Streak.Count = 1
			eligible = true
		}
	}
	if !eligible {
		return nil
	}

	user.Streak.LastLogin = &now
	addXP(user, XPDailyLogin)

	// Count changes by at most 1 per eligible login, so each threshold
	// fires exactly once.
	if user.Streak.Count == 5 {
		if err := e.award(ctx, user, domain.CriteriaFiveDayStreak); err != nil {
			return err
		}
	}
	if user.Streak.Count == 10 {
		if err := e.award(ctx, user, domain.CriteriaTenDayStreak); err != nil {
			return err
		}
	}
	return nil
}

// award adds the badge matching the criteria tag to the user's set. A tag
// with no catalog entry is skipped; awarding is idempotent.
func (e *Engine) award(ctx context.Context, user *domain.UserGameState, criteria string) error {
	badge, err := e.catalog.FindByCriteria(ctx, criteria)
	if errors.Is(err, domain.ErrBadgeNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !user.HasBadge(badge.ID) {
		user.Badges = append(user.Badges, badge.ID)
	}
	return nil
}

func addXP(user *domain.UserGameState, amount int) {
	user.XP += amount
	for user.XP >= LevelThreshold(user.Level) {
		user.Level++
	}
}

// calendarDaysBetween returns the number of calendar days from a to b, both
// interpreted in UTC.
func calendarDaysBetween(a, b time.Time) int {
	a = a.UTC()
	b = b.UTC()
	dayA := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	dayB := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(dayB.Sub(dayA).Hours() / 24)
}
