package memory

import (
	"context"
	"testing"

	"gamified-learning-service/internal/domain"
)

func TestUserStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	if _, err := store.Get(ctx, "u1"); err != domain.ErrUserNotFound {
		t.Fatalf("expected user not found, got %v", err)
	}

	user := domain.NewUserGameState("u1", "Alice")
	user.XP = 30
	user.Badges = []string{"badge-perfect-quiz"}
	if err := store.Save(ctx, user); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.XP != 30 || len(loaded.Badges) != 1 {
		t.Fatalf("unexpected state: %+v", loaded)
	}

	// Mutating the returned slice must not leak into the store.
	loaded.Badges[0] = "tampered"
	again, _ := store.Get(ctx, "u1")
	if again.Badges[0] != "badge-perfect-quiz" {
		t.Fatalf("store state aliased by caller mutation")
	}
}

func TestLeaderboardStoreOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewLeaderboardStore()

	entries := []domain.LeaderboardEntry{
		{UserID: "u2", XP: 40},
		{UserID: "u1", XP: 40},
		{UserID: "u3", XP: 90},
	}
	for _, entry := range entries {
		if err := store.Upsert(ctx, entry); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	top, err := store.Top(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if top[0].UserID != "u3" || top[1].UserID != "u1" || top[2].UserID != "u2" {
		t.Fatalf("expected u3,u1,u2, got %+v", top)
	}

	// Upserting the same user replaces the prior entry.
	_ = store.Upsert(ctx, domain.LeaderboardEntry{UserID: "u1", XP: 100})
	top, _ = store.Top(ctx, 10)
	if len(top) != 3 || top[0].UserID != "u1" || top[0].XP != 100 {
		t.Fatalf("expected u1 promoted with latest xp, got %+v", top)
	}
}

func TestAttemptStoreListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()

	_ = store.Save(ctx, domain.QuizAttempt{ID: "a1", UserID: "u1", QuizID: "quiz-1"})
	_ = store.Save(ctx, domain.QuizAttempt{ID: "a2", UserID: "u1", QuizID: "quiz-1"})

	attempts, err := store.ByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("by user: %v", err)
	}
	if len(attempts) != 2 || attempts[0].ID != "a2" {
		t.Fatalf("expected newest first, got %+v", attempts)
	}
}

func TestBadgeCatalogLookup(t *testing.T) {
	ctx := context.Background()
	catalog := NewBadgeCatalog(DefaultBadges()...)

	badge, err := catalog.FindByCriteria(ctx, domain.CriteriaPerfectQuiz)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if badge.ID != "badge-perfect-quiz" {
		t.Fatalf("unexpected badge %+v", badge)
	}

	if _, err := catalog.FindByCriteria(ctx, "unseeded"); err != domain.ErrBadgeNotFound {
		t.Fatalf("expected badge not found, got %v", err)
	}
}
