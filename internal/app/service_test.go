package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gamified-learning-service/internal/app"
	"gamified-learning-service/internal/domain"
	"gamified-learning-service/internal/infra/memory"
)

func TestJoinCreatesUserAndProjection(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	board, err := service.Join(ctx, "u1", "Alice")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if len(board.Entries) != 1 || board.Entries[0].UserID != "u1" || board.Entries[0].XP != 0 {
		t.Fatalf("expected fresh entry for u1, got %+v", board.Entries)
	}

	user, nextLevelAt, err := service.Progress(ctx, "u1")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if user.Level != 1 || nextLevelAt != app.LevelThreshold(1) {
		t.Fatalf("expected level 1 with threshold %d, got level %d threshold %d",
			app.LevelThreshold(1), user.Level, nextLevelAt)
	}
}

func TestSubmitQuizCreditsUser(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	if _, err := service.Join(ctx, "u1", "Alice"); err != nil {
		t.Fatalf("join: %v", err)
	}

	attempt, user, err := service.SubmitQuiz(ctx, "quiz-1", "u1", []domain.SubmittedAnswer{
		{QuestionID: "q1", Answer: "4"},
		{QuestionID: "q2", Answer: true},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if attempt.Result.CorrectCount != 2 || attempt.Result.Score != 2 {
		t.Fatalf("expected perfect grading, got %+v", attempt.Result)
	}
	// 50 for completion plus 10 per correct answer.
	if user.XP != 70 {
		t.Fatalf("expected 70 xp, got %d", user.XP)
	}
	if !user.HasBadge("badge-perfect-quiz") {
		t.Fatalf("expected perfect quiz badge")
	}

	board, err := service.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board.Entries) != 1 || board.Entries[0].XP != 70 {
		t.Fatalf("expected projection updated to 70 xp, got %+v", board.Entries)
	}
}

func TestResubmissionCreatesNewAttempt(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()
	_, _ = service.Join(ctx, "u1", "Alice")

	first, _, err := service.SubmitQuiz(ctx, "quiz-1", "u1", []domain.SubmittedAnswer{{QuestionID: "q1", Answer: "4"}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	second, _, err := service.SubmitQuiz(ctx, "quiz-1", "u1", []domain.SubmittedAnswer{{QuestionID: "q1", Answer: "5"}})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("expected distinct attempt IDs")
	}

	attempts, err := service.Attempts(ctx, "u1")
	if err != nil {
		t.Fatalf("attempts: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected two attempts, got %d", len(attempts))
	}
}

func TestRecordLoginAppliesDailyEvent(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()
	_, _ = service.Join(ctx, "u1", "Alice")

	first, err := service.RecordLogin(ctx, "u1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if first.Streak.Count != 1 || first.XP != app.XPDailyLogin {
		t.Fatalf("expected streak started, got %+v", first)
	}

	// Second login the same day changes nothing.
	second, err := service.RecordLogin(ctx, "u1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if second.XP != first.XP || second.Streak.Count != first.Streak.Count {
		t.Fatalf("expected same-day login to be idempotent, got %+v", second)
	}
}

func TestSubmitUnknownQuiz(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()
	_, _ = service.Join(ctx, "u1", "Alice")

	_, _, err := service.SubmitQuiz(ctx, "quiz-unknown", "u1", nil)
	if !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}

func TestApplyEventUnknownUser(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	_, err := service.ApplyEvent(ctx, "nobody", domain.DailyLogin{})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestQuizStripsAnswers(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	quiz, err := service.Quiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("quiz: %v", err)
	}
	for _, question := range quiz.Questions {
		if question.Answer != nil {
			t.Fatalf("expected canonical answer stripped, got %v", question.Answer)
		}
	}
}

func newTestService() (*app.LearningService, *memory.LeaderboardStore) {
	users := memory.NewUserStore()
	attempts := memory.NewAttemptStore()
	board := memory.NewLeaderboardStore()
	catalog := memory.NewBadgeCatalog(memory.DefaultBadges()...)
	quizzes := memory.NewQuizRepository(memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"quiz-1": {
			ID: "quiz-1",
			Questions: []domain.Question{
				{ID: "q1", Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5"}, Answer: "4"},
				{ID: "q2", Type: domain.QuestionTrueFalse, Prompt: "The Earth orbits the Sun.", Answer: true},
			},
		},
	}), 5*time.Minute)

	engine := app.NewEngine(catalog)
	projector := app.NewProjector(board, 10)
	return app.NewLearningService(users, quizzes, attempts, engine, projector), board
}
