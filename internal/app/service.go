package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"gamified-learning-service/internal/domain"
)

// UserStore persists user game state.
type UserStore interface {
	Get(ctx context.Context, userID string) (domain.UserGameState, error)
	Save(ctx context.Context, user domain.UserGameState) error
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// AttemptStore persists immutable quiz attempts.
type AttemptStore interface {
	Save(ctx context.Context, attempt domain.QuizAttempt) error
	ByUser(ctx context.Context, userID string) ([]domain.QuizAttempt, error)
}

// LearningService contains the platform's core use cases: login crediting,
// quiz submission, and the leaderboard read paths. All read-modify-write on a
// user goes through a per-user lock so two concurrent events for the same
// user cannot race on streak or XP state.
type LearningService struct {
	users    UserStore
	quizzes  QuizRepository
	attempts AttemptStore
	engine   *Engine
	board    *Projector
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLearningService(users UserStore, quizzes QuizRepository, attempts AttemptStore, engine *Engine, board *Projector) *LearningService {
	return &LearningService{
		users:    users,
		quizzes:  quizzes,
		attempts: attempts,
		engine:   engine,
		board:    board,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Join registers a learner if they are not known yet and returns the current
// leaderboard. Existing users keep their state; only the display name is
// refreshed.
func (s *LearningService) Join(ctx context.Context, userID, displayName string) (domain.Leaderboard, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	user, err := s.users.Get(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		user = domain.NewUserGameState(userID, displayName)
	} else if err != nil {
		return domain.Leaderboard{}, err
	} else if displayName != "" {
		user.DisplayName = displayName
	}
	if err := s.users.Save(ctx, user); err != nil {
		return domain.Leaderboard{}, err
	}
	if _, err := s.board.Project(ctx, user); err != nil {
		return domain.Leaderboard{}, err
	}
	return s.board.Snapshot(ctx, 0)
}

// RecordLogin applies a daily-login event to the user.
func (s *LearningService) RecordLogin(ctx context.Context, userID string) (domain.UserGameState, error) {
	return s.ApplyEvent(ctx, userID, domain.DailyLogin{})
}

// ApplyEvent runs one gamification event through the engine, persists the
// result, and refreshes the user's leaderboard entry.
func (s *LearningService) ApplyEvent(ctx context.Context, userID string, event domain.Event) (domain.UserGameState, error) {
	unlock := s.lockUser(userID)
	defer unlock()
	return s.applyLocked(ctx, userID, event)
}

func (s *LearningService) applyLocked(ctx context.Context, userID string, event domain.Event) (domain.UserGameState, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return domain.UserGameState{}, err
	}
	updated, err := s.engine.Apply(ctx, user, event)
	if err != nil {
		return domain.UserGameState{}, fmt.Errorf("apply %s: %w", event.Kind(), err)
	}
	if err := s.users.Save(ctx, updated); err != nil {
		return domain.UserGameState{}, err
	}
	if _, err := s.board.Project(ctx, updated); err != nil {
		return domain.UserGameState{}, err
	}
	return updated, nil
}

// SubmitQuiz grades the submission, records an immutable attempt, and credits
// the learner with a quiz_complete event.
func (s *LearningService) SubmitQuiz(ctx context.Context, quizID, userID string, answers []domain.SubmittedAnswer) (domain.QuizAttempt, domain.UserGameState, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizAttempt{}, domain.UserGameState{}, err
	}

	result := Grade(quiz, answers)
	attempt := domain.QuizAttempt{
		ID:          uuid.NewString(),
		QuizID:      quiz.ID,
		UserID:      userID,
		Result:      result,
		SubmittedAt: s.now(),
	}

	unlock := s.lockUser(userID)
	defer unlock()

	if err := s.attempts.Save(ctx, attempt); err != nil {
		return domain.QuizAttempt{}, domain.UserGameState{}, err
	}
	user, err := s.applyLocked(ctx, userID, domain.QuizComplete{
		Correct: result.CorrectCount,
		Total:   result.TotalQuestions,
	})
	if err != nil {
		return domain.QuizAttempt{}, domain.UserGameState{}, err
	}
	return attempt, user, nil
}

// Quiz returns the quiz with canonical answers stripped, for delivery to
// learners.
func (s *LearningService) Quiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	questions := make([]domain.Question, len(quiz.Questions))
	for i, q := range quiz.Questions {
		q.Answer = nil
		questions[i] = q
	}
	quiz.Questions = questions
	return quiz, nil
}

// Progress returns the user's state plus the XP required for the next level.
func (s *LearningService) Progress(ctx context.Context, userID string) (domain.UserGameState, int, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return domain.UserGameState{}, 0, err
	}
	return user, LevelThreshold(user.Level), nil
}

// Attempts lists the user's recorded quiz attempts.
func (s *LearningService) Attempts(ctx context.Context, userID string) ([]domain.QuizAttempt, error) {
	return s.attempts.ByUser(ctx, userID)
}

// Leaderboard returns the current top-N snapshot.
func (s *LearningService) Leaderboard(ctx context.Context, n int) (domain.Leaderboard, error) {
	return s.board.Snapshot(ctx, n)
}

// SubscribeLeaderboard returns a live feed of leaderboard snapshots.
func (s *LearningService) SubscribeLeaderboard(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	return s.board.Subscribe(ctx)
}

func (s *LearningService) lockUser(userID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	s.mu.Unlock()
	lock.Lock()
	return lock.Unlock
}
