package domain

import "time"

// Streak tracks consecutive calendar-day logins.
type Streak struct {
	Count     int        `json:"count"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

// UserGameState is the per-learner progression record. It is mutated only by
// the gamification engine; callers persist the returned copy.
type UserGameState struct {
	UserID      string   `json:"userId"`
	DisplayName string   `json:"displayName"`
	XP          int      `json:"xp"`
	Level       int      `json:"level"`
	Streak      Streak   `json:"streak"`
	Badges      []string `json:"badges"` // badge IDs, set semantics
}

// NewUserGameState returns the signup-time state: no XP, level 1, no streak.
func NewUserGameState(userID, displayName string) UserGameState {
	return UserGameState{
		UserID:      userID,
		DisplayName: displayName,
		XP:          0,
		Level:       1,
		Streak:      Streak{Count: 0},
	}
}

// HasBadge reports whether the badge ID is already in the user's set.
func (u UserGameState) HasBadge(badgeID string) bool {
	for _, id := range u.Badges {
		if id == badgeID {
			return true
		}
	}
	return false
}

// Badge is an immutable catalog entry. Awarding is keyed by Criteria.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Kind        string `json:"kind,omitempty"` // streak, achievement, rare
	Criteria    string `json:"criteria"`
}

// Criteria tags the badge catalog must be seeded with before the engine can
// award the corresponding badges.
const (
	CriteriaFiveDayStreak = "5_day_streak"
	CriteriaTenDayStreak  = "10_day_streak"
	CriteriaPerfectQuiz   = "perfect_quiz"
)

// QuestionType selects the grading rule for a question.
type QuestionType string

const (
	QuestionMCQ         QuestionType = "mcq"
	QuestionTrueFalse   QuestionType = "true_false"
	QuestionShortAnswer QuestionType = "short_answer"
)

// Question holds a prompt and the canonical answer for its type. Answer is a
// JSON-decoded value; for mcq it must match the submission exactly, including
// type.
type Question struct {
	ID      string       `json:"id"`
	Type    QuestionType `json:"type,omitempty"` // empty means mcq
	Prompt  string       `json:"prompt"`
	Options []string     `json:"options,omitempty"`
	Answer  any          `json:"answer"`
	Points  int          `json:"points,omitempty"` // defaults to 1 when <= 0
}

// PointsOrDefault returns the question's point value, defaulting to 1.
func (q Question) PointsOrDefault() int {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}

// Quiz is a collection of questions.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title,omitempty"`
	Questions []Question `json:"questions"`
}

// TotalPoints sums the point values of all questions.
func (q Quiz) TotalPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.PointsOrDefault()
	}
	return total
}

// SubmittedAnswer pairs a question with the learner's answer value.
type SubmittedAnswer struct {
	QuestionID string `json:"questionId"`
	Answer     any    `json:"answer"`
}

// QuestionResult is the graded outcome for a single question.
type QuestionResult struct {
	QuestionID    string `json:"questionId"`
	Answer        any    `json:"answer,omitempty"`
	Answered      bool   `json:"answered"`
	Correct       bool   `json:"correct"`
	PointsAwarded int    `json:"pointsAwarded"`
}

// GradingResult aggregates per-question outcomes for one submission.
type GradingResult struct {
	Responses      []QuestionResult `json:"responses"`
	Score          int              `json:"score"`
	CorrectCount   int              `json:"correctCount"`
	TotalQuestions int              `json:"totalQuestions"`
	TotalPoints    int              `json:"totalPoints"`
}

// QuizAttempt is an immutable record of one graded submission. Resubmitting
// creates a new attempt with a fresh ID.
type QuizAttempt struct {
	ID          string        `json:"id"`
	QuizID      string        `json:"quizId"`
	UserID      string        `json:"userId"`
	Result      GradingResult `json:"result"`
	SubmittedAt time.Time     `json:"submittedAt"`
}

// LeaderboardEntry is the projection of one user's progression, upserted
// whenever their game state changes.
type LeaderboardEntry struct {
	UserID      string   `json:"userId"`
	DisplayName string   `json:"displayName"`
	XP          int      `json:"xp"`
	Level       int      `json:"level"`
	Badges      []string `json:"badges"`
}

// Leaderboard is an ordered snapshot of the top entries.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
