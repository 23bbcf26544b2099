package domain

// Event is a gamification trigger. Each kind carries only the fields it
// needs; payloads are decoded once at the transport boundary.
type Event interface {
	Kind() string
}

// DailyLogin is applied at most once per calendar day per user.
type DailyLogin struct{}

func (DailyLogin) Kind() string { return "daily_login" }

// QuizComplete credits a finished quiz. Correct and Total come from the
// grading result; a missing correct count is treated as zero.
type QuizComplete struct {
	Correct int
	Total   int
}

func (QuizComplete) Kind() string { return "quiz_complete" }

// CorrectAnswer credits a single correct answer outside a full submission.
type CorrectAnswer struct{}

func (CorrectAnswer) Kind() string { return "correct_answer" }

// Unrecognized carries an event kind the engine does not know. Applying it
// is a no-op, not an error.
type Unrecognized struct {
	Name string
}

func (u Unrecognized) Kind() string { return u.Name }
