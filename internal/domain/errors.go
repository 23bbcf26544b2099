package domain

import "errors"

var (
	// ErrUserNotFound is returned when the user's game state does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrBadgeNotFound indicates a criteria tag has no catalog entry.
	ErrBadgeNotFound = errors.New("badge not found")
	// ErrAttemptNotFound indicates a quiz attempt ID is unknown.
	ErrAttemptNotFound = errors.New("quiz attempt not found")
)
