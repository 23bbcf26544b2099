package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"gamified-learning-service/internal/domain"
)

// AttemptStore appends immutable quiz attempts. Attempts are never updated;
// a resubmission inserts a new row.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

func (s *AttemptStore) Save(ctx context.Context, attempt domain.QuizAttempt) error {
	result, err := json.Marshal(attempt.Result)
	if err != nil {
		return fmt.Errorf("marshal grading result: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quiz_attempts (id, quiz_id, user_id, result, submitted_at)
		 VALUES ($1, $2, $3, $4::jsonb, $5)`,
		attempt.ID, attempt.QuizID, attempt.UserID, result, attempt.SubmittedAt)
	if err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) ByUser(ctx context.Context, userID string) ([]domain.QuizAttempt, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, quiz_id, user_id, result, submitted_at
		 FROM quiz_attempts WHERE user_id=$1 ORDER BY submitted_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []domain.QuizAttempt
	for rows.Next() {
		var (
			attempt domain.QuizAttempt
			result  []byte
		)
		if err := rows.Scan(&attempt.ID, &attempt.QuizID, &attempt.UserID, &result, &attempt.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if err := json.Unmarshal(result, &attempt.Result); err != nil {
			return nil, fmt.Errorf("unmarshal grading result: %w", err)
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}
