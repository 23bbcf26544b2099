package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gamified-learning-service/internal/domain"
)

// UserStore persists user game state in the users table. Badges are kept as a
// JSONB array of badge IDs.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) Get(ctx context.Context, userID string) (domain.UserGameState, error) {
	var (
		user      = domain.UserGameState{UserID: userID}
		badges    []byte
		lastLogin *time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT display_name, xp, level, streak_count, streak_last_login, badges
		 FROM users WHERE id=$1`, userID,
	).Scan(&user.DisplayName, &user.XP, &user.Level, &user.Streak.Count, &lastLogin, &badges)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserGameState{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.UserGameState{}, fmt.Errorf("load user: %w", err)
	}
	user.Streak.LastLogin = lastLogin
	if err := json.Unmarshal(badges, &user.Badges); err != nil {
		return domain.UserGameState{}, fmt.Errorf("unmarshal badges: %w", err)
	}
	return user, nil
}

func (s *UserStore) Save(ctx context.Context, user domain.UserGameState) error {
	badges, err := json.Marshal(user.Badges)
	if err != nil {
		return fmt.Errorf("marshal badges: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO users (id, display_name, xp, level, streak_count, streak_last_login, badges)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
		 ON CONFLICT (id) DO UPDATE SET
		   display_name=EXCLUDED.display_name,
		   xp=EXCLUDED.xp,
		   level=EXCLUDED.level,
		   streak_count=EXCLUDED.streak_count,
		   streak_last_login=EXCLUDED.streak_last_login,
		   badges=EXCLUDED.badges`,
		user.UserID, user.DisplayName, user.XP, user.Level,
		user.Streak.Count, user.Streak.LastLogin, badges)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}
