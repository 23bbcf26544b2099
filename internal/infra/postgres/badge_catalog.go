package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gamified-learning-service/internal/domain"
)

// BadgeCatalog reads the seeded badge catalog. Criteria tags are unique.
type BadgeCatalog struct {
	pool *pgxpool.Pool
}

func NewBadgeCatalog(pool *pgxpool.Pool) *BadgeCatalog {
	return &BadgeCatalog{pool: pool}
}

func (c *BadgeCatalog) FindByCriteria(ctx context.Context, criteria string) (domain.Badge, error) {
	var badge domain.Badge
	err := c.pool.QueryRow(ctx,
		`SELECT id, name, description, kind, criteria FROM badges WHERE criteria=$1`, criteria,
	).Scan(&badge.ID, &badge.Name, &badge.Description, &badge.Kind, &badge.Criteria)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Badge{}, domain.ErrBadgeNotFound
	}
	if err != nil {
		return domain.Badge{}, fmt.Errorf("load badge: %w", err)
	}
	return badge, nil
}

// Seed upserts catalog entries; awarding silently no-ops until this has run.
func (c *BadgeCatalog) Seed(ctx context.Context, badges []domain.Badge) error {
	for _, badge := range badges {
		_, err := c.pool.Exec(ctx,
			`INSERT INTO badges (id, name, description, kind, criteria)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (criteria) DO UPDATE SET
			   name=EXCLUDED.name, description=EXCLUDED.description, kind=EXCLUDED.kind`,
			badge.ID, badge.Name, badge.Description, badge.Kind, badge.Criteria)
		if err != nil {
			return fmt.Errorf("seed badge %s: %w", badge.Criteria, err)
		}
	}
	return nil
}
