package cli

import (
	"fmt"
	"log"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"gamified-learning-service/internal/config"
	"gamified-learning-service/internal/infra/memory"
	pginfra "gamified-learning-service/internal/infra/postgres"
)

// NewSeedCmd seeds the badge catalog and demo quizzes. The catalog must
// exist before the engine can award badges; until then awards are silently
// skipped.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the badge catalog and demo quiz content",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			if err := runMigrationsWithConfig(ctx, cfg); err != nil {
				return err
			}

			pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := pginfra.NewBadgeCatalog(pool).Seed(ctx, memory.DefaultBadges()); err != nil {
				return err
			}
			quizzes := pginfra.NewQuizLoader(pool)
			for _, quiz := range sampleQuizzes() {
				if err := quizzes.SaveQuiz(ctx, quiz); err != nil {
					return err
				}
			}
			log.Printf("seeded badge catalog and demo quizzes")
			return nil
		},
	}
}
