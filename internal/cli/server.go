package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"gamified-learning-service/internal/app"
	"gamified-learning-service/internal/config"
	"gamified-learning-service/internal/domain"
	"gamified-learning-service/internal/infra/memory"
	pginfra "gamified-learning-service/internal/infra/postgres"
	redisinfra "gamified-learning-service/internal/infra/redis"
	transport "gamified-learning-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the learning service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pginfra.NewQuizLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisinfra.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	var (
		users    app.UserStore    = memory.NewUserStore()
		attempts app.AttemptStore = memory.NewAttemptStore()
		catalog  app.BadgeCatalog = memory.NewBadgeCatalog(memory.DefaultBadges()...)
	)
	if pool != nil {
		users = pginfra.NewUserStore(pool)
		attempts = pginfra.NewAttemptStore(pool)
		catalog = pginfra.NewBadgeCatalog(pool)
	}

	var board app.LeaderboardStore = memory.NewLeaderboardStore()
	if redisClient != nil {
		board = redisinfra.NewLeaderboardStore(redisClient)
	}

	engine := app.NewEngine(app.WithCatalogLogging(catalog))
	projector := app.NewProjector(board, cfg.Leaderboard.Size)
	service := app.NewLearningService(users, quizRepo, attempts, engine, projector)

	mux := http.NewServeMux()
	transport.NewHandler(service).Register(mux)
	mux.HandleFunc("/ws", transport.NewWSHandler(service).ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting learning service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes provides demo quiz data for running without Postgres.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:    "quiz-1",
			Title: "Geography warm-up",
			Questions: []domain.Question{
				{
					ID:      "q1",
					Prompt:  "What is 2 + 2?",
					Options: []string{"3", "4", "5"},
					Answer:  "4",
					Points:  1,
				},
				{
					ID:     "q2",
					Type:   domain.QuestionTrueFalse,
					Prompt: "The Earth orbits the Sun.",
					Answer: true,
					Points: 1,
				},
				{
					ID:     "q3",
					Type:   domain.QuestionShortAnswer,
					Prompt: "What is the capital of France?",
					Answer: "Paris",
					Points: 2,
				},
			},
		},
	}
}
