package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"gamified-learning-service/internal/app"
	"gamified-learning-service/internal/domain"
	"gamified-learning-service/internal/infra/memory"
	pginfra "gamified-learning-service/internal/infra/postgres"
	pgmigrations "gamified-learning-service/internal/infra/postgres/migrations"
	infraredis "gamified-learning-service/internal/infra/redis"
)

func TestSubmitQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateSchema(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	catalog := pginfra.NewBadgeCatalog(pool)
	if err := catalog.Seed(ctx, memory.DefaultBadges()); err != nil {
		t.Fatalf("seed badges: %v", err)
	}
	loader := pginfra.NewQuizLoader(pool)
	if err := loader.SaveQuiz(ctx, sampleQuiz()); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	quizRepo := infraredis.NewQuizRepository(redisClient, loader, 5*time.Minute)
	board := app.NewProjector(infraredis.NewLeaderboardStore(redisClient), app.DefaultLeaderboardSize)
	engine := app.NewEngine(catalog)
	service := app.NewLearningService(
		pginfra.NewUserStore(pool),
		quizRepo,
		pginfra.NewAttemptStore(pool),
		engine,
		board,
	)

	if _, err := service.Join(ctx, "u1", "Alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := service.Join(ctx, "u2", "Bob"); err != nil {
		t.Fatalf("join: %v", err)
	}

	attempt, user, err := service.SubmitQuiz(ctx, "quiz-1", "u2", []domain.SubmittedAnswer{
		{QuestionID: "q1", Answer: "4"},
		{QuestionID: "q2", Answer: true},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if attempt.Result.CorrectCount != 2 || attempt.Result.Score != attempt.Result.TotalPoints {
		t.Fatalf("expected a perfect attempt, got %+v", attempt.Result)
	}
	if user.XP != app.XPQuizComplete+2*app.XPCorrectAnswer {
		t.Fatalf("expected %d xp, got %d", app.XPQuizComplete+2*app.XPCorrectAnswer, user.XP)
	}
	if !user.HasBadge("badge-perfect-quiz") {
		t.Fatalf("expected perfect quiz badge, got %v", user.Badges)
	}

	attempts, err := service.Attempts(ctx, "u2")
	if err != nil {
		t.Fatalf("attempts: %v", err)
	}
	if len(attempts) != 1 || attempts[0].ID != attempt.ID {
		t.Fatalf("expected the stored attempt, got %+v", attempts)
	}

	lb, err := service.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(lb.Entries) != 2 || lb.Entries[0].UserID != "u2" {
		t.Fatalf("expected bob leading, got %+v", lb.Entries)
	}
	if lb.Entries[0].XP != user.XP {
		t.Fatalf("expected projected xp %d, got %d", user.XP, lb.Entries[0].XP)
	}
}

func TestDailyLoginEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	migrateSchema(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	catalog := pginfra.NewBadgeCatalog(pool)
	if err := catalog.Seed(ctx, memory.DefaultBadges()); err != nil {
		t.Fatalf("seed badges: %v", err)
	}

	board := app.NewProjector(memory.NewLeaderboardStore(), app.DefaultLeaderboardSize)
	service := app.NewLearningService(
		pginfra.NewUserStore(pool),
		memory.NewQuizRepository(memory.NewStaticQuizLoader(nil), time.Minute),
		pginfra.NewAttemptStore(pool),
		app.NewEngine(catalog),
		board,
	)

	if _, err := service.Join(ctx, "u1", "Alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	user, err := service.RecordLogin(ctx, "u1")
	if err != nil {
		t.Fatalf("record login: %v", err)
	}
	if user.Streak.Count != 1 || user.XP != app.XPDailyLogin {
		t.Fatalf("expected streak 1 and %d xp, got %+v", app.XPDailyLogin, user)
	}

	// A second login on the same day keeps the streak and awards nothing.
	again, err := service.RecordLogin(ctx, "u1")
	if err != nil {
		t.Fatalf("record login: %v", err)
	}
	if again.Streak.Count != 1 || again.XP != user.XP {
		t.Fatalf("expected same-day login to be a no-op, got %+v", again)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "learn", "POSTGRES_PASSWORD": "learnpass", "POSTGRES_DB": "learndb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://learn:learnpass@%s:%s/learndb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateSchema(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "Warmup",
		Questions: []domain.Question{
			{
				ID:      "q1",
				Type:    domain.QuestionMCQ,
				Prompt:  "What is 2 + 2?",
				Options: []string{"3", "4", "5"},
				Answer:  "4",
			},
			{
				ID:     "q2",
				Type:   domain.QuestionTrueFalse,
				Prompt: "The earth orbits the sun.",
				Answer: true,
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
