package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/platewatch/backend/internal/delivery/http"
	"github.com/platewatch/backend/internal/domain"
	"github.com/platewatch/backend/internal/repository/postgres"
	"github.com/platewatch/backend/internal/repository/remote"
	"github.com/platewatch/backend/internal/service"
)

func main() {
	// Load environment variables
	envLoaded := godotenv.Load() == nil

	cfg := loadConfig()
	log := newLogger(cfg.Env)
	if !envLoaded {
		log.Debug().Msg("no .env file found, using system environment")
	}

	// Sighting store selection: PostgreSQL when configured, the upstream
	// storage service API as second choice, demo data otherwise.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo domain.SightingRepository
	switch {
	case cfg.DatabaseURL != "":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Warn().Err(err).Msg("could not connect to database, running with mock data only")
			repo = postgres.NewMockRepository()
		} else {
			defer pool.Close()
			log.Info().Msg("connected to PostgreSQL")
			repo = postgres.NewPostgresRepository(pool)
		}
	case cfg.StorageAPIURL != "":
		log.Info().Str("url", cfg.StorageAPIURL).Msg("using upstream storage service")
		repo = remote.NewRemoteRepository(cfg.StorageAPIURL, cfg.StorageAPIToken)
	default:
		log.Info().Msg("no store configured, running with mock data only")
		repo = postgres.NewMockRepository()
	}

	// Dependency Injection: Services
	authSvc, err := service.NewAuthService(
		service.NewStaticVerifier(service.DefaultUsers()),
		cfg.JWTSecret,
		cfg.TokenTTL,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("auth service init failed")
	}
	statsSvc := service.NewStatsService(cfg.MalformedPolicy)
	pathSvc := service.NewPathService()
	searchSvc := service.NewSearchService(repo, statsSvc, pathSvc, log)

	if err := os.MkdirAll(cfg.MediaDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.MediaDir).Msg("media dir init failed")
	}

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "PlateWatch API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		BodyLimit:    16 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Routes
	handler := http.NewHandler(authSvc, searchSvc, statsSvc, pathSvc, repo, cfg.MediaDir, log)
	http.SetupRoutes(app, handler, authSvc, cfg.MediaDir)

	// Retention janitor: purge sightings past the retention window
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go runJanitor(janitorCtx, repo, cfg.RetentionDays, log)

	// Graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	stopJanitor()
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited gracefully")
}

// runJanitor periodically enforces the retention policy.
func runJanitor(ctx context.Context, repo domain.SightingRepository, retentionDays int, log zerolog.Logger) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().AddDate(0, 0, -retentionDays)
			purgeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			removed, err := repo.PurgeOlderThan(purgeCtx, cutoff)
			cancel()
			if err != nil {
				log.Error().Err(err).Msg("retention purge failed")
				continue
			}
			if removed > 0 {
				log.Info().Int64("removed", removed).Time("cutoff", cutoff).Msg("retention purge complete")
			}
		}
	}
}

type Config struct {
	DatabaseURL     string
	StorageAPIURL   string
	StorageAPIToken string
	JWTSecret       string
	TokenTTL        time.Duration
	MediaDir        string
	RetentionDays   int
	MalformedPolicy service.MalformedPolicy
	Port            string
	Env             string
}

func loadConfig() *Config {
	policy := service.PolicyDrop
	if getEnv("STRICT_RECORDS", "") == "true" {
		policy = service.PolicyFail
	}

	ttlHours, err := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "24"))
	if err != nil || ttlHours < 1 {
		ttlHours = 24
	}

	retention, err := strconv.Atoi(getEnv("RETENTION_DAYS", "7"))
	if err != nil || retention < 1 {
		retention = 7
	}

	return &Config{
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		StorageAPIURL:   getEnv("STORAGE_API_URL", ""),
		StorageAPIToken: getEnv("STORAGE_API_TOKEN", ""),
		JWTSecret:       getEnv("JWT_SECRET", "platewatch-demo-secret-do-not-use-in-prod"),
		TokenTTL:        time.Duration(ttlHours) * time.Hour,
		MediaDir:        getEnv("MEDIA_DIR", "./media"),
		RetentionDays:   retention,
		MalformedPolicy: policy,
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("GO_ENV", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
