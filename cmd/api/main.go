package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/meditrack/internal/api/http"
	"github.com/spec-kit/meditrack/internal/api/http/handlers"
	"github.com/spec-kit/meditrack/internal/auth"
	"github.com/spec-kit/meditrack/internal/config"
	"github.com/spec-kit/meditrack/internal/observability"
	"github.com/spec-kit/meditrack/internal/persistence"
	"github.com/spec-kit/meditrack/internal/ratelimit"
	"github.com/spec-kit/meditrack/internal/repository"
	"github.com/spec-kit/meditrack/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	pool := pg.PoolHandle()
	if pool == nil {
		logger.Fatal("postgres is required; set POSTGRES_DSN")
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	hasher, err := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("invalid password hasher config", zap.Error(err))
	}
	tokens, err := auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL())
	if err != nil {
		logger.Fatal("invalid token codec config", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(pool)
	patientRepo := repository.NewPatientRepository(pool)

	authService, err := service.NewAuthService(userRepo, hasher, tokens)
	if err != nil {
		logger.Fatal("failed to init auth service", zap.Error(err))
	}
	patientService := service.NewPatientService(patientRepo)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	guard := auth.NewAccessGuard(auth.NewAuthenticator(tokens, userRepo))
	loginLimiter := ratelimit.NewLimiter(redis.Client, "meditrack:login:")

	app := httptransport.NewApp(cfg.App)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Users:          handlers.NewUsersHandler(authService),
		Patients:       handlers.NewPatientsHandler(patientService),
		Guard:          guard,
		AuthMiddleware: auth.NewAuthMiddleware(logger, metrics),
		LoginLimiter:   ratelimit.Middleware(loginLimiter, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow(), logger),
		Metrics:        adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
