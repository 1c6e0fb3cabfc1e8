package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ticketing/user-service/internal/api"
	"github.com/ticketing/user-service/internal/core/ports"
	"github.com/ticketing/user-service/internal/core/service"
	"github.com/ticketing/user-service/internal/infrastructure/config"
	mongodb "github.com/ticketing/user-service/internal/infrastructure/db/mongo"
	redisdb "github.com/ticketing/user-service/internal/infrastructure/db/redis"
	"github.com/ticketing/user-service/internal/infrastructure/http/handlers"
	"github.com/ticketing/user-service/internal/infrastructure/identity"
	"github.com/ticketing/user-service/internal/infrastructure/queue"
	"github.com/ticketing/user-service/internal/infrastructure/security"
	"github.com/ticketing/user-service/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// A local .env file is optional; real environment variables win.
	envFileErr := godotenv.Load()

	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "user-service",
		Env:     cfg.Env,
	})

	if envFileErr != nil && !errors.Is(envFileErr, os.ErrNotExist) {
		log.Warn().Err(envFileErr).Msg("failed to read .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	users := mongodb.NewUserRepository(db)
	projects := mongodb.NewProjectChecker(db)
	tasks := mongodb.NewTaskChecker(db)
	audit := mongodb.NewAuditRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, projects, tasks, audit); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer func() { _ = rdb.Close() }()

	// --- Identity provider ---
	keycloak := identity.NewKeycloakClient(identity.Config{
		BaseURL:      cfg.Identity.BaseURL,
		Realm:        cfg.Identity.Realm,
		ClientID:     cfg.Identity.ClientID,
		ClientSecret: cfg.Identity.ClientSecret,
		Timeout:      cfg.Identity.Timeout,
	}, log)

	var idp ports.IdentityProvider = keycloak
	if cfg.Identity.Async {
		dispatcher := queue.NewDispatcher(keycloak, queue.Options{
			Workers:     cfg.Identity.Workers,
			MaxAttempts: cfg.Identity.MaxAttempts,
			Timeout:     cfg.Identity.Timeout,
		}, log)
		dispatcher.Start(context.Background())
		defer dispatcher.Stop()
		idp = dispatcher
	}

	// --- Service ---
	userService := service.NewUserService(service.UserServiceDeps{
		Users:           users,
		Projects:        projects,
		Tasks:           tasks,
		Identity:        idp,
		Hasher:          security.NewBcryptHasher(cfg.BcryptCost),
		Locker:          redisdb.NewUserLocker(rdb, cfg.Redis.LockTTL, logger.WithComponent("user_lock")),
		Audit:           audit,
		IdentityTimeout: cfg.Identity.Timeout,
		Logger:          log,
	})

	e := api.NewRouter(api.RouterDeps{
		Users:     userService,
		JWTSecret: cfg.JWTSecret,
		Readiness: map[string]handlers.Check{
			"mongodb": handlers.MongoCheck(db),
			"redis":   handlers.RedisCheck(rdb),
		},
		Logger: log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting user service")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
