// Command api serves the residency scheduling REST API.
//
//	@title						Medrez Residency API
//	@version					1.0
//	@description				Signup, login and scheduling resources for the Medrez residency planner.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
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
	"github.com/rs/zerolog"

	"github.com/medrez/residency-api/internal/api"
	"github.com/medrez/residency-api/internal/api/handler"
	"github.com/medrez/residency-api/internal/core/service"
	"github.com/medrez/residency-api/internal/infrastructure/crypto"
	mongostore "github.com/medrez/residency-api/internal/infrastructure/db/mongo"
	redisstore "github.com/medrez/residency-api/internal/infrastructure/db/redis"
	"github.com/medrez/residency-api/internal/infrastructure/token"
	"github.com/medrez/residency-api/internal/pkg/config"
	"github.com/medrez/residency-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log := logger.Get()
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger level comes from config, so fall back to a default one.
		logger.Init(logger.Options{Service: "medrez-api"})
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "medrez-api",
	})

	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI(),
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return err
	}
	defer disconnectMongo(log, client.Disconnect)
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close")
		}
	}()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

	userRepo := mongostore.NewUserRepository(db)
	resourceRepo := mongostore.NewResourceRepository(db)
	if err := mongostore.EnsureIndexes(ctx, userRepo, resourceRepo); err != nil {
		return err
	}

	tokens, err := token.NewJWTIssuer(cfg.JWTSecret)
	if err != nil {
		return err
	}

	authService := service.NewAuthService(
		userRepo,
		crypto.NewBcryptHasher(crypto.DefaultCost),
		tokens,
		log,
		service.WithAdminSignup(cfg.AdminSignupEnabled),
	)
	resourceService := service.NewResourceService(resourceRepo, redisstore.NewIdempotencyStore(rdb), log)

	e, err := api.NewRouter(api.Deps{
		Log:       log,
		Auth:      authService,
		Resources: resourceService,
		Tokens:    tokens,
		Checks: map[string]handler.DependencyCheck{
			"mongodb": func(ctx context.Context) error { return client.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		CORSOrigins: cfg.AllowedOrigins(),
		Production:  cfg.IsProduction(),
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server is running")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func disconnectMongo(log zerolog.Logger, disconnect func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := disconnect(ctx); err != nil {
		log.Warn().Err(err).Msg("mongo disconnect")
	}
}
