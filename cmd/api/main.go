package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/centralauth/centralauth/internal/api"
	"github.com/centralauth/centralauth/internal/infrastructure/db/mongo"
	"github.com/centralauth/centralauth/internal/infrastructure/db/redis"
	"github.com/centralauth/centralauth/internal/infrastructure/sweeper"
	"github.com/centralauth/centralauth/internal/pkg/config"
	"github.com/centralauth/centralauth/pkg/logger"
)

// @title        CentralAuth API
// @version      1.0
// @description  OAuth2/OIDC identity service: token & session authority plus OAuth client registry.
// @BasePath     /api/v1
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	sessionRepo := mongo.NewSessionRepository(db)
	for _, idx := range []interface{ EnsureIndexes(context.Context) error }{
		mongo.NewUserRepository(db),
		sessionRepo,
		mongo.NewClientRepository(db),
	} {
		if err := idx.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("index creation failed")
		}
	}

	// Retention sweep for terminal sessions.
	sweeper.New(sessionRepo, cfg.SweepInterval, cfg.SessionRetention, logger.Component("sweeper")).Start(ctx)

	e := api.NewRouter(db, rdb, api.Options{
		JWTSecret:      cfg.JWTSecret,
		AccessTokenTTL: cfg.AccessTokenTTL,
		RefreshTTL:     cfg.RefreshTokenTTL,
		RateLimit:      cfg.RateLimit,
		RateWindow:     cfg.RateWindow,
	}, logger.Component("api"))

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
