package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/centralauth/centralauth/docs"
	"github.com/centralauth/centralauth/internal/api/handler"
	"github.com/centralauth/centralauth/internal/api/middleware"
	"github.com/centralauth/centralauth/internal/core/domain"
	"github.com/centralauth/centralauth/internal/core/service"
	"github.com/centralauth/centralauth/internal/core/token"
	mongodb "github.com/centralauth/centralauth/internal/infrastructure/db/mongo"
	redisdb "github.com/centralauth/centralauth/internal/infrastructure/db/redis"
)

// Options carries the tunables the router needs beyond its storage handles.
type Options struct {
	JWTSecret      string
	AccessTokenTTL time.Duration
	RefreshTTL     time.Duration
	RateLimit      int64
	RateWindow     time.Duration
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, opts Options, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("centralauth"))

	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Dependencies ---
	codec := token.NewCodec(opts.JWTSecret, opts.AccessTokenTTL)

	userRepo := mongodb.NewUserRepository(db)
	sessionRepo := mongodb.NewSessionRepository(db)
	clientRepo := mongodb.NewClientRepository(db)

	authService := service.NewAuthService(userRepo, sessionRepo, codec, opts.RefreshTTL, log)
	clientService := service.NewClientService(clientRepo, log)

	authHandler := handler.NewAuthHandler(authService)
	clientHandler := handler.NewClientHandler(clientService)

	authMiddleware := middleware.Auth(codec)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	limiter := redisdb.NewRateLimiter(rdb, opts.RateLimit, opts.RateWindow)

	v1 := e.Group("/api/v1")

	// --- Auth routes ---
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login, middleware.RateLimit(limiter, "login", log))
	v1.POST("/auth/refresh", authHandler.Refresh)
	v1.POST("/auth/logout", authHandler.Logout)
	v1.POST("/auth/logout-all", authHandler.LogoutAll, authMiddleware)

	// --- Client registry routes ---
	v1.POST("/clients", clientHandler.Create, authMiddleware)
	v1.GET("/clients", clientHandler.List, authMiddleware)
	v1.GET("/clients/:id", clientHandler.Get, authMiddleware)
	v1.PUT("/clients/:id", clientHandler.Update, authMiddleware)
	v1.DELETE("/clients/:id", clientHandler.Delete, authMiddleware)
	v1.POST("/clients/:id/regenerate-secret", clientHandler.RegenerateSecret, authMiddleware, adminOnly)

	// Self-service secret recovery by public client_id. Rate-limited rather
	// than authenticated; a stronger ownership proof belongs to a later
	// hardening pass.
	v1.POST("/clients/regenerate-secret/:client_id", clientHandler.RegenerateSecretByClientID,
		middleware.RateLimit(limiter, "secret_recovery", log))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
