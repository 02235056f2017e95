package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"storefront/internal/api"
	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logging"
	"storefront/internal/mail"
	"storefront/internal/ratelimit"
)

func init() {
	// Load environment variables from .env file.
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	logger := logging.New(os.Stdout, cfg.Production())

	// Create a context for initialization.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("Initialization error: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from DB: %v", err)
		}
	}()
	db := client.Database(cfg.MongoDB)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Initialization error: %v", err)
	}

	limitStore, closeStore, err := newLimitStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Initialization error: %v", err)
	}
	defer closeStore()

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		log.Fatalf("Initialization error: %v", err)
	}

	// One token service, so issuance, the gate and the limiter share a secret.
	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	users := database.NewUserStore(db)
	limiter := ratelimit.New(limitStore, tokens, ratelimit.Config{
		Window:             cfg.RateLimitWindow,
		AuthenticatedLimit: cfg.RateLimitAuthenticated,
		AnonymousLimit:     cfg.RateLimitAnonymous,
		TrustProxy:         cfg.TrustProxy,
	}, logger)

	server := api.NewServer(api.Deps{
		Accounts:   auth.NewAccounts(users, hasher, tokens, logger),
		Resets:     auth.NewResetFlow(users, hasher, notifier, logger),
		Categories: database.NewCategoryStore(db),
		Products:   database.NewProductStore(db),
		RateLimit:  limiter.Check,
		Gate:       auth.Gate(tokens),
		Log:        logger,
		Production: cfg.Production(),
	})

	router := handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Request-ID"}),
		handlers.ExposedHeaders([]string{"RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset", "Retry-After", "X-Request-ID"}),
	)(server.Routes())
	router = handlers.RecoveryHandler(handlers.PrintRecoveryStack(!cfg.Production()))(router)

	// Wrap the router with logging middleware.
	loggedRouter := handlers.LoggingHandler(os.Stdout, router)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Handler:      loggedRouter,
		Addr:         addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info(context.Background(), "server listening", "addr", addr, "env", cfg.AppEnv, "rate_limit_backend", cfg.RateLimitBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signals for graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info(context.Background(), "shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error(context.Background(), "server forced to shutdown", "error", err)
		return
	}
	logger.Info(context.Background(), "server exited gracefully")
}

// newLimitStore returns the rate limit counter backend selected by config and
// a function releasing it.
func newLimitStore(ctx context.Context, cfg *config.Config) (ratelimit.Store, func(), error) {
	if cfg.RateLimitBackend != config.BackendRedis {
		return ratelimit.NewMemoryStore(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	return ratelimit.NewRedisStore(rdb, "storefront:rl:"), func() { _ = rdb.Close() }, nil
}

// newNotifier sends reset codes over SMTP when a relay is configured and
// otherwise only logs them; Validate rejects the latter in production.
func newNotifier(cfg *config.Config, logger logging.Logger) (mail.Notifier, error) {
	if cfg.SMTPServer == "" {
		logger.Warn(context.Background(), "SMTP_SERVER not set, reset codes will be logged instead of mailed")
		return mail.NewLogNotifier(logger), nil
	}
	return mail.NewSMTPNotifier(mail.SMTPConfig{
		Server:   cfg.SMTPServer,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
		Rate:     cfg.MailRate,
	})
}
