package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"promptlab/internal/app"
	"promptlab/internal/config"
	"promptlab/internal/handler"
	"promptlab/internal/middleware"
	"promptlab/internal/service/ratelimit"
)

// sweepInterval is how often idle rate-limit keys are dropped
const sweepInterval = 10 * time.Minute

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logOut, closeLog, err := config.LogWriter(cfg)
	if err != nil {
		log.Fatalf("Failed to set up log file: %v", err)
	}
	defer closeLog()

	logger := config.NewLogger(cfg, logOut)
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"default_model", cfg.DefaultModel,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	services, err := app.SetupServices(cfg, store, logger)
	if err != nil {
		log.Fatalf("Failed to setup services: %v", err)
	}
	router := services.Router
	go sweepLimiter(ctx, services.Limiter, logger)

	promptHandler := handler.NewPromptHandler(services.Executor, logger)
	conversationHandler := handler.NewConversationHandler(services.History, logger)
	rateLimitHandler := handler.NewRateLimitHandler(services.Limiter)
	providersHandler := handler.NewProvidersHandler(router, services.Catalog, cfg.ProviderCheckTime, logger)
	healthHandler := handler.NewHealthHandler(store)

	logger.Info("services initialized", "providers", router.Providers())

	// Go 1.22+ enhanced patterns
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.HealthCheck)
	mux.HandleFunc("POST /api/prompts/execute", promptHandler.Execute)
	mux.HandleFunc("GET /api/conversations/{id}/history", conversationHandler.GetHistory)
	mux.HandleFunc("GET /api/rate-limit", rateLimitHandler.GetStatus)
	mux.HandleFunc("GET /api/providers", providersHandler.ListProviders)

	// Applied in reverse order: CORS → RequestID → Identity → Logging → Recovery → Routes
	var h http.Handler = mux
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger)(h)
	h = middleware.CallerIdentity()(h)
	h = middleware.RequestID()(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", middleware.UserIDHeader, middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "Retry-After"},
	})
	h = corsHandler.Handler(h)

	// WriteTimeout covers the worst case of a provider call with every retry
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout(cfg),
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func sweepLimiter(ctx context.Context, limiter *ratelimit.Limiter, logger *slog.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Sweep(); n > 0 {
				logger.Debug("rate limit keys swept", "removed", n)
			}
		}
	}
}

// writeTimeout allows every attempt to time out plus the backoff between them
func writeTimeout(cfg *config.Config) time.Duration {
	attempts := max(cfg.ProviderMaxRetry, 0) + 1
	backoff := time.Duration(1<<attempts) * time.Second
	return time.Duration(attempts)*cfg.ProviderTimeout + backoff + 30*time.Second
}
