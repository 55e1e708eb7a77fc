package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"bookshelf/pkg/api"
	"bookshelf/pkg/circuitbreaker"
	"bookshelf/pkg/config"
	"bookshelf/pkg/database"
	"bookshelf/pkg/library"
	"bookshelf/pkg/logging"
	"bookshelf/pkg/middleware"
	"bookshelf/pkg/queue"
	"bookshelf/pkg/ratelimit"
	"bookshelf/pkg/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := config.LoadEnvFile(config.EnvPath); err != nil {
		log.Fatalf("failed to load env file: %v", err)
	}
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.Init(cfg.LogLevel)
	logger.Info("starting library service", "driver", cfg.DatabaseDriver, "storage", cfg.StorageBackend)

	db, err := database.Open(database.Config{
		Driver:     cfg.DatabaseDriver,
		DSN:        cfg.DatabaseURL,
		MaxRetries: cfg.DBMaxRetries,
		RetryDelay: 5 * time.Second,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}
	if err := database.SeedUsers(db, cfg.SeedUsers); err != nil {
		log.Fatalf("failed to seed users: %v", err)
	}
	logger.Info("database ready")

	files, mediaRoot, err := openStore(cfg)
	if err != nil {
		log.Fatalf("failed to init storage: %v", err)
	}
	breaker := circuitbreaker.NewCircuitBreaker(cfg.BreakerFailures, config.Duration(cfg.BreakerTimeout))
	guarded := storage.NewGuarded(files, breaker)

	var limiter middleware.Limiter
	if cfg.RedisAddr != "" {
		fixed, err := ratelimit.NewFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "bookshelf:ratelimit", cfg.RateLimit, config.Duration(cfg.RateLimitWindow))
		if err != nil {
			log.Fatalf("failed to init rate limiter: %v", err)
		}
		defer fixed.Close()
		limiter = fixed
	}

	svc := library.NewService(db, guarded, logger)
	svc.UseRetryQueue(queue.NewQueue())
	handler := api.NewHandler(svc, guarded, db, api.Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		PresignExpiry:  config.Duration(cfg.PresignExpiry),
	})
	router := setupRouter(handler, limiter, cfg.MediaURL, mediaRoot)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go svc.RunRetries(ctx, 10*time.Second)
	go func() {
		slog.Info("library server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
	logger.Info("library service stopped")
}

// openStore builds the configured document store. mediaRoot is the
// directory to serve over HTTP, empty for MinIO.
func openStore(cfg config.FileConfig) (storage.FileStore, string, error) {
	if cfg.StorageBackend == config.StorageDir {
		dir, err := storage.NewDirStore(cfg.StorageDir, cfg.MediaURL)
		if err != nil {
			return nil, "", err
		}
		return dir, dir.Root(), nil
	}
	store, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		return nil, "", err
	}
	return store, "", nil
}

func setupRouter(handler *api.Handler, limiter middleware.Limiter, mediaURL, mediaRoot string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLog("library"))
	r.Use(middleware.RateLimit(limiter))
	if mediaRoot != "" {
		r.Static(mediaURL, mediaRoot)
	}
	handler.Register(r)
	return r
}
