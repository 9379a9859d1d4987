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

	"Postbridge/internal/api/middleware"
	"Postbridge/internal/api/routes"
	"Postbridge/internal/config"
	"Postbridge/internal/core/posts"
	"Postbridge/internal/core/users"
	"Postbridge/internal/db/sqldb"
	"Postbridge/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	db, err := sqldb.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Printf("Failed to close database: %v", closeErr)
		}
	}()

	log.Printf("Connected to %s database", cfg.DatabaseDriver)

	if err := sqldb.Migrate(ctx, db); err != nil {
		return err
	}
	log.Println("Migrations completed successfully")

	if cfg.SeedData {
		if _, err := sqldb.LoadToyData(ctx, db); err != nil {
			return err
		}
	}

	// Rate limiting: shared counters in redis when configured, otherwise per process
	var store middleware.LimitStore
	if cfg.RedisURL != "" {
		redisStore, err := middleware.NewRedisStore(ctx, cfg.RedisURL, cfg.RateLimit, cfg.RateLimitWindow)
		if err != nil {
			return err
		}
		defer redisStore.Close()
		store = redisStore
	} else {
		memStore := middleware.NewMemoryStore(cfg.RateLimit, cfg.RateLimitWindow)
		go memStore.Cleanup(ctx)
		store = memStore
	}
	rateLimiter := middleware.NewRateLimiter(store)

	// Initialize repositories and services
	upstreamClient := upstream.NewClient(cfg.UpstreamBaseURL, upstream.WithTimeout(cfg.UpstreamTimeout))
	postRepo := sqldb.NewPostRepository(db)
	postService := posts.NewPostService(postRepo, upstreamClient, posts.NewValidator(cfg.MinTitleWords, cfg.MinBodyLength))

	userRepo := sqldb.NewUserRepository(db)
	userService := users.NewUserService(userRepo)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.NewRouter(postService, userService, db, rateLimiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Postbridge starting on port %s", cfg.Port)
		log.Printf("Upstream API: %s", cfg.UpstreamBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Println("Server stopped")
	return nil
}
