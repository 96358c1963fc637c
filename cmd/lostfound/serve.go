package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/erazemk/lostfound/internal/api"
	"github.com/erazemk/lostfound/internal/config"
	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/events"
	"github.com/erazemk/lostfound/internal/lock"
	"github.com/erazemk/lostfound/internal/store"
	"github.com/erazemk/lostfound/internal/textassist"
	"github.com/erazemk/lostfound/internal/workflow"
)

// tokenPurgeInterval is how often expired revoked tokens are dropped.
const tokenPurgeInterval = time.Hour

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLog, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer closeLog()
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&flags.addr, "addr", "a", ":8080", "listen address (env ADDR)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	slog.Info("database ready", "path", cfg.DBPath)

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		// Auto-generated on first run and kept in the database.
		jwtSecret, err = store.GetJWTSecret(ctx, database)
		if err != nil {
			return fmt.Errorf("getting JWT secret: %w", err)
		}
	}

	engine := workflow.New(database)

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parsing REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connecting to Redis: %w", err)
		}
		engine.Locker = lock.NewRedisLocker(client, cfg.LockTTL)
		slog.Info("using Redis item locks", "ttl", cfg.LockTTL)
	}

	if cfg.RabbitMQURL != "" {
		pub, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer pub.Close()
		engine.Events = pub
	}

	var gen textassist.Generator
	if cfg.GeminiAPIKey != "" {
		g, err := textassist.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.AssistModel)
		if err != nil {
			return err
		}
		gen = g
		slog.Info("text assist enabled", "model", cfg.AssistModel)
	} else {
		slog.Info("text assist disabled, GEMINI_API_KEY not set")
	}
	assist := textassist.New(gen, textassist.Options{
		Timeout:       cfg.AssistTimeout,
		MaxConcurrent: cfg.AssistMaxConcurrent,
	})

	router := api.NewRouter(api.Options{
		DB:        database,
		JWTSecret: jwtSecret,
		Engine:    engine,
		Assist:    assist,
		Policy:    cfg,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server started", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(tokenPurgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case now := <-ticker.C:
				n, err := store.PurgeRevokedTokens(gctx, database, now)
				if err != nil {
					slog.Warn("failed to purge revoked tokens", "error", err)
					continue
				}
				if n > 0 {
					slog.Info("purged revoked tokens", "count", n)
				}
			}
		}
	})

	err = g.Wait()
	slog.Info("server stopped, closing database")
	return err
}
