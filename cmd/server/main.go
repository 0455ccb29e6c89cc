package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lop-hoc/lophoc-server/internal/ai"
	"github.com/lop-hoc/lophoc-server/internal/blob"
	"github.com/lop-hoc/lophoc-server/internal/content"
	"github.com/lop-hoc/lophoc-server/internal/forum"
	"github.com/lop-hoc/lophoc-server/internal/platform/cache"
	"github.com/lop-hoc/lophoc-server/internal/platform/config"
	"github.com/lop-hoc/lophoc-server/internal/platform/database"
	"github.com/lop-hoc/lophoc-server/internal/quiz"
	"github.com/lop-hoc/lophoc-server/internal/quizgen"
	"github.com/lop-hoc/lophoc-server/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Log))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	deps, cleanup, err := wire(ctx, cfg)
	if err != nil {
		slog.Error("failed to wire dependencies", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.New(cfg, deps).Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// wire connects storage, cache, AI, and uploads. Postgres and Redis are
// optional: when either is unreachable the server starts on in-memory
// fallbacks so the seeded course stays viewable.
func wire(ctx context.Context, cfg *config.Config) (server.Deps, func(), error) {
	var deps server.Deps
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var contentStore content.Store = content.NewMemoryStore()
	var forumStore forum.Store = forum.NewMemoryStore()
	var bus forum.Bus = forum.NewMemoryBus()

	db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		slog.Warn("postgres unavailable, using in-memory storage", "error", err)
	} else {
		closers = append(closers, db.Close)
		if err := db.Migrate(ctx); err != nil {
			cleanup()
			return server.Deps{}, nil, fmt.Errorf("migrate: %w", err)
		}
		pgContent, err := content.NewPostgresStore(db.Pool)
		if err != nil {
			cleanup()
			return server.Deps{}, nil, fmt.Errorf("content store: %w", err)
		}
		pgForum, err := forum.NewPostgresStore(db.Pool)
		if err != nil {
			cleanup()
			return server.Deps{}, nil, fmt.Errorf("forum store: %w", err)
		}
		contentStore = pgContent
		forumStore = pgForum
		deps.Ready = append(deps.Ready, server.ReadyCheck{Name: "database", Check: db.HealthCheck})
	}

	c, err := cache.New(ctx, cfg.Cache.URL)
	if err != nil {
		slog.Warn("redis unavailable, visit counter and live feed fan-out degraded", "error", err)
	} else {
		closers = append(closers, func() { c.Close() })
		bus = forum.NewRedisBus(c.Client)
		deps.Visits = c
		deps.Ready = append(deps.Ready, server.ReadyCheck{Name: "cache", Check: c.HealthCheck})
	}

	contentSvc, err := content.NewService(contentStore)
	if err != nil {
		cleanup()
		return server.Deps{}, nil, fmt.Errorf("content service: %w", err)
	}

	uploads, err := blob.NewDiskStore(cfg.Blob.Dir, cfg.Blob.BaseURL, cfg.Blob.MaxSize)
	if err != nil {
		cleanup()
		return server.Deps{}, nil, fmt.Errorf("upload store: %w", err)
	}

	deps.Content = contentSvc
	deps.Banks = contentStore
	deps.Sessions = quiz.NewSessionStore()
	deps.Forum = forum.NewService(forumStore, bus)
	deps.Uploads = uploads
	deps.UploadDir = uploads.Dir()
	deps.Generator = newGenerator(cfg)

	return deps, cleanup, nil
}

// newGenerator builds the AI draft pipeline, or nil when no provider key
// is configured.
func newGenerator(cfg *config.Config) *quizgen.Generator {
	if !cfg.HasAIProvider() {
		slog.Info("no AI provider configured, quiz drafts disabled")
		return nil
	}

	router := ai.NewRouter()
	if cfg.AI.OpenAI.APIKey != "" {
		router.Register("openai", ai.NewOpenAIProvider(cfg.AI.OpenAI.APIKey))
	}
	if cfg.AI.Google.APIKey != "" {
		router.Register("google", ai.NewGoogleProvider(cfg.AI.Google.APIKey))
	}
	return quizgen.New(router)
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
