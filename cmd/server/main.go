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

	"github.com/Auroshikaa/AI-Study-Buddy/internal/ai"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/auth"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/platform/cache"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/platform/config"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/platform/database"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/progress"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/prompts"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/search"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/session"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/study"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/web"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

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

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.close()

	if a.sweep != nil {
		go func() {
			if err := session.RunSweeper(ctx, a.sweep, cfg.Session.SweepInterval, cfg.Session.TTL); err != nil {
				slog.Error("session sweeper stopped", "error", err)
			}
		}()
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      a.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 3 * time.Minute,
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

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// app is the wired application: the HTTP handler plus the resources it owns.
type app struct {
	handler http.Handler
	sweep   session.Sweeper
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp connects the configured backends and builds the HTTP handler.
func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	checks := map[string]web.ReadinessCheck{}

	router := newRouter(cfg.AI)
	if !router.HasProvider() {
		return nil, fmt.Errorf("no AI providers registered")
	}
	checks["ai"] = router.HealthCheck
	budget := ai.NewInMemoryBudget(cfg.AI.SessionTokenBudget)

	set, err := prompts.Load(cfg.PromptsPath)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	var store session.Store
	switch cfg.Session.Backend {
	case "redis":
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		a.closers = append(a.closers, func() { _ = c.Close() })
		checks["cache"] = c.HealthCheck
		store = session.NewRedisStore(c, cfg.Session.TTL)
		// Redis expires sessions itself; only the token counters need sweeping.
		a.sweep = budget
	default:
		mem := session.NewMemoryStore(session.WithOnEvict(budget.Forget))
		a.sweep = mem
		store = mem
	}

	var recorder progress.Recorder = progress.NopRecorder{}
	switch cfg.Progress.Backend {
	case "memory":
		recorder = progress.NewMemoryRecorder()
	case "postgres":
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		checks["database"] = db.HealthCheck
		recorder = progress.NewPostgresRecorder(db.Pool)
	}

	var provider auth.Provider
	switch cfg.Auth.Provider {
	case "rest":
		provider = auth.NewRESTProvider(cfg.Auth.APIKey, auth.WithRESTBaseURL(cfg.Auth.BaseURL))
	default:
		provider = auth.NewLocalProvider(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	}

	engine := study.NewEngine(study.EngineConfig{
		Generator:     ai.NewGenerator(router, budget),
		Searcher:      search.NewDuckDuckGo(search.WithBaseURL(cfg.Search.BaseURL)),
		SearchTimeout: cfg.Search.Timeout,
		Prompts:       set,
		Store:         store,
		Recorder:      recorder,
		Auth:          provider,
	})

	srv, err := web.NewServer(web.Config{
		Engine:       engine,
		CookieSecure: cfg.Session.CookieSecure,
		CookieTTL:    cfg.Session.TTL,
		Checks:       checks,
	})
	if err != nil {
		return nil, err
	}
	a.handler = srv.Handler()

	slog.Info("application wired",
		"session_backend", cfg.Session.Backend,
		"progress_backend", cfg.Progress.Backend,
		"auth_provider", cfg.Auth.Provider,
	)
	return a, nil
}

// newRouter registers every configured provider in fallback order.
func newRouter(cfg config.AIConfig) *ai.Router {
	router := ai.NewRouter(cfg.Timeout)

	if cfg.OpenAI.APIKey != "" {
		router.Register("openai", ai.NewOpenAIProvider(cfg.OpenAI.APIKey,
			ai.WithModel(cfg.OpenAI.Model),
			ai.WithTemperature(cfg.OpenAI.Temperature),
		))
		slog.Info("AI provider registered", "provider", "openai", "model", cfg.OpenAI.Model)
	}
	if cfg.DeepSeek.APIKey != "" {
		router.Register("deepseek", ai.NewDeepSeekProvider(cfg.DeepSeek.APIKey))
		slog.Info("AI provider registered", "provider", "deepseek")
	}
	if cfg.OpenRouter.APIKey != "" {
		router.Register("openrouter", ai.NewOpenRouterProvider(cfg.OpenRouter.APIKey))
		slog.Info("AI provider registered", "provider", "openrouter")
	}
	if cfg.Ollama.Enabled {
		router.Register("ollama", ai.NewOllamaProvider(cfg.Ollama.URL, ai.WithOllamaModel(cfg.Ollama.Model)))
		slog.Info("AI provider registered", "provider", "ollama", "url", cfg.Ollama.URL)
	}
	return router
}
