package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const defaultAttemptTimeout = 30 * time.Second

// Router tries registered providers in order until one answers.
type Router struct {
	providers map[string]Provider
	fallback  []string // ordered fallback chain
	timeout   time.Duration
	mu        sync.RWMutex
}

// NewRouter creates a new AI router. Every provider attempt is bounded by
// timeout; zero selects 30s.
func NewRouter(timeout time.Duration) *Router {
	if timeout <= 0 {
		timeout = defaultAttemptTimeout
	}
	return &Router{
		providers: make(map[string]Provider),
		timeout:   timeout,
	}
}

// Register adds a provider to the router.
func (r *Router) Register(name string, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[name]; !exists {
		r.fallback = append(r.fallback, name)
	}
	r.providers[name] = provider
}

// Complete routes a request to the first provider that succeeds. When all
// fail the error wraps ErrGenerationUnavailable.
func (r *Router) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.fallback) == 0 {
		return CompletionResponse{}, fmt.Errorf("no AI providers registered: %w", ErrGenerationUnavailable)
	}

	var errs []error
	for _, name := range r.fallback {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		resp, err := r.attempt(ctx, r.providers[name], req)
		if err != nil {
			slog.Warn("AI provider failed, trying next",
				"provider", name,
				"task", req.Task.String(),
				"error", err,
			)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}

		slog.Debug("AI request completed",
			"provider", name,
			"task", req.Task.String(),
			"model", resp.Model,
			"input_tokens", resp.InputTokens,
			"output_tokens", resp.OutputTokens,
		)
		return resp, nil
	}

	return CompletionResponse{}, fmt.Errorf("%w: %w", ErrGenerationUnavailable, errors.Join(errs...))
}

func (r *Router) attempt(ctx context.Context, p Provider, req CompletionRequest) (CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return p.Complete(ctx, req)
}

// HasProvider returns true if at least one provider is registered.
func (r *Router) HasProvider() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers) > 0
}

// HealthCheck succeeds when any registered provider is healthy.
func (r *Router) HealthCheck(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error
	for _, name := range r.fallback {
		if err := r.providers[name].HealthCheck(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		return nil
	}
	if len(errs) == 0 {
		return ErrGenerationUnavailable
	}
	return errors.Join(errs...)
}
