package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Generator turns one rendered prompt into raw completion text for a session.
type Generator struct {
	completer Completer
	budget    BudgetChecker
}

// NewGenerator creates a generator. budget may be nil.
func NewGenerator(completer Completer, budget BudgetChecker) *Generator {
	return &Generator{completer: completer, budget: budget}
}

// Generate sends prompt as a single user message and returns the model text.
// Failures wrap ErrGenerationUnavailable or ErrBudgetExhausted.
func (g *Generator) Generate(ctx context.Context, sessionID string, task TaskType, prompt string) (string, error) {
	if g.budget != nil {
		ok, err := g.budget.Check(sessionID)
		if err != nil {
			return "", fmt.Errorf("check budget: %w", err)
		}
		if !ok {
			return "", fmt.Errorf("generate %s: %w", task, ErrBudgetExhausted)
		}
	}

	resp, err := g.completer.Complete(ctx, CompletionRequest{
		Messages: []Message{{Role: "user", Content: prompt}},
		Task:     task,
	})
	if err != nil {
		if errors.Is(err, ErrGenerationUnavailable) {
			return "", fmt.Errorf("generate %s: %w", task, err)
		}
		return "", fmt.Errorf("generate %s: %w: %w", task, ErrGenerationUnavailable, err)
	}

	if g.budget != nil {
		if err := g.budget.Record(sessionID, resp.TotalTokens()); err != nil {
			slog.Warn("failed to record token usage", "session_id", sessionID, "error", err)
		}
	}

	slog.Debug("generation completed",
		"session_id", sessionID,
		"task", task.String(),
		"tokens", resp.TotalTokens(),
	)
	return resp.Content, nil
}
