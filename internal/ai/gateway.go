// Package ai provides a provider-agnostic text-generation gateway. The study
// pipeline only needs prompt text in and completion text out; providers,
// routing, timeouts and token budgets live here.
package ai

import (
	"context"
	"errors"
)

var (
	// ErrGenerationUnavailable means no provider produced a completion. The
	// operation can be retried.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrBudgetExhausted means the session used up its token budget.
	ErrBudgetExhausted = errors.New("session token budget exhausted")
)

// TaskType names the pipeline stage a completion serves.
type TaskType int

const (
	TaskPlanning TaskType = iota
	TaskResearch
	TaskSummary
	TaskQuiz
	TaskSuggestion
)

func (t TaskType) String() string {
	switch t {
	case TaskPlanning:
		return "planning"
	case TaskResearch:
		return "research"
	case TaskSummary:
		return "summary"
	case TaskQuiz:
		return "quiz"
	case TaskSuggestion:
		return "suggestion"
	default:
		return "unknown"
	}
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the input to an AI completion.
type CompletionRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	Task        TaskType  `json:"task,omitempty"`
}

// CompletionResponse is the output from an AI completion.
type CompletionResponse struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// TotalTokens returns the sum of input and output tokens.
func (r CompletionResponse) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// ModelInfo describes an available model.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MaxTokens   int    `json:"max_tokens"`
	Description string `json:"description"`
}

// Provider is the interface all AI providers must implement.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	Models() []ModelInfo
	HealthCheck(ctx context.Context) error
}

// Completer is satisfied by Router and by any single Provider.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}
