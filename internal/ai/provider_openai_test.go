package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func chatServer(t *testing.T, content, model string, check func(r *http.Request, req chatRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if check != nil {
			check(r, req)
		}
		json.NewEncoder(w).Encode(chatResponse{
			Choices: []chatChoice{{Message: chatMessage{Role: "assistant", Content: content}}},
			Model:   model,
			Usage:   chatUsage{PromptTokens: 10, CompletionTokens: 5},
		})
	}))
}

func TestOpenAIProvider_Complete(t *testing.T) {
	server := chatServer(t, "Hi there!", "gpt-3.5-turbo", func(r *http.Request, req chatRequest) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type: %s", r.Header.Get("Content-Type"))
		}
		if req.Model != "gpt-3.5-turbo" {
			t.Errorf("model = %q, want gpt-3.5-turbo", req.Model)
		}
		if req.Temperature == nil || *req.Temperature != 0.2 {
			t.Errorf("temperature = %v, want 0.2", req.Temperature)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "hello" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
	})
	defer server.Close()

	provider := NewOpenAIProvider("test-key", WithBaseURL(server.URL), WithTemperature(0.2))

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "Hi there!" {
		t.Errorf("content = %q, want %q", resp.Content, "Hi there!")
	}
	if resp.InputTokens != 10 {
		t.Errorf("input_tokens = %d, want 10", resp.InputTokens)
	}
	if resp.OutputTokens != 5 {
		t.Errorf("output_tokens = %d, want 5", resp.OutputTokens)
	}
}

func TestOpenAIProvider_RequestModelWins(t *testing.T) {
	server := chatServer(t, "ok", "gpt-4o", func(_ *http.Request, req chatRequest) {
		if req.Model != "gpt-4o" {
			t.Errorf("model = %q, want gpt-4o", req.Model)
		}
		if req.Temperature != nil {
			t.Errorf("temperature = %v, want omitted", *req.Temperature)
		}
	})
	defer server.Close()

	provider := NewOpenAIProvider("k", WithBaseURL(server.URL))
	if _, err := provider.Complete(context.Background(), CompletionRequest{Model: "gpt-4o"}); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
}

func TestOpenAIProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", WithBaseURL(server.URL))

	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	if err == nil {
		t.Fatal("Complete() should return error on API error")
	}
}

func TestOpenAIProvider_Complete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{})
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", WithBaseURL(server.URL))

	if _, err := provider.Complete(context.Background(), CompletionRequest{}); err == nil {
		t.Fatal("Complete() should return error when no choices")
	}
}

func TestCompatibleProviders(t *testing.T) {
	tests := []struct {
		name      string
		build     func(url string) *OpenAIProvider
		wantName  string
		wantModel string
		header    string
	}{
		{
			name:      "deepseek",
			build:     func(url string) *OpenAIProvider { return NewDeepSeekProvider("ds", WithBaseURL(url)) },
			wantName:  "deepseek",
			wantModel: "deepseek-chat",
		},
		{
			name:      "openrouter",
			build:     func(url string) *OpenAIProvider { return NewOpenRouterProvider("or", WithBaseURL(url)) },
			wantName:  "openrouter",
			wantModel: "openai/gpt-3.5-turbo",
			header:    "X-Title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := chatServer(t, tt.name+" response", tt.wantModel, func(r *http.Request, req chatRequest) {
				if r.URL.Path != "/chat/completions" {
					t.Errorf("path = %q, want /chat/completions", r.URL.Path)
				}
				if req.Model != tt.wantModel {
					t.Errorf("model = %q, want %q", req.Model, tt.wantModel)
				}
				if tt.header != "" && r.Header.Get(tt.header) == "" {
					t.Errorf("missing header %s", tt.header)
				}
			})
			defer server.Close()

			provider := tt.build(server.URL)
			if provider.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", provider.Name(), tt.wantName)
			}
			resp, err := provider.Complete(context.Background(), CompletionRequest{
				Messages: []Message{{Role: "user", Content: "hello"}},
			})
			if err != nil {
				t.Fatalf("Complete() error = %v", err)
			}
			if resp.Content != tt.name+" response" {
				t.Errorf("content = %q", resp.Content)
			}
		})
	}
}

func TestOpenAIProvider_HealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
	}{
		{"healthy", http.StatusOK, false},
		{"unhealthy", http.StatusUnauthorized, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/models" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			provider := NewOpenAIProvider("test-key", WithBaseURL(server.URL))
			err := provider.HealthCheck(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("HealthCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpenAIProvider_Models(t *testing.T) {
	models := NewOpenAIProvider("test-key", WithModel("gpt-4o-mini")).Models()
	if len(models) != 1 || models[0].ID != "gpt-4o-mini" {
		t.Errorf("Models() = %+v, want configured model", models)
	}
}
