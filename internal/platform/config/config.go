// Package config loads application configuration from environment variables.
// All variables use the STUDY_ prefix. A .env file in the working directory
// is read first; variables already present in the environment win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	AI       AIConfig
	Search   SearchConfig
	Session  SessionConfig
	Progress ProgressConfig
	Auth     AuthConfig
	Log      LogConfig

	PromptsPath string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings.
type CacheConfig struct {
	URL string
}

// AIConfig holds configuration for the text-generation providers.
type AIConfig struct {
	OpenAI     OpenAIConfig
	DeepSeek   DeepSeekConfig
	OpenRouter OpenRouterConfig
	Ollama     OllamaConfig

	Timeout            time.Duration
	SessionTokenBudget int64 // 0 means unlimited
}

// OpenAIConfig holds OpenAI provider settings.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	Temperature float64
}

// DeepSeekConfig holds DeepSeek provider settings (OpenAI-compatible).
type DeepSeekConfig struct {
	APIKey string
}

// OpenRouterConfig holds OpenRouter provider settings (OpenAI-compatible).
type OpenRouterConfig struct {
	APIKey string
}

// OllamaConfig holds self-hosted Ollama settings.
type OllamaConfig struct {
	Enabled bool
	URL     string
	Model   string
}

// SearchConfig holds web search settings.
type SearchConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig holds session store settings.
type SessionConfig struct {
	Backend       string // "memory" or "redis"
	TTL           time.Duration
	SweepInterval time.Duration
	CookieSecure  bool
}

// ProgressConfig selects where learning-log entries and saved notes are archived.
type ProgressConfig struct {
	Backend string // "none", "memory" or "postgres"
}

// AuthConfig holds identity service settings.
type AuthConfig struct {
	Provider  string // "local" or "rest"
	APIKey    string
	BaseURL   string
	JWTSecret string
	TokenTTL  time.Duration
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with STUDY_ prefix.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("STUDY_SERVER_PORT", 8080),
			Host: envStr("STUDY_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("STUDY_DATABASE_URL", ""),
			MaxConns: envInt("STUDY_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("STUDY_DATABASE_MIN_CONNS", 1),
		},
		Cache: CacheConfig{
			URL: envStr("STUDY_CACHE_URL", "redis://localhost:6379"),
		},
		AI: AIConfig{
			OpenAI: OpenAIConfig{
				APIKey:      envStr("STUDY_AI_OPENAI_API_KEY", envStr("OPENAI_API_KEY", "")),
				Model:       envStr("STUDY_AI_OPENAI_MODEL", "gpt-3.5-turbo"),
				Temperature: envFloat("STUDY_AI_OPENAI_TEMPERATURE", 0.2),
			},
			DeepSeek: DeepSeekConfig{
				APIKey: envStr("STUDY_AI_DEEPSEEK_API_KEY", ""),
			},
			OpenRouter: OpenRouterConfig{
				APIKey: envStr("STUDY_AI_OPENROUTER_API_KEY", ""),
			},
			Ollama: OllamaConfig{
				Enabled: envBool("STUDY_AI_OLLAMA_ENABLED", false),
				URL:     envStr("STUDY_AI_OLLAMA_URL", "http://localhost:11434"),
				Model:   envStr("STUDY_AI_OLLAMA_MODEL", "llama3:8b"),
			},
			Timeout:            envDuration("STUDY_AI_TIMEOUT", 30*time.Second),
			SessionTokenBudget: int64(envInt("STUDY_AI_SESSION_TOKEN_BUDGET", 0)),
		},
		Search: SearchConfig{
			BaseURL: envStr("STUDY_SEARCH_URL", "https://api.duckduckgo.com"),
			Timeout: envDuration("STUDY_SEARCH_TIMEOUT", 20*time.Second),
		},
		Session: SessionConfig{
			Backend:       envStr("STUDY_SESSION_BACKEND", "memory"),
			TTL:           envDuration("STUDY_SESSION_TTL", 24*time.Hour),
			SweepInterval: envDuration("STUDY_SESSION_SWEEP_INTERVAL", 10*time.Minute),
			CookieSecure:  envBool("STUDY_SESSION_COOKIE_SECURE", false),
		},
		Progress: ProgressConfig{
			Backend: envStr("STUDY_PROGRESS_BACKEND", "none"),
		},
		Auth: AuthConfig{
			Provider:  envStr("STUDY_AUTH_PROVIDER", "local"),
			APIKey:    envStr("STUDY_AUTH_API_KEY", ""),
			BaseURL:   envStr("STUDY_AUTH_BASE_URL", "https://identitytoolkit.googleapis.com/v1"),
			JWTSecret: envStr("STUDY_AUTH_JWT_SECRET", "change-me-in-production"),
			TokenTTL:  envDuration("STUDY_AUTH_TOKEN_TTL", time.Hour),
		},
		Log: LogConfig{
			Level:  envStr("STUDY_LOG_LEVEL", "info"),
			Format: envStr("STUDY_LOG_FORMAT", "json"),
		},
		PromptsPath: envStr("STUDY_PROMPTS_PATH", ""),
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if !c.HasAIProvider() {
		return fmt.Errorf("at least one AI provider must be configured")
	}

	if c.AI.Timeout <= 0 {
		return fmt.Errorf("STUDY_AI_TIMEOUT must be positive, got %s", c.AI.Timeout)
	}
	if c.Search.Timeout <= 0 {
		return fmt.Errorf("STUDY_SEARCH_TIMEOUT must be positive, got %s", c.Search.Timeout)
	}

	switch c.Session.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("STUDY_SESSION_BACKEND must be 'memory' or 'redis', got %q", c.Session.Backend)
	}

	switch c.Progress.Backend {
	case "none", "memory":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("STUDY_DATABASE_URL is required when STUDY_PROGRESS_BACKEND is 'postgres'")
		}
	default:
		return fmt.Errorf("STUDY_PROGRESS_BACKEND must be 'none', 'memory' or 'postgres', got %q", c.Progress.Backend)
	}

	switch c.Auth.Provider {
	case "local":
	case "rest":
		if c.Auth.APIKey == "" {
			return fmt.Errorf("STUDY_AUTH_API_KEY is required when STUDY_AUTH_PROVIDER is 'rest'")
		}
	default:
		return fmt.Errorf("STUDY_AUTH_PROVIDER must be 'local' or 'rest', got %q", c.Auth.Provider)
	}

	return nil
}

// HasAIProvider returns true if at least one AI provider is configured.
func (c *Config) HasAIProvider() bool {
	return c.AI.OpenAI.APIKey != "" ||
		c.AI.DeepSeek.APIKey != "" ||
		c.AI.OpenRouter.APIKey != "" ||
		c.AI.Ollama.Enabled
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}

// envDuration accepts Go duration strings ("45s") or a bare number of seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
