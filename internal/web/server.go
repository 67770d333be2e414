// Package web exposes the study engine over HTTP. Each visitor is identified
// by a session cookie and every mutating call answers with the rendered view.
package web

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Auroshikaa/AI-Study-Buddy/internal/study"
	"github.com/google/uuid"
)

const (
	// SessionCookie names the cookie carrying the session id.
	SessionCookie = "study_session"

	maxUploadBytes = 20 << 20
)

// ReadinessCheck reports whether a dependency is reachable.
type ReadinessCheck func(ctx context.Context) error

// Config holds dependencies for the HTTP server.
type Config struct {
	Engine       *study.Engine
	CookieSecure bool
	CookieTTL    time.Duration
	Checks       map[string]ReadinessCheck
}

// Server routes HTTP requests to the study engine.
type Server struct {
	engine       *study.Engine
	schemas      schemas
	cookieSecure bool
	cookieTTL    time.Duration
	checks       map[string]ReadinessCheck
}

// NewServer creates a server. It fails only if the embedded request schemas do
// not compile.
func NewServer(cfg Config) (*Server, error) {
	sch, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	ttl := cfg.CookieTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Server{
		engine:       cfg.Engine,
		schemas:      sch,
		cookieSecure: cfg.CookieSecure,
		cookieTTL:    ttl,
		checks:       cfg.Checks,
	}, nil
}

// Handler returns the HTTP routes including health checks.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("POST /api/guide", s.handleGuide)
	mux.HandleFunc("GET /api/guide/stream", s.handleGuideStream)
	mux.HandleFunc("POST /api/quiz", s.handleQuiz)
	mux.HandleFunc("POST /api/quiz/answers", s.handleAnswer)
	mux.HandleFunc("POST /api/quiz/submit", s.handleSubmit)
	mux.HandleFunc("POST /api/reset", s.handleReset)
	mux.HandleFunc("POST /api/settings", s.handleSettings)
	mux.HandleFunc("POST /api/video", s.handleVideo)
	mux.HandleFunc("POST /api/slides", s.handleSlides)
	mux.HandleFunc("POST /api/auth/signin", s.handleSignIn)
	mux.HandleFunc("POST /api/auth/signup", s.handleSignUp)
	mux.HandleFunc("POST /api/auth/signout", s.handleSignOut)
	mux.HandleFunc("GET /api/progress.xlsx", s.handleExport)
	return logRequests(mux)
}

// sessionID returns the visitor's session id, issuing a new cookie when the
// request has none or an invalid one.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			slog.Warn("readiness check failed", "check", name, "error", err)
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not ready", "checks": failed})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack hands the connection to the websocket handler.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	r.status = http.StatusSwitchingProtocols
	return http.NewResponseController(r.ResponseWriter).Hijack()
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
