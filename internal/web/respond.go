package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Auroshikaa/AI-Study-Buddy/internal/ai"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/auth"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/quiz"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/session"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/study"
)

// Error codes returned in the error body.
const (
	CodeInvalidRequest        = "invalid_request"
	CodeQuizParseError        = "quiz_parse_error"
	CodeGenerationUnavailable = "generation_unavailable"
	CodeAuthError             = "auth_error"
	CodeAuthUnavailable       = "auth_unavailable"
	CodeInternal              = "internal_error"
)

// Response is the body of every API call.
type Response struct {
	View   *View      `json:"view,omitempty"`
	Notice string     `json:"notice,omitempty"`
	Error  *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Details   []string `json:"details,omitempty"`
	Retryable bool     `json:"retryable,omitempty"`
}

// classify maps an engine error to an HTTP status and error body.
func classify(err error) (int, *ErrorBody) {
	var (
		pe *quiz.ParseError
		ae *auth.Error
		ve *ValidationError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, &ErrorBody{Code: CodeInvalidRequest, Message: "request body failed validation", Details: ve.Details}
	case errors.As(err, &pe):
		return http.StatusUnprocessableEntity, &ErrorBody{
			Code:      CodeQuizParseError,
			Message:   "The generated quiz could not be read. Please regenerate it.",
			Details:   []string{pe.Error()},
			Retryable: true,
		}
	case errors.Is(err, ai.ErrBudgetExhausted):
		return http.StatusServiceUnavailable, &ErrorBody{Code: CodeGenerationUnavailable, Message: ai.ErrBudgetExhausted.Error()}
	case errors.Is(err, ai.ErrGenerationUnavailable):
		return http.StatusServiceUnavailable, &ErrorBody{
			Code:      CodeGenerationUnavailable,
			Message:   "The language model is unavailable. Please try again.",
			Retryable: true,
		}
	case errors.As(err, &ae):
		return http.StatusUnauthorized, &ErrorBody{Code: CodeAuthError, Message: ae.Message}
	case errors.Is(err, study.ErrAuthUnavailable):
		return http.StatusServiceUnavailable, &ErrorBody{Code: CodeAuthUnavailable, Message: err.Error()}
	case errors.Is(err, study.ErrInvalid):
		return http.StatusBadRequest, &ErrorBody{Code: CodeInvalidRequest, Message: err.Error()}
	default:
		return http.StatusInternalServerError, &ErrorBody{Code: CodeInternal, Message: "internal error"}
	}
}

// respond writes the rendered view, with an error body when err is set.
func respond(w http.ResponseWriter, r *http.Request, st *session.State, err error) {
	var resp Response
	if st != nil {
		v := Render(st)
		resp.View = &v
	}

	status := http.StatusOK
	if err != nil {
		status, resp.Error = classify(err)
		if status >= http.StatusInternalServerError {
			slog.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
		}
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}
