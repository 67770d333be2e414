package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Auroshikaa/AI-Study-Buddy/internal/ai"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/progress"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/quiz"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/session"
)

// GenerateQuiz builds a quiz from the current notes. A *quiz.ParseError
// leaves the session without a quiz so the visitor can regenerate.
func (e *Engine) GenerateQuiz(ctx context.Context, id string) (*session.State, error) {
	return e.update(ctx, id, func(st *session.State) error {
		if st.Summary == "" {
			return ErrNoSummary
		}
		if st.HasQuiz() {
			return ErrQuizExists
		}

		prompt, err := e.prompts.QuizzerPrompt(st.Summary)
		if err != nil {
			return err
		}
		text, err := e.gen.Generate(ctx, id, ai.TaskQuiz, prompt)
		if err != nil {
			return fmt.Errorf("quiz: %w", err)
		}

		q, err := quiz.Parse(text)
		if err != nil {
			var pe *quiz.ParseError
			if errors.As(err, &pe) {
				slog.Warn("generated quiz was malformed",
					"session_id", id,
					"line", pe.Line,
					"reason", pe.Reason,
				)
			}
			return err
		}

		st.SetQuiz(q)
		slog.Info("quiz generated", "session_id", id, "questions", q.Len())
		return nil
	})
}

// SelectAnswer records the visitor's choice for question index. The answer
// must be one of that question's options or "I don't know".
func (e *Engine) SelectAnswer(ctx context.Context, id string, index int, answer string) (*session.State, error) {
	return e.update(ctx, id, func(st *session.State) error {
		if !st.HasQuiz() {
			return ErrNoQuiz
		}
		if st.Submitted {
			return ErrAlreadySubmitted
		}
		if index < 0 || index >= len(st.Quiz) {
			return fmt.Errorf("%w: question %d does not exist", ErrInvalidAnswer, index)
		}
		if answer != quiz.DefaultAnswer && !slices.Contains(st.Quiz[index].Options, answer) {
			return fmt.Errorf("%w: %q", ErrInvalidAnswer, answer)
		}
		st.UserAnswers[index] = answer
		return nil
	})
}

// SubmitQuiz grades the answers, logs the score against the topic and asks
// for follow-up topics. Failing to get suggestions does not undo the score.
func (e *Engine) SubmitQuiz(ctx context.Context, id string) (*session.State, error) {
	var score int
	st, err := e.update(ctx, id, func(st *session.State) error {
		if !st.HasQuiz() {
			return ErrNoQuiz
		}
		if st.Submitted {
			return ErrAlreadySubmitted
		}

		score = quiz.Score(st.UserAnswers, st.CorrectAnswers)
		st.LearningLog = append(st.LearningLog, session.LearningLogEntry{Topic: st.Topic, Score: score})
		st.Submitted = true
		st.LastScore = score
		st.Suggestions = e.suggest(ctx, id, st.Topic, score)
		return nil
	})
	if err != nil {
		return st, err
	}

	if err := e.recorder.RecordScore(ctx, id, progress.Entry{Topic: st.Topic, Score: score}); err != nil {
		slog.Warn("failed to archive score", "session_id", id, "error", err)
	}

	slog.Info("quiz submitted", "session_id", id, "topic", st.Topic, "score", score)
	return st, nil
}

func (e *Engine) suggest(ctx context.Context, id, topic string, score int) []string {
	prompt, err := e.prompts.SuggestionPrompt(topic, score)
	if err != nil {
		slog.Warn("failed to render suggestion prompt", "session_id", id, "error", err)
		return []string{}
	}
	text, err := e.gen.Generate(ctx, id, ai.TaskSuggestion, prompt)
	if err != nil {
		slog.Warn("suggestion generation failed", "session_id", id, "error", err)
		return []string{}
	}

	out := []string{}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
