package study

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Auroshikaa/AI-Study-Buddy/internal/ai"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/search"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/session"
)

// Stage is a step of study guide generation.
type Stage string

const (
	StagePlanning    Stage = "planning"
	StageSearching   Stage = "searching"
	StageResearching Stage = "researching"
	StageSummarizing Stage = "summarizing"
	StageDone        Stage = "done"
)

// Observer is notified as generation enters each stage. It runs on the
// calling goroutine and must not block.
type Observer func(Stage)

// GenerateStudyGuide plans subtopics for topic, searches the web for the
// first one, distils the results and summarises them into notes. The notes
// replace the current summary, are saved under the topic title and clear any
// previous quiz.
func (e *Engine) GenerateStudyGuide(ctx context.Context, id, topic string, observe Observer) (*session.State, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return e.failWithState(ctx, id, ErrEmptyTopic)
	}
	if observe == nil {
		observe = func(Stage) {}
	}

	st, err := e.update(ctx, id, func(st *session.State) error {
		observe(StagePlanning)
		prompt, err := e.prompts.PlannerPrompt(topic)
		if err != nil {
			return err
		}
		subtopics, err := e.gen.Generate(ctx, id, ai.TaskPlanning, prompt)
		if err != nil {
			return fmt.Errorf("%s: %w", StagePlanning, err)
		}

		observe(StageSearching)
		query := SearchQuery(subtopics)
		if query == "" {
			query = topic
		}
		results, err := e.searcher.Search(ctx, query)
		if err != nil {
			results = search.FallbackText(query)
		}

		observe(StageResearching)
		if prompt, err = e.prompts.ResearcherPrompt(results); err != nil {
			return err
		}
		research, err := e.gen.Generate(ctx, id, ai.TaskResearch, prompt)
		if err != nil {
			return fmt.Errorf("%s: %w", StageResearching, err)
		}

		observe(StageSummarizing)
		if prompt, err = e.prompts.SummarizerPrompt(research); err != nil {
			return err
		}
		summary, err := e.gen.Generate(ctx, id, ai.TaskSummary, prompt)
		if err != nil {
			return fmt.Errorf("%s: %w", StageSummarizing, err)
		}

		st.Topic = topic
		st.Subtopics = subtopics
		st.Summary = summary
		st.SavedNotes[topic] = summary
		st.Reset(session.QuizFields)
		return nil
	})
	if err != nil {
		slog.Warn("study guide generation failed", "session_id", id, "error", err)
		return st, err
	}

	if err := e.recorder.SaveNote(ctx, id, topic, st.Summary); err != nil {
		slog.Warn("failed to archive note", "session_id", id, "title", topic, "error", err)
	}
	observe(StageDone)

	slog.Info("study guide generated", "session_id", id, "topic", topic, "summary_len", len(st.Summary))
	return st, nil
}

// SearchQuery derives the web search query from planner output: the first
// line with everything up to and including its first "." removed.
func SearchQuery(subtopics string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(subtopics), "\n")
	if _, after, found := strings.Cut(first, "."); found {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(first)
}

func (e *Engine) failWithState(ctx context.Context, id string, cause error) (*session.State, error) {
	st, err := e.State(ctx, id)
	if err != nil {
		return nil, err
	}
	return st, cause
}
