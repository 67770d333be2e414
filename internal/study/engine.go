// Package study runs the study-assistant workflow: topic to notes, notes to
// quiz, quiz to score and suggestions. Every operation works on one visitor
// session and is serialised per session.
package study

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"time"

	"github.com/Auroshikaa/AI-Study-Buddy/internal/ai"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/auth"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/progress"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/prompts"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/search"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/session"
)

// TextGenerator turns a rendered prompt into model text.
type TextGenerator interface {
	Generate(ctx context.Context, sessionID string, task ai.TaskType, prompt string) (string, error)
}

// EngineConfig holds dependencies for the study engine.
type EngineConfig struct {
	Generator     TextGenerator
	Searcher      search.WebSearcher
	SearchTimeout time.Duration // per search call (default 20s)
	Prompts       *prompts.Set
	Store         session.Store
	Recorder      progress.Recorder
	Auth          auth.Provider // nil disables sign-in
}

// Engine is the study workflow processor.
type Engine struct {
	gen      TextGenerator
	searcher search.WebSearcher
	prompts  *prompts.Set
	store    session.Store
	recorder progress.Recorder
	auth     auth.Provider
	locks    *keyedMutex
}

// NewEngine creates a new study engine. The searcher is always wrapped so
// that a failed search degrades to placeholder text.
func NewEngine(cfg EngineConfig) *Engine {
	store := cfg.Store
	if store == nil {
		store = session.NewMemoryStore()
	}
	set := cfg.Prompts
	if set == nil {
		set = prompts.Default()
	}
	rec := cfg.Recorder
	if rec == nil {
		rec = progress.NopRecorder{}
	}
	searcher := cfg.Searcher
	if searcher == nil {
		searcher = search.NewDuckDuckGo()
	}
	return &Engine{
		gen:      cfg.Generator,
		searcher: search.WithFallback(searcher, cfg.SearchTimeout),
		prompts:  set,
		store:    store,
		recorder: rec,
		auth:     cfg.Auth,
		locks:    newKeyedMutex(),
	}
}

// update runs fn on a copy of the session state under the session lock and
// saves the copy only when fn succeeds. On failure the state as it was before
// the call is returned with the error.
func (e *Engine) update(ctx context.Context, id string, fn func(st *session.State) error) (*session.State, error) {
	unlock := e.locks.lock(id)
	defer unlock()

	st, err := e.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	work := st.Clone()
	if err := fn(work); err != nil {
		return st, err
	}
	if err := e.store.Save(ctx, work); err != nil {
		return st, fmt.Errorf("save session: %w", err)
	}
	return work, nil
}

// State returns a snapshot of the session for rendering.
func (e *Engine) State(ctx context.Context, id string) (*session.State, error) {
	unlock := e.locks.lock(id)
	defer unlock()

	st, err := e.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return st, nil
}

// NewTopic clears the current study material and quiz and returns to the
// topic input on the home page. Learning log, saved notes, dark mode and the
// signed-in user are kept.
func (e *Engine) NewTopic(ctx context.Context, id string) (*session.State, error) {
	return e.update(ctx, id, func(st *session.State) error {
		st.Reset(session.NewTopicFields)
		st.InputMode = session.ModeTopic
		st.CurrentTab = session.TabHome
		return nil
	})
}

// Settings is a partial navigation update; nil fields are left unchanged.
type Settings struct {
	Tab       *session.Tab
	InputMode *session.InputMode
	DarkMode  *bool
}

// UpdateSettings applies navigation changes. Unknown tabs or input modes
// reject the whole update.
func (e *Engine) UpdateSettings(ctx context.Context, id string, s Settings) (*session.State, error) {
	return e.update(ctx, id, func(st *session.State) error {
		if s.Tab != nil {
			if !s.Tab.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidTab, *s.Tab)
			}
			st.CurrentTab = *s.Tab
		}
		if s.InputMode != nil {
			if !s.InputMode.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidInputMode, *s.InputMode)
			}
			st.InputMode = *s.InputMode
		}
		if s.DarkMode != nil {
			st.DarkMode = *s.DarkMode
		}
		return nil
	})
}

// SetTab switches the active page.
func (e *Engine) SetTab(ctx context.Context, id string, tab session.Tab) (*session.State, error) {
	return e.UpdateSettings(ctx, id, Settings{Tab: &tab})
}

// SetInputMode switches how study material is provided.
func (e *Engine) SetInputMode(ctx context.Context, id string, mode session.InputMode) (*session.State, error) {
	return e.UpdateSettings(ctx, id, Settings{InputMode: &mode})
}

// SetDarkMode toggles the colour scheme. Tab and input mode are preserved.
func (e *Engine) SetDarkMode(ctx context.Context, id string, on bool) (*session.State, error) {
	return e.UpdateSettings(ctx, id, Settings{DarkMode: &on})
}

// SignIn authenticates with the identity provider and stores the identity.
func (e *Engine) SignIn(ctx context.Context, id, email, password string) (*session.State, error) {
	return e.authenticate(ctx, id, func() (auth.Identity, error) {
		return e.auth.SignIn(ctx, email, password)
	})
}

// SignUp registers with the identity provider and stores the identity.
func (e *Engine) SignUp(ctx context.Context, id, email, password string) (*session.State, error) {
	return e.authenticate(ctx, id, func() (auth.Identity, error) {
		return e.auth.SignUp(ctx, email, password)
	})
}

func (e *Engine) authenticate(ctx context.Context, id string, call func() (auth.Identity, error)) (*session.State, error) {
	return e.update(ctx, id, func(st *session.State) error {
		if e.auth == nil {
			return ErrAuthUnavailable
		}
		ident, err := call()
		if err != nil {
			var ae *auth.Error
			if errors.As(err, &ae) {
				slog.Info("authentication rejected", "session_id", id, "reason", ae.Code())
				return err
			}
			return fmt.Errorf("authenticate: %w", err)
		}
		st.User = &session.User{Email: ident.Email, Token: ident.Token}
		slog.Info("user signed in", "session_id", id)
		return nil
	})
}

// SignOut forgets the signed-in identity.
func (e *Engine) SignOut(ctx context.Context, id string) (*session.State, error) {
	return e.update(ctx, id, func(st *session.State) error {
		st.Reset(session.FieldUser)
		return nil
	})
}

// ExportProgress writes the session's learning log and saved notes as an
// XLSX workbook. When the recorder keeps an archive, archived scores and notes
// are included; notes in the session win over archived ones with the same
// title.
func (e *Engine) ExportProgress(ctx context.Context, id string, w io.Writer) error {
	st, err := e.State(ctx, id)
	if err != nil {
		return err
	}
	entries := make([]progress.Entry, len(st.LearningLog))
	for i, l := range st.LearningLog {
		entries[i] = progress.Entry{Topic: l.Topic, Score: l.Score}
	}
	notes := st.SavedNotes

	if archive, ok := e.recorder.(progress.Archive); ok {
		history, archived, err := readArchive(ctx, archive, id)
		if err != nil {
			slog.Warn("failed to read progress archive", "session_id", id, "error", err)
		} else {
			if len(history) > len(entries) {
				entries = history
			}
			notes = make(map[string]string, len(archived)+len(st.SavedNotes))
			for _, n := range archived {
				notes[n.Title] = n.Body
			}
			maps.Copy(notes, st.SavedNotes)
		}
	}

	if err := progress.ExportXLSX(w, entries, notes); err != nil {
		return fmt.Errorf("export progress: %w", err)
	}
	return nil
}

func readArchive(ctx context.Context, a progress.Archive, id string) ([]progress.Entry, []progress.Note, error) {
	history, err := a.History(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	notes, err := a.Notes(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return history, notes, nil
}
