// Package progress archives quiz scores and study notes outside the session
// and exports them as a spreadsheet.
package progress

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// Entry is one archived quiz result.
type Entry struct {
	SessionID string    `json:"session_id,omitempty"`
	Topic     string    `json:"topic"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// Note is one archived study note.
type Note struct {
	SessionID string    `json:"session_id,omitempty"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Recorder archives progress. Failures are reported but never block studying.
type Recorder interface {
	RecordScore(ctx context.Context, sessionID string, e Entry) error
	SaveNote(ctx context.Context, sessionID, title, body string) error
}

// Archive reads back what a Recorder stored for a session.
type Archive interface {
	History(ctx context.Context, sessionID string) ([]Entry, error)
	Notes(ctx context.Context, sessionID string) ([]Note, error)
}

var _ Archive = (*PostgresRecorder)(nil)

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) RecordScore(context.Context, string, Entry) error { return nil }

func (NopRecorder) SaveNote(context.Context, string, string, string) error { return nil }

// MemoryRecorder keeps archived progress in memory for tests.
type MemoryRecorder struct {
	mu      sync.Mutex
	entries []Entry
	notes   map[string]Note
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{notes: map[string]Note{}}
}

func (r *MemoryRecorder) RecordScore(_ context.Context, sessionID string, e Entry) error {
	if sessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	e.SessionID = sessionID
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
	return nil
}

func (r *MemoryRecorder) SaveNote(_ context.Context, sessionID, title, body string) error {
	if sessionID == "" {
		return fmt.Errorf("session_id is required")
	}

	r.mu.Lock()
	r.notes[sessionID+"\x00"+title] = Note{SessionID: sessionID, Title: title, Body: body, UpdatedAt: time.Now()}
	r.mu.Unlock()
	return nil
}

func (r *MemoryRecorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry{}, r.entries...)
}

func (r *MemoryRecorder) Notes() []Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Note, 0, len(r.notes))
	for _, n := range r.notes {
		out = append(out, n)
	}
	return out
}

// PostgresRecorder writes to the learning_log and saved_notes tables.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

func NewPostgresRecorder(pool *pgxpool.Pool) *PostgresRecorder {
	return &PostgresRecorder{pool: pool}
}

func (r *PostgresRecorder) RecordScore(ctx context.Context, sessionID string, e Entry) error {
	if r == nil || r.pool == nil {
		return fmt.Errorf("progress recorder pool is nil")
	}
	if sessionID == "" {
		return fmt.Errorf("session_id is required")
	}

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx,
		`INSERT INTO learning_log (session_id, topic, score, created_at)
		 VALUES ($1, $2, $3, $4)`,
		sessionID, e.Topic, e.Score, createdAt,
	); err != nil {
		return fmt.Errorf("insert learning log entry: %w", err)
	}

	slog.Debug("score archived", "session_id", sessionID, "topic", e.Topic, "score", e.Score)
	return nil
}

func (r *PostgresRecorder) SaveNote(ctx context.Context, sessionID, title, body string) error {
	if r == nil || r.pool == nil {
		return fmt.Errorf("progress recorder pool is nil")
	}
	if sessionID == "" {
		return fmt.Errorf("session_id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx,
		`INSERT INTO saved_notes (session_id, title, body, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (session_id, title)
		 DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		sessionID, title, body,
	); err != nil {
		return fmt.Errorf("upsert saved note: %w", err)
	}

	slog.Debug("note archived", "session_id", sessionID, "title", title)
	return nil
}

// History returns the archived scores of a session, oldest first.
func (r *PostgresRecorder) History(ctx context.Context, sessionID string) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT topic, score, created_at
		 FROM learning_log
		 WHERE session_id = $1
		 ORDER BY created_at ASC, id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query learning log: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e := Entry{SessionID: sessionID}
		if err := rows.Scan(&e.Topic, &e.Score, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan learning log entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate learning log: %w", err)
	}
	return out, nil
}

// Notes returns the archived notes of a session ordered by title.
func (r *PostgresRecorder) Notes(ctx context.Context, sessionID string) ([]Note, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT title, body, updated_at
		 FROM saved_notes
		 WHERE session_id = $1
		 ORDER BY title ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query saved notes: %w", err)
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		n := Note{SessionID: sessionID}
		if err := rows.Scan(&n.Title, &n.Body, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan saved note: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saved notes: %w", err)
	}
	return out, nil
}
