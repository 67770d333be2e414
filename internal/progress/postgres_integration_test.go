//go:build integration

package progress_test

import (
	"context"
	"testing"

	"github.com/Auroshikaa/AI-Study-Buddy/internal/platform/database"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/progress"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func startPostgres(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("study"),
		postgres.WithUsername("study"),
		postgres.WithPassword("study"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	db, err := database.New(ctx, url, 4, 1)
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

func TestPostgresRecorder_Integration(t *testing.T) {
	ctx := context.Background()
	db := startPostgres(t)
	r := progress.NewPostgresRecorder(db.Pool)

	for _, e := range []progress.Entry{{Topic: "Cells", Score: 2}, {Topic: "Cells", Score: 5}} {
		if err := r.RecordScore(ctx, "s1", e); err != nil {
			t.Fatalf("RecordScore() error = %v", err)
		}
	}
	if err := r.SaveNote(ctx, "s1", "Cells", "first"); err != nil {
		t.Fatalf("SaveNote() error = %v", err)
	}
	if err := r.SaveNote(ctx, "s1", "Cells", "second"); err != nil {
		t.Fatalf("SaveNote() error = %v", err)
	}

	history, err := r.History(ctx, "s1")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 || history[1].Score != 5 {
		t.Errorf("History() = %+v, want two entries ending in 5", history)
	}

	notes, err := r.Notes(ctx, "s1")
	if err != nil {
		t.Fatalf("Notes() error = %v", err)
	}
	if len(notes) != 1 || notes[0].Body != "second" {
		t.Errorf("Notes() = %+v, want one upserted note", notes)
	}

	if err := r.RecordScore(ctx, "s1", progress.Entry{Topic: "x", Score: 6}); err == nil {
		t.Error("expected check constraint violation for score 6")
	}

	if err := db.Migrate(ctx); err != nil {
		t.Errorf("second Migrate() error = %v", err)
	}
}
