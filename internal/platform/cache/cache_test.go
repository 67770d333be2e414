package cache

import (
	"errors"
	"os"
	"testing"
	"time"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid-redis", "redis://localhost:6379", false},
		{"valid-with-db", "redis://localhost:6379/0", false},
		{"empty", "", true},
		{"wrong-scheme", "http://localhost:6379", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_UnreachableHost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping unreachable host test in short mode")
	}

	ctx := t.Context()
	_, err := New(ctx, "redis://localhost:59999")
	if err == nil {
		t.Fatal("New() should return error for unreachable host")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	url := os.Getenv("STUDY_TEST_REDIS_URL")
	if url == "" {
		t.Skip("STUDY_TEST_REDIS_URL not set")
	}

	ctx := t.Context()
	c, err := New(ctx, url)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	key := "study:test:json"
	t.Cleanup(func() { _ = c.Delete(ctx, key) })

	type payload struct {
		Topic string `json:"topic"`
		Score int    `json:"score"`
	}
	if err := c.SetJSON(ctx, key, payload{Topic: "Photosynthesis", Score: 4}, time.Minute); err != nil {
		t.Fatalf("SetJSON() error = %v", err)
	}

	var got payload
	if err := c.GetJSON(ctx, key, &got); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if got.Topic != "Photosynthesis" || got.Score != 4 {
		t.Errorf("GetJSON() = %+v", got)
	}

	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := c.GetJSON(ctx, key, &got); !errors.Is(err, ErrMiss) {
		t.Errorf("GetJSON() after delete error = %v, want ErrMiss", err)
	}
}
