package study

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/Auroshikaa/AI-Study-Buddy/internal/session"
)

// VideoSummaryNotice is shown for video links until video summaries exist.
const VideoSummaryNotice = "YouTube summary (stub)"

var pdfMagic = []byte("%PDF")

// SummarizeVideo accepts a lecture video URL and returns a notice. The
// session is not changed.
func (e *Engine) SummarizeVideo(ctx context.Context, id, rawURL string) (string, *session.State, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		st, serr := e.failWithState(ctx, id, ErrInvalidURL)
		return "", st, serr
	}
	st, err := e.State(ctx, id)
	if err != nil {
		return "", nil, err
	}
	slog.Info("video summary requested", "session_id", id, "host", u.Host)
	return VideoSummaryNotice, st, nil
}

// UploadSlides stores a placeholder summary for an uploaded PDF under its
// file name.
func (e *Engine) UploadSlides(ctx context.Context, id, name string, data []byte) (*session.State, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if !strings.EqualFold(filepath.Ext(name), ".pdf") || !bytes.HasPrefix(data, pdfMagic) {
		return e.failWithState(ctx, id, fmt.Errorf("%w: %q", ErrInvalidSlides, name))
	}

	summary := fmt.Sprintf("Summary of PDF: **%s**", name)
	st, err := e.update(ctx, id, func(st *session.State) error {
		st.SavedNotes[name] = summary
		return nil
	})
	if err != nil {
		return st, err
	}

	if err := e.recorder.SaveNote(ctx, id, name, summary); err != nil {
		slog.Warn("failed to archive note", "session_id", id, "title", name, "error", err)
	}
	slog.Info("slides uploaded", "session_id", id, "file", name, "bytes", len(data))
	return st, nil
}
