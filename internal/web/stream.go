package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/Auroshikaa/AI-Study-Buddy/internal/study"
)

const streamWriteTimeout = 5 * time.Second

// StreamMessage is one websocket frame of the study guide stream.
type StreamMessage struct {
	Stage study.Stage `json:"stage"`
	View  *View       `json:"view,omitempty"`
	Error *ErrorBody  `json:"error,omitempty"`
}

// StageError is the stage reported when generation fails.
const StageError study.Stage = "error"

// handleGuideStream runs study guide generation for ?topic= and reports each
// stage over a websocket, ending with the view or an error.
func (s *Server) handleGuideStream(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	topic := r.URL.Query().Get("topic")

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer func() { _ = conn.CloseNow() }()

	ctx := conn.CloseRead(r.Context())

	send := func(msg StreamMessage) {
		wctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
		defer cancel()
		if err := wsjson.Write(wctx, conn, msg); err != nil {
			slog.Debug("stream write failed", "session_id", id, "stage", msg.Stage, "error", err)
		}
	}

	st, err := s.engine.GenerateStudyGuide(ctx, id, topic, func(stage study.Stage) {
		if stage != study.StageDone {
			send(StreamMessage{Stage: stage})
		}
	})
	if err != nil {
		_, body := classify(err)
		if body.Code == CodeInternal {
			slog.Error("study guide stream failed", "session_id", id, "error", err)
		}
		send(StreamMessage{Stage: StageError, Error: body})
	} else {
		v := Render(st)
		send(StreamMessage{Stage: study.StageDone, View: &v})
	}

	_ = conn.Close(websocket.StatusNormalClosure, "")
}
