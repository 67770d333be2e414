package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Auroshikaa/AI-Study-Buddy/internal/session"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/study"
)

type guideRequest struct {
	Topic string `json:"topic"`
}

type answerRequest struct {
	Index  int    `json:"index"`
	Answer string `json:"answer"`
}

type settingsRequest struct {
	Tab       *session.Tab       `json:"tab"`
	InputMode *session.InputMode `json:"input_mode"`
	DarkMode  *bool              `json:"dark_mode"`
}

type videoRequest struct {
	URL string `json:"url"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// reject answers with the current view and err without touching the session.
func (s *Server) reject(w http.ResponseWriter, r *http.Request, id string, err error) {
	st, serr := s.engine.State(r.Context(), id)
	if serr != nil {
		respond(w, r, nil, errors.Join(err, serr))
		return
	}
	respond(w, r, st, err)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	st, err := s.engine.State(r.Context(), id)
	respond(w, r, st, err)
}

func (s *Server) handleGuide(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	var req guideRequest
	if err := s.schemas.decode(w, r, "guide", &req); err != nil {
		s.reject(w, r, id, err)
		return
	}
	st, err := s.engine.GenerateStudyGuide(r.Context(), id, req.Topic, nil)
	respond(w, r, st, err)
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	st, err := s.engine.GenerateQuiz(r.Context(), id)
	respond(w, r, st, err)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	var req answerRequest
	if err := s.schemas.decode(w, r, "answer", &req); err != nil {
		s.reject(w, r, id, err)
		return
	}
	st, err := s.engine.SelectAnswer(r.Context(), id, req.Index, req.Answer)
	respond(w, r, st, err)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	st, err := s.engine.SubmitQuiz(r.Context(), id)
	respond(w, r, st, err)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	st, err := s.engine.NewTopic(r.Context(), id)
	respond(w, r, st, err)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	var req settingsRequest
	if err := s.schemas.decode(w, r, "settings", &req); err != nil {
		s.reject(w, r, id, err)
		return
	}
	st, err := s.engine.UpdateSettings(r.Context(), id, study.Settings{
		Tab:       req.Tab,
		InputMode: req.InputMode,
		DarkMode:  req.DarkMode,
	})
	respond(w, r, st, err)
}

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	var req videoRequest
	if err := s.schemas.decode(w, r, "video", &req); err != nil {
		s.reject(w, r, id, err)
		return
	}
	notice, st, err := s.engine.SummarizeVideo(r.Context(), id, req.URL)
	if err != nil {
		respond(w, r, st, err)
		return
	}
	v := Render(st)
	writeJSON(w, http.StatusOK, Response{View: &v, Notice: notice})
}

func (s *Server) handleSlides(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.reject(w, r, id, &ValidationError{Details: []string{"multipart field \"file\" is required: " + err.Error()}})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		s.reject(w, r, id, &ValidationError{Details: []string{"read upload: " + err.Error()}})
		return
	}

	st, err := s.engine.UploadSlides(r.Context(), id, header.Filename, data)
	if err != nil {
		respond(w, r, st, err)
		return
	}
	v := Render(st)
	writeJSON(w, http.StatusOK, Response{View: &v, Notice: fmt.Sprintf("File uploaded: %s. Summary saved.", header.Filename)})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	var req credentialsRequest
	if err := s.schemas.decode(w, r, "credentials", &req); err != nil {
		s.reject(w, r, id, err)
		return
	}
	st, err := s.engine.SignIn(r.Context(), id, req.Email, req.Password)
	respond(w, r, st, err)
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	var req credentialsRequest
	if err := s.schemas.decode(w, r, "credentials", &req); err != nil {
		s.reject(w, r, id, err)
		return
	}
	st, err := s.engine.SignUp(r.Context(), id, req.Email, req.Password)
	respond(w, r, st, err)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	st, err := s.engine.SignOut(r.Context(), id)
	respond(w, r, st, err)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)

	var buf bytes.Buffer
	if err := s.engine.ExportProgress(r.Context(), id, &buf); err != nil {
		s.reject(w, r, id, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="study-progress.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
