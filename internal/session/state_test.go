package session_test

import (
	"encoding/json"
	"testing"

	"github.com/Auroshikaa/AI-Study-Buddy/internal/quiz"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/session"
)

func TestNew_Defaults(t *testing.T) {
	st := session.New("abc")

	if st.ID != "abc" {
		t.Errorf("ID = %q, want abc", st.ID)
	}
	if st.DarkMode {
		t.Error("DarkMode should default to false")
	}
	if st.CurrentTab != session.TabHome {
		t.Errorf("CurrentTab = %q, want Home", st.CurrentTab)
	}
	if st.InputMode != session.ModeTopic {
		t.Errorf("InputMode = %q, want Topic", st.InputMode)
	}
	if st.LearningLog == nil || len(st.LearningLog) != 0 {
		t.Errorf("LearningLog = %v, want empty non-nil", st.LearningLog)
	}
	if st.SavedNotes == nil || len(st.SavedNotes) != 0 {
		t.Errorf("SavedNotes = %v, want empty non-nil", st.SavedNotes)
	}
	if st.HasQuiz() || st.Submitted || st.LastScore != 0 || st.User != nil {
		t.Error("quiz fields should be empty")
	}

	data, err := json.Marshal(st)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["quiz"].([]any); !ok {
		t.Errorf("quiz encodes as %v, want []", raw["quiz"])
	}
}

func TestEnsureDefaults_PreservesPresentValues(t *testing.T) {
	st := &session.State{
		ID:          "abc",
		DarkMode:    true,
		CurrentTab:  session.TabProgress,
		LearningLog: []session.LearningLogEntry{{Topic: "Cells", Score: 4}},
	}
	st.EnsureDefaults()

	if !st.DarkMode {
		t.Error("DarkMode was overwritten")
	}
	if st.CurrentTab != session.TabProgress {
		t.Errorf("CurrentTab = %q, want Progress", st.CurrentTab)
	}
	if len(st.LearningLog) != 1 || st.LearningLog[0].Score != 4 {
		t.Errorf("LearningLog = %v, want preserved entry", st.LearningLog)
	}
	if st.InputMode != session.ModeTopic {
		t.Errorf("InputMode = %q, want Topic filled in", st.InputMode)
	}
	if st.SavedNotes == nil {
		t.Error("SavedNotes should be filled in")
	}
}

func loadedState() *session.State {
	st := session.New("abc")
	st.DarkMode = true
	st.Topic = "Photosynthesis"
	st.Subtopics = "1. Light reactions"
	st.Summary = "- **ATP**"
	st.SavedNotes["Photosynthesis"] = "- **ATP**"
	st.LearningLog = append(st.LearningLog, session.LearningLogEntry{Topic: "Photosynthesis", Score: 3})
	st.SetQuiz(quiz.Quiz{
		Questions:    []quiz.Question{{Prompt: "1. Q?", Options: []string{"a) w", "b) x", "c) y", "d) z"}}},
		AnswerKey:    []string{"b)"},
		Explanations: []string{"because"},
	})
	st.Submitted = true
	st.LastScore = 3
	st.Suggestions = []string{"Calvin cycle"}
	st.User = &session.User{Email: "a@b.c", Token: "t"}
	return st
}

func TestReset_NewTopicFields(t *testing.T) {
	st := loadedState()
	st.Reset(session.NewTopicFields)

	if st.HasQuiz() || len(st.CorrectAnswers) != 0 || len(st.Explanations) != 0 || len(st.UserAnswers) != 0 {
		t.Error("quiz fields not cleared")
	}
	if st.Summary != "" || st.Subtopics != "" || st.Submitted || st.LastScore != 0 || len(st.Suggestions) != 0 {
		t.Error("study fields not cleared")
	}
	if !st.DarkMode {
		t.Error("DarkMode should survive reset")
	}
	if len(st.LearningLog) != 1 || st.SavedNotes["Photosynthesis"] == "" {
		t.Error("learning log and saved notes should survive reset")
	}
	if st.User == nil {
		t.Error("User should survive reset")
	}
}

func TestReset_Idempotent(t *testing.T) {
	once := loadedState()
	once.Reset(session.NewTopicFields)

	twice := loadedState()
	twice.Reset(session.NewTopicFields)
	twice.Reset(session.NewTopicFields)

	a, _ := json.Marshal(once)
	b, _ := json.Marshal(twice)
	if string(a) != string(b) {
		t.Errorf("Reset twice differs from once:\n%s\n%s", a, b)
	}
}

func TestReset_Subset(t *testing.T) {
	st := loadedState()
	st.Reset(session.FieldUser | session.FieldSavedNotes)

	if st.User != nil {
		t.Error("User not cleared")
	}
	if len(st.SavedNotes) != 0 || st.SavedNotes == nil {
		t.Errorf("SavedNotes = %v, want empty map", st.SavedNotes)
	}
	if st.Summary == "" || !st.HasQuiz() {
		t.Error("fields outside the subset were cleared")
	}
}

func TestClone_IsDeep(t *testing.T) {
	st := loadedState()
	c := st.Clone()

	c.SavedNotes["New"] = "x"
	c.Quiz[0].Options[0] = "changed"
	c.UserAnswers[0] = "a) w"
	c.User.Email = "other"

	if _, ok := st.SavedNotes["New"]; ok {
		t.Error("SavedNotes shared")
	}
	if st.Quiz[0].Options[0] != "a) w" {
		t.Error("quiz options shared")
	}
	if st.UserAnswers[0] != quiz.DefaultAnswer {
		t.Error("UserAnswers shared")
	}
	if st.User.Email != "a@b.c" {
		t.Error("User shared")
	}
}

func TestTabAndModeValidity(t *testing.T) {
	if !session.Tab("Saved Notes").Valid() || session.Tab("Settings").Valid() {
		t.Error("Tab.Valid() mismatch")
	}
	if !session.InputMode("YouTube Video").Valid() || session.InputMode("Audio").Valid() {
		t.Error("InputMode.Valid() mismatch")
	}
}
