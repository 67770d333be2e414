package web_test

import (
	"testing"

	"github.com/Auroshikaa/AI-Study-Buddy/internal/quiz"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/session"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/web"
)

func TestRender_Tabs(t *testing.T) {
	st := session.New("s1")
	st.LearningLog = []session.LearningLogEntry{{Topic: "Cells", Score: 3}, {Topic: "Atoms", Score: 0}}
	st.SavedNotes = map[string]string{"b": "2", "a": "1"}
	st.User = &session.User{Email: "ada@example.com", Token: "secret-token"}

	v := web.Render(st)
	if v.Home == nil || v.Progress != nil || v.SavedNotes != nil {
		t.Errorf("home tab renders %+v", v)
	}
	if v.User == nil || v.User.Email != "ada@example.com" {
		t.Errorf("User = %+v", v.User)
	}

	st.CurrentTab = session.TabProgress
	v = web.Render(st)
	if got := v.Progress.Entries; len(got) != 2 || got[0] != "Cells: 3/5" || got[1] != "Atoms: 0/5" {
		t.Errorf("Entries = %q", got)
	}

	st.CurrentTab = session.TabSavedNotes
	v = web.Render(st)
	if n := v.SavedNotes.Notes; n[0].Title != "a" || n[1].Title != "b" {
		t.Errorf("Notes = %+v, want sorted by title", n)
	}
}

func TestRender_ResultsUseLeadingLetter(t *testing.T) {
	st := session.New("s1")
	st.Summary = "notes"
	st.SetQuiz(quiz.Quiz{
		Questions: []quiz.Question{
			{Prompt: "1. Capital?", Options: []string{"a) Berlin", "b) Paris", "c) Rome", "d) Madrid"}},
			{Prompt: "2. Fruit?", Options: []string{"a) x", "b) y", "c) z", "d) w"}},
		},
		AnswerKey:    []string{"b) Paris", "a)"},
		Explanations: []string{"e1", "e2"},
	})
	st.UserAnswers = []string{"B) Paris", quiz.DefaultAnswer}
	st.Submitted = true

	v := web.Render(st)
	r := v.Home.Results
	if r == nil || r.Score != 1 || r.ScoreText != "1/5" {
		t.Fatalf("Results = %+v", r)
	}
	if !r.Items[0].Correct || r.Items[1].Correct {
		t.Errorf("Correct = %v/%v, want true/false", r.Items[0].Correct, r.Items[1].Correct)
	}
	if v.Home.Quiz != nil {
		t.Error("questions shown after submission")
	}
	if v.Home.CanGenerateQuiz {
		t.Error("quiz button shown while a quiz exists")
	}
}
