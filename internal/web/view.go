package web

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Auroshikaa/AI-Study-Buddy/internal/progress"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/quiz"
	"github.com/Auroshikaa/AI-Study-Buddy/internal/session"
)

// View is the page model for one session. Only the active tab's section is
// populated.
type View struct {
	Tab        session.Tab         `json:"tab"`
	Tabs       []session.Tab       `json:"tabs"`
	InputMode  session.InputMode   `json:"input_mode"`
	InputModes []session.InputMode `json:"input_modes"`
	DarkMode   bool                `json:"dark_mode"`
	User       *UserView           `json:"user,omitempty"`

	Home       *HomeView       `json:"home,omitempty"`
	Progress   *ProgressView   `json:"progress,omitempty"`
	SavedNotes *SavedNotesView `json:"saved_notes,omitempty"`
}

type UserView struct {
	Email string `json:"email"`
}

// HomeView shows notes, the quiz in progress or its results.
type HomeView struct {
	Topic           string         `json:"topic,omitempty"`
	Subtopics       string         `json:"subtopics,omitempty"`
	Notes           string         `json:"notes,omitempty"`
	CanGenerateQuiz bool           `json:"can_generate_quiz"`
	Quiz            []QuestionView `json:"quiz,omitempty"`
	Results         *ResultsView   `json:"results,omitempty"`
	Suggestions     []string       `json:"suggestions,omitempty"`
	CanStartOver    bool           `json:"can_start_over"`
}

// QuestionView is an unanswered question. Options end with "I don't know".
type QuestionView struct {
	Index    int      `json:"index"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options"`
	Selected string   `json:"selected"`
}

type ResultsView struct {
	Score     int          `json:"score"`
	OutOf     int          `json:"out_of"`
	ScoreText string       `json:"score_text"`
	Items     []ResultItem `json:"items"`
}

type ResultItem struct {
	Prompt        string `json:"prompt"`
	YourAnswer    string `json:"your_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Correct       bool   `json:"correct"`
	Explanation   string `json:"explanation"`
}

type ProgressView struct {
	Entries []string `json:"entries"`
}

type SavedNotesView struct {
	Notes []NoteView `json:"notes"`
}

type NoteView struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Render builds the view for st.
func Render(st *session.State) View {
	v := View{
		Tab:        st.CurrentTab,
		Tabs:       session.Tabs,
		InputMode:  st.InputMode,
		InputModes: session.InputModes,
		DarkMode:   st.DarkMode,
	}
	if st.User != nil {
		v.User = &UserView{Email: st.User.Email}
	}

	switch st.CurrentTab {
	case session.TabProgress:
		v.Progress = renderProgress(st)
	case session.TabSavedNotes:
		v.SavedNotes = renderSavedNotes(st)
	default:
		v.Home = renderHome(st)
	}
	return v
}

func renderHome(st *session.State) *HomeView {
	h := &HomeView{
		Topic:           st.Topic,
		Subtopics:       st.Subtopics,
		Notes:           st.Summary,
		CanGenerateQuiz: st.Summary != "" && !st.HasQuiz(),
	}

	switch {
	case st.HasQuiz() && !st.Submitted:
		h.Quiz = make([]QuestionView, len(st.Quiz))
		for i, q := range st.Quiz {
			selected := quiz.DefaultAnswer
			if i < len(st.UserAnswers) {
				selected = st.UserAnswers[i]
			}
			h.Quiz[i] = QuestionView{
				Index:    i,
				Prompt:   q.Prompt,
				Options:  append(slices.Clone(q.Options), quiz.DefaultAnswer),
				Selected: selected,
			}
		}

	case st.HasQuiz() && st.Submitted:
		graded := quiz.Grade(st.UserAnswers, st.CorrectAnswers)
		r := &ResultsView{
			Score:     graded.Score,
			OutOf:     progress.OutOf,
			ScoreText: fmt.Sprintf("%d/%d", graded.Score, progress.OutOf),
			Items:     make([]ResultItem, len(st.Quiz)),
		}
		for i, q := range st.Quiz {
			r.Items[i] = ResultItem{
				Prompt:        q.Prompt,
				YourAnswer:    at(st.UserAnswers, i),
				CorrectAnswer: at(st.CorrectAnswers, i),
				Correct:       i < len(graded.Correct) && graded.Correct[i],
				Explanation:   at(st.Explanations, i),
			}
		}
		h.Results = r
		h.Suggestions = st.Suggestions
		h.CanStartOver = true
	}
	return h
}

func renderProgress(st *session.State) *ProgressView {
	p := &ProgressView{Entries: make([]string, len(st.LearningLog))}
	for i, e := range st.LearningLog {
		p.Entries[i] = fmt.Sprintf("%s: %d/%d", e.Topic, e.Score, progress.OutOf)
	}
	return p
}

func renderSavedNotes(st *session.State) *SavedNotesView {
	titles := make([]string, 0, len(st.SavedNotes))
	for t := range st.SavedNotes {
		titles = append(titles, t)
	}
	slices.SortFunc(titles, strings.Compare)

	n := &SavedNotesView{Notes: make([]NoteView, len(titles))}
	for i, t := range titles {
		n.Notes[i] = NoteView{Title: t, Summary: st.SavedNotes[t]}
	}
	return n
}

func at(list []string, i int) string {
	if i < len(list) {
		return list[i]
	}
	return ""
}
