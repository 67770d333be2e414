// Package session holds the per-visitor study state and its storage backends.
package session

import (
	"maps"
	"slices"
	"time"

	"github.com/Auroshikaa/AI-Study-Buddy/internal/quiz"
)

// Tab is the active navigation page.
type Tab string

const (
	TabHome       Tab = "Home"
	TabProgress   Tab = "Progress"
	TabSavedNotes Tab = "Saved Notes"
)

// Tabs lists the valid tabs in navigation order.
var Tabs = []Tab{TabHome, TabProgress, TabSavedNotes}

// Valid reports whether t is a known tab.
func (t Tab) Valid() bool { return slices.Contains(Tabs, t) }

// InputMode selects how study material is provided on the home page.
type InputMode string

const (
	ModeTopic  InputMode = "Topic"
	ModeVideo  InputMode = "YouTube Video"
	ModeSlides InputMode = "Upload Slides (PDF)"
)

// InputModes lists the valid input modes.
var InputModes = []InputMode{ModeTopic, ModeVideo, ModeSlides}

// Valid reports whether m is a known input mode.
func (m InputMode) Valid() bool { return slices.Contains(InputModes, m) }

// LearningLogEntry records one submitted quiz.
type LearningLogEntry struct {
	Topic string `json:"topic"`
	Score int    `json:"score"`
}

// User is the signed-in identity kept in session state.
type User struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// State is everything one visitor's session remembers between interactions.
type State struct {
	ID string `json:"id"`

	DarkMode    bool               `json:"dark_mode"`
	LearningLog []LearningLogEntry `json:"learning_log"`
	SavedNotes  map[string]string  `json:"saved_notes"`
	CurrentTab  Tab                `json:"current_tab"`
	InputMode   InputMode          `json:"input_mode"`

	Topic          string          `json:"topic"`
	Subtopics      string          `json:"subtopics"`
	Summary        string          `json:"summary"`
	Quiz           []quiz.Question `json:"quiz"`
	CorrectAnswers []string        `json:"correct_answers"`
	Explanations   []string        `json:"explanations"`
	UserAnswers    []string        `json:"user_answers"`
	Submitted      bool            `json:"submitted"`
	Suggestions    []string        `json:"suggestions"`
	LastScore      int             `json:"last_score"`

	User *User `json:"user,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// New returns a state with every field at its default.
func New(id string) *State {
	st := &State{ID: id}
	st.EnsureDefaults()
	return st
}

// EnsureDefaults fills fields that are missing and leaves present values alone.
func (s *State) EnsureDefaults() {
	if s.LearningLog == nil {
		s.LearningLog = []LearningLogEntry{}
	}
	if s.SavedNotes == nil {
		s.SavedNotes = map[string]string{}
	}
	if s.CurrentTab == "" {
		s.CurrentTab = TabHome
	}
	if s.InputMode == "" {
		s.InputMode = ModeTopic
	}
	if s.Quiz == nil {
		s.Quiz = []quiz.Question{}
	}
	if s.CorrectAnswers == nil {
		s.CorrectAnswers = []string{}
	}
	if s.Explanations == nil {
		s.Explanations = []string{}
	}
	if s.UserAnswers == nil {
		s.UserAnswers = []string{}
	}
	if s.Suggestions == nil {
		s.Suggestions = []string{}
	}
}

// Field is a bit set naming resettable state fields.
type Field uint32

const (
	FieldTopic Field = 1 << iota
	FieldSubtopics
	FieldSummary
	FieldQuiz
	FieldCorrectAnswers
	FieldExplanations
	FieldUserAnswers
	FieldSubmitted
	FieldSuggestions
	FieldLastScore
	FieldLearningLog
	FieldSavedNotes
	FieldUser
)

// NewTopicFields is cleared when the visitor starts over with a new topic.
const NewTopicFields = FieldQuiz | FieldCorrectAnswers | FieldExplanations | FieldUserAnswers |
	FieldSummary | FieldSubmitted | FieldSubtopics | FieldSuggestions | FieldLastScore

// QuizFields is the quiz subset replaced whenever new notes are generated.
const QuizFields = FieldQuiz | FieldCorrectAnswers | FieldExplanations | FieldUserAnswers |
	FieldSubmitted | FieldSuggestions | FieldLastScore

// Reset sets the named fields to their empty defaults. Calling it twice has
// the same effect as calling it once.
func (s *State) Reset(fields Field) {
	if fields&FieldTopic != 0 {
		s.Topic = ""
	}
	if fields&FieldSubtopics != 0 {
		s.Subtopics = ""
	}
	if fields&FieldSummary != 0 {
		s.Summary = ""
	}
	if fields&FieldQuiz != 0 {
		s.Quiz = []quiz.Question{}
	}
	if fields&FieldCorrectAnswers != 0 {
		s.CorrectAnswers = []string{}
	}
	if fields&FieldExplanations != 0 {
		s.Explanations = []string{}
	}
	if fields&FieldUserAnswers != 0 {
		s.UserAnswers = []string{}
	}
	if fields&FieldSubmitted != 0 {
		s.Submitted = false
	}
	if fields&FieldSuggestions != 0 {
		s.Suggestions = []string{}
	}
	if fields&FieldLastScore != 0 {
		s.LastScore = 0
	}
	if fields&FieldLearningLog != 0 {
		s.LearningLog = []LearningLogEntry{}
	}
	if fields&FieldSavedNotes != 0 {
		s.SavedNotes = map[string]string{}
	}
	if fields&FieldUser != 0 {
		s.User = nil
	}
}

// HasQuiz reports whether a quiz is loaded.
func (s *State) HasQuiz() bool {
	return len(s.Quiz) > 0
}

// SetQuiz installs a parsed quiz with every answer preset to "I don't know".
func (s *State) SetQuiz(q quiz.Quiz) {
	s.Quiz = q.Questions
	s.CorrectAnswers = q.AnswerKey
	s.Explanations = q.Explanations
	s.UserAnswers = quiz.NewUserAnswers(q.Len())
	s.Submitted = false
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	c := *s
	c.LearningLog = slices.Clone(s.LearningLog)
	c.SavedNotes = maps.Clone(s.SavedNotes)
	c.Quiz = make([]quiz.Question, len(s.Quiz))
	for i, q := range s.Quiz {
		c.Quiz[i] = quiz.Question{Prompt: q.Prompt, Options: slices.Clone(q.Options)}
	}
	c.CorrectAnswers = slices.Clone(s.CorrectAnswers)
	c.Explanations = slices.Clone(s.Explanations)
	c.UserAnswers = slices.Clone(s.UserAnswers)
	c.Suggestions = slices.Clone(s.Suggestions)
	if s.User != nil {
		u := *s.User
		c.User = &u
	}
	c.EnsureDefaults()
	return &c
}
