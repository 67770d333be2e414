// Package prompts holds the five fixed prompt templates of the study pipeline
// and renders them with named placeholders.
package prompts

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultTemplates []byte

// Name identifies one pipeline prompt.
type Name string

const (
	Planner    Name = "planner"
	Researcher Name = "researcher"
	Summarizer Name = "summarizer"
	Quizzer    Name = "quizzer"
	Suggestion Name = "suggestion"
)

// Names lists every template a Set must provide, in pipeline order.
var Names = []Name{Planner, Researcher, Summarizer, Quizzer, Suggestion}

var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Template is one prompt with its declared placeholders.
type Template struct {
	InputVariables []string `yaml:"input_variables"`
	Text           string   `yaml:"template"`
}

type file struct {
	Templates map[Name]Template `yaml:"templates"`
}

// Set is a validated collection of the pipeline templates.
type Set struct {
	templates map[Name]Template
}

// Default returns the built-in templates.
func Default() *Set {
	s, err := Parse(defaultTemplates)
	if err != nil {
		panic(fmt.Sprintf("built-in prompt templates are invalid: %v", err))
	}
	return s
}

// Load reads templates from a YAML file. An empty path returns Default().
func Load(path string) (*Set, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt templates: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	slog.Info("prompt templates loaded", "path", path, "templates", len(s.templates))
	return s, nil
}

// Parse decodes and validates a YAML template document.
func Parse(data []byte) (*Set, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}

	for _, name := range Names {
		tpl, ok := f.Templates[name]
		if !ok {
			return nil, fmt.Errorf("template %q is missing", name)
		}
		if err := tpl.validate(); err != nil {
			return nil, fmt.Errorf("template %q: %w", name, err)
		}
	}
	return &Set{templates: f.Templates}, nil
}

func (t Template) validate() error {
	if t.Text == "" {
		return fmt.Errorf("empty template text")
	}
	used := map[string]bool{}
	for _, m := range placeholderRe.FindAllStringSubmatch(t.Text, -1) {
		used[m[1]] = true
		if !slices.Contains(t.InputVariables, m[1]) {
			return fmt.Errorf("placeholder {%s} is not declared in input_variables", m[1])
		}
	}
	for _, v := range t.InputVariables {
		if !used[v] {
			return fmt.Errorf("input variable %q does not occur in the template", v)
		}
	}
	return nil
}

// Render substitutes vars into the named template. Every declared placeholder
// must have a value; substituted text is not scanned again.
func (s *Set) Render(name Name, vars map[string]string) (string, error) {
	tpl, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}
	for _, v := range tpl.InputVariables {
		if _, ok := vars[v]; !ok {
			return "", fmt.Errorf("render %s: missing value for {%s}", name, v)
		}
	}
	return placeholderRe.ReplaceAllStringFunc(tpl.Text, func(m string) string {
		return vars[m[1:len(m)-1]]
	}), nil
}

// PlannerPrompt renders the subtopic planning prompt.
func (s *Set) PlannerPrompt(topic string) (string, error) {
	return s.Render(Planner, map[string]string{"topic": topic})
}

// ResearcherPrompt renders the research extraction prompt over search results.
func (s *Set) ResearcherPrompt(query string) (string, error) {
	return s.Render(Researcher, map[string]string{"query": query})
}

// SummarizerPrompt renders the note summarization prompt.
func (s *Set) SummarizerPrompt(text string) (string, error) {
	return s.Render(Summarizer, map[string]string{"text": text})
}

// QuizzerPrompt renders the quiz generation prompt over study notes.
func (s *Set) QuizzerPrompt(notes string) (string, error) {
	return s.Render(Quizzer, map[string]string{"text": notes})
}

// SuggestionPrompt renders the next-topics prompt.
func (s *Set) SuggestionPrompt(topic string, score int) (string, error) {
	return s.Render(Suggestion, map[string]string{"topic": topic, "score": strconv.Itoa(score)})
}
