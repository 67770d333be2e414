// Package quiz turns generated quiz text into structured questions and grades
// submitted answers.
package quiz

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MaxQuestions is the number of questions a quiz holds at most.
	MaxQuestions = 5
	// OptionsPerQuestion is the fixed number of lettered options.
	OptionsPerQuestion = 4
	// DefaultAnswer is the preselected answer for every question.
	DefaultAnswer = "I don't know"
)

var (
	questionRe = regexp.MustCompile(`^\d+\.`)
	optionRe   = regexp.MustCompile(`^\(?[A-Da-d][).:]`)
)

// Question is one multiple-choice item.
type Question struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// Quiz holds parallel lists: Questions[i] is answered by AnswerKey[i] and
// explained by Explanations[i].
type Quiz struct {
	Questions    []Question `json:"questions"`
	AnswerKey    []string   `json:"answer_key"`
	Explanations []string   `json:"explanations"`
}

// Len returns the number of questions.
func (q Quiz) Len() int {
	return len(q.Questions)
}

// ParseError reports malformed quiz text. Line is 1-based over the non-empty
// lines of the input.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return "quiz parse: " + e.Reason
	}
	return fmt.Sprintf("quiz parse: line %d %q: %s", e.Line, e.Text, e.Reason)
}

type parseState int

const (
	expectQuestion parseState = iota
	expectOption
	expectAnswer
	expectExplanation
)

// Parse extracts up to MaxQuestions question blocks. A block is a numbered
// question line, four lettered option lines, an "Answer:" line and an
// "Explanation:" line, in that order.
//
// Lines before a numbered question are skipped. A block that is cut short or
// out of order fails the whole parse.
func Parse(text string) (Quiz, error) {
	var (
		q     Quiz
		state = expectQuestion
		cur   Question
		n     int
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		n++

		switch state {
		case expectQuestion:
			if !questionRe.MatchString(line) {
				continue
			}
			if q.Len() == MaxQuestions {
				return q, nil
			}
			cur = Question{Prompt: line, Options: make([]string, 0, OptionsPerQuestion)}
			state = expectOption

		case expectOption:
			if !optionRe.MatchString(line) {
				return Quiz{}, &ParseError{Line: n, Text: line,
					Reason: fmt.Sprintf("expected option %d of %d", len(cur.Options)+1, OptionsPerQuestion)}
			}
			cur.Options = append(cur.Options, line)
			if len(cur.Options) == OptionsPerQuestion {
				state = expectAnswer
			}

		case expectAnswer:
			ans, ok := cutLabel(line, "Answer:")
			if !ok {
				return Quiz{}, &ParseError{Line: n, Text: line, Reason: "expected Answer: line"}
			}
			if ans == "" {
				return Quiz{}, &ParseError{Line: n, Text: line, Reason: "empty answer"}
			}
			q.AnswerKey = append(q.AnswerKey, ans)
			state = expectExplanation

		case expectExplanation:
			exp, ok := cutLabel(line, "Explanation:")
			if !ok {
				return Quiz{}, &ParseError{Line: n, Text: line, Reason: "expected Explanation: line"}
			}
			q.Questions = append(q.Questions, cur)
			q.Explanations = append(q.Explanations, exp)
			state = expectQuestion
		}
	}

	if state != expectQuestion {
		return Quiz{}, &ParseError{Line: n, Reason: "quiz text ends inside question " + cur.Prompt}
	}
	if q.Len() == 0 {
		return Quiz{}, &ParseError{Reason: "no questions found"}
	}
	return q, nil
}

// cutLabel strips a case-insensitive label prefix and trims the rest.
func cutLabel(line, label string) (string, bool) {
	if len(line) < len(label) || !strings.EqualFold(line[:len(label)], label) {
		return "", false
	}
	return strings.TrimSpace(line[len(label):]), true
}

// NewUserAnswers returns n answers preset to DefaultAnswer.
func NewUserAnswers(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = DefaultAnswer
	}
	return out
}
