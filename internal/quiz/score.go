package quiz

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
)

var fold = cases.Fold()

// IsCorrect reports whether user starts with the same letter as correct,
// ignoring case. Only the leading character is compared, so "banana" matches
// an answer of "b) Paris".
func IsCorrect(user, correct string) bool {
	u, _ := utf8.DecodeRuneInString(user)
	c, _ := utf8.DecodeRuneInString(correct)
	if u == utf8.RuneError || c == utf8.RuneError {
		return false
	}
	return fold.String(string(u)) == fold.String(string(c))
}

// Result is a graded submission.
type Result struct {
	Score   int    `json:"score"`
	Total   int    `json:"total"`
	Correct []bool `json:"correct"`
}

// Grade compares answers position by position. Answers beyond the key are
// ignored; missing answers count as wrong.
func Grade(userAnswers, answerKey []string) Result {
	r := Result{Total: len(answerKey), Correct: make([]bool, len(answerKey))}
	for i, key := range answerKey {
		if i < len(userAnswers) && IsCorrect(userAnswers[i], key) {
			r.Correct[i] = true
			r.Score++
		}
	}
	return r
}

// Score returns the number of correct answers.
func Score(userAnswers, answerKey []string) int {
	return Grade(userAnswers, answerKey).Score
}
