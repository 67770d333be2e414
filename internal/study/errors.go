package study

import (
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by every error caused by a request that cannot be
// applied to the current session state.
var ErrInvalid = errors.New("invalid request")

var (
	ErrEmptyTopic       = fmt.Errorf("%w: topic is empty", ErrInvalid)
	ErrNoSummary        = fmt.Errorf("%w: generate study notes before a quiz", ErrInvalid)
	ErrQuizExists       = fmt.Errorf("%w: a quiz is already active", ErrInvalid)
	ErrNoQuiz           = fmt.Errorf("%w: no quiz is active", ErrInvalid)
	ErrAlreadySubmitted = fmt.Errorf("%w: quiz already submitted", ErrInvalid)
	ErrInvalidAnswer    = fmt.Errorf("%w: answer is not one of the options", ErrInvalid)
	ErrInvalidTab       = fmt.Errorf("%w: unknown tab", ErrInvalid)
	ErrInvalidInputMode = fmt.Errorf("%w: unknown input mode", ErrInvalid)
	ErrInvalidURL       = fmt.Errorf("%w: expected an http(s) video URL", ErrInvalid)
	ErrInvalidSlides    = fmt.Errorf("%w: expected a PDF file", ErrInvalid)
)

// ErrAuthUnavailable is returned by sign-in operations when no identity
// provider is configured.
var ErrAuthUnavailable = errors.New("identity service not configured")
