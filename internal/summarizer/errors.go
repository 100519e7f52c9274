package summarizer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorPrefix marks replies that carry a failure instead of generated text.
const ErrorPrefix = "Error: "

var (
	ErrMissingCredential = errors.New("API key is required")
	ErrInvalidOptions    = errors.New("invalid summarizer options")
	ErrOverloaded        = errors.New("model is overloaded")
)

// overloadMarkers are the fragments upstream error texts carry when the
// model is temporarily out of capacity. No structured code is relied upon.
var overloadMarkers = []string{
	"503 UNAVAILABLE",
	"The model is overloaded",
	"Status: UNAVAILABLE",
	"503 Service Unavailable",
}

// IsOverloaded reports whether err describes a transient capacity failure.
func IsOverloaded(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrOverloaded) {
		return true
	}

	msg := err.Error()
	for _, marker := range overloadMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// ExhaustedError is returned when every attempt reported overload.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("model is overloaded after %d attempts, try again later", e.Attempts)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrOverloaded
}

// CallError wraps a failure that is not worth retrying.
type CallError struct {
	Attempt int
	Err     error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// Reply folds a Summarize result into a single string for display.
func Reply(text string, err error) string {
	if err != nil {
		return ErrorPrefix + err.Error()
	}
	return text
}

func IsErrorReply(reply string) bool {
	return strings.HasPrefix(reply, ErrorPrefix)
}
