package ux

import (
	"fmt"
	"strings"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\n💡 Suggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError adds a suggestion to errors that do not carry one.
// Coded errors already list their own suggestions and pass through.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}
	if ae, ok := amplyerrors.As(err); ok && len(ae.Suggestions) > 0 {
		return err
	}

	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "connection refused"), strings.Contains(errMsg, "no such host"), strings.Contains(errMsg, "no route to host"):
		return NewErrorWithSuggestion(err,
			"Check your network connection and api.url ('amply config view')")
	case strings.Contains(errMsg, "i/o timeout"), strings.Contains(errMsg, "deadline exceeded"):
		return NewErrorWithSuggestion(err,
			"The API did not answer in time. Raise api.timeout or try again later")
	case strings.Contains(errMsg, "x509"), strings.Contains(errMsg, "certificate"):
		return NewErrorWithSuggestion(err,
			"The API certificate was rejected. Check api.url and your system trust store")
	case strings.Contains(errMsg, "permission denied"):
		return NewErrorWithSuggestion(err,
			"Check permissions of the state directory ('amply config path')")
	case strings.Contains(errMsg, "unknown format"):
		return NewErrorWithSuggestion(err,
			"Use --output text, json or yaml")
	}
	return err
}

// FormatError provides consistent error formatting with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(err)
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}
