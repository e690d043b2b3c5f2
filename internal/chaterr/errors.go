// Package chaterr defines the categorized error type used at every component
// boundary. Lower layers wrap their failures into one of these categories
// before they reach the coordinator; nothing anonymous crosses upward.
package chaterr

import (
	"errors"
	"fmt"
	"time"
)

// Category classifies an error for recovery decisions and user messaging.
type Category string

const (
	CategoryWindow        Category = "window"
	CategoryAutomation    Category = "automation"
	CategoryTimeout       Category = "timeout"
	CategoryValidation    Category = "validation"
	CategoryConfiguration Category = "configuration"
	CategorySystem        Category = "system"
)

// userMessages maps each category to a short message fit for end users.
// The technical message stays in logs.
var userMessages = map[Category]string{
	CategoryWindow:        "Cannot find or access the ChatGPT window. Please ensure ChatGPT is running and visible.",
	CategoryAutomation:    "Failed to interact with the ChatGPT interface. Please check that the window is visible and responsive.",
	CategoryTimeout:       "ChatGPT did not respond in time. It may be busy or processing a complex request.",
	CategoryValidation:    "Invalid input provided. Please check your request.",
	CategoryConfiguration: "Configuration error. Please check your settings.",
	CategorySystem:        "An unexpected error occurred. Please try again.",
}

// Error is a categorized failure with separate technical and user-facing
// messages. Recoverable signals whether a retry can plausibly succeed.
type Error struct {
	Category    Category
	Recoverable bool
	Message     string
	UserMessage string
	Details     map[string]any
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// WithDetail attaches a key/value pair and returns the error for chaining.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func newError(cat Category, recoverable bool, msg string, cause error) *Error {
	return &Error{
		Category:    cat,
		Recoverable: recoverable,
		Message:     msg,
		UserMessage: userMessages[cat],
		Err:         cause,
	}
}

// WindowNotFound reports that the target window could not be located or
// focused. Recoverable: the window may appear or regain focus shortly.
func WindowNotFound(msg string) *Error {
	return newError(CategoryWindow, true, msg, nil)
}

// Automation reports a failed UI interaction. The operation name
// ("send_message", "capture_response", ...) is kept in Details.
func Automation(operation string, cause error) *Error {
	e := newError(CategoryAutomation, true, fmt.Sprintf("automation failed during %s", operation), cause)
	e.UserMessage = fmt.Sprintf("Failed to %s. Please ensure the ChatGPT window is accessible and try again.", operation)
	return e.WithDetail("operation", operation)
}

// Timeout reports that no complete response arrived within the budget.
// If a partial sample was captured it rides along in Details.
func Timeout(budget time.Duration, partial string) *Error {
	e := newError(CategoryTimeout, true, fmt.Sprintf("no complete response within %s", budget), nil)
	e.UserMessage = fmt.Sprintf("ChatGPT did not respond within %s. It may be processing a complex request.", budget)
	e.WithDetail("timeout", budget.String())
	if partial != "" {
		e.WithDetail("partial", partial)
	}
	return e
}

// Validation reports bad caller input. Never recoverable; fail fast.
func Validation(field, msg string) *Error {
	e := newError(CategoryValidation, false, msg, nil)
	e.UserMessage = fmt.Sprintf("Invalid input: %s", msg)
	return e.WithDetail("field", field)
}

// Configuration reports invalid or missing configuration. Never recoverable;
// surfaced at startup before any automation runs.
func Configuration(msg string) *Error {
	return newError(CategoryConfiguration, false, msg, nil)
}

// WrapSystem wraps an unexpected lower-level error, preserving the original
// as the cause. Not recoverable by default; needs operator attention.
func WrapSystem(context string, cause error) *Error {
	return newError(CategorySystem, false, context, cause)
}

// CategoryOf returns the category of err, or CategorySystem for
// uncategorized errors.
func CategoryOf(err error) Category {
	if e := As(err); e != nil {
		return e.Category
	}
	return CategorySystem
}

// IsRecoverable reports whether err is a categorized, recoverable error.
func IsRecoverable(err error) bool {
	if e := As(err); e != nil {
		return e.Recoverable
	}
	return false
}

// UserMessageOf returns the user-facing message for err, falling back to a
// generic one for uncategorized errors.
func UserMessageOf(err error) string {
	if e := As(err); e != nil {
		return e.UserMessage
	}
	return userMessages[CategorySystem]
}

// As extracts the categorized error from err's chain, or nil.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
