package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Authentication errors (AUTH-001 to AUTH-099)
	ErrCodeInvalidCredentials ErrorCode = "AUTH-001"
	ErrCodeRegistrationFailed ErrorCode = "AUTH-002"

	// Session errors (SESSION-001 to SESSION-099)
	ErrCodeSessionExpired  ErrorCode = "SESSION-001"
	ErrCodeSessionInvalid  ErrorCode = "SESSION-002"
	ErrCodeNotLoggedIn     ErrorCode = "SESSION-003"
	ErrCodeSessionNotReady ErrorCode = "SESSION-004"

	// Access errors (ACCESS-001 to ACCESS-099)
	ErrCodeNotOrgAdmin    ErrorCode = "ACCESS-001"
	ErrCodeOrgNotApproved ErrorCode = "ACCESS-002"
	ErrCodeRouteNotFound  ErrorCode = "ACCESS-003"

	// Validation errors (VALIDATION-001 to VALIDATION-099)
	ErrCodeFieldRequired ErrorCode = "VALIDATION-001"
	ErrCodeFieldInvalid  ErrorCode = "VALIDATION-002"
	ErrCodeWizardLocked  ErrorCode = "VALIDATION-003"
	ErrCodeWizardStep    ErrorCode = "VALIDATION-004"

	// API errors (API-001 to API-099)
	ErrCodeAPIRequest  ErrorCode = "API-001"
	ErrCodeAPIResponse ErrorCode = "API-002"
	ErrCodeAPIDecode   ErrorCode = "API-003"

	// Network errors (NETWORK-001 to NETWORK-099)
	ErrCodeNetworkUnreachable ErrorCode = "NETWORK-001"
	ErrCodeNetworkTimeout     ErrorCode = "NETWORK-002"

	// Storage errors (STORAGE-001 to STORAGE-099)
	ErrCodeStorageRead  ErrorCode = "STORAGE-001"
	ErrCodeStorageWrite ErrorCode = "STORAGE-002"
	ErrCodeStorageSeal  ErrorCode = "STORAGE-003"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"
	ErrCodeConfigLoad    ErrorCode = "CONFIG-002"
)

// Category groups error codes by how the client reacts to them.
type Category string

const (
	CategoryAuthentication Category = "authentication"
	CategoryAuthorization  Category = "authorization"
	CategorySession        Category = "session"
	CategoryValidation     Category = "validation"
	CategoryServer         Category = "server"
	CategoryLocal          Category = "local"
	CategoryUnknown        Category = "unknown"
)

// AmplyError represents an error with code, suggestions, and documentation
type AmplyError struct {
	Code        ErrorCode
	Message     string
	Field       string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *AmplyError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *AmplyError) Unwrap() error {
	return e.Cause
}

// Is matches another AmplyError by code so sentinel values work with errors.Is.
func (e *AmplyError) Is(target error) bool {
	t, ok := target.(*AmplyError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Category returns the taxonomy bucket of the error code.
func (e *AmplyError) Category() Category {
	prefix, _, _ := strings.Cut(string(e.Code), "-")
	switch prefix {
	case "AUTH":
		return CategoryAuthentication
	case "ACCESS":
		return CategoryAuthorization
	case "SESSION":
		return CategorySession
	case "VALIDATION":
		return CategoryValidation
	case "API", "NETWORK":
		return CategoryServer
	case "STORAGE", "CONFIG":
		return CategoryLocal
	default:
		return CategoryUnknown
	}
}

// New creates a new AmplyError
func New(code ErrorCode, message string) *AmplyError {
	return &AmplyError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AmplyError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *AmplyError {
	return &AmplyError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithField names the input field the error belongs to.
func (e *AmplyError) WithField(field string) *AmplyError {
	e.Field = field
	return e
}

// WithSuggestion adds a suggestion to the error
func (e *AmplyError) WithSuggestion(suggestion string) *AmplyError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *AmplyError) WithSuggestions(suggestions ...string) *AmplyError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *AmplyError) WithDocs(url string) *AmplyError {
	e.DocsURL = url
	return e
}

// As finds the first AmplyError in err's chain.
func As(err error) (*AmplyError, bool) {
	var ae *AmplyError
	if stderrors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// CodeOf returns the code of the first AmplyError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	if ae, ok := As(err); ok {
		return ae.Code
	}
	return ""
}

// CategoryOf classifies any error. Errors outside this package are unknown.
func CategoryOf(err error) Category {
	if ae, ok := As(err); ok {
		return ae.Category()
	}
	return CategoryUnknown
}

// Sentinels usable with errors.Is.
var (
	ErrSessionExpired = New(ErrCodeSessionExpired, "session expired")
	ErrNotLoggedIn    = New(ErrCodeNotLoggedIn, "not logged in")
)

// Common error constructors for frequently used errors

// NewInvalidCredentialsError creates a login failure error
func NewInvalidCredentialsError(cause error) *AmplyError {
	return Wrap(ErrCodeInvalidCredentials, "login failed", cause).
		WithSuggestion("Check your email address and password").
		WithSuggestion("Run 'amply register' if you do not have an account yet")
}

// NewSessionExpiredError creates the error returned after a 401 response
func NewSessionExpiredError() *AmplyError {
	return New(ErrCodeSessionExpired, "session expired").
		WithSuggestion("Run 'amply login' to sign in again")
}

// NewNotLoggedInError creates the error for commands that need a session
func NewNotLoggedInError() *AmplyError {
	return New(ErrCodeNotLoggedIn, "not logged in").
		WithSuggestion("Run 'amply login' to sign in")
}

// NewNotOrgAdminError creates the error for organization-only commands
func NewNotOrgAdminError() *AmplyError {
	return New(ErrCodeNotOrgAdmin, "this action requires an organization administrator account")
}

// NewOrgNotApprovedError creates the error for commands gated on review status
func NewOrgNotApprovedError(status string) *AmplyError {
	if status == "" {
		status = "unknown"
	}
	return New(ErrCodeOrgNotApproved, fmt.Sprintf("organization is not approved (review status: %s)", status)).
		WithSuggestion("Run 'amply org show' to check the review status")
}

// NewFieldRequiredError creates a required field validation error
func NewFieldRequiredError(field string) *AmplyError {
	return New(ErrCodeFieldRequired, fmt.Sprintf("%s is required", field)).WithField(field)
}

// NewFieldInvalidError creates an invalid field validation error
func NewFieldInvalidError(field, reason string) *AmplyError {
	return New(ErrCodeFieldInvalid, fmt.Sprintf("%s %s", field, reason)).WithField(field)
}

// NewConfigInvalidError creates a configuration validation error
func NewConfigInvalidError(details string) *AmplyError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Run 'amply config view' to inspect the effective configuration").
		WithSuggestion("Check AMPLY_* environment variables")
}

// NewNetworkError wraps a transport failure
func NewNetworkError(cause error) *AmplyError {
	return Wrap(ErrCodeNetworkUnreachable, "could not reach the Amply API", cause).
		WithSuggestion("Check your network connection").
		WithSuggestion("Verify api.url with 'amply config view'")
}
