package exitcode

import (
	"os"
	"strings"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// ValidationError indicates rejected input (wizard or form validation)
	ValidationError = 3

	// AccessDenied indicates a role or approval gate refused the command
	AccessDenied = 4

	// AuthError indicates an authentication failure or expired session
	AuthError = 5

	// NetworkError indicates a network connectivity issue or server error
	NetworkError = 6

	// Interrupted indicates the user cancelled the command
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	switch amplyerrors.CategoryOf(err) {
	case amplyerrors.CategoryAuthentication, amplyerrors.CategorySession:
		return AuthError
	case amplyerrors.CategoryAuthorization:
		return AccessDenied
	case amplyerrors.CategoryValidation:
		return ValidationError
	case amplyerrors.CategoryServer:
		return NetworkError
	case amplyerrors.CategoryLocal:
		return GeneralError
	}

	// cobra reports usage problems as plain errors
	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "unknown flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "accepts") && strings.Contains(errMsg, "arg") {
		return UsageError
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case ValidationError:
		return "Validation error"
	case AccessDenied:
		return "Access denied"
	case AuthError:
		return "Authentication error"
	case NetworkError:
		return "Network error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
