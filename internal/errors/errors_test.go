package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeFieldRequired, "test error message")

	if err.Code != ErrCodeFieldRequired {
		t.Errorf("expected code %s, got %s", ErrCodeFieldRequired, err.Code)
	}

	if err.Message != "test error message" {
		t.Errorf("expected message 'test error message', got '%s'", err.Message)
	}

	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := Wrap(ErrCodeStorageRead, "failed to read key", cause)

	if err.Code != ErrCodeStorageRead {
		t.Errorf("expected code %s, got %s", ErrCodeStorageRead, err.Code)
	}

	if !errors.Is(err, cause) {
		t.Errorf("Wrap should support errors.Is")
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *AmplyError
		contains []string
	}{
		{
			name:     "simple error",
			err:      New(ErrCodeFieldInvalid, "password too short"),
			contains: []string{"[VALIDATION-002]", "password too short"},
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeAPIDecode, "decode failed", fmt.Errorf("unexpected EOF")),
			contains: []string{"[API-003]", "decode failed", "unexpected EOF"},
		},
		{
			name:     "error with suggestions and docs",
			err:      NewNotLoggedInError().WithDocs("https://docs.amply-impact.org/cli"),
			contains: []string{"Suggestions:", "amply login", "Documentation: https://docs.amply-impact.org/cli"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.contains {
				if !strings.Contains(msg, want) {
					t.Errorf("expected %q in %q", want, msg)
				}
			}
		})
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want Category
	}{
		{ErrCodeInvalidCredentials, CategoryAuthentication},
		{ErrCodeNotOrgAdmin, CategoryAuthorization},
		{ErrCodeOrgNotApproved, CategoryAuthorization},
		{ErrCodeSessionExpired, CategorySession},
		{ErrCodeFieldRequired, CategoryValidation},
		{ErrCodeAPIResponse, CategoryServer},
		{ErrCodeNetworkTimeout, CategoryServer},
		{ErrCodeStorageWrite, CategoryLocal},
		{ErrorCode("BOGUS"), CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := New(tt.code, "x").Category(); got != tt.want {
				t.Errorf("Category() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("get donations: %w", NewSessionExpiredError())

	if !errors.Is(wrapped, ErrSessionExpired) {
		t.Error("expected wrapped session expiry to match sentinel")
	}
	if errors.Is(wrapped, ErrNotLoggedIn) {
		t.Error("session expiry must not match not-logged-in sentinel")
	}
	if CodeOf(wrapped) != ErrCodeSessionExpired {
		t.Errorf("CodeOf() = %s", CodeOf(wrapped))
	}
	if CategoryOf(fmt.Errorf("plain")) != CategoryUnknown {
		t.Error("plain errors should be unknown")
	}
}

func TestFieldErrors(t *testing.T) {
	err := NewFieldRequiredError("city")
	if err.Field != "city" {
		t.Errorf("Field = %q, want city", err.Field)
	}
	if err.Code != ErrCodeFieldRequired {
		t.Errorf("Code = %s", err.Code)
	}

	inv := NewFieldInvalidError("password", "must be at least 8 characters")
	if !strings.Contains(inv.Message, "password must be at least 8 characters") {
		t.Errorf("unexpected message %q", inv.Message)
	}
}

func TestOrgNotApprovedDefaultsStatus(t *testing.T) {
	err := NewOrgNotApprovedError("")
	if !strings.Contains(err.Message, "unknown") {
		t.Errorf("expected unknown status in %q", err.Message)
	}
}
