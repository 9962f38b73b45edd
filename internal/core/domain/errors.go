package domain

import (
	"errors"
	"fmt"
)

// Gate taxonomy.
var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrVerificationRequired   = errors.New("email verification required")
	ErrAuthorizationDenied    = errors.New("access denied: only merchants can log in")
)

// Network boundary.
var (
	ErrNetwork           = errors.New("network or server error")
	ErrMalformedResponse = errors.New("server returned unexpected format")
	ErrMissingToken      = errors.New("no auth token found")
	ErrGeocodeFailed     = errors.New("could not get coordinates for the address")
)

// Wizard.
var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidStep         = errors.New("action not available at the current setup step")
	ErrStepNotAcknowledged = errors.New("step has no acknowledged write yet")
	ErrWizardCompleted     = errors.New("business setup already completed")
	ErrWizardClosed        = errors.New("business setup screen closed")
	ErrDuplicateCategory   = errors.New("category already in list")
	ErrPartialBatch        = errors.New("some items in the batch were skipped")
)

// Orders and identity.
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrAcceptInFlight     = errors.New("order acceptance already in progress")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidCode        = errors.New("invalid or expired verification code")
)

// APIError is a non-2xx response from the REST backend. Message carries the
// backend's {"error": "..."} text when present, otherwise the HTTP status
// text. Raw holds the (possibly truncated) response body.
type APIError struct {
	Status  int
	Message string
	Raw     string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend %d", e.Status)
}

// Unwrap lets callers match backend failures with errors.Is(err, ErrNetwork).
func (e *APIError) Unwrap() error { return ErrNetwork }

// ValidationError lists the fields that failed input checks.
type ValidationError struct {
	Fields []string
	Msg    string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
