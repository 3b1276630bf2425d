package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrPriceMismatch       = errors.New("price mismatch")
	ErrSignatureInvalid    = errors.New("signature is invalid")
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// PriceMismatchError is returned when the amount declared by a client differs
// from the server-computed total by more than the accepted tolerance.
// Expected and Declared are formatted with two decimals.
type PriceMismatchError struct {
	Expected string
	Declared string
}

func NewPriceMismatchError(expected, declared string) *PriceMismatchError {
	return &PriceMismatchError{Expected: expected, Declared: declared}
}

func (e *PriceMismatchError) Error() string {
	return fmt.Sprintf("Invalid price calculation. Expected: $%s", e.Expected)
}

func (e *PriceMismatchError) Unwrap() error {
	return ErrPriceMismatch
}

// SignatureInvalidError reports a webhook whose signature is missing or wrong.
type SignatureInvalidError struct {
	Source string
	Reason string
}

func NewSignatureInvalidError(source, reason string) *SignatureInvalidError {
	return &SignatureInvalidError{Source: source, Reason: reason}
}

func (e *SignatureInvalidError) Error() string {
	return fmt.Sprintf("%s: %s webhook, %s", ErrSignatureInvalid, e.Source, e.Reason)
}

func (e *SignatureInvalidError) Unwrap() error {
	return ErrSignatureInvalid
}

// ProviderError wraps a failed call to an external provider. StatusCode is
// zero when no HTTP response was received.
type ProviderError struct {
	Provider   string
	Operation  string
	StatusCode int
	Cause      error
}

func NewProviderError(provider, operation string, statusCode int, cause error) *ProviderError {
	return &ProviderError{Provider: provider, Operation: operation, StatusCode: statusCode, Cause: cause}
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %s %s", ErrProviderUnavailable, e.Provider, e.Operation)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s, status %d", msg, e.StatusCode)
	}
	return withCause(msg, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return ErrProviderUnavailable
}

// Transient reports whether retrying the same call may succeed: network
// failures, timeouts, throttling and server-side errors.
func (e *ProviderError) Transient() bool {
	return e.StatusCode == 0 ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= http.StatusInternalServerError
}

// IsTransient reports whether err carries a transient ProviderError.
func IsTransient(err error) bool {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Transient()
	}
	return false
}
