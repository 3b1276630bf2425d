package kernel

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	"fulfillment/internal/pkg/errs"
)

const (
	// ShortCodePrefix marks public tracking codes so they cannot be confused with internal ids.
	ShortCodePrefix = "SPDY"
	// ShortCodeDigits is the length of the numeric suffix.
	ShortCodeDigits = 8

	shortCodeSpace = 100_000_000
)

var shortCodePattern = regexp.MustCompile(`^SPDY[0-9]{8}$`)

// ShortCode is the public, human-shareable tracking code of an order or a parcel.
// The format alone does not guarantee uniqueness; codes are drawn at random and
// checked against storage when issued.
type ShortCode struct {
	value string
}

// NewRandomShortCode draws a code uniformly from the numeric space.
func NewRandomShortCode() ShortCode {
	//nolint:gosec // tracking codes are not secrets
	n := rand.IntN(shortCodeSpace)
	return ShortCode{value: fmt.Sprintf("%s%0*d", ShortCodePrefix, ShortCodeDigits, n)}
}

// ParseShortCode trims and upper-cases the input before checking the format.
func ParseShortCode(s string) (ShortCode, error) {
	normalized := NormalizeShortCode(s)
	if !shortCodePattern.MatchString(normalized) {
		return ShortCode{}, errs.NewValueIsInvalidErrorWithCause(
			"short code",
			fmt.Errorf("%q does not match %s followed by %d digits", s, ShortCodePrefix, ShortCodeDigits),
		)
	}
	return ShortCode{value: normalized}, nil
}

// NormalizeShortCode trims whitespace and upper-cases.
func NormalizeShortCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// LooksLikeShortCode reports whether s would parse as a short code.
func LooksLikeShortCode(s string) bool {
	return shortCodePattern.MatchString(NormalizeShortCode(s))
}

func (c ShortCode) String() string {
	return c.value
}

func (c ShortCode) IsEmpty() bool {
	return c.value == ""
}

func (c ShortCode) IsEqual(other ShortCode) bool {
	return c.value == other.value
}

// Validate rejects the zero value.
func (c ShortCode) Validate() error {
	if c.value == "" {
		return errs.NewValueIsRequiredError("short code")
	}
	return nil
}
