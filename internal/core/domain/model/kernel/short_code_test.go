package kernel_test

import (
	"strings"
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRandomShortCode(t *testing.T) {
	for range 100 {
		code := kernel.NewRandomShortCode()

		require.NoError(t, code.Validate())
		assert.True(t, strings.HasPrefix(code.String(), kernel.ShortCodePrefix))
		assert.Len(t, code.String(), len(kernel.ShortCodePrefix)+kernel.ShortCodeDigits)
		assert.True(t, kernel.LooksLikeShortCode(code.String()))
	}
}

func TestParseShortCode(t *testing.T) {
	t.Run("normalizes case and whitespace", func(t *testing.T) {
		code, err := kernel.ParseShortCode("  spdy00012345 ")

		require.NoError(t, err)
		assert.Equal(t, "SPDY00012345", code.String())
	})

	testCases := []string{
		"",
		"SPDY1234",
		"SPDY123456789",
		"ABCD12345678",
		"550e8400-e29b-41d4-a716-446655440000",
	}
	for _, input := range testCases {
		t.Run("rejects "+input, func(t *testing.T) {
			_, err := kernel.ParseShortCode(input)
			require.ErrorIs(t, err, errs.ErrValueIsInvalid)
			assert.False(t, kernel.LooksLikeShortCode(input))
		})
	}
}

func TestShortCode_ZeroValue(t *testing.T) {
	var code kernel.ShortCode

	assert.True(t, code.IsEmpty())
	require.ErrorIs(t, code.Validate(), errs.ErrValueIsRequired)
}
