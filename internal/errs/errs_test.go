package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("decode record: %w", Format("salt", "expected %d bytes, got %d", 16, 3))

	assert.ErrorIs(t, err, ErrInputFormat)
	assert.NotErrorIs(t, err, ErrAuthentication)

	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "salt", fe.Field)
	assert.Equal(t, "expected 16 bytes, got 3", fe.Reason)
	assert.Equal(t, "decode record: invalid input format: salt: expected 16 bytes, got 3", err.Error())
}

func TestFormatError_NoField(t *testing.T) {
	err := Format("", "not a JSON object")
	assert.Equal(t, "invalid input format: not a JSON object", err.Error())
}
