package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWriter_Levels(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWriter("info", &buf)
	require.NoError(t, err)

	log.Debug("hidden", zap.String("k", "v"))
	log.Info("computed milestones", zap.String("start", "01/15/2025"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "billcycle")
	assert.Contains(t, out, "computed milestones")
	assert.Contains(t, out, "start")
	assert.Contains(t, out, "01/15/2025")
}

func TestNewWriter_InvalidLevel(t *testing.T) {
	_, err := NewWriter("loud", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	log, err := New("warn")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.InfoLevel))
	assert.True(t, log.Core().Enabled(zap.WarnLevel))
}
