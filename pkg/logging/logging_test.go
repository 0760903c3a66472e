package logging

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	logger, err := New("warn", false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = New("DEBUG", true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = New("chatty", false)
	assert.Error(t, err)
}

func TestBanner(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer

	Banner(&buf, "jokeadmin console", [][2]string{{"listen", ":5173"}, {"api", "http://localhost:8080"}})

	out := buf.String()
	assert.Contains(t, out, "jokeadmin console")
	assert.Contains(t, out, "listen:        :5173")
	assert.Contains(t, out, "api:           http://localhost:8080")
}
