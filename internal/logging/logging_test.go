package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ValidConfigs(t *testing.T) {
	for _, tc := range []struct {
		level, format string
	}{
		{"debug", "console"},
		{"info", "json"},
		{"warn", "console"},
		{"error", "json"},
	} {
		logger, err := New(tc.level, tc.format)
		require.NoError(t, err, "level=%s format=%s", tc.level, tc.format)
		assert.NotNil(t, logger)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("verbose", "console")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestNew_InvalidFormat(t *testing.T) {
	_, err := New("info", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format")
}
