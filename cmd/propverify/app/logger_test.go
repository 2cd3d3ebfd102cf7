package app

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
		warns    bool
	}{
		{
			name:     "default level when nothing set",
			config:   &Config{},
			expected: "info",
		},
		{
			name:     "verbose flag sets debug",
			config:   &Config{Verbose: true},
			expected: "debug",
		},
		{
			name:     "quiet flag sets warn",
			config:   &Config{Quiet: true},
			expected: "warn",
		},
		{
			name:     "explicit log-level overrides verbose",
			config:   &Config{LogLevel: "error", Verbose: true},
			expected: "error",
		},
		{
			name:     "explicit log-level overrides both flags",
			config:   &Config{LogLevel: "trace", Verbose: true, Quiet: true},
			expected: "trace",
		},
		{
			name:     "both verbose and quiet prefers quiet",
			config:   &Config{Verbose: true, Quiet: true},
			expected: "warn",
			warns:    true,
		},
		{
			name:     "verbose beats LOG_LEVEL",
			config:   &Config{Verbose: true, EnvLogLevel: "error"},
			expected: "debug",
		},
		{
			name:     "LOG_LEVEL used without flags",
			config:   &Config{EnvLogLevel: "error"},
			expected: "error",
		},
		{
			name:     "invalid flag level falls back to info",
			config:   &Config{LogLevel: "loud"},
			expected: "info",
			warns:    true,
		},
		{
			name:     "invalid LOG_LEVEL falls back to info",
			config:   &Config{EnvLogLevel: "chatty"},
			expected: "info",
			warns:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var warnings bytes.Buffer
			assert.Equal(t, tt.expected, determineLogLevel(tt.config, &warnings))
			assert.Equal(t, tt.warns, warnings.Len() > 0)
		})
	}
}

func TestNewLoggerLevel(t *testing.T) {
	logger := newLogger(&Config{Quiet: true, LogFormat: "json", LogOutput: "discard"}, &bytes.Buffer{})
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}
