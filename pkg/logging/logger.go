// Package logging provides structured logging for propverify using zerolog.
// Console output is used when stderr is a terminal and JSON everywhere else,
// so the same binary logs readably for operators and parseably in containers.
//
//	ctx := logging.WithProperty(context.Background(), "PROP-1A2B3C4D")
//	logging.FromContext(ctx).Debug().Msg("Looking up sources")
package logging

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultLogger backs Default until SetDefault replaces it.
var defaultLogger = NewLoggerFromConfig(envConfig())

// envConfig reads LOG_LEVEL, DEBUG and LOG_FORMAT.
func envConfig() *Config {
	cfg := DefaultConfig()
	switch {
	case os.Getenv("LOG_LEVEL") != "":
		cfg.Level = os.Getenv("LOG_LEVEL")
	case os.Getenv("DEBUG") != "":
		cfg.Level = "debug"
	}
	if f := os.Getenv("LOG_FORMAT"); f != "" {
		cfg.Format = f
	}
	return cfg
}

// Default returns the process-wide logger used by components built without one.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger, including zerolog's global one.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// New returns a JSON logger on w at the current global level.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(zerolog.GlobalLevel()).With().Timestamp().Logger()
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
