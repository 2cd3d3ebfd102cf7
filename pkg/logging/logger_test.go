package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/propverify/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	assert.NotNil(t, logging.Default())
}

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf)
	logger.Info().Str("source", "doris").Msg("looked up")

	assert.Contains(t, buf.String(), `"source":"doris"`)
	assert.Contains(t, buf.String(), `"message":"looked up"`)
}

func TestCaptureLoggingForTest(t *testing.T) {
	tl := logging.CaptureLoggingForTest(t)

	logging.Default().Warn().Str("source", "epfo").Msg("no field mapping for source")

	entries := tl.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "warn", entries[0].Level())
	assert.Equal(t, "epfo", entries[0].Str("source"))
	assert.Equal(t, "no field mapping for source", entries[0].Message())
}

func TestContextFieldsReachOutput(t *testing.T) {
	tl := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithProperty(ctx, "PROP-1A2B3C4D")
	ctx = logging.WithSource(ctx, "cersai")

	logging.FromContext(ctx).Info().Msg("fetched")

	tl.AssertContains(t, `"property_id":"PROP-1A2B3C4D"`)
	tl.AssertContains(t, `"source":"cersai"`)
	tl.AssertNotContains(t, `"request_id"`)
}

func TestNopLogger(t *testing.T) {
	logger := logging.NewNopLogger()
	assert.Equal(t, zerolog.Disabled, logger.GetLevel())
}
