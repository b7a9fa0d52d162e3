package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	logger.Info().Str("tenant_id", "acme").Msg("hello")

	out := buf.String()
	assert.Contains(t, out, `"tenant_id":"acme"`)
	assert.Contains(t, out, `"message":"hello"`)
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)

	//nolint:staticcheck // nil context fallback is part of the contract
	logger = FromContext(nil)
	require.NotNil(t, logger)
}

func TestWithLoggerRoundTrip(t *testing.T) {
	tl := NewTestLogger(t)
	ctx := WithLogger(context.Background(), tl.Logger)

	FromContext(ctx).Info().Msg("through context")

	assert.True(t, tl.Contains("through context"))
}

func TestWithTenantAddsField(t *testing.T) {
	tl := NewTestLogger(t)
	ctx := WithLogger(context.Background(), tl.Logger)
	ctx = WithTenant(ctx, "acme")

	FromContext(ctx).Info().Msg("tenant scoped")

	assert.True(t, tl.Contains(`"tenant_id":"acme"`))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestTestLoggerCaptures(t *testing.T) {
	tl := NewTestLogger(t)

	tl.Info().Msg("one")
	tl.Debug().Msg("two")

	assert.Equal(t, 2, tl.Count())
	tl.Clear()
	assert.Equal(t, 0, tl.Count())
}
