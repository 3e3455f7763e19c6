package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestCtxAddsTraceID(t *testing.T) {
	var buf bytes.Buffer
	original := zlog.Logger
	zlog.Logger = zerolog.New(&buf)
	defer func() { zlog.Logger = original }()

	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	Ctx(ctx).Info().Msg("reserva registrada")

	assert.Contains(t, buf.String(), `"trace_id":"0102030405060708090a0b0c0d0e0f10"`)
	assert.Contains(t, buf.String(), "reserva registrada")
}

func TestCtxWithoutTrace(t *testing.T) {
	var buf bytes.Buffer
	original := zlog.Logger
	zlog.Logger = zerolog.New(&buf)
	defer func() { zlog.Logger = original }()

	Ctx(context.Background()).Info().Msg("sin traza")

	assert.NotContains(t, buf.String(), "trace_id")
	assert.Contains(t, buf.String(), "sin traza")
}
