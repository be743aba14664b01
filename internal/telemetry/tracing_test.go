package telemetry

import (
	"bytes"
	"context"
	"testing"

	"gigmatch/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExporter(t *testing.T) {
	ctx := context.Background()

	exp, err := NewExporter(ctx, config.TracingConfig{Exporter: "none"}, nil)
	require.NoError(t, err)
	assert.Nil(t, exp)

	_, err = NewExporter(ctx, config.TracingConfig{Exporter: "zipkin"}, nil)
	assert.ErrorContains(t, err, "zipkin")
}

func TestTracerProvider_StdoutExport(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	cfg := config.TracingConfig{Exporter: "stdout", SampleRatio: 1}

	exp, err := NewExporter(ctx, cfg, &buf)
	require.NoError(t, err)
	tp, err := NewTracerProvider(exp, cfg)
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(ctx, "JobService.Complete")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, tp.Shutdown(ctx))
	assert.Contains(t, buf.String(), "JobService.Complete")
	assert.Contains(t, buf.String(), "gigmatch")
}

func TestSetup_NoExporter(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TracingConfig{Exporter: "none"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
