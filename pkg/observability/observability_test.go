package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSpanWithoutInit(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "noop")
	require.NotNil(t, ctx)
	span.SetAttribute("rows", 3)
	span.Finish(nil)
}

func TestTracingExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	config := TracingConfig{
		ServiceName:    "colexport-test",
		ServiceVersion: "test",
		Environment:    "test",
		SamplingRate:   1.0,
		ExporterType:   "stdout",
		BatchTimeout:   10 * time.Millisecond,
		MaxExportBatch: 10,
		MaxQueueSize:   10,
	}
	require.NoError(t, InitTracing(config, &buf))

	_, span := StartSpan(context.Background(), "export.table")
	span.SetAttribute("export.capacity", 4)
	span.SetAttribute("export.source", "jsonl")
	assert.True(t, span.SpanContext().IsValid())
	span.Finish(errors.New("boom"))

	require.NoError(t, Shutdown(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "export.table")
	assert.Contains(t, out, "export.capacity")
	assert.Contains(t, out, "boom")
}

func TestInitTracingRejectsUnknownExporter(t *testing.T) {
	err := InitTracing(TracingConfig{ExporterType: "zipkin"}, nil)
	assert.Error(t, err)
}
