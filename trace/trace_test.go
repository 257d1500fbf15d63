package trace

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Not parallel: the tracer provider is global.
func TestStartSpan(t *testing.T) {
	require.NoError(t, Init(false, nil, "test"))
	ctx, span := StartSpan(context.Background(), "noop")
	span.End()
	_, _, ok := Fields(ctx)
	assert.False(t, ok)

	var buf bytes.Buffer
	require.NoError(t, Init(true, &buf, "test"))
	t.Cleanup(func() {
		_ = Shutdown(context.Background())
		enabled = false
	})

	ctx, span = StartSpan(context.Background(), "model.AnalyzeChart")
	traceID, spanID, ok := Fields(ctx)
	require.True(t, ok)
	assert.Len(t, traceID, 32)
	assert.Len(t, spanID, 16)
	span.End()

	assert.Contains(t, buf.String(), "model.AnalyzeChart")
	assert.Contains(t, buf.String(), traceID)
}
