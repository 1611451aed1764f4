package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_WritesToWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	lg := NewLogger(WithQuiet(), WithWriter(&buf))

	lg.Info("pipeline started", "stage", "ExampleGen")

	out := buf.String()
	assert.Contains(t, out, "pipeline started")
	assert.Contains(t, out, "ExampleGen")
}

func TestNewLogger_JSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	lg := NewLogger(WithQuiet(), WithWriter(&buf), WithFormat("json"))

	lg.Warn("schema feature missing", "feature", "education")

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "{"), "expected JSON output, got %q", out)
	assert.Contains(t, out, `"feature":"education"`)
}

func TestNewLogger_DebugLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	lg := NewLogger(WithQuiet(), WithWriter(&buf))
	lg.Debug("hidden")
	assert.Empty(t, buf.String())

	lg = NewLogger(WithQuiet(), WithWriter(&buf), WithDebug())
	lg.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	lg := NewLogger(WithQuiet(), WithWriter(&buf))

	ctx := WithLogger(context.Background(), lg)
	require.Same(t, lg, FromContext(ctx))

	Info(ctx, "hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestFromContext_Default(t *testing.T) {
	t.Parallel()

	// A context without a logger falls back to the default logger.
	lg := FromContext(context.Background())
	require.NotNil(t, lg)
}

func TestWith(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	lg := NewLogger(WithQuiet(), WithWriter(&buf)).With("run", "abc123")

	lg.Info("stage finished")
	assert.Contains(t, buf.String(), "abc123")
}
