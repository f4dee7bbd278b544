package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/Soypete/streambuddy/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"", LogLevelInfo, false},
		{"DEBUG", LogLevelDebug, false},
		{" warn ", LogLevelWarn, false},
		{"error", LogLevelError, false},
		{"verbose", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestWithMessageOmitsText(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LogLevelInfo, &buf)

	l.WithMessage(types.IncomingMessage{
		Text:     "secret question",
		SenderID: "u1",
		StreamID: "s1",
		Platform: types.PlatformTwitch,
	}).Info("resolved")

	line := decode(t, &buf)
	assert.Equal(t, "s1", line["streamID"])
	assert.Equal(t, "u1", line["senderID"])
	assert.Equal(t, "twitch", line["platform"])
	assert.NotContains(t, buf.String(), "secret question")
}

func TestWithContextTraceID(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LogLevelInfo, &buf)

	assert.Same(t, l, l.WithContext(context.Background()))

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{1, 2, 3},
		SpanID:  trace.SpanID{4},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	l.WithContext(ctx).Info("traced")

	assert.Equal(t, sc.TraceID().String(), decode(t, &buf)["traceID"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LogLevelWarn, &buf)

	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}
