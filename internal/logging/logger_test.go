package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"curio-queries/internal/config"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(config.LoggingConfig{Level: "info", Format: "json"},
		map[string]string{"service": "curioqa"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	ctx := WithDocument(WithRunID(context.Background(), "run-1"), "guide.docx")
	l.Info(ctx, "scored chunk", zap.Int("chunk", 2))
	l.Debug(ctx, "hidden at info")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "scored chunk", entry["msg"])
	assert.Equal(t, "curioqa", entry["service"])
	assert.Equal(t, "run-1", entry["run_id"])
	assert.Equal(t, "guide.docx", entry["document"])
	assert.EqualValues(t, 2, entry["chunk"])
	assert.Contains(t, entry, "ts")
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "loud", Format: "json"}, nil)
	assert.Error(t, err)
}

func TestContextFieldsEmpty(t *testing.T) {
	assert.Empty(t, ContextFields(context.Background()))
}

func TestTestLoggerObservesEntries(t *testing.T) {
	l := NewTestLogger()
	l.Named("pipeline").Warn(context.Background(), "document skipped", zap.String("reason", "corrupt"))

	l.AssertLogged(t, zapcore.WarnLevel, "skipped")
	assert.Equal(t, 1, l.FilterMessage("document").Len())
}
