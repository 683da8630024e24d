package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/infrastructure/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.LogConfig
		debug  bool
		errors bool
	}{
		{name: "json info", cfg: config.LogConfig{Level: "info", Format: "json"}, errors: true},
		{name: "console debug", cfg: config.LogConfig{Level: "debug", Format: "console"}, debug: true, errors: true},
		{name: "invalid level defaults to info", cfg: config.LogConfig{Level: "invalid", Format: "json"}, errors: true},
		{name: "error level", cfg: config.LogConfig{Level: "error", Format: "json"}, errors: true},
		{name: "warn level", cfg: config.LogConfig{Level: "warn", Format: "console"}, errors: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(&tt.cfg)

			require.NoError(t, err)
			require.NotNil(t, logger)
			assert.Equal(t, tt.debug, logger.Core().Enabled(zapcore.DebugLevel))
			assert.Equal(t, tt.errors, logger.Core().Enabled(zapcore.ErrorLevel))
		})
	}
}

func TestNewLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&config.LogConfig{Level: "info", Format: "json"}, zapcore.AddSync(&buf))

	logger.Info("analysis completed", zap.String("model", "resnet50"))
	require.NoError(t, logger.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "analysis completed", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, ServiceName, entry["service"])
	assert.Equal(t, "resnet50", entry["model"])
	assert.Contains(t, entry, "timestamp")
}
