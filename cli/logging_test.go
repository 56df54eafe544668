package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/alecthomas/assert/v2"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	t.Run("JSONWhenNotTerminal", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLogger("info", &buf)
		assert.NoError(t, err)

		logger.Info("processed ledger", zap.Int("transactions", 3))
		assert.NoError(t, logger.Sync())

		var entry map[string]any
		assert.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "processed ledger", entry["msg"])
		assert.Equal[any](t, float64(3), entry["transactions"])
	})

	t.Run("FiltersBelowLevel", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLogger("warn", &buf)
		assert.NoError(t, err)

		logger.Info("hidden")
		logger.Debug("hidden")
		assert.Equal(t, "", buf.String())

		logger.Warn("shown")
		assert.Contains(t, buf.String(), `"msg":"shown"`)
	})

	t.Run("EmptyLevelDefaultsToWarn", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLogger("", &buf)
		assert.NoError(t, err)

		logger.Info("hidden")
		assert.Equal(t, "", buf.String())
	})

	t.Run("InvalidLevel", func(t *testing.T) {
		_, err := NewLogger("loud", &bytes.Buffer{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), `invalid log level "loud"`)
	})
}
