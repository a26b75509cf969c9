package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_WritesToOutputPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invcost.log")
	logger, err := NewLogger(Config{Level: "warn", Format: "json", OutputPath: path})
	require.NoError(t, err)

	logger.Info("dropped below level")
	DataQuality(logger, "location", "unzoned", zap.String("location", "QA"))
	require.NoError(t, logger.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(raw)
	assert.NotContains(t, out, "dropped below level")
	assert.Contains(t, out, `"msg":"Data quality issue"`)
	assert.Contains(t, out, `"service":"invcost"`)
	assert.Contains(t, out, `"type":"data_quality"`)
	assert.Contains(t, out, `"location":"QA"`)
}

func TestNewLogger_Development(t *testing.T) {
	logger, err := NewLogger(Config{Level: "bogus", Format: "console", Development: true, OutputPath: "stderr"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
