package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chosenoffset/jsregex/pkg/jsregex"
	"github.com/chosenoffset/jsregex/pkg/jsregex/config"
	"github.com/chosenoffset/jsregex/pkg/jsregex/converter"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "jsregex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_EmptyFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, []string{"localhost", "127.0.0.1"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 100, cfg.Server.MaxClients)
	assert.Equal(t, 50, cfg.Server.EventBufferSize)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "ES2009", cfg.Conversion.Target)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, converter.DefaultOptions(), cfg.Options())
	assert.Equal(t, jsregex.DefaultLimits(), cfg.EngineLimits())
}

func TestLoadConfig_ValidFile_Unmarshals(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `server:
  host: 0.0.0.0
  port: 8181
  write_timeout: 2m
  max_clients: 5
conversion:
  target: es2018
  emulate_possessive: true
  extra_flags: gd
limits:
  max_nodes: 100
  max_depth: 0
  max_batch_size: 8
logging:
  level: debug
  format: json
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, 5, cfg.Server.MaxClients)
	assert.Equal(t, converter.Options{Target: converter.ES2018, EmulatePossessive: true, ExtraFlags: "gd"}, cfg.Options())
	assert.Equal(t, &jsregex.Limits{MaxNodes: 100, MaxDepth: 0, MaxBatchSize: 8}, cfg.EngineLimits())
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("JSREGEX_SERVER_PORT", "7070")
	t.Setenv("JSREGEX_CONVERSION_TARGET", "ES2015")

	cfg, err := config.LoadConfig(writeConfig(t, "server:\n  port: 8181\n"))
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, converter.ES2015, cfg.Options().Target)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		err     error
	}{
		{name: "port zero", content: "server:\n  port: 0\n", err: config.ErrInvalidPort},
		{name: "port too large", content: "server:\n  port: 70000\n", err: config.ErrInvalidPort},
		{name: "no clients", content: "server:\n  max_clients: 0\n", err: config.ErrInvalidMaxClients},
		{name: "no buffer", content: "server:\n  event_buffer_size: -1\n", err: config.ErrInvalidBuffer},
		{name: "no body", content: "server:\n  max_body_bytes: 0\n", err: config.ErrInvalidBodySize},
		{name: "target", content: "conversion:\n  target: ES3\n", err: converter.ErrUnknownTarget},
		{name: "flags", content: "conversion:\n  extra_flags: gi\n", err: config.ErrInvalidFlags},
		{name: "negative limit", content: "limits:\n  max_depth: -1\n", err: config.ErrInvalidLimit},
		{name: "log level", content: "logging:\n  level: loud\n", err: config.ErrInvalidLogLevel},
		{name: "log format", content: "logging:\n  format: xml\n", err: config.ErrInvalidLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "server: [unterminated\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	logger, err := config.NewLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &out)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "kind", "approximated")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), `"msg":"shown"`)
	assert.Contains(t, out.String(), `"kind":"approximated"`)

	_, err = config.NewLogger(config.LoggingConfig{Level: "info", Format: "xml"}, &out)
	require.ErrorIs(t, err, config.ErrInvalidLogFormat)
}
