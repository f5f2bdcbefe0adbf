package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/elalgpt/internal/client/transport"
	"github.com/yourusername/elalgpt/internal/conversation"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"ELALGPT_ENDPOINT", "ELALGPT_WS_ENDPOINT", "ELALGPT_TRANSPORT", "ELALGPT_LOG_FILE"} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, transport.DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, TransportHTTP, cfg.Transport)
	assert.Equal(t, conversation.DefaultGreeting, cfg.Greeting)
	assert.True(t, cfg.IsDark())

	delay, err := cfg.ReplyDelayDuration()
	require.NoError(t, err)
	assert.Equal(t, 800*time.Millisecond, delay)

	timeout, err := cfg.RequestTimeoutDuration()
	require.NoError(t, err)
	assert.Zero(t, timeout)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
endpoint: http://localhost:9000/get_response
transport: ws
theme: light
reply_delay: 0s
request_timeout: 30s
haptics: true
greeting: ""
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/get_response", cfg.Endpoint)
	assert.Equal(t, TransportWebSocket, cfg.Transport)
	assert.False(t, cfg.IsDark())
	assert.True(t, cfg.Haptics)
	assert.Empty(t, cfg.Greeting)
	// fields absent from the file keep their defaults
	assert.Equal(t, "ws://localhost:8080/ws", cfg.WSEndpoint)

	timeout, err := cfg.RequestTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)

	tests := map[string]string{
		"bad transport": "transport: carrier-pigeon\n",
		"bad theme":     "theme: sepia\n",
		"bad delay":     "reply_delay: soon\n",
		"negative":      "request_timeout: -1s\n",
		"bad yaml":      "endpoint: [\n",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Run("env wins over file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ELALGPT_ENDPOINT", "http://env/get_response")
		t.Setenv("ELALGPT_TRANSPORT", "ECHO")

		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("endpoint: http://file/get_response\n"), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "http://env/get_response", cfg.Endpoint)
		assert.Equal(t, TransportEcho, cfg.Transport)
	})

	t.Run("log file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ELALGPT_LOG_FILE", "/tmp/elalgpt.log")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "/tmp/elalgpt.log", cfg.LogFile)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Theme = ThemeLight
	cfg.Haptics = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
