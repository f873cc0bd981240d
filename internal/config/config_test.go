package config

import (
	"bytes"
	"encoding/base64"
	"log/slog"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/passkeep/internal/application"
)

// allConfigKeys lists every PASSKEEP_ env var that Load() reads.
var allConfigKeys = []string{
	"PASSKEEP_LISTEN_ADDR",
	"PASSKEEP_BACKEND",
	"PASSKEEP_DB_PATH",
	"PASSKEEP_BOLT_PATH",
	"PASSKEEP_SECRET_KEY",
	"PASSKEEP_PASSPHRASE",
	"PASSKEEP_KEYRING_SERVICE",
	"PASSKEEP_KEYRING_DIR",
	"PASSKEEP_KEYRING_BACKENDS",
	"PASSKEEP_CLIPBOARD",
	"PASSKEEP_LOG_LEVEL",
	"PASSKEEP_PASSWORD_LENGTH",
}

// isolateConfigEnv saves and unsets all PASSKEEP_ env vars so tests don't
// inherit values from the host environment (e.g. a running dev server).
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "passkeep.db", cfg.DBPath)
	assert.Equal(t, "passkeep.bolt", cfg.BoltPath)
	assert.Equal(t, "passkeep", cfg.KeyringService)
	assert.NotEmpty(t, cfg.KeyringDir)
	assert.Equal(t, []string{}, cfg.KeyringBackends)
	assert.Equal(t, ClipboardSystem, cfg.Clipboard)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 12, cfg.PasswordLength)
	assert.Nil(t, cfg.SecretKey)
	assert.False(t, cfg.HasEncryptionKey())
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("PASSKEEP_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("PASSKEEP_BACKEND", "Bolt")
	t.Setenv("PASSKEEP_DB_PATH", "/tmp/test.db")
	t.Setenv("PASSKEEP_BOLT_PATH", "/tmp/test.bolt")
	t.Setenv("PASSKEEP_KEYRING_BACKENDS", "keychain, file")
	t.Setenv("PASSKEEP_CLIPBOARD", "none")
	t.Setenv("PASSKEEP_LOG_LEVEL", "debug")
	t.Setenv("PASSKEEP_PASSWORD_LENGTH", "20")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, BackendBolt, cfg.Backend)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, "/tmp/test.bolt", cfg.BoltPath)
	assert.Equal(t, []string{"keychain", "file"}, cfg.KeyringBackends)
	assert.Equal(t, ClipboardNone, cfg.Clipboard)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 20, cfg.PasswordLength)
}

func TestLoad_SecretKey_Valid(t *testing.T) {
	isolateConfigEnv(t)
	key := bytes.Repeat([]byte{7}, 32)
	t.Setenv("PASSKEEP_SECRET_KEY", base64.StdEncoding.EncodeToString(key))

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, key, cfg.SecretKey)
	assert.True(t, cfg.HasEncryptionKey())
}

func TestLoad_Passphrase(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("PASSKEEP_PASSPHRASE", "correct horse battery staple")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Nil(t, cfg.SecretKey)
	assert.True(t, cfg.HasEncryptionKey())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "unknown backend", key: "PASSKEEP_BACKEND", value: "redis", wantErr: "PASSKEEP_BACKEND"},
		{name: "unknown clipboard", key: "PASSKEEP_CLIPBOARD", value: "x11", wantErr: "PASSKEEP_CLIPBOARD"},
		{name: "secret key not base64", key: "PASSKEEP_SECRET_KEY", value: "!!!", wantErr: "PASSKEEP_SECRET_KEY"},
		{name: "secret key too short", key: "PASSKEEP_SECRET_KEY", value: base64.StdEncoding.EncodeToString([]byte("short")), wantErr: "32 bytes"},
		{name: "bad log level", key: "PASSKEEP_LOG_LEVEL", value: "loud", wantErr: "PASSKEEP_LOG_LEVEL"},
		{name: "length not a number", key: "PASSKEEP_PASSWORD_LENGTH", value: "twelve", wantErr: "PASSKEEP_PASSWORD_LENGTH"},
		{name: "length zero", key: "PASSKEEP_PASSWORD_LENGTH", value: "0", wantErr: "PASSKEEP_PASSWORD_LENGTH"},
		{name: "length too large", key: "PASSKEEP_PASSWORD_LENGTH", value: "5000", wantErr: "PASSKEEP_PASSWORD_LENGTH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_PasswordLengthBounds(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("PASSKEEP_PASSWORD_LENGTH", strconv.Itoa(application.MaxPasswordLength))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, application.MaxPasswordLength, cfg.PasswordLength)

	t.Setenv("PASSKEEP_PASSWORD_LENGTH", strconv.Itoa(application.MaxPasswordLength+1))
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), strconv.Itoa(application.MaxPasswordLength))
}
