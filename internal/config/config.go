// Package config loads application configuration from environment variables.
package config

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ericfisherdev/passkeep/internal/application"
)

// Backend names accepted by PASSKEEP_BACKEND.
const (
	BackendSQLite  = "sqlite"
	BackendBolt    = "bolt"
	BackendKeyring = "keyring"
	BackendMemory  = "memory"
)

// Clipboard modes accepted by PASSKEEP_CLIPBOARD.
const (
	ClipboardSystem = "system"
	ClipboardNone   = "none"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	Backend    string
	DBPath     string
	BoltPath   string

	// SecretKey is the 32-byte AES-256 key decoded from PASSKEEP_SECRET_KEY,
	// or nil when unset.
	SecretKey  []byte
	Passphrase string

	KeyringService  string
	KeyringDir      string
	KeyringBackends []string

	Clipboard      string
	LogLevel       slog.Level
	PasswordLength int
}

// HasEncryptionKey reports whether a sealing key can be obtained, either
// directly or by derivation from the passphrase.
func (c *Config) HasEncryptionKey() bool {
	return c.SecretKey != nil || c.Passphrase != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// All variables are optional. Defaults: PASSKEEP_LISTEN_ADDR (127.0.0.1:8080),
// PASSKEEP_BACKEND (sqlite), PASSKEEP_DB_PATH (passkeep.db),
// PASSKEEP_BOLT_PATH (passkeep.bolt), PASSKEEP_KEYRING_SERVICE (passkeep),
// PASSKEEP_KEYRING_DIR (~/.passkeep/keyring), PASSKEEP_CLIPBOARD (system),
// PASSKEEP_LOG_LEVEL (info), PASSKEEP_PASSWORD_LENGTH (12).
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:      envOr("PASSKEEP_LISTEN_ADDR", "127.0.0.1:8080"),
		Backend:         strings.ToLower(envOr("PASSKEEP_BACKEND", BackendSQLite)),
		DBPath:          envOr("PASSKEEP_DB_PATH", "passkeep.db"),
		BoltPath:        envOr("PASSKEEP_BOLT_PATH", "passkeep.bolt"),
		Passphrase:      os.Getenv("PASSKEEP_PASSPHRASE"),
		KeyringService:  envOr("PASSKEEP_KEYRING_SERVICE", "passkeep"),
		KeyringDir:      envOr("PASSKEEP_KEYRING_DIR", defaultKeyringDir()),
		KeyringBackends: splitList(os.Getenv("PASSKEEP_KEYRING_BACKENDS")),
		Clipboard:       strings.ToLower(envOr("PASSKEEP_CLIPBOARD", ClipboardSystem)),
		LogLevel:        slog.LevelInfo,
		PasswordLength:  application.DefaultPasswordLength,
	}

	switch cfg.Backend {
	case BackendSQLite, BackendBolt, BackendKeyring, BackendMemory:
	default:
		return nil, fmt.Errorf("PASSKEEP_BACKEND must be one of sqlite, bolt, keyring, memory; got %q", cfg.Backend)
	}

	switch cfg.Clipboard {
	case ClipboardSystem, ClipboardNone:
	default:
		return nil, fmt.Errorf("PASSKEEP_CLIPBOARD must be system or none; got %q", cfg.Clipboard)
	}

	if v, ok := os.LookupEnv("PASSKEEP_SECRET_KEY"); ok && v != "" {
		key, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("PASSKEEP_SECRET_KEY is not valid base64: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("PASSKEEP_SECRET_KEY must decode to 32 bytes, got %d", len(key))
		}
		cfg.SecretKey = key
	}

	if v, ok := os.LookupEnv("PASSKEEP_LOG_LEVEL"); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("PASSKEEP_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	if v, ok := os.LookupEnv("PASSKEEP_PASSWORD_LENGTH"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > application.MaxPasswordLength {
			return nil, fmt.Errorf("PASSKEEP_PASSWORD_LENGTH must be an integer between 1 and %d; got %q", application.MaxPasswordLength, v)
		}
		cfg.PasswordLength = n
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultKeyringDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".passkeep", "keyring")
	}
	return filepath.Join(home, ".passkeep", "keyring")
}
