// Package backend opens the SecureStore and Clipboard adapters selected by
// the configuration. It is shared by the server and the CLI.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/passkeep/internal/adapter/driven/bolt"
	"github.com/ericfisherdev/passkeep/internal/adapter/driven/clipboard"
	"github.com/ericfisherdev/passkeep/internal/adapter/driven/keyring"
	"github.com/ericfisherdev/passkeep/internal/adapter/driven/sealing"
	"github.com/ericfisherdev/passkeep/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/passkeep/internal/config"
	"github.com/ericfisherdev/passkeep/internal/domain/port/driven"
)

// Backend is an opened secure store together with whatever must be closed
// when the process is done with it.
type Backend struct {
	Store driven.SecureStore
	Name  string

	close func() error
}

// Close releases the underlying database or file lock.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open opens the backend named by cfg.Backend. The sqlite and bolt backends
// seal values with cfg.SecretKey, or with a key derived from cfg.Passphrase
// and a salt kept in the store itself.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return openSQLite(ctx, cfg, logger)
	case config.BackendBolt:
		return openBolt(cfg, logger)
	case config.BackendKeyring:
		store, err := keyring.Open(keyring.Config{
			ServiceName: cfg.KeyringService,
			Backends:    cfg.KeyringBackends,
			FileDir:     cfg.KeyringDir,
			Passphrase:  cfg.Passphrase,
		})
		if err != nil {
			return nil, err
		}
		return &Backend{Store: store, Name: config.BackendKeyring}, nil
	case config.BackendMemory:
		logger.Warn("using in-memory backend, credentials will not survive a restart")
		return &Backend{Store: keyring.NewMemoryStore(), Name: config.BackendMemory}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func openSQLite(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	db, err := sqlite.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	version, err := sqlite.RunMigrations(db.Writer)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Debug("vault schema ready", "path", cfg.DBPath, "version", version)

	key, err := sealing.ResolveKey(cfg.SecretKey, cfg.Passphrase, func() ([]byte, error) {
		return sqlite.LoadOrCreateSalt(ctx, db)
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	sealer, err := newSealer(key, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("database opened", "path", db.Path())
	return &Backend{
		Store: sqlite.NewSecureItemRepo(db, sealer),
		Name:  config.BackendSQLite,
		close: db.Close,
	}, nil
}

func openBolt(cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	db, err := bolt.Open(cfg.BoltPath)
	if err != nil {
		return nil, err
	}

	key, err := sealing.ResolveKey(cfg.SecretKey, cfg.Passphrase, db.LoadOrCreateSalt)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	sealer, err := newSealer(key, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("bolt database opened", "path", cfg.BoltPath)
	return &Backend{
		Store: bolt.NewStore(db, sealer),
		Name:  config.BackendBolt,
		close: db.Close,
	}, nil
}

func newSealer(key []byte, logger *slog.Logger) (*sealing.Sealer, error) {
	sealer, err := sealing.NewSealer(key)
	if err != nil {
		return nil, err
	}
	if !sealer.Enabled() {
		logger.Warn("no encryption key configured, set PASSKEEP_SECRET_KEY or PASSKEEP_PASSPHRASE; store operations will fail")
	}
	return sealer, nil
}

// Clipboard returns the clipboard adapter for mode. A host without a
// clipboard utility falls back to Discard with a warning.
func Clipboard(mode string, logger *slog.Logger) driven.Clipboard {
	if mode == config.ClipboardNone {
		return clipboard.Discard{}
	}

	sys, err := clipboard.NewSystem()
	if errors.Is(err, clipboard.ErrUnsupported) {
		logger.Warn("system clipboard unavailable, copy will only return the payload")
		return clipboard.Discard{}
	}
	return sys
}
