package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/ericfisherdev/passkeep/internal/adapter/driven/sealing"
)

const kdfSaltSetting = "kdf_salt"

// LoadOrCreateSalt returns the passphrase salt stored in the settings table,
// generating and persisting one on first use. The salt is not secret.
func LoadOrCreateSalt(ctx context.Context, db *DB) ([]byte, error) {
	salt, err := loadSalt(ctx, db.Writer)
	if err != nil || salt != nil {
		return salt, err
	}

	fresh, err := sealing.NewSalt()
	if err != nil {
		return nil, err
	}

	// INSERT OR IGNORE keeps whichever salt was written first.
	const query = `INSERT OR IGNORE INTO settings (name, value) VALUES (?, ?)`
	if _, err := db.Writer.ExecContext(ctx, query, kdfSaltSetting, base64.StdEncoding.EncodeToString(fresh)); err != nil {
		return nil, fmt.Errorf("store key salt: %w", err)
	}

	salt, err = loadSalt(ctx, db.Writer)
	if err != nil {
		return nil, err
	}
	if salt == nil {
		return nil, errors.New("key salt missing after insert")
	}
	return salt, nil
}

func loadSalt(ctx context.Context, q querier) ([]byte, error) {
	const query = `SELECT value FROM settings WHERE name = ?`
	var encoded string
	err := q.QueryRowContext(ctx, query, kdfSaltSetting).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load key salt: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode key salt: %w", err)
	}
	return salt, nil
}
