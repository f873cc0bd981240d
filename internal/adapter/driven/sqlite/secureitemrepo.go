package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/passkeep/internal/adapter/driven/sealing"
	"github.com/ericfisherdev/passkeep/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.SecureStore = (*SecureItemRepo)(nil)
	_ driven.Transactor  = (*SecureItemRepo)(nil)
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SecureItemRepo is the SQLite implementation of the SecureStore port.
// Values are sealed before write and opened after read.
type SecureItemRepo struct {
	db     *DB
	sealer *sealing.Sealer
}

// NewSecureItemRepo creates a new SecureItemRepo. A sealer without a key
// makes every operation return driven.ErrEncryptionKeyNotSet.
func NewSecureItemRepo(db *DB, sealer *sealing.Sealer) *SecureItemRepo {
	return &SecureItemRepo{db: db, sealer: sealer}
}

// Get returns the plaintext value stored under key.
func (r *SecureItemRepo) Get(ctx context.Context, key string) (string, bool, error) {
	return getItem(ctx, r.db.Reader, r.sealer, key)
}

// Set stores or replaces the value under key.
func (r *SecureItemRepo) Set(ctx context.Context, key, value string) error {
	return setItem(ctx, r.db.Writer, r.sealer, key, value)
}

// Delete removes key. No-op if the key does not exist.
func (r *SecureItemRepo) Delete(ctx context.Context, key string) error {
	return deleteItem(ctx, r.db.Writer, r.sealer, key)
}

// Update runs fn in a single write transaction. The transaction is rolled
// back if fn returns an error.
func (r *SecureItemRepo) Update(ctx context.Context, fn func(tx driven.SecureStore) error) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&txItemStore{tx: tx, sealer: r.sealer}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txItemStore is the SecureStore view handed to Update callbacks.
type txItemStore struct {
	tx     *sql.Tx
	sealer *sealing.Sealer
}

func (s *txItemStore) Get(ctx context.Context, key string) (string, bool, error) {
	return getItem(ctx, s.tx, s.sealer, key)
}

func (s *txItemStore) Set(ctx context.Context, key, value string) error {
	return setItem(ctx, s.tx, s.sealer, key, value)
}

func (s *txItemStore) Delete(ctx context.Context, key string) error {
	return deleteItem(ctx, s.tx, s.sealer, key)
}

func getItem(ctx context.Context, q querier, sealer *sealing.Sealer, key string) (string, bool, error) {
	if !sealer.Enabled() {
		return "", false, driven.ErrEncryptionKeyNotSet
	}

	const query = `SELECT value FROM secure_items WHERE key = ?`
	var sealed string
	err := q.QueryRowContext(ctx, query, key).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get item %q: %w", key, err)
	}

	plaintext, err := sealer.Open(sealed)
	if err != nil {
		return "", false, fmt.Errorf("decrypt item %q: %w", key, err)
	}
	return plaintext, true, nil
}

func setItem(ctx context.Context, q querier, sealer *sealing.Sealer, key, value string) error {
	sealed, err := sealer.Seal(value)
	if err != nil {
		return err
	}

	const query = `INSERT OR REPLACE INTO secure_items (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`
	if _, err := q.ExecContext(ctx, query, key, sealed); err != nil {
		return fmt.Errorf("set item %q: %w", key, err)
	}
	return nil
}

func deleteItem(ctx context.Context, q querier, sealer *sealing.Sealer, key string) error {
	if !sealer.Enabled() {
		return driven.ErrEncryptionKeyNotSet
	}

	const query = `DELETE FROM secure_items WHERE key = ?`
	if _, err := q.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete item %q: %w", key, err)
	}
	return nil
}
