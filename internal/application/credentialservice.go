package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/passkeep/internal/domain/model"
	"github.com/ericfisherdev/passkeep/internal/domain/port/driven"
	"github.com/ericfisherdev/passkeep/internal/metrics"
)

// CredentialService maintains the website index and the per-website
// credential records on top of a driven.SecureStore. It depends only on port
// interfaces.
//
// Save and Delete each perform a record write followed by an index write.
// When the store implements driven.Transactor both writes share a single
// transaction; otherwise they run back to back and an interruption between
// them leaves the record and the index out of step.
type CredentialService struct {
	store     driven.SecureStore
	clipboard driven.Clipboard
	logger    *slog.Logger

	// mu serializes the read-modify-write of the index.
	mu sync.Mutex
}

// NewCredentialService creates a CredentialService. clipboard may be nil, in
// which case Copy only returns the payload.
func NewCredentialService(store driven.SecureStore, clipboard driven.Clipboard, logger *slog.Logger) *CredentialService {
	return &CredentialService{
		store:     store,
		clipboard: clipboard,
		logger:    logger,
	}
}

// Load returns the website index. A missing or unreadable index yields an
// empty, non-nil slice.
func (s *CredentialService) Load(ctx context.Context) ([]string, error) {
	idx, err := readIndex(ctx, s.store, s.logger)
	metrics.ObserveCredentialOp("load", err)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// Save stores the credentials for website, replacing any previous record,
// and adds website to the index.
func (s *CredentialService) Save(ctx context.Context, website, username, password string) error {
	err := s.save(ctx, website, username, password)
	metrics.ObserveCredentialOp("save", err)
	return err
}

func (s *CredentialService) save(ctx context.Context, website, username, password string) error {
	if website == model.IndexKey {
		return ErrReservedWebsite
	}

	blob, err := json.Marshal(model.CredentialRecord{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("encode credentials for %q: %w", website, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(ctx, func(tx driven.SecureStore) error {
		if err := tx.Set(ctx, website, string(blob)); err != nil {
			return &StoreError{Op: "set", Key: website, Err: err}
		}

		idx, err := readIndex(ctx, tx, s.logger)
		if err != nil {
			return err
		}
		return writeIndex(ctx, tx, idx.With(website))
	})
}

// Retrieve returns the credentials stored for website. ok is false when no
// record exists or the stored record cannot be decoded.
func (s *CredentialService) Retrieve(ctx context.Context, website string) (model.CredentialRecord, bool, error) {
	rec, ok, err := s.retrieve(ctx, website)
	metrics.ObserveCredentialOp("retrieve", err)
	return rec, ok, err
}

func (s *CredentialService) retrieve(ctx context.Context, website string) (model.CredentialRecord, bool, error) {
	if website == model.IndexKey {
		return model.CredentialRecord{}, false, ErrReservedWebsite
	}

	raw, found, err := s.store.Get(ctx, website)
	if err != nil {
		return model.CredentialRecord{}, false, &StoreError{Op: "get", Key: website, Err: err}
	}
	if !found || raw == "" {
		return model.CredentialRecord{}, false, nil
	}

	var rec model.CredentialRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.logger.Warn("unreadable credential record, treating as absent", "website", website, "error", err)
		return model.CredentialRecord{}, false, nil
	}
	return rec, true, nil
}

// Delete removes the credentials for website and drops it from the index.
// Deleting a website that was never saved is a no-op.
func (s *CredentialService) Delete(ctx context.Context, website string) error {
	err := s.delete(ctx, website)
	metrics.ObserveCredentialOp("delete", err)
	return err
}

func (s *CredentialService) delete(ctx context.Context, website string) error {
	if website == model.IndexKey {
		return ErrReservedWebsite
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(ctx, func(tx driven.SecureStore) error {
		if err := tx.Delete(ctx, website); err != nil {
			return &StoreError{Op: "delete", Key: website, Err: err}
		}

		idx, err := readIndex(ctx, tx, s.logger)
		if err != nil {
			return err
		}
		return writeIndex(ctx, tx, idx.Without(website))
	})
}

// Copy places the credentials for website on the clipboard and returns the
// payload written. ok is false, and nothing is copied, when no record exists.
func (s *CredentialService) Copy(ctx context.Context, website string) (string, bool, error) {
	rec, ok, err := s.Retrieve(ctx, website)
	if err != nil || !ok {
		return "", false, err
	}

	payload := rec.ClipboardPayload()
	if s.clipboard != nil {
		if err := s.clipboard.WriteText(ctx, payload); err != nil {
			return "", false, fmt.Errorf("copy credentials for %q: %w", website, err)
		}
	}
	return payload, true, nil
}

// update runs fn inside a store transaction when the store supports one.
func (s *CredentialService) update(ctx context.Context, fn func(tx driven.SecureStore) error) error {
	tr, ok := s.store.(driven.Transactor)
	if !ok {
		return fn(s.store)
	}

	err := tr.Update(ctx, fn)
	if err == nil {
		return nil
	}

	var storeErr *StoreError
	if errors.As(err, &storeErr) || errors.Is(err, ErrReservedWebsite) {
		return err
	}
	return &StoreError{Op: "commit", Key: model.IndexKey, Err: err}
}

// readIndex loads and decodes the website index from store.
func readIndex(ctx context.Context, store driven.SecureStore, logger *slog.Logger) (model.WebsiteIndex, error) {
	raw, found, err := store.Get(ctx, model.IndexKey)
	if err != nil {
		return nil, &StoreError{Op: "get", Key: model.IndexKey, Err: err}
	}
	if !found || raw == "" {
		return model.WebsiteIndex{}, nil
	}

	var entries []string
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		logger.Warn("unreadable website index, treating as empty", "error", err)
		return model.WebsiteIndex{}, nil
	}
	return model.NewWebsiteIndex(entries), nil
}

// writeIndex encodes idx and stores it under the reserved key.
func writeIndex(ctx context.Context, store driven.SecureStore, idx model.WebsiteIndex) error {
	if idx == nil {
		idx = model.WebsiteIndex{}
	}
	blob, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("encode website index: %w", err)
	}
	if err := store.Set(ctx, model.IndexKey, string(blob)); err != nil {
		return &StoreError{Op: "set", Key: model.IndexKey, Err: err}
	}
	return nil
}
