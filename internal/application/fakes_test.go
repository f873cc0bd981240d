package application

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/ericfisherdev/passkeep/internal/domain/port/driven"
)

var errDiskFull = errors.New("disk full")

// memStore is a map-backed driven.SecureStore with per-key failure injection.
type memStore struct {
	mu    sync.Mutex
	items map[string]string

	getErr    error
	failSetOn string // Set returns errDiskFull for this key
	deleteErr error

	writes []string // "set:<key>" / "delete:<key>" in call order
}

func newMemStore() *memStore {
	return &memStore{items: map[string]string{}}
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSetOn == key {
		return errDiskFull
	}
	m.writes = append(m.writes, "set:"+key)
	m.items[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.writes = append(m.writes, "delete:"+key)
	delete(m.items, key)
	return nil
}

func (m *memStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}

// txMemStore adds all-or-nothing Update semantics on top of memStore.
type txMemStore struct {
	*memStore
	commitErr error
}

var _ driven.Transactor = (*txMemStore)(nil)

func newTxMemStore() *txMemStore {
	return &txMemStore{memStore: newMemStore()}
}

func (t *txMemStore) Update(ctx context.Context, fn func(tx driven.SecureStore) error) error {
	t.mu.Lock()
	staged := &memStore{
		items:     maps.Clone(t.items),
		getErr:    t.getErr,
		failSetOn: t.failSetOn,
		deleteErr: t.deleteErr,
	}
	t.mu.Unlock()

	if err := fn(staged); err != nil {
		return err
	}
	if t.commitErr != nil {
		return t.commitErr
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = staged.items
	t.writes = append(t.writes, staged.writes...)
	return nil
}

// recordingClipboard captures what was copied.
type recordingClipboard struct {
	text string
	err  error
}

func (c *recordingClipboard) WriteText(_ context.Context, text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}
