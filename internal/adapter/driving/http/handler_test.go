package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/ericfisherdev/passkeep/internal/adapter/driving/http"
	"github.com/ericfisherdev/passkeep/internal/application"
)

// --- Mock implementations ---

// mockStore implements driven.SecureStore with an in-memory map.
type mockStore struct {
	mu    sync.Mutex
	items map[string]string
	err   error
}

func newMockStore() *mockStore {
	return &mockStore{items: map[string]string{}}
}

func (m *mockStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *mockStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.items[key] = value
	return nil
}

func (m *mockStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.items, key)
	return nil
}

type mockClipboard struct {
	last string
	err  error
}

func (m *mockClipboard) WriteText(_ context.Context, text string) error {
	if m.err != nil {
		return m.err
	}
	m.last = text
	return nil
}

// --- Test helpers ---

func setupMux(store *mockStore, cb *mockClipboard) http.Handler {
	svc := application.NewCredentialService(store, cb, slog.Default())
	healthSvc := application.NewHealthService(store, slog.Default())
	h := httphandler.NewHandler(svc, healthSvc, 16, slog.Default())
	return httphandler.NewServeMux(h, slog.Default())
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	err := json.NewDecoder(rec.Body).Decode(v)
	require.NoError(t, err)
}

func do(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestListWebsites_Empty(t *testing.T) {
	mux := setupMux(newMockStore(), &mockClipboard{})

	rec := do(mux, http.MethodGet, "/api/v1/websites", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp httphandler.WebsitesResponse
	decodeJSON(t, rec, &resp)
	assert.NotNil(t, resp.Websites)
	assert.Empty(t, resp.Websites)
}

func TestSaveThenList(t *testing.T) {
	store := newMockStore()
	mux := setupMux(store, &mockClipboard{})

	rec := do(mux, http.MethodPost, "/api/v1/credentials", `{"website":"example.com","username":"alice","password":"pw1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(mux, http.MethodPost, "/api/v1/credentials", `{"website":"other.org","username":"bob","password":"pw2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(mux, http.MethodGet, "/api/v1/websites", "")
	var resp httphandler.WebsitesResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, []string{"example.com", "other.org"}, resp.Websites)
	assert.JSONEq(t, `["example.com","other.org"]`, store.items["websites"])
}

func TestSaveCredentials_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "malformed json", body: `{"website":`, wantMsg: "invalid request body"},
		{name: "missing website", body: `{"username":"a","password":"b"}`, wantMsg: "website is required"},
		{name: "blank website", body: `{"website":"   "}`, wantMsg: "website is required"},
		{name: "reserved website", body: `{"website":"websites","username":"a"}`, wantMsg: "reserved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := setupMux(newMockStore(), &mockClipboard{})

			rec := do(mux, http.MethodPost, "/api/v1/credentials", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp map[string]string
			decodeJSON(t, rec, &resp)
			assert.Contains(t, resp["error"], tt.wantMsg)
		})
	}
}

func TestGetCredentials(t *testing.T) {
	store := newMockStore()
	mux := setupMux(store, &mockClipboard{})
	do(mux, http.MethodPost, "/api/v1/credentials", `{"website":"example.com","username":"alice","password":"pw1"}`)

	rec := do(mux, http.MethodGet, "/api/v1/credentials/example.com", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	var resp httphandler.CredentialsResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, httphandler.CredentialsResponse{Website: "example.com", Username: "alice", Password: "pw1"}, resp)
}

func TestGetCredentials_EscapedWebsite(t *testing.T) {
	mux := setupMux(newMockStore(), &mockClipboard{})
	do(mux, http.MethodPost, "/api/v1/credentials", `{"website":"intranet/app","username":"u","password":"p"}`)

	rec := do(mux, http.MethodGet, "/api/v1/credentials/intranet%2Fapp", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp httphandler.CredentialsResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "intranet/app", resp.Website)
}

func TestGetCredentials_NotFound(t *testing.T) {
	mux := setupMux(newMockStore(), &mockClipboard{})

	rec := do(mux, http.MethodGet, "/api/v1/credentials/missing.com", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCredentials_CorruptRecordIsNotFound(t *testing.T) {
	store := newMockStore()
	store.items["broken.com"] = "{not json"
	mux := setupMux(store, &mockClipboard{})

	rec := do(mux, http.MethodGet, "/api/v1/credentials/broken.com", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteCredentials(t *testing.T) {
	store := newMockStore()
	mux := setupMux(store, &mockClipboard{})
	do(mux, http.MethodPost, "/api/v1/credentials", `{"website":"a.com","username":"u","password":"p"}`)
	do(mux, http.MethodPost, "/api/v1/credentials", `{"website":"b.com","username":"u","password":"p"}`)

	rec := do(mux, http.MethodDelete, "/api/v1/credentials/a.com", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(mux, http.MethodGet, "/api/v1/websites", "")
	var resp httphandler.WebsitesResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, []string{"b.com"}, resp.Websites)
	assert.NotContains(t, store.items, "a.com")
}

func TestDeleteCredentials_UnknownIsNoContent(t *testing.T) {
	mux := setupMux(newMockStore(), &mockClipboard{})

	rec := do(mux, http.MethodDelete, "/api/v1/credentials/never.com", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCopyCredentials(t *testing.T) {
	cb := &mockClipboard{}
	mux := setupMux(newMockStore(), cb)
	do(mux, http.MethodPost, "/api/v1/credentials", `{"website":"example.com","username":"alice","password":"s3cr3t"}`)

	rec := do(mux, http.MethodPost, "/api/v1/credentials/example.com/copy", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp httphandler.CopyResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "Username: alice, Password: s3cr3t", resp.Payload)
	assert.Equal(t, "Username: alice, Password: s3cr3t", cb.last)
}

func TestCopyCredentials_NotFound(t *testing.T) {
	cb := &mockClipboard{}
	mux := setupMux(newMockStore(), cb)

	rec := do(mux, http.MethodPost, "/api/v1/credentials/missing.com/copy", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, cb.last)
}

func TestCopyCredentials_ClipboardError(t *testing.T) {
	cb := &mockClipboard{err: errors.New("no display")}
	mux := setupMux(newMockStore(), cb)
	do(mux, http.MethodPost, "/api/v1/credentials", `{"website":"example.com","username":"alice","password":"pw"}`)

	rec := do(mux, http.MethodPost, "/api/v1/credentials/example.com/copy", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStorageFailure_IsGeneric500(t *testing.T) {
	store := newMockStore()
	store.err = errors.New("disk on fire")
	mux := setupMux(store, &mockClipboard{})

	requests := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodGet, "/api/v1/websites", ""},
		{http.MethodPost, "/api/v1/credentials", `{"website":"a.com","username":"u","password":"p"}`},
		{http.MethodGet, "/api/v1/credentials/a.com", ""},
		{http.MethodDelete, "/api/v1/credentials/a.com", ""},
		{http.MethodPost, "/api/v1/credentials/a.com/copy", ""},
	}

	for _, r := range requests {
		t.Run(r.method+" "+r.target, func(t *testing.T) {
			rec := do(mux, r.method, r.target, r.body)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.NotContains(t, rec.Body.String(), "disk on fire")
		})
	}
}

func TestGeneratePassword(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantLen    int
	}{
		{name: "default length", query: "", wantStatus: http.StatusOK, wantLen: 16},
		{name: "explicit length", query: "?length=32", wantStatus: http.StatusOK, wantLen: 32},
		{name: "zero", query: "?length=0", wantStatus: http.StatusBadRequest},
		{name: "negative", query: "?length=-3", wantStatus: http.StatusBadRequest},
		{name: "not a number", query: "?length=abc", wantStatus: http.StatusBadRequest},
		{name: "too long", query: "?length=100000", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := setupMux(newMockStore(), &mockClipboard{})

			rec := do(mux, http.MethodGet, "/api/v1/password"+tt.query, "")

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp httphandler.PasswordResponse
			decodeJSON(t, rec, &resp)
			assert.Len(t, resp.Password, tt.wantLen)
			for _, c := range resp.Password {
				assert.Contains(t, application.PasswordAlphabet, string(c))
			}
		})
	}
}

func TestHealth(t *testing.T) {
	store := newMockStore()
	store.items["websites"] = `["a.com","gone.com"]`
	store.items["a.com"] = `{"username":"u","password":"p"}`
	mux := setupMux(store, &mockClipboard{})

	rec := do(mux, http.MethodGet, "/api/v1/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp httphandler.HealthResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Websites)
	assert.Equal(t, []string{"gone.com"}, resp.Dangling)
	assert.NotEmpty(t, resp.Time)
}

func TestHealth_StoreUnavailable(t *testing.T) {
	store := newMockStore()
	store.err = errors.New("locked")
	mux := setupMux(store, &mockClipboard{})

	rec := do(mux, http.MethodGet, "/api/v1/health", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp httphandler.HealthResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "unavailable", resp.Status)
}

func TestHealth_WithoutHealthService(t *testing.T) {
	svc := application.NewCredentialService(newMockStore(), nil, slog.Default())
	h := httphandler.NewHandler(svc, nil, 0, slog.Default())
	mux := httphandler.NewServeMux(h, slog.Default())

	rec := do(mux, http.MethodGet, "/api/v1/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	mux := setupMux(newMockStore(), &mockClipboard{})
	do(mux, http.MethodGet, "/api/v1/websites", "")

	rec := do(mux, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "passkeep_http_requests_total")
	assert.Contains(t, rec.Body.String(), "passkeep_credential_operations_total")
}

func TestUnknownRoute(t *testing.T) {
	mux := setupMux(newMockStore(), &mockClipboard{})

	rec := do(mux, http.MethodGet, "/api/v1/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	wrapped := httphandler.ApplyMiddleware(panicking, slog.Default())

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}
