package application

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/passkeep/internal/domain/model"
)

func TestHealthService_Consistent(t *testing.T) {
	store := newMemStore()
	svc := NewCredentialService(store, nil, slog.Default())
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, "a.com", "u", "p"))
	require.NoError(t, svc.Save(ctx, "b.com", "u", "p"))

	report, err := NewHealthService(store, slog.Default()).CheckConsistency(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
	assert.Equal(t, []string{"a.com", "b.com"}, report.Websites)
	assert.Empty(t, report.Dangling)
}

func TestHealthService_ReportsDanglingWithoutRepair(t *testing.T) {
	store := newMemStore()
	store.items[model.IndexKey] = `["a.com","gone.com"]`
	store.items["a.com"] = `{"username":"u","password":"p"}`

	report, err := NewHealthService(store, slog.Default()).CheckConsistency(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Consistent())
	assert.Equal(t, []string{"gone.com"}, report.Dangling)

	assert.Empty(t, store.writes, "consistency check must not write")
	assert.Equal(t, `["a.com","gone.com"]`, store.items[model.IndexKey])
}

func TestHealthService_EmptyStore(t *testing.T) {
	report, err := NewHealthService(newMemStore(), slog.Default()).CheckConsistency(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Consistent())
	assert.Empty(t, report.Websites)
}

func TestHealthService_StorageError(t *testing.T) {
	store := newMemStore()
	store.getErr = errDiskFull

	_, err := NewHealthService(store, slog.Default()).CheckConsistency(context.Background())
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
