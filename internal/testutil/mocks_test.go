package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentill/cashdesk/internal/domain/ledger"
	"github.com/opentill/cashdesk/internal/domain/user"
	"github.com/opentill/cashdesk/internal/logsink"
)

// The mocks must keep satisfying the ports the services consume.
var (
	_ ledger.Store = (*MockLedgerStore)(nil)
	_ user.Store   = (*MockUserStore)(nil)
	_ logsink.Sink = (*MockSink)(nil)
)

func TestMockLedgerStore_AppendAndScan(t *testing.T) {
	store := NewMockLedgerStore(NewTopupEntry("Alice", 100))
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, NewSpendEntry("Alice", 30)))

	entries, err := store.ScanAll(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	keys, err := store.ScanColumn(ctx, ledger.ColumnIdempotencyKey)
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	_, err = store.ScanColumn(ctx, "customer")
	assert.Error(t, err)
}

func TestMockUserStore_ScanAll(t *testing.T) {
	store := NewMockUserStore(NewTestUser("Carla", "carla@example.com", user.RoleCashier))

	users, err := store.ScanAll(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "carla@example.com", users[0].Email)
}

func TestMockUserStore_ScanAllOverride(t *testing.T) {
	store := NewMockUserStore()
	store.ScanAllFunc = func(ctx context.Context) ([]user.User, error) {
		return nil, errors.New("connection reset")
	}

	_, err := store.ScanAll(context.Background())
	assert.Error(t, err)
}

func TestMockSink_FailureInjection(t *testing.T) {
	sink := NewMockSink()
	ctx := context.Background()

	require.NoError(t, sink.AppendEntry(ctx, NewTopupEntry("Alice", 100)))

	sink.EntryErr = errors.New("stream down")
	sink.EntryErrAfter = 1
	assert.Error(t, sink.AppendEntry(ctx, NewTopupEntry("Alice", 50)))
	assert.Len(t, sink.MirroredEntries(), 1)
}
