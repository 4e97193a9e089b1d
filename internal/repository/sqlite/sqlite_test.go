package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentill/cashdesk/internal/domain/ledger"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cashdesk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testEntry(customer string, amount int64, key string, ts time.Time) ledger.Entry {
	entryType := ledger.TypeTopup
	if amount < 0 {
		entryType = ledger.TypeSpend
	}
	return ledger.Entry{
		Timestamp:      ts,
		TransactionID:  uuid.New(),
		Customer:       customer,
		Type:           entryType,
		Amount:         decimal.NewFromInt(amount),
		ActorEmail:     "cashier@example.com",
		Note:           "walk-in",
		IdempotencyKey: key,
	}
}

func TestAppendAndScanAll(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 123456000, time.UTC)
	first := testEntry("Alice", 100, "key-1", base)
	second := testEntry("Alice", -30, "key-2", base.Add(time.Minute))

	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))

	entries, err := store.ScanAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Oldest first, fields round-trip intact.
	assert.Equal(t, first.TransactionID, entries[0].TransactionID)
	assert.True(t, entries[0].Timestamp.Equal(first.Timestamp))
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, ledger.TypeTopup, entries[0].Type)
	assert.Equal(t, "walk-in", entries[0].Note)

	assert.Equal(t, second.TransactionID, entries[1].TransactionID)
	assert.True(t, entries[1].Amount.Equal(decimal.NewFromInt(-30)))
	assert.Equal(t, ledger.TypeSpend, entries[1].Type)
}

func TestScanAll_Empty(t *testing.T) {
	store := openTestStore(t)

	entries, err := store.ScanAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestScanColumn_IdempotencyKeys(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.Append(ctx, testEntry("Alice", 100, "key-1", now)))
	require.NoError(t, store.Append(ctx, testEntry("Bob", 50, "key-2", now)))

	keys, err := store.ScanColumn(ctx, ledger.ColumnIdempotencyKey)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"key-1", "key-2"}, keys)
}

func TestScanColumn_UnsupportedColumn(t *testing.T) {
	store := openTestStore(t)

	_, err := store.ScanColumn(context.Background(), "customer")
	assert.Error(t, err)
}

func TestUsersView(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.db.ExecContext(ctx,
		`INSERT INTO users (email, name, role, active) VALUES (?, ?, ?, ?)`,
		"carla@example.com", "Carla", "cashier", 1)
	require.NoError(t, err)

	users, err := store.Users().ScanAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Carla", users[0].Name)
	assert.Equal(t, "carla@example.com", users[0].Email)
	assert.True(t, users[0].Active)
}
