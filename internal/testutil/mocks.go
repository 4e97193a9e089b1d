package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/opentill/cashdesk/internal/domain/ledger"
	"github.com/opentill/cashdesk/internal/domain/user"
)

// --- Ledger Store Mock ---

// MockLedgerStore is an in-memory implementation of ledger.Store. Override
// the *Func fields to inject failures or custom behavior per call.
type MockLedgerStore struct {
	mu      sync.Mutex
	entries []ledger.Entry

	AppendFunc     func(ctx context.Context, e ledger.Entry) error
	ScanAllFunc    func(ctx context.Context) ([]ledger.Entry, error)
	ScanColumnFunc func(ctx context.Context, column string) ([]string, error)
}

func NewMockLedgerStore(entries ...ledger.Entry) *MockLedgerStore {
	return &MockLedgerStore{entries: entries}
}

func (m *MockLedgerStore) Append(ctx context.Context, e ledger.Entry) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *MockLedgerStore) ScanAll(ctx context.Context) ([]ledger.Entry, error) {
	if m.ScanAllFunc != nil {
		return m.ScanAllFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make([]ledger.Entry, len(m.entries))
	copy(snapshot, m.entries)
	return snapshot, nil
}

func (m *MockLedgerStore) ScanColumn(ctx context.Context, column string) ([]string, error) {
	if m.ScanColumnFunc != nil {
		return m.ScanColumnFunc(ctx, column)
	}
	if column != ledger.ColumnIdempotencyKey {
		return nil, fmt.Errorf("unsupported column %q", column)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		keys = append(keys, e.IdempotencyKey)
	}
	return keys, nil
}

// Entries returns a copy of the committed entries.
func (m *MockLedgerStore) Entries() []ledger.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make([]ledger.Entry, len(m.entries))
	copy(snapshot, m.entries)
	return snapshot
}

// --- User Store Mock ---

// MockUserStore is an in-memory implementation of user.Store.
type MockUserStore struct {
	mu    sync.Mutex
	users []user.User

	ScanAllFunc func(ctx context.Context) ([]user.User, error)
}

func NewMockUserStore(users ...user.User) *MockUserStore {
	return &MockUserStore{users: users}
}

func (m *MockUserStore) ScanAll(ctx context.Context) ([]user.User, error) {
	if m.ScanAllFunc != nil {
		return m.ScanAllFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make([]user.User, len(m.users))
	copy(snapshot, m.users)
	return snapshot, nil
}

// --- Log Sink Mock ---

// BatchMarker records one AppendBatchMarker call.
type BatchMarker struct {
	BatchKey  string
	Timestamp time.Time
	RowCount  int
}

// MockSink records mirror calls. Set EntryErr or MarkerErr to make the
// corresponding call fail.
type MockSink struct {
	mu      sync.Mutex
	entries []ledger.Entry
	markers []BatchMarker

	EntryErr  error
	MarkerErr error

	// EntryErrAfter fails AppendEntry only once this many entries have been
	// mirrored. Zero means EntryErr applies to every call.
	EntryErrAfter int
}

func NewMockSink() *MockSink {
	return &MockSink{}
}

func (m *MockSink) AppendEntry(ctx context.Context, e ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EntryErr != nil && len(m.entries) >= m.EntryErrAfter {
		return m.EntryErr
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *MockSink) AppendBatchMarker(ctx context.Context, batchKey string, ts time.Time, rowCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MarkerErr != nil {
		return m.MarkerErr
	}
	m.markers = append(m.markers, BatchMarker{BatchKey: batchKey, Timestamp: ts, RowCount: rowCount})
	return nil
}

// MirroredEntries returns a copy of the entries mirrored so far.
func (m *MockSink) MirroredEntries() []ledger.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make([]ledger.Entry, len(m.entries))
	copy(snapshot, m.entries)
	return snapshot
}

// Markers returns a copy of the batch markers mirrored so far.
func (m *MockSink) Markers() []BatchMarker {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make([]BatchMarker, len(m.markers))
	copy(snapshot, m.markers)
	return snapshot
}
