package ledger

import "context"

// ColumnIdempotencyKey is the single indexed column the core ever scans on
// its own; it backs the duplicate-key existence check.
const ColumnIdempotencyKey = "idempotency_key"

// Store is the external append-only tabular store the ledger lives in.
// The store offers no transaction primitive: the core performs reads followed
// by sequential appends and relies on idempotency keys for retry safety.
type Store interface {
	// Append writes one entry. Committed entries are never mutated or removed.
	Append(ctx context.Context, e Entry) error

	// ScanAll returns every committed entry, oldest first. The returned slice
	// is a consistent snapshot owned by the caller.
	ScanAll(ctx context.Context) ([]Entry, error)

	// ScanColumn returns every value of a single indexed column.
	ScanColumn(ctx context.Context, column string) ([]string, error)
}
