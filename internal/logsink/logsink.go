// Package logsink mirrors committed ledger entries to an external
// write-only, human-readable log. Mirroring is best-effort: it fires only
// after a successful ledger append and a failure never unwinds the append.
package logsink

import (
	"context"
	"fmt"
	"time"

	"github.com/opentill/cashdesk/internal/domain/ledger"
)

type Sink interface {
	// AppendEntry mirrors one committed entry.
	AppendEntry(ctx context.Context, e ledger.Entry) error

	// AppendBatchMarker writes one batch-level marker line. It is called
	// once a batch checkout has committed its first entry, before that
	// entry's own mirror line.
	AppendBatchMarker(ctx context.Context, batchKey string, ts time.Time, rowCount int) error
}

// FormatEntry renders the human-readable line mirrored for one entry.
func FormatEntry(e ledger.Entry) string {
	sign := "+"
	if e.Amount.IsNegative() {
		sign = ""
	}
	line := fmt.Sprintf("%s %s %s %s%s by %s key=%s",
		e.Timestamp.UTC().Format(time.RFC3339),
		e.Type, e.Customer, sign, e.Amount.String(), e.ActorEmail, e.IdempotencyKey)
	if e.Note != "" {
		line += " note=" + e.Note
	}
	return line
}

// FormatBatchMarker renders the marker line written once per batch checkout.
func FormatBatchMarker(batchKey string, ts time.Time, rowCount int) string {
	return fmt.Sprintf("%s BATCH %s rows=%d",
		ts.UTC().Format(time.RFC3339), batchKey, rowCount)
}
