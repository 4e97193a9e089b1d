package logsink

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/opentill/cashdesk/internal/domain/ledger"
)

func TestFormatEntry(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	e := ledger.Entry{
		Timestamp:      ts,
		TransactionID:  uuid.New(),
		Customer:       "Alice",
		Type:           ledger.TypeTopup,
		Amount:         decimal.NewFromInt(50),
		ActorEmail:     "cashier@example.com",
		IdempotencyKey: "key-1",
	}

	assert.Equal(t,
		"2026-03-14T09:26:53Z TOPUP Alice +50 by cashier@example.com key=key-1",
		FormatEntry(e))
}

func TestFormatEntry_SpendWithNote(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	e := ledger.Entry{
		Timestamp:      ts,
		TransactionID:  uuid.New(),
		Customer:       "Alice",
		Type:           ledger.TypeSpend,
		Amount:         decimal.NewFromInt(-30),
		ActorEmail:     "cashier@example.com",
		Note:           "coffee",
		IdempotencyKey: "key-2",
	}

	line := FormatEntry(e)
	assert.Contains(t, line, "SPEND Alice -30")
	assert.Contains(t, line, "note=coffee")
}

func TestFormatBatchMarker(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	assert.Equal(t,
		"2026-03-14T09:26:53Z BATCH batch-1 rows=3",
		FormatBatchMarker("batch-1", ts, 3))
}
