package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/opentill/cashdesk/internal/domain/errors"
)

func validEntry() Entry {
	return Entry{
		Timestamp:      time.Now().UTC(),
		TransactionID:  uuid.New(),
		Customer:       "Alice",
		Type:           TypeTopup,
		Amount:         decimal.NewFromInt(50),
		ActorEmail:     "cashier@example.com",
		IdempotencyKey: "key-1",
	}
}

func TestEntryValidate(t *testing.T) {
	assert.NoError(t, validEntry().Validate())

	cases := []struct {
		name     string
		override func(*Entry)
	}{
		{"nil transaction id", func(e *Entry) { e.TransactionID = uuid.Nil }},
		{"blank customer", func(e *Entry) { e.Customer = "  " }},
		{"empty idempotency key", func(e *Entry) { e.IdempotencyKey = "" }},
		{"zero timestamp", func(e *Entry) { e.Timestamp = time.Time{} }},
		{"topup with negative amount", func(e *Entry) { e.Amount = decimal.NewFromInt(-5) }},
		{"topup with zero amount", func(e *Entry) { e.Amount = decimal.Zero }},
		{"spend with positive amount", func(e *Entry) { e.Type = TypeSpend }},
		{"unknown type", func(e *Entry) { e.Type = "TRANSFER" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := validEntry()
			tc.override(&e)
			assert.ErrorIs(t, e.Validate(), domainErrors.ErrInvalidInput)
		})
	}
}

func TestNormalizeCustomer(t *testing.T) {
	assert.Equal(t, "alice", NormalizeCustomer("  ALICE "))
	assert.Equal(t, "alice", NormalizeCustomer("alice"))
	assert.Equal(t, "", NormalizeCustomer("   "))
}

func TestEntryMatches(t *testing.T) {
	e := validEntry()
	assert.True(t, e.Matches("alice"))
	assert.True(t, e.Matches(" ALICE "))
	assert.False(t, e.Matches("alicia"))
}

func TestBalanceOf(t *testing.T) {
	snapshot := []Entry{
		{Customer: "Alice", Amount: decimal.NewFromInt(100)},
		{Customer: "alice", Amount: decimal.NewFromInt(-30)},
		{Customer: "Bob", Amount: decimal.NewFromInt(500)},
	}

	assert.True(t, BalanceOf("ALICE", snapshot).Equal(decimal.NewFromInt(70)))
	assert.True(t, BalanceOf("Bob", snapshot).Equal(decimal.NewFromInt(500)))
	assert.True(t, BalanceOf("Nobody", snapshot).IsZero())
}

func TestBatchBalances(t *testing.T) {
	snapshot := []Entry{
		{Customer: "Alice", Amount: decimal.NewFromInt(100)},
		{Customer: "Bob", Amount: decimal.NewFromInt(50)},
	}

	balances := BatchBalances([]string{"ALICE", "Carol"}, snapshot)
	require.Len(t, balances, 2)
	assert.True(t, balances["ALICE"].Equal(decimal.NewFromInt(100)))
	assert.True(t, balances["Carol"].IsZero())

	// Each batch value equals the single lookup for the same name.
	for name, got := range balances {
		assert.True(t, got.Equal(BalanceOf(name, snapshot)))
	}
}
