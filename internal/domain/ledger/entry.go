package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opentill/cashdesk/internal/domain/errors"
	"github.com/shopspring/decimal"
)

type EntryType string

const (
	TypeTopup EntryType = "TOPUP"
	TypeSpend EntryType = "SPEND"
)

// Entry is a single immutable ledger row. Amount is signed: strictly positive
// for TOPUP, strictly negative for SPEND. Customer is stored trimmed but
// otherwise as supplied; matching is done on the normalized form.
type Entry struct {
	Timestamp      time.Time
	TransactionID  uuid.UUID
	Customer       string
	Type           EntryType
	Amount         decimal.Decimal
	ActorEmail     string
	Note           string
	IdempotencyKey string
}

// NormalizeCustomer returns the canonical form used for balance matching.
func NormalizeCustomer(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Validate checks the committed-entry invariants. It is applied at the
// store-adapter boundary: a stored row that fails here is a store-level
// error, never silently coerced.
func (e Entry) Validate() error {
	if e.TransactionID == uuid.Nil {
		return errors.NewValidationError("transaction_id", "cannot be empty")
	}
	if strings.TrimSpace(e.Customer) == "" {
		return errors.NewValidationError("customer", "cannot be empty")
	}
	if e.IdempotencyKey == "" {
		return errors.NewValidationError("idempotency_key", "cannot be empty")
	}
	if e.Timestamp.IsZero() {
		return errors.NewValidationError("timestamp", "cannot be zero")
	}
	switch e.Type {
	case TypeTopup:
		if !e.Amount.IsPositive() {
			return errors.NewValidationError("amount", "must be positive for TOPUP")
		}
	case TypeSpend:
		if !e.Amount.IsNegative() {
			return errors.NewValidationError("amount", "must be negative for SPEND")
		}
	default:
		return errors.NewValidationError("type", "must be TOPUP or SPEND")
	}
	return nil
}

// Matches reports whether the entry belongs to the given customer,
// case-insensitively and trim-insensitively.
func (e Entry) Matches(customer string) bool {
	return NormalizeCustomer(e.Customer) == NormalizeCustomer(customer)
}

// BalanceOf sums the signed amounts of every entry in the snapshot matching
// the customer. A customer with no entries has balance zero.
func BalanceOf(customer string, snapshot []Entry) decimal.Decimal {
	norm := NormalizeCustomer(customer)
	total := decimal.Zero
	for _, e := range snapshot {
		if NormalizeCustomer(e.Customer) == norm {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// BatchBalances computes balances for many customers over one shared
// snapshot. The result is keyed by the names as given; each value is
// identical to calling BalanceOf with that name.
func BatchBalances(customers []string, snapshot []Entry) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal, len(customers))
	byNorm := make(map[string]decimal.Decimal, len(customers))
	for _, name := range customers {
		byNorm[NormalizeCustomer(name)] = decimal.Zero
	}
	for _, e := range snapshot {
		norm := NormalizeCustomer(e.Customer)
		if total, ok := byNorm[norm]; ok {
			byNorm[norm] = total.Add(e.Amount)
		}
	}
	for _, name := range customers {
		totals[name] = byNorm[NormalizeCustomer(name)]
	}
	return totals
}
