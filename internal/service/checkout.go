package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	domainErrors "github.com/opentill/cashdesk/internal/domain/errors"
	"github.com/opentill/cashdesk/internal/domain/ledger"
	"github.com/opentill/cashdesk/internal/logsink"
	"github.com/shopspring/decimal"
)

// CheckoutService validates a list of proposed deductions against one
// consistent ledger snapshot, partitions them into committable and
// skip-with-reason sets, and commits the valid subset sequentially under a
// single batch idempotency key.
type CheckoutService struct {
	store ledger.Store
	sink  logsink.Sink
}

func NewCheckoutService(store ledger.Store, sink logsink.Sink) *CheckoutService {
	return &CheckoutService{store: store, sink: sink}
}

// CheckoutRow is one proposed deduction. Amount is the positive magnitude.
type CheckoutRow struct {
	Customer string
	Amount   decimal.Decimal
	Note     string
}

type CheckoutRequest struct {
	Rows       []CheckoutRow
	BatchKey   string
	ActorEmail string
}

// SkippedRow reports one input row that was not committed. Index is the
// 1-based position in the original input.
type SkippedRow struct {
	Index    int
	Customer string
	Reason   string
}

type CheckoutResult struct {
	Committed      int
	TransactionIDs []uuid.UUID
	Skipped        []SkippedRow
	Timestamp      time.Time
}

const (
	skipMissingCustomer = "missing customer name"
	skipInvalidAmount   = "invalid amount"
)

// Checkout runs the batch. Skipped rows never abort the batch; a batch with
// zero committable rows succeeds with an empty commit set. A mid-commit
// append failure returns a PartialBatchError with the committed count; the
// committed prefix stays in the ledger. Mirror failures after all appends
// succeed return the full result alongside a MirrorError.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if len(req.Rows) == 0 {
		return nil, domainErrors.NewValidationError("rows", "cannot be empty")
	}
	if req.BatchKey == "" {
		return nil, domainErrors.NewValidationError("batch_idempotency_key", "cannot be empty")
	}

	keys, err := s.store.ScanColumn(ctx, ledger.ColumnIdempotencyKey)
	if err != nil {
		return nil, domainErrors.NewStoreError("scan idempotency keys", err)
	}
	if slices.Contains(keys, req.BatchKey) {
		return nil, domainErrors.ErrDuplicateTransaction
	}

	// One snapshot for the whole batch; it is not re-read mid-batch.
	snapshot, err := s.store.ScanAll(ctx)
	if err != nil {
		return nil, domainErrors.NewStoreError("scan ledger", err)
	}

	var names []string
	for _, row := range req.Rows {
		if strings.TrimSpace(row.Customer) != "" {
			names = append(names, row.Customer)
		}
	}
	balances := ledger.BatchBalances(names, snapshot)

	// Walk rows in input order, tracking what earlier rows in this batch have
	// already claimed per customer.
	allocated := make(map[string]decimal.Decimal)
	var (
		valid   []CheckoutRow
		skipped []SkippedRow
	)
	for i, row := range req.Rows {
		index := i + 1
		customer := strings.TrimSpace(row.Customer)
		if customer == "" {
			skipped = append(skipped, SkippedRow{Index: index, Customer: row.Customer, Reason: skipMissingCustomer})
			continue
		}
		if !row.Amount.IsPositive() {
			skipped = append(skipped, SkippedRow{Index: index, Customer: row.Customer, Reason: skipInvalidAmount})
			continue
		}
		norm := ledger.NormalizeCustomer(customer)
		available := balances[row.Customer].Sub(allocated[norm])
		if available.LessThan(row.Amount) {
			skipped = append(skipped, SkippedRow{
				Index:    index,
				Customer: row.Customer,
				Reason: fmt.Sprintf("insufficient balance: available %s < requested %s",
					available.String(), row.Amount.String()),
			})
			continue
		}
		allocated[norm] = allocated[norm].Add(row.Amount)
		valid = append(valid, CheckoutRow{Customer: customer, Amount: row.Amount, Note: row.Note})
	}

	result := &CheckoutResult{Skipped: skipped}
	if len(valid) == 0 {
		// Nothing affordable or well-formed; this is still a success.
		return result, nil
	}

	// All committed rows share one timestamp, captured once.
	ts := time.Now().UTC()
	result.Timestamp = ts

	var mirrorErr error
	for n, row := range valid {
		entry := ledger.Entry{
			Timestamp:      ts,
			TransactionID:  uuid.New(),
			Customer:       row.Customer,
			Type:           ledger.TypeSpend,
			Amount:         row.Amount.Neg(),
			ActorEmail:     req.ActorEmail,
			Note:           row.Note,
			IdempotencyKey: req.BatchKey,
		}
		if err := s.store.Append(ctx, entry); err != nil {
			// No compensating rollback exists in an append-only model; the
			// first n rows stay committed and are reported to the caller.
			return nil, &domainErrors.PartialBatchError{Committed: n, Valid: len(valid), Err: err}
		}
		result.Committed++
		result.TransactionIDs = append(result.TransactionIDs, entry.TransactionID)

		// The marker precedes the per-row mirror lines but, like them, fires
		// only once the ledger holds at least one row of this batch.
		if n == 0 {
			if err := s.sink.AppendBatchMarker(ctx, req.BatchKey, ts, len(valid)); err != nil {
				mirrorErr = err
			}
		}
		if err := s.sink.AppendEntry(ctx, entry); err != nil {
			mirrorErr = err
		}
	}

	if mirrorErr != nil {
		return result, &domainErrors.MirrorError{Err: mirrorErr}
	}
	return result, nil
}
