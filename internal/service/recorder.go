package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	domainErrors "github.com/opentill/cashdesk/internal/domain/errors"
	"github.com/opentill/cashdesk/internal/domain/ledger"
	"github.com/opentill/cashdesk/internal/logsink"
	"github.com/shopspring/decimal"
)

// RecorderService validates and commits single signed ledger entries under
// an idempotency key, enforcing overdraft prevention for deductions.
type RecorderService struct {
	store ledger.Store
	sink  logsink.Sink
}

func NewRecorderService(store ledger.Store, sink logsink.Sink) *RecorderService {
	return &RecorderService{store: store, sink: sink}
}

// RecordRequest holds the input for recording one transaction. Amount is the
// positive magnitude; the sign is assigned from Type, never trusted from the
// caller.
type RecordRequest struct {
	Customer       string
	Amount         decimal.Decimal
	Type           ledger.EntryType
	Note           string
	IdempotencyKey string
	ActorEmail     string
}

// Record commits one entry. On a mirror failure the returned entry is still
// committed and accompanies a MirrorError; the caller may retry the whole
// call with the same idempotency key at any time, which makes re-application
// of an already-committed write a duplicate rejection rather than a
// double-count.
func (s *RecorderService) Record(ctx context.Context, req RecordRequest) (*ledger.Entry, error) {
	// Malformed input fails fast, before any store access.
	customer := strings.TrimSpace(req.Customer)
	if customer == "" {
		return nil, domainErrors.NewValidationError("customer", "cannot be empty")
	}
	if req.IdempotencyKey == "" {
		return nil, domainErrors.NewValidationError("idempotency_key", "cannot be empty")
	}
	if !req.Amount.IsPositive() {
		return nil, domainErrors.NewValidationError("amount", "must be greater than 0")
	}
	if req.Type != ledger.TypeTopup && req.Type != ledger.TypeSpend {
		return nil, domainErrors.NewValidationError("type", "must be TOPUP or SPEND")
	}

	// Duplicate check against the entire ledger history.
	keys, err := s.store.ScanColumn(ctx, ledger.ColumnIdempotencyKey)
	if err != nil {
		return nil, domainErrors.NewStoreError("scan idempotency keys", err)
	}
	if slices.Contains(keys, req.IdempotencyKey) {
		return nil, domainErrors.ErrDuplicateTransaction
	}

	amount := req.Amount
	if req.Type == ledger.TypeSpend {
		snapshot, err := s.store.ScanAll(ctx)
		if err != nil {
			return nil, domainErrors.NewStoreError("scan ledger", err)
		}
		balance := ledger.BalanceOf(customer, snapshot)
		if balance.LessThan(req.Amount) {
			return nil, &domainErrors.OverdraftError{
				Customer:  customer,
				Balance:   balance,
				Requested: req.Amount,
			}
		}
		amount = req.Amount.Neg()
	}

	entry := ledger.Entry{
		Timestamp:      time.Now().UTC(),
		TransactionID:  uuid.New(),
		Customer:       customer,
		Type:           req.Type,
		Amount:         amount,
		ActorEmail:     req.ActorEmail,
		Note:           req.Note,
		IdempotencyKey: req.IdempotencyKey,
	}

	if err := s.store.Append(ctx, entry); err != nil {
		return nil, domainErrors.NewStoreError("append entry", err)
	}

	// The ledger is the source of truth: a mirror failure is surfaced but the
	// append above is not rolled back.
	if err := s.sink.AppendEntry(ctx, entry); err != nil {
		return &entry, &domainErrors.MirrorError{Err: err}
	}
	return &entry, nil
}
