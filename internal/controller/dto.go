package controller

import (
	"time"

	"github.com/opentill/cashdesk/internal/domain/ledger"
	"github.com/opentill/cashdesk/internal/service"
)

// --- Request DTOs ---
// These DTOs handle HTTP/JSON concerns (float64 for money, validation tags).
// Controllers convert these to service layer types before calling business
// logic.

// RecordTransactionRequest holds the input for recording one top-up or spend.
// The amount is the positive magnitude; the server assigns the sign.
type RecordTransactionRequest struct {
	Type           string  `json:"type" validate:"required,oneof=TOPUP SPEND"`
	Customer       string  `json:"customer" validate:"required"`
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	Note           string  `json:"note"`
	IdempotencyKey string  `json:"idempotency_key"`
}

// CheckoutRowRequest is one proposed deduction. Row fields carry no
// validation tags: malformed rows are skipped with a reason, never rejected.
type CheckoutRowRequest struct {
	Customer string  `json:"customer"`
	Amount   float64 `json:"amount"`
	Note     string  `json:"note"`
}

// CheckoutRequest holds the input for a batch checkout.
type CheckoutRequest struct {
	Rows                []CheckoutRowRequest `json:"rows" validate:"required,min=1"`
	BatchIdempotencyKey string               `json:"batch_idempotency_key"`
}

// BatchBalancesRequest holds the input for a multi-customer balance lookup.
type BatchBalancesRequest struct {
	Customers []string `json:"customers" validate:"required,min=1"`
}

// --- Response DTOs ---

// TransactionResponse reports one committed transaction.
type TransactionResponse struct {
	TransactionID string    `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// BalanceResponse reports one derived customer balance.
type BalanceResponse struct {
	Customer string  `json:"customer"`
	Balance  float64 `json:"balance"`
}

// BatchBalancesResponse reports balances keyed by the requested names.
type BatchBalancesResponse struct {
	Balances map[string]float64 `json:"balances"`
}

// SkippedRowResponse reports one checkout input row that was not applied.
// Index is 1-based over the original input order.
type SkippedRowResponse struct {
	Index    int    `json:"index"`
	Customer string `json:"customer"`
	Reason   string `json:"reason"`
}

// CheckoutResponse reports the outcome of a batch checkout so the caller can
// reconcile exactly which input rows were or were not applied.
type CheckoutResponse struct {
	TransactionCount int                  `json:"transaction_count"`
	SkippedCount     int                  `json:"skipped_count"`
	SkippedRows      []SkippedRowResponse `json:"skipped_rows"`
	TransactionIDs   []string             `json:"transaction_ids,omitempty"`
	Timestamp        *time.Time           `json:"timestamp,omitempty"`
}

// EntryResponse represents a committed ledger entry in API responses.
type EntryResponse struct {
	Timestamp      time.Time `json:"timestamp"`
	TransactionID  string    `json:"transaction_id"`
	Customer       string    `json:"customer"`
	Type           string    `json:"type"`
	Amount         float64   `json:"amount"`
	ActorEmail     string    `json:"actor_email"`
	Note           string    `json:"note"`
	IdempotencyKey string    `json:"idempotency_key"`
}

// ErrorResponse represents an error response. Details carries structured
// context for expected outcomes (current balance and requested amount for
// overdrafts, committed-row count for partial batch failures).
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// --- Conversion helpers ---

// FromEntry converts a ledger entry to an API response.
func FromEntry(e ledger.Entry) EntryResponse {
	return EntryResponse{
		Timestamp:      e.Timestamp,
		TransactionID:  e.TransactionID.String(),
		Customer:       e.Customer,
		Type:           string(e.Type),
		Amount:         e.Amount.InexactFloat64(),
		ActorEmail:     e.ActorEmail,
		Note:           e.Note,
		IdempotencyKey: e.IdempotencyKey,
	}
}

// FromCheckoutResult converts a checkout result to an API response.
func FromCheckoutResult(res *service.CheckoutResult) CheckoutResponse {
	resp := CheckoutResponse{
		TransactionCount: res.Committed,
		SkippedCount:     len(res.Skipped),
		SkippedRows:      make([]SkippedRowResponse, 0, len(res.Skipped)),
	}
	for _, s := range res.Skipped {
		resp.SkippedRows = append(resp.SkippedRows, SkippedRowResponse{
			Index:    s.Index,
			Customer: s.Customer,
			Reason:   s.Reason,
		})
	}
	for _, id := range res.TransactionIDs {
		resp.TransactionIDs = append(resp.TransactionIDs, id.String())
	}
	if res.Committed > 0 {
		ts := res.Timestamp
		resp.Timestamp = &ts
	}
	return resp
}
