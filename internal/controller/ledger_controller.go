package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	domainErrors "github.com/opentill/cashdesk/internal/domain/errors"
	"github.com/opentill/cashdesk/internal/domain/ledger"
	"github.com/opentill/cashdesk/internal/domain/user"
	"github.com/opentill/cashdesk/internal/infrastructure/observability"
	"github.com/opentill/cashdesk/internal/middleware"
	"github.com/opentill/cashdesk/internal/service"
)

// LedgerController handles ledger-related HTTP requests.
type LedgerController struct {
	authz    *service.AuthzService
	recorder *service.RecorderService
	checkout *service.CheckoutService
	balances *service.BalanceService
	metrics  *observability.Metrics
}

// NewLedgerController creates a new LedgerController.
func NewLedgerController(
	authz *service.AuthzService,
	recorder *service.RecorderService,
	checkout *service.CheckoutService,
	balances *service.BalanceService,
	metrics *observability.Metrics,
) *LedgerController {
	return &LedgerController{
		authz:    authz,
		recorder: recorder,
		checkout: checkout,
		balances: balances,
		metrics:  metrics,
	}
}

func actorEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, ok := middleware.GetActorEmail(r.Context())
	if !ok || email == "" {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing actor identity", Code: "unauthorized"})
		return "", false
	}
	return email, true
}

// RecordTransaction handles POST /api/v1/transactions
func (h *LedgerController) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	email, ok := actorEmail(w, r)
	if !ok {
		return
	}

	var req RecordTransactionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.authz.Authorize(r.Context(), email, user.WriteRoles); err != nil {
		writeError(w, err)
		return
	}

	idempotencyKey := req.IdempotencyKey
	if idempotencyKey == "" {
		idempotencyKey = r.Header.Get("Idempotency-Key")
	}

	entry, err := h.recorder.Record(r.Context(), service.RecordRequest{
		Customer:       req.Customer,
		Amount:         decimal.NewFromFloat(req.Amount),
		Type:           ledger.EntryType(req.Type),
		Note:           req.Note,
		IdempotencyKey: idempotencyKey,
		ActorEmail:     email,
	})
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrDuplicateTransaction):
			h.metrics.DuplicateRejections.Inc()
		case errors.Is(err, domainErrors.ErrInsufficientBalance):
			h.metrics.OverdraftRejections.Inc()
		case errors.Is(err, domainErrors.ErrMirrorFailed) && entry != nil:
			// Committed but not mirrored: report the failure without hiding
			// the transaction id the caller needs for reconciliation.
			h.metrics.TransactionsTotal.WithLabelValues(string(entry.Type)).Inc()
			h.metrics.MirrorFailures.WithLabelValues("entry").Inc()
			log.Warn().Err(err).Str("transaction_id", entry.TransactionID.String()).Msg("entry committed but mirror failed")
			writeJSON(w, http.StatusBadGateway, ErrorResponse{
				Error:   err.Error(),
				Code:    "mirror_failed",
				Details: map[string]any{"transaction_id": entry.TransactionID.String()},
			})
			return
		}
		writeError(w, err)
		return
	}

	h.metrics.TransactionsTotal.WithLabelValues(string(entry.Type)).Inc()
	writeJSON(w, http.StatusCreated, TransactionResponse{
		TransactionID: entry.TransactionID.String(),
		Timestamp:     entry.Timestamp,
	})
}

// GetBalance handles GET /api/v1/balance/{customer}
func (h *LedgerController) GetBalance(w http.ResponseWriter, r *http.Request) {
	email, ok := actorEmail(w, r)
	if !ok {
		return
	}

	customer := chi.URLParam(r, "customer")
	if _, err := h.authz.AuthorizeBalanceRead(r.Context(), email, customer); err != nil {
		writeError(w, err)
		return
	}

	balance, err := h.balances.Balance(r.Context(), customer)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceResponse{
		Customer: customer,
		Balance:  balance.InexactFloat64(),
	})
}

// BatchBalances handles POST /api/v1/balances/batch
func (h *LedgerController) BatchBalances(w http.ResponseWriter, r *http.Request) {
	email, ok := actorEmail(w, r)
	if !ok {
		return
	}

	var req BatchBalancesRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	// A buyer must pass the own-name scope check for every requested name.
	for _, customer := range req.Customers {
		if _, err := h.authz.AuthorizeBalanceRead(r.Context(), email, customer); err != nil {
			writeError(w, err)
			return
		}
	}

	balances, err := h.balances.BatchBalances(r.Context(), req.Customers)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := BatchBalancesResponse{Balances: make(map[string]float64, len(balances))}
	for customer, balance := range balances {
		resp.Balances[customer] = balance.InexactFloat64()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Checkout handles POST /api/v1/checkout
func (h *LedgerController) Checkout(w http.ResponseWriter, r *http.Request) {
	email, ok := actorEmail(w, r)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.authz.Authorize(r.Context(), email, user.WriteRoles); err != nil {
		writeError(w, err)
		return
	}

	batchKey := req.BatchIdempotencyKey
	if batchKey == "" {
		batchKey = r.Header.Get("Idempotency-Key")
	}

	rows := make([]service.CheckoutRow, 0, len(req.Rows))
	for _, row := range req.Rows {
		rows = append(rows, service.CheckoutRow{
			Customer: row.Customer,
			Amount:   decimal.NewFromFloat(row.Amount),
			Note:     row.Note,
		})
	}

	result, err := h.checkout.Checkout(r.Context(), service.CheckoutRequest{
		Rows:       rows,
		BatchKey:   batchKey,
		ActorEmail: email,
	})
	if err != nil && !errors.Is(err, domainErrors.ErrMirrorFailed) {
		switch {
		case errors.Is(err, domainErrors.ErrDuplicateTransaction):
			h.metrics.DuplicateRejections.Inc()
		default:
			var partialErr *domainErrors.PartialBatchError
			if errors.As(err, &partialErr) {
				h.metrics.CheckoutBatches.WithLabelValues("partial_failure").Inc()
			}
		}
		writeError(w, err)
		return
	}

	h.metrics.CheckoutBatches.WithLabelValues("committed").Inc()
	h.metrics.CheckoutRowsTotal.WithLabelValues("committed").Add(float64(result.Committed))
	h.metrics.CheckoutRowsTotal.WithLabelValues("skipped").Add(float64(len(result.Skipped)))
	h.metrics.TransactionsTotal.WithLabelValues(string(ledger.TypeSpend)).Add(float64(result.Committed))
	if err != nil {
		// All rows committed; only the mirror write failed.
		h.metrics.MirrorFailures.WithLabelValues("batch").Inc()
		log.Warn().Err(err).Str("batch_key", batchKey).Msg("batch committed but mirror failed")
	}

	writeJSON(w, http.StatusOK, FromCheckoutResult(result))
}

// ListRecent handles GET /api/v1/transactions/recent
func (h *LedgerController) ListRecent(w http.ResponseWriter, r *http.Request) {
	email, ok := actorEmail(w, r)
	if !ok {
		return
	}

	if _, err := h.authz.Authorize(r.Context(), email, user.StaffReadRoles); err != nil {
		writeError(w, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.balances.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, FromEntry(e))
	}
	writeJSON(w, http.StatusOK, resp)
}
