package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	domainErrors "github.com/opentill/cashdesk/internal/domain/errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domainErrors.ErrDuplicateTransaction, http.StatusConflict, "duplicate_transaction"},
	{domainErrors.ErrUserNotFound, http.StatusForbidden, "unknown_actor"},
	{domainErrors.ErrUserDeactivated, http.StatusForbidden, "actor_deactivated"},
	{domainErrors.ErrInsufficientRole, http.StatusForbidden, "insufficient_role"},
	{domainErrors.ErrBalanceScopeDenied, http.StatusForbidden, "balance_scope_denied"},
	{domainErrors.ErrMirrorFailed, http.StatusBadGateway, "mirror_failed"},
	{domainErrors.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}

	var validationErr *domainErrors.ValidationError
	if errors.As(err, &validationErr) {
		resp.Code = "validation_error"
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	var overdraftErr *domainErrors.OverdraftError
	if errors.As(err, &overdraftErr) {
		resp.Code = "insufficient_balance"
		resp.Details = map[string]any{
			"customer":  overdraftErr.Customer,
			"balance":   overdraftErr.Balance.InexactFloat64(),
			"requested": overdraftErr.Requested.InexactFloat64(),
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	var partialErr *domainErrors.PartialBatchError
	if errors.As(err, &partialErr) {
		resp.Code = "partial_batch_failure"
		resp.Details = map[string]any{
			"committed": partialErr.Committed,
			"valid":     partialErr.Valid,
		}
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			resp.Code = m.code
			if m.err == domainErrors.ErrStoreUnavailable {
				log.Error().Err(err).Msg("store failure")
				resp.Error = "ledger store unavailable"
			}
			writeJSON(w, m.status, resp)
			return
		}
	}

	var domainErr *domainErrors.DomainError
	if errors.As(err, &domainErr) {
		resp.Code = domainErr.Code
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	log.Error().Err(err).Msg("unhandled error in handler")
	resp.Code = "internal_error"
	resp.Error = "internal server error"
	writeJSON(w, http.StatusInternalServerError, resp)
}

func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domainErrors.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	if err := validate.Struct(dst); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			return domainErrors.NewValidationError(ve[0].Field(), ve[0].Tag()+" validation failed")
		}
		return domainErrors.NewValidationError("body", err.Error())
	}
	return nil
}
