package errors

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidationErrorIsInvalidInput(t *testing.T) {
	err := NewValidationError("amount", "must be greater than 0")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "amount")
}

func TestOverdraftErrorMatchesSentinel(t *testing.T) {
	err := &OverdraftError{
		Customer:  "Alice",
		Balance:   decimal.NewFromInt(40),
		Requested: decimal.NewFromInt(50),
	}
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, "insufficient balance for Alice: available 40 < requested 50", err.Error())
}

func TestStoreErrorWrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStoreError("scan ledger", cause)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)
}

func TestMirrorErrorWrapsCause(t *testing.T) {
	cause := errors.New("stream down")
	err := &MirrorError{Err: cause}
	assert.ErrorIs(t, err, ErrMirrorFailed)
	assert.ErrorIs(t, err, cause)
}

func TestPartialBatchError(t *testing.T) {
	cause := errors.New("connection reset")
	err := &PartialBatchError{Committed: 2, Valid: 5, Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "committed 2 of 5")
}
