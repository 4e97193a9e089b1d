package errors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Ledger errors
	ErrDuplicateTransaction = errors.New("duplicate transaction")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrStoreUnavailable     = errors.New("ledger store unavailable")
	ErrMirrorFailed         = errors.New("log mirror failed")

	// Authorization errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserDeactivated    = errors.New("user is deactivated")
	ErrInsufficientRole   = errors.New("insufficient role")
	ErrBalanceScopeDenied = errors.New("balance lookup restricted to own account")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
)

// DomainError wraps errors with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a malformed-input error, rejected before any
// store access.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// OverdraftError rejects a deduction that would drive a balance negative.
// It carries the current balance and the requested amount for caller display.
type OverdraftError struct {
	Customer  string
	Balance   decimal.Decimal
	Requested decimal.Decimal
}

func (e *OverdraftError) Error() string {
	return fmt.Sprintf("insufficient balance for %s: available %s < requested %s",
		e.Customer, e.Balance.String(), e.Requested.String())
}

func (e *OverdraftError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// StoreError wraps a read or write failure against the external ledger or
// users store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// MirrorError reports a log-sink mirror failure after a successful ledger
// append. The ledger write is never unwound; the committed entry accompanies
// the error.
type MirrorError struct {
	Err error
}

func (e *MirrorError) Error() string {
	return fmt.Sprintf("ledger committed but log mirror failed: %v", e.Err)
}

func (e *MirrorError) Unwrap() error { return e.Err }

func (e *MirrorError) Is(target error) bool {
	return target == ErrMirrorFailed
}

// PartialBatchError reports a batch-checkout append that failed after some
// valid rows were already committed. The committed prefix remains in the
// ledger; no compensating rollback exists in an append-only model.
type PartialBatchError struct {
	Committed int
	Valid     int
	Err       error
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("batch aborted: committed %d of %d valid rows before failure: %v",
		e.Committed, e.Valid, e.Err)
}

func (e *PartialBatchError) Unwrap() error { return e.Err }
