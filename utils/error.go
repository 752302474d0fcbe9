package utils

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrorRecordNotFound = errors.New("record not found")

// ValidationError reports invalid caller input (empty lines, non-positive
// amounts, blank descriptions). The enclosing transaction is aborted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports a missing party, invoice, item or cash entry.
type NotFoundError struct {
	Resource string
	Id       int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.Id)
}

func NewNotFoundError(resource string, id int) error {
	return &NotFoundError{Resource: resource, Id: id}
}

// OverpaymentError reports a payment exceeding the invoice's outstanding
// amount beyond the rounding tolerance.
type OverpaymentError struct {
	Requested   decimal.Decimal
	Outstanding decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment %s exceeds outstanding amount %s",
		e.Requested.String(), e.Outstanding.String())
}

// InvariantViolation reports a cached running balance that disagrees with
// the sum of its invoice outstanding amounts. It never surfaces from a
// correct operation; the invariant checker exists so tests can detect
// corruption.
type InvariantViolation struct {
	Detail string
}

func (e *InvariantViolation) Error() string {
	return "ledger invariant violated: " + e.Detail
}

// ConcurrencyConflict wraps a busy/locked error from the store when two
// sessions race on the same rows.
type ConcurrencyConflict struct {
	Op  string
	Err error
}

func (e *ConcurrencyConflict) Error() string {
	return "concurrent ledger mutation during " + e.Op + ": " + e.Err.Error()
}

func (e *ConcurrencyConflict) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf) || errors.Is(err, ErrorRecordNotFound)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsOverpayment(err error) bool {
	var oe *OverpaymentError
	return errors.As(err, &oe)
}
