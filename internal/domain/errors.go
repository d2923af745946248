package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Account errors
	ErrAccountNotFound   = errors.New("bank account not found")
	ErrAccountInactive   = errors.New("bank account is inactive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAlreadyExists     = errors.New("record already exists")

	// Movement errors
	ErrMovementNotFound     = errors.New("bank movement not found")
	ErrCashMovementNotFound = errors.New("cash movement not found")
	ErrMovementNotProcessed = errors.New("movement is not in processed state")
	ErrMovementCancelled    = errors.New("movement is already cancelled")

	// Loan errors
	ErrLoanNotFound    = errors.New("loan not found")
	ErrPaymentNotFound = errors.New("loan payment not found")
	ErrScheduleExists  = errors.New("amortization schedule already generated")
	ErrNoPenaltyDue    = errors.New("payment has no days in arrears")

	// Shared errors
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrNotAuthorized          = errors.New("actor is not the owner of this resource")
)

// InsufficientFundsError builds the user-facing sufficiency failure. The
// message carries both amounts because callers display it verbatim.
func InsufficientFundsError(requested, available decimal.Decimal) error {
	return fmt.Errorf("%w: requested %s exceeds available balance %s",
		ErrInsufficientFunds, requested.StringFixed(2), available.StringFixed(2))
}
