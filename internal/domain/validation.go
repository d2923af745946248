package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidCurrency   = errors.New("invalid currency code")
	ErrInvalidConcept    = errors.New("invalid concept")
	ErrAmountTooLarge    = errors.New("amount exceeds maximum allowed")
	ErrInvalidPaymentDay = errors.New("payment day must be between 1 and 28")
)

// Validation constants
const (
	MaxConceptLength = 255
	MaxAmount        = "1000000000" // 1 billion
)

// Supported currencies: local currency plus the fixed-rate USD bucket.
var validCurrencies = map[string]bool{
	"PEN": true,
	"USD": true,
}

// ValidateCurrency validates a currency code.
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateAmount validates a movement or loan amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateConcept validates a free-text concept.
func ValidateConcept(concept string) error {
	concept = strings.TrimSpace(concept)

	if concept == "" {
		return fmt.Errorf("%w: concept cannot be empty", ErrInvalidConcept)
	}

	if len(concept) > MaxConceptLength {
		return fmt.Errorf("%w: concept exceeds %d characters", ErrInvalidConcept, MaxConceptLength)
	}

	return nil
}

// ValidatePaymentDay validates a loan payment day of month.
func ValidatePaymentDay(day int) error {
	if day < 1 || day > 28 {
		return ErrInvalidPaymentDay
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
