package dto

import (
	"github.com/shopspring/decimal"

	"github.com/cajafin/ledger/internal/domain"
	"github.com/cajafin/ledger/internal/usecase"
)

// OpenAccountRequest represents a request to open a bank account.
type OpenAccountRequest struct {
	BankName        string          `json:"bank_name"`
	AccountNumber   string          `json:"account_number"`
	Type            string          `json:"type"`
	Currency        string          `json:"currency"`
	InitialBalance  decimal.Decimal `json:"initial_balance"`
	MinBalanceAlert decimal.Decimal `json:"min_balance_alert"`
	SeedMovement    bool            `json:"seed_movement"`
}

// ToUseCaseInput converts to use case input.
func (r *OpenAccountRequest) ToUseCaseInput() usecase.OpenAccountInput {
	return usecase.OpenAccountInput{
		BankName:        r.BankName,
		AccountNumber:   r.AccountNumber,
		Type:            domain.AccountType(r.Type),
		Currency:        r.Currency,
		InitialBalance:  r.InitialBalance,
		MinBalanceAlert: r.MinBalanceAlert,
		SeedMovement:    r.SeedMovement,
	}
}

// SetActiveRequest toggles an account's active flag.
type SetActiveRequest struct {
	Active bool `json:"active"`
}

// PostMovementRequest represents a request to post a bank movement.
type PostMovementRequest struct {
	Type             string          `json:"type"`
	Category         string          `json:"category"`
	Amount           decimal.Decimal `json:"amount"`
	Description      string          `json:"description"`
	CounterAccountID *string         `json:"counter_account_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *PostMovementRequest) ToUseCaseInput() usecase.PostMovementInput {
	return usecase.PostMovementInput{
		Type:             domain.MovementType(r.Type),
		Category:         domain.BankCategory(r.Category),
		Amount:           r.Amount,
		Description:      r.Description,
		CounterAccountID: r.CounterAccountID,
	}
}

// ReverseRequest carries the reason for a reversal or cancellation.
type ReverseRequest struct {
	Reason string `json:"reason"`
}

// DenominationItem is one line of a cash denomination breakdown.
type DenominationItem struct {
	Value decimal.Decimal `json:"value"`
	Count int             `json:"count"`
}

// PaymentMethodRequest describes how cash physically moved.
type PaymentMethodRequest struct {
	Kind          string             `json:"kind"`
	Denominations []DenominationItem `json:"denominations,omitempty"`
	Reference     string             `json:"reference,omitempty"`
}

// ToDomain converts to the domain payment method.
func (r *PaymentMethodRequest) ToDomain() domain.PaymentMethod {
	denominations := make([]domain.Denomination, len(r.Denominations))
	for i, d := range r.Denominations {
		denominations[i] = domain.Denomination{Value: d.Value, Count: d.Count}
	}
	return domain.PaymentMethod{
		Kind:          domain.PaymentMethodKind(r.Kind),
		Denominations: denominations,
		Reference:     r.Reference,
	}
}

// RegisterCashRequest represents a request to register a cash movement.
type RegisterCashRequest struct {
	Type     string               `json:"type"`
	Concept  string               `json:"concept"`
	Category string               `json:"category"`
	Amount   decimal.Decimal      `json:"amount"`
	Method   PaymentMethodRequest `json:"method"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterCashRequest) ToUseCaseInput() usecase.RegisterCashInput {
	return usecase.RegisterCashInput{
		Type:     domain.CashMovementType(r.Type),
		Concept:  r.Concept,
		Category: domain.CashCategory(r.Category),
		Amount:   r.Amount,
		Method:   r.Method.ToDomain(),
	}
}

// IntegratedEventRequest represents a business event that may touch both
// the cash register and a bank account.
type IntegratedEventRequest struct {
	Type               string               `json:"type"`
	Concept            string               `json:"concept"`
	Category           string               `json:"category"`
	Amount             decimal.Decimal      `json:"amount"`
	Method             PaymentMethodRequest `json:"method"`
	AffectsBankAccount bool                 `json:"affects_bank_account"`
	BankAccountID      string               `json:"bank_account_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *IntegratedEventRequest) ToUseCaseInput() usecase.IntegratedEventInput {
	return usecase.IntegratedEventInput{
		Type:               domain.CashMovementType(r.Type),
		Concept:            r.Concept,
		Category:           domain.CashCategory(r.Category),
		Amount:             r.Amount,
		Method:             r.Method.ToDomain(),
		AffectsBankAccount: r.AffectsBankAccount,
		BankAccountID:      r.BankAccountID,
	}
}

// RequestLoanRequest represents a loan application.
type RequestLoanRequest struct {
	Principal         decimal.Decimal `json:"principal"`
	Currency          string          `json:"currency"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent"`
	TermMonths        int             `json:"term_months"`
	PaymentDay        int             `json:"payment_day"`
}

// ToUseCaseInput converts to use case input.
func (r *RequestLoanRequest) ToUseCaseInput() usecase.RequestLoanInput {
	return usecase.RequestLoanInput{
		Principal:         r.Principal,
		Currency:          r.Currency,
		AnnualRatePercent: r.AnnualRatePercent,
		TermMonths:        r.TermMonths,
		PaymentDay:        r.PaymentDay,
	}
}

// ApplyPaymentRequest represents a request to pay an installment.
type ApplyPaymentRequest struct {
	AmountPaid   decimal.Decimal `json:"amount_paid"`
	Method       string          `json:"method"`
	OperationRef string          `json:"operation_ref"`
}

// ToUseCaseInput converts to use case input for a payment.
func (r *ApplyPaymentRequest) ToUseCaseInput(paymentID string) usecase.ApplyPaymentInput {
	return usecase.ApplyPaymentInput{
		PaymentID:    paymentID,
		AmountPaid:   r.AmountPaid,
		Method:       domain.PaymentMethodKind(r.Method),
		OperationRef: r.OperationRef,
	}
}

// AccruePenaltyRequest overrides the configured daily penalty rate when set.
type AccruePenaltyRequest struct {
	DailyRatePercent *decimal.Decimal `json:"daily_rate_percent,omitempty"`
}
