package domain

import "time"

// Event types
const (
	EventTypeMovementPosted    = "movement.posted"
	EventTypeMovementReversed  = "movement.reversed"
	EventTypeCashRegistered    = "cash.registered"
	EventTypeCashCancelled     = "cash.cancelled"
	EventTypeLoanCreated       = "loan.created"
	EventTypeScheduleGenerated = "loan.schedule_generated"
	EventTypePaymentApplied    = "payment.applied"
)

// Aggregate types
const (
	AggregateTypeAccount      = "account"
	AggregateTypeMovement     = "movement"
	AggregateTypeCashMovement = "cash_movement"
	AggregateTypeLoan         = "loan"
	AggregateTypePayment      = "payment"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// MovementPostedEvent payload
type MovementPostedEvent struct {
	MovementID    string `json:"movement_id"`
	Code          string `json:"code"`
	AccountID     string `json:"account_id"`
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	BalanceAfter  string `json:"balance_after"`
	BalanceBefore string `json:"balance_before"`
}

// MovementReversedEvent payload
type MovementReversedEvent struct {
	ReversalMovementID string `json:"reversal_movement_id"`
	OriginalMovementID string `json:"original_movement_id"`
	AccountID          string `json:"account_id"`
	Amount             string `json:"amount"`
}

// CashRegisteredEvent payload
type CashRegisteredEvent struct {
	CashMovementID string  `json:"cash_movement_id"`
	Code           string  `json:"code"`
	Type           string  `json:"type"`
	Amount         string  `json:"amount"`
	BankMovementID *string `json:"bank_movement_id,omitempty"`
}

// LoanCreatedEvent payload
type LoanCreatedEvent struct {
	LoanID      string `json:"loan_id"`
	Code        string `json:"code"`
	Principal   string `json:"principal"`
	Installment string `json:"installment"`
	TermMonths  int    `json:"term_months"`
}

// PaymentAppliedEvent payload
type PaymentAppliedEvent struct {
	PaymentID  string `json:"payment_id"`
	LoanID     string `json:"loan_id"`
	Number     int    `json:"number"`
	AmountPaid string `json:"amount_paid"`
	DaysLate   int    `json:"days_late"`
}
