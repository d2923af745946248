package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashMovementType is the direction of a cash-register movement.
type CashMovementType string

const (
	CashIncome  CashMovementType = "ingreso"
	CashExpense CashMovementType = "egreso"
)

// IsValid checks if the cash movement type is known.
func (t CashMovementType) IsValid() bool {
	return t == CashIncome || t == CashExpense
}

// CashMovementStatus is the forward-only lifecycle state of a cash movement.
type CashMovementStatus string

const (
	CashStatusPending   CashMovementStatus = "pendiente"
	CashStatusValidated CashMovementStatus = "validado"
	CashStatusApplied   CashMovementStatus = "aplicado"
	CashStatusCancelled CashMovementStatus = "anulado"
)

// PaymentMethodKind describes how cash physically moved.
type PaymentMethodKind string

const (
	MethodCash     PaymentMethodKind = "efectivo"
	MethodTransfer PaymentMethodKind = "transferencia"
	MethodCard     PaymentMethodKind = "tarjeta"
)

// Denomination is one line of a cash denomination breakdown.
type Denomination struct {
	Value decimal.Decimal `json:"value"`
	Count int             `json:"count"`
}

// PaymentMethod captures the cash breakdown or the transfer/card reference
// of a cash movement.
type PaymentMethod struct {
	Kind          PaymentMethodKind `json:"kind"`
	Denominations []Denomination    `json:"denominations,omitempty"`
	Reference     string            `json:"reference,omitempty"`
}

// Total sums the denomination breakdown. Zero when no breakdown was given.
func (p PaymentMethod) Total() decimal.Decimal {
	total := decimal.Zero
	for _, d := range p.Denominations {
		total = total.Add(d.Value.Mul(decimal.NewFromInt(int64(d.Count))))
	}
	return total
}

// CashMovement is a cash-register ledger entry. When AffectsBankAccount is
// set, the integration orchestrator resolves the bank side first and embeds
// the frozen bank balances plus the linked movement id before this record is
// saved.
type CashMovement struct {
	ID                 string
	Code               string
	OwnerID            string
	Type               CashMovementType
	Concept            string
	Category           CashCategory
	Amount             decimal.Decimal
	Method             PaymentMethod
	Status             CashMovementStatus
	AffectsBankAccount bool
	BankAccountID      *string
	BankBalanceBefore  *decimal.Decimal
	BankBalanceAfter   *decimal.Decimal
	BankMovementID     *string
	AuditNote          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CanTransitionTo enforces the forward-only state machine:
// pending -> validated -> applied, with cancellation allowed from any
// non-applied, non-cancelled state.
func (m *CashMovement) CanTransitionTo(next CashMovementStatus) bool {
	switch next {
	case CashStatusValidated:
		return m.Status == CashStatusPending
	case CashStatusApplied:
		return m.Status == CashStatusValidated
	case CashStatusCancelled:
		return m.Status != CashStatusApplied && m.Status != CashStatusCancelled
	default:
		return false
	}
}

// CanCancel reports whether the movement may still be cancelled.
func (m *CashMovement) CanCancel() error {
	if m.Status == CashStatusCancelled {
		return ErrMovementCancelled
	}
	if !m.CanTransitionTo(CashStatusCancelled) {
		return ErrInvalidStateTransition
	}
	return nil
}
