package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType is the direction of a bank movement.
type MovementType string

const (
	MovementIncome      MovementType = "ingreso"
	MovementExpense     MovementType = "egreso"
	MovementTransferIn  MovementType = "transferencia_entrada"
	MovementTransferOut MovementType = "transferencia_salida"
)

// IsOutgoing reports whether the movement type debits the account.
func (t MovementType) IsOutgoing() bool {
	return t == MovementExpense || t == MovementTransferOut
}

// Opposite returns the compensating type used for reversals.
func (t MovementType) Opposite() MovementType {
	switch t {
	case MovementIncome:
		return MovementExpense
	case MovementExpense:
		return MovementIncome
	case MovementTransferIn:
		return MovementTransferOut
	case MovementTransferOut:
		return MovementTransferIn
	}
	return t
}

var validMovementTypes = map[MovementType]bool{
	MovementIncome:      true,
	MovementExpense:     true,
	MovementTransferIn:  true,
	MovementTransferOut: true,
}

// IsValid checks if the movement type is known.
func (t MovementType) IsValid() bool {
	return validMovementTypes[t]
}

// MovementStatus is the lifecycle state of a bank movement. Movements are
// posted directly as procesado; anulado is the only transition.
type MovementStatus string

const (
	MovementStatusProcessed MovementStatus = "procesado"
	MovementStatusCancelled MovementStatus = "anulado"
)

// BankMovement is an immutable ledger entry. BalanceBefore and BalanceAfter
// are frozen at posting time and never recalculated; a cancellation flips
// Status and stamps the cancellation fields, it never edits the amount.
type BankMovement struct {
	ID               string
	Code             string
	AccountID        string
	CounterAccountID *string
	Type             MovementType
	Category         BankCategory
	Amount           decimal.Decimal
	Currency         string
	BalanceBefore    decimal.Decimal
	BalanceAfter     decimal.Decimal
	Status           MovementStatus
	Description      string
	CashMovementID   *string
	CancelledBy      *string
	CancelledAt      *time.Time
	CancelReason     *string
	CreatedAt        time.Time
}

// SignedAmount returns the amount with the sign of its effect on the
// account balance.
func (m *BankMovement) SignedAmount() decimal.Decimal {
	if m.Type.IsOutgoing() {
		return m.Amount.Neg()
	}
	return m.Amount
}

// CanReverse reports whether a compensating movement may be posted.
func (m *BankMovement) CanReverse() error {
	switch m.Status {
	case MovementStatusCancelled:
		return ErrMovementCancelled
	case MovementStatusProcessed:
		return nil
	default:
		return ErrMovementNotProcessed
	}
}
