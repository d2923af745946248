package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle state of a scheduled installment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pendiente"
	PaymentStatusProcessed PaymentStatus = "procesado"
	PaymentStatusRejected  PaymentStatus = "rechazado"
	PaymentStatusCancelled PaymentStatus = "anulado"
)

// LoanPayment is one scheduled installment of a loan. Rows are bulk-created
// when the amortization schedule is generated and mutated when a payment is
// processed, rejected, or has a penalty applied.
type LoanPayment struct {
	ID            string
	Code          string
	LoanID        string
	Number        int
	DueDate       time.Time
	PaidAt        *time.Time
	Capital       decimal.Decimal
	Interest      decimal.Decimal
	Fee           decimal.Decimal
	Penalty       decimal.Decimal
	Total         decimal.Decimal
	AmountPaid    decimal.Decimal
	DaysLate      int
	Status        PaymentStatus
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Method        *PaymentMethodKind
	OperationRef  *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CanApply reports whether the installment may be paid.
func (p *LoanPayment) CanApply() error {
	if p.Status != PaymentStatusPending {
		return ErrInvalidStateTransition
	}
	return nil
}

// ClampAmount limits a payment to the installment total; overpaying an
// installment is not allowed, the surplus stays with the payer.
func (p *LoanPayment) ClampAmount(amount decimal.Decimal) decimal.Decimal {
	if amount.GreaterThan(p.Total) {
		return p.Total
	}
	return amount
}

// DaysInArrears computes whole days between the due date and the payment
// date, never negative.
func DaysInArrears(dueDate, paidAt time.Time) int {
	days := int(paidAt.Sub(dueDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// AccruePenalty folds a mora amount into the installment total:
// mora = total * dailyRate% * daysLate, total = capital+interest+fee+mora.
func (p *LoanPayment) AccruePenalty(dailyRatePercent decimal.Decimal) error {
	if p.DaysLate == 0 {
		return ErrNoPenaltyDue
	}

	mora := p.Total.
		Mul(dailyRatePercent).
		Div(decimal.NewFromInt(100)).
		Mul(decimal.NewFromInt(int64(p.DaysLate))).
		Round(2)

	p.Penalty = mora
	p.Total = p.Capital.Add(p.Interest).Add(p.Fee).Add(mora)

	return nil
}
