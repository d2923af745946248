package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the persisted loan state. The lifecycle is deliberately
// collapsed to auto-approval: a loan is approved at request time and can
// only move to cancelled. Disbursement tracking lives in the bank ledger
// as a regular movement.
type LoanStatus string

const (
	LoanStatusApproved  LoanStatus = "aprobado"
	LoanStatusCancelled LoanStatus = "anulado"
)

// Loan is a fixed-installment loan with running statistics maintained by
// payment application.
type Loan struct {
	ID                  string
	Code                string
	OwnerID             string
	PrincipalRequested  decimal.Decimal
	PrincipalApproved   decimal.Decimal
	Currency            string
	AnnualRatePercent   decimal.Decimal
	TermMonths          int
	MonthlyInstallment  decimal.Decimal
	Outstanding         decimal.Decimal
	PaymentDay          int
	Status              LoanStatus
	InstallmentsPaid    int
	InstallmentsPending int
	InterestPaid        decimal.Decimal
	FeesPaid            decimal.Decimal
	RequestedAt         time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ApplyPaymentStats folds one processed payment into the running totals.
// Outstanding never goes below zero.
func (l *Loan) ApplyPaymentStats(p *LoanPayment, amountPaid decimal.Decimal) {
	l.InstallmentsPaid++
	l.InstallmentsPending = l.TermMonths - l.InstallmentsPaid
	if l.InstallmentsPending < 0 {
		l.InstallmentsPending = 0
	}

	l.Outstanding = l.Outstanding.Sub(amountPaid)
	if l.Outstanding.IsNegative() {
		l.Outstanding = decimal.Zero
	}

	l.InterestPaid = l.InterestPaid.Add(p.Interest)
	l.FeesPaid = l.FeesPaid.Add(p.Fee)
}

// LoanStatistics aggregates an owner's loan portfolio. Sums over approved
// loans only, except InterestPaid which counts every loan ever serviced.
type LoanStatistics struct {
	OwnerID             string
	TotalLoans          int
	ActiveLoans         int
	CancelledLoans      int
	TotalApproved       decimal.Decimal
	TotalOutstanding    decimal.Decimal
	TotalInterestPaid   decimal.Decimal
	InstallmentsPaid    int
	InstallmentsPending int
}

// CanCancel reports whether the loan may still be cancelled.
func (l *Loan) CanCancel() error {
	if l.Status == LoanStatusCancelled {
		return ErrInvalidStateTransition
	}
	if l.InstallmentsPaid > 0 {
		return ErrInvalidStateTransition
	}
	return nil
}
