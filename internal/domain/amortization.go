package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Amortization input errors
var (
	ErrInvalidPrincipal = errors.New("principal must be positive")
	ErrInvalidRate      = errors.New("annual rate must not be negative")
	ErrInvalidTerm      = errors.New("term must be at least one month")
)

var (
	hundred      = decimal.NewFromInt(100)
	twelve       = decimal.NewFromInt(12)
	one          = decimal.NewFromInt(1)
	centsEpsilon = decimal.NewFromFloat(0.01)
)

// InstallmentRow is one row of an amortization table.
type InstallmentRow struct {
	Number      int
	DueDate     time.Time
	Installment decimal.Decimal
	Interest    decimal.Decimal
	Capital     decimal.Decimal
	Remaining   decimal.Decimal
}

// MonthlyInstallment computes the fixed monthly payment for a loan using the
// standard annuity formula P*i*(1+i)^n / ((1+i)^n - 1) with monthly rate
// i = annualRatePercent/100/12, rounded half up to 2 decimals. A zero rate
// degrades to straight principal/term.
func MonthlyInstallment(principal, annualRatePercent decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidPrincipal
	}
	if annualRatePercent.IsNegative() {
		return decimal.Zero, ErrInvalidRate
	}
	if termMonths <= 0 {
		return decimal.Zero, ErrInvalidTerm
	}

	n := decimal.NewFromInt(int64(termMonths))

	if annualRatePercent.IsZero() {
		return principal.Div(n).Round(2), nil
	}

	i := annualRatePercent.Div(hundred).Div(twelve)
	factor := one.Add(i).Pow(n)

	installment := principal.Mul(i).Mul(factor).Div(factor.Sub(one))

	return installment.Round(2), nil
}

// MonthlyRate returns the monthly interest rate for an annual percentage.
func MonthlyRate(annualRatePercent decimal.Decimal) decimal.Decimal {
	return annualRatePercent.Div(hundred).Div(twelve)
}

// AmortizationTable builds the full installment breakdown. Each row carries
// the interest on the remaining capital, the capital portion of the fixed
// installment, and the remaining balance clamped to zero on the final row.
// Due dates advance month by month from start, pinned to paymentDay.
func AmortizationTable(principal, annualRatePercent decimal.Decimal, termMonths int, start time.Time, paymentDay int) ([]InstallmentRow, error) {
	installment, err := MonthlyInstallment(principal, annualRatePercent, termMonths)
	if err != nil {
		return nil, err
	}

	i := MonthlyRate(annualRatePercent)
	remaining := principal

	rows := make([]InstallmentRow, 0, termMonths)
	for n := 1; n <= termMonths; n++ {
		interest := remaining.Mul(i).Round(2)
		capital := installment.Sub(interest)

		remaining = remaining.Sub(capital)
		// Rounding residue accumulates on the last row; anything within a
		// cent-per-installment tolerance collapses to zero.
		if n == termMonths || remaining.Abs().LessThan(centsEpsilon) {
			if remaining.Abs().LessThanOrEqual(centsEpsilon.Mul(decimal.NewFromInt(int64(termMonths)))) {
				capital = capital.Add(remaining)
				remaining = decimal.Zero
			}
		}
		if remaining.IsNegative() {
			capital = capital.Add(remaining)
			remaining = decimal.Zero
		}

		rows = append(rows, InstallmentRow{
			Number:      n,
			DueDate:     AddMonthsPinned(start, n, paymentDay),
			Installment: installment,
			Interest:    interest,
			Capital:     capital.Round(2),
			Remaining:   remaining.Round(2),
		})
	}

	return rows, nil
}

// AddMonthsPinned advances a date by n months pinned to a day of month.
// Payment days are restricted to 1..28 so every month has the pinned day.
func AddMonthsPinned(start time.Time, n, day int) time.Time {
	if day < 1 || day > 28 {
		day = start.Day()
		if day > 28 {
			day = 28
		}
	}

	year, month, _ := start.Date()
	return time.Date(year, month+time.Month(n), day, 0, 0, 0, 0, start.Location())
}
