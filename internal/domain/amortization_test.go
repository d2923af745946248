package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMonthlyInstallment(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		term      int
		want      string
		errorType error
	}{
		{
			name:      "standard annuity 12000 at 12 percent over 12 months",
			principal: "12000",
			rate:      "12",
			term:      12,
			want:      "1066.19",
		},
		{
			name:      "zero rate degrades to straight division",
			principal: "1200",
			rate:      "0",
			term:      12,
			want:      "100",
		},
		{
			name:      "small loan short term",
			principal: "5000",
			rate:      "24",
			term:      6,
			want:      "892.63",
		},
		{
			name:      "zero principal rejected",
			principal: "0",
			rate:      "12",
			term:      12,
			errorType: ErrInvalidPrincipal,
		},
		{
			name:      "negative rate rejected",
			principal: "1000",
			rate:      "-1",
			term:      12,
			errorType: ErrInvalidRate,
		},
		{
			name:      "zero term rejected",
			principal: "1000",
			rate:      "12",
			term:      0,
			errorType: ErrInvalidTerm,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MonthlyInstallment(
				decimal.RequireFromString(tt.principal),
				decimal.RequireFromString(tt.rate),
				tt.term,
			)

			if tt.errorType != nil {
				if !errors.Is(err, tt.errorType) {
					t.Fatalf("expected error %v, got %v", tt.errorType, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestAmortizationTable(t *testing.T) {
	start := time.Date(2026, time.January, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		principal string
		rate      string
		term      int
	}{
		{name: "12000 at 12 percent over 12 months", principal: "12000", rate: "12", term: 12},
		{name: "zero rate", principal: "1200", rate: "0", term: 12},
		{name: "awkward principal", principal: "9999.99", rate: "17.5", term: 7},
		{name: "long term", principal: "50000", rate: "10", term: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			principal := decimal.RequireFromString(tt.principal)
			rows, err := AmortizationTable(principal, decimal.RequireFromString(tt.rate), tt.term, start, 15)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(rows) != tt.term {
				t.Fatalf("expected %d rows, got %d", tt.term, len(rows))
			}

			capital := decimal.Zero
			prevRemaining := principal
			for _, row := range rows {
				capital = capital.Add(row.Capital)

				// Remaining must strictly decrease and match the capital step.
				if !prevRemaining.Sub(row.Capital).Round(2).Equal(row.Remaining) {
					t.Errorf("row %d: remaining %s does not follow from %s - %s",
						row.Number, row.Remaining, prevRemaining, row.Capital)
				}
				prevRemaining = row.Remaining
			}

			// The schedule amortizes the principal exactly.
			if !capital.Round(2).Equal(principal.Round(2)) {
				t.Errorf("capital sum %s != principal %s", capital, principal)
			}
			if !rows[len(rows)-1].Remaining.IsZero() {
				t.Errorf("final remaining %s, want 0", rows[len(rows)-1].Remaining)
			}
		})
	}
}

func TestAmortizationTable_DueDates(t *testing.T) {
	start := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)

	rows, err := AmortizationTable(decimal.NewFromInt(1200), decimal.Zero, 3, start, 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wants := []time.Time{
		time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.April, 15, 0, 0, 0, 0, time.UTC),
	}
	for i, row := range rows {
		if !row.DueDate.Equal(wants[i]) {
			t.Errorf("row %d: expected due %s, got %s", row.Number, wants[i], row.DueDate)
		}
	}
}

func TestAddMonthsPinned(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		n     int
		day   int
		want  time.Time
	}{
		{
			name:  "pins to requested day",
			start: time.Date(2026, time.January, 3, 10, 30, 0, 0, time.UTC),
			n:     1,
			day:   15,
			want:  time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "crosses year boundary",
			start: time.Date(2026, time.November, 20, 0, 0, 0, 0, time.UTC),
			n:     3,
			day:   10,
			want:  time.Date(2027, time.February, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "out-of-range day falls back to start day clamped to 28",
			start: time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC),
			n:     1,
			day:   31,
			want:  time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddMonthsPinned(tt.start, tt.n, tt.day)
			if !got.Equal(tt.want) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
