package domain

import (
	"strings"
	"testing"
	"time"
)

func TestFormatCode(t *testing.T) {
	tests := []struct {
		name        string
		prefix      string
		dateSegment string
		seq         int
		width       int
		want        string
	}{
		{name: "account code", prefix: CodePrefixAccount, seq: 1, width: CodeWidthDefault, want: "CTA-001"},
		{name: "movement code with month", prefix: CodePrefixIncome, dateSegment: "202608", seq: 7, width: CodeWidthDefault, want: "ING202608-007"},
		{name: "payment code", prefix: CodePrefixLoanPayment, seq: 3, width: CodeWidthPayment, want: "CUOTA-0003"},
		{name: "sequence wider than padding", prefix: CodePrefixCash, dateSegment: "202608", seq: 12345, width: CodeWidthDefault, want: "CAJA202608-12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatCode(tt.prefix, tt.dateSegment, tt.seq, tt.width)
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestNextSequence(t *testing.T) {
	tests := []struct {
		name        string
		lastCode    string
		prefix      string
		dateSegment string
		want        string
		expectError bool
	}{
		{name: "empty starts at one", lastCode: "", prefix: CodePrefixAccount, want: "CTA-001"},
		{name: "increments suffix", lastCode: "CTA-007", prefix: CodePrefixAccount, want: "CTA-008"},
		{name: "rolls past padding", lastCode: "CTA-999", prefix: CodePrefixAccount, want: "CTA-1000"},
		{name: "month-scoped code", lastCode: "ING202608-041", prefix: CodePrefixIncome, dateSegment: "202608", want: "ING202608-042"},
		{name: "prefix mismatch", lastCode: "PREST-001", prefix: CodePrefixAccount, expectError: true},
		{name: "non-numeric suffix", lastCode: "CTA-T99", prefix: CodePrefixAccount, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextSequence(tt.lastCode, tt.prefix, tt.dateSegment, CodeWidthDefault)
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestFallbackCode(t *testing.T) {
	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	got := FallbackCode(CodePrefixExpense, "202608", now)

	if !strings.HasPrefix(got, "EGR202608-T") {
		t.Errorf("expected timestamp fallback, got %s", got)
	}
	// A fallback must never parse as a sequential code, otherwise the next
	// sequential allocation would try to increment it.
	if _, err := NextSequence(got, CodePrefixExpense, "202608", CodeWidthDefault); err == nil {
		t.Error("fallback code must not be parseable as a sequence")
	}
}

func TestMonthSegment(t *testing.T) {
	got := MonthSegment(time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC))
	if got != "202603" {
		t.Errorf("expected 202603, got %s", got)
	}
}
