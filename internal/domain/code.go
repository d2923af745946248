package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Code prefixes and sequence widths per entity type.
const (
	CodePrefixAccount     = "CTA"
	CodePrefixLoan        = "PREST"
	CodePrefixLoanPayment = "CUOTA"
	CodePrefixIncome      = "ING"
	CodePrefixExpense     = "EGR"
	CodePrefixCash        = "CAJA"

	CodeWidthDefault = 3
	CodeWidthPayment = 4
)

// FormatCode builds <prefix><datesegment>-<zero-padded-sequence>.
func FormatCode(prefix, dateSegment string, seq, width int) string {
	return fmt.Sprintf("%s%s-%0*d", prefix, dateSegment, width, seq)
}

// NextSequence parses the trailing numeric suffix of the highest existing
// code and formats its successor. An empty lastCode starts the sequence at 1.
// A suffix that does not parse is an error; callers fall back to a
// timestamp-derived code rather than failing the owning write.
func NextSequence(lastCode, prefix, dateSegment string, width int) (string, error) {
	if lastCode == "" {
		return FormatCode(prefix, dateSegment, 1, width), nil
	}

	stem := prefix + dateSegment + "-"
	suffix := strings.TrimPrefix(lastCode, stem)
	if suffix == lastCode {
		return "", fmt.Errorf("code %q does not match prefix %q", lastCode, stem)
	}

	n, err := strconv.Atoi(suffix)
	if err != nil {
		return "", fmt.Errorf("code %q has non-numeric suffix: %w", lastCode, err)
	}

	return FormatCode(prefix, dateSegment, n+1, width), nil
}

// FallbackCode derives a low-collision code from the clock, used when
// sequence lookup or parsing fails. Creation of the owning record must not
// fail solely because sequencing failed.
func FallbackCode(prefix, dateSegment string, now time.Time) string {
	return fmt.Sprintf("%s%s-T%d", prefix, dateSegment, now.UnixMilli()%1_000_000_000)
}

// MonthSegment is the date segment used by movement codes (YYYYMM).
func MonthSegment(t time.Time) string {
	return t.Format("200601")
}
