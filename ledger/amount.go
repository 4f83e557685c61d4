package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of Amount units in one currency unit.
const AmountScale = 10_000

// amountDecimals is the number of decimal places represented by AmountScale.
const amountDecimals = 4

var errExponent = errors.New("exponent notation is not supported")

// Amount is a fixed-point money value with four decimal places
// (one unit is 1/10,000 of a currency unit). All ledger arithmetic is done
// on Amount directly; decimal text only exists at the I/O boundary.
type Amount int64

// ParseAmount converts decimal text such as "1.5" into an Amount (15000).
// Digits beyond the fourth decimal place are truncated toward zero. Only
// plain decimal notation is accepted.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("amount is empty")
	}

	// decimal would expand "1e999999999" digit by digit.
	if strings.ContainsAny(s, "eE") {
		return 0, fmt.Errorf("invalid amount value %q: %w", s, errExponent)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount value %q: %w", s, err)
	}

	units := d.Shift(amountDecimals).Truncate(0)
	if !units.BigInt().IsInt64() {
		return 0, fmt.Errorf("amount %q out of range", s)
	}

	return Amount(units.IntPart()), nil
}

// MustParseAmount is like ParseAmount but panics on error.
// Use only in tests or when you're certain the amount is valid.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String renders the amount with exactly four decimal places, using integer
// division so no binary floating point is involved.
func (a Amount) String() string {
	var sb strings.Builder

	// Work on uint64 so the most negative value does not overflow on negation.
	v := uint64(a)
	if a < 0 {
		sb.WriteByte('-')
		v = uint64(-(a + 1)) + 1
	}

	sb.WriteString(strconv.FormatUint(v/AmountScale, 10))
	sb.WriteByte('.')

	frac := strconv.FormatUint(v%AmountScale, 10)
	sb.WriteString(strings.Repeat("0", amountDecimals-len(frac)))
	sb.WriteString(frac)

	return sb.String()
}

// Add returns a + b, or ErrAmountOverflow if the sum does not fit.
func (a Amount) Add(b Amount) (Amount, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, ErrAmountOverflow
	}
	return sum, nil
}

// Sub returns a - b, or ErrAmountOverflow if the difference does not fit.
func (a Amount) Sub(b Amount) (Amount, error) {
	diff := a - b
	if (b > 0 && diff > a) || (b < 0 && diff < a) {
		return 0, ErrAmountOverflow
	}
	return diff, nil
}

// IsNegative reports whether the amount is below zero.
func (a Amount) IsNegative() bool {
	return a < 0
}
