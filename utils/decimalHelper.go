package utils

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Monetary arithmetic rules:
// - intermediate results carry moneyInternalScale fractional digits so that
//   chained percentage/proportion formulas do not accumulate drift,
// - amounts are rounded to moneyScale only at storage/presentation boundaries,
// - dividing by zero yields zero (tolerant policy for optional divisors such
//   as "share of an empty subtotal").
const (
	moneyScale         = 2
	moneyInternalScale = 10
)

var decimalOneHundred = decimal.NewFromInt(100)

// SafeDiv divides a by b at internal precision. A zero divisor yields zero.
func SafeDiv(a decimal.Decimal, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.DivRound(b, moneyInternalScale)
}

// Percentage returns amount * pct / 100 at internal precision.
func Percentage(amount decimal.Decimal, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).DivRound(decimalOneHundred, moneyInternalScale)
}

// ProportionOf allocates total by part's share of whole (total * part / whole).
func ProportionOf(total decimal.Decimal, part decimal.Decimal, whole decimal.Decimal) decimal.Decimal {
	return total.Mul(SafeDiv(part, whole))
}

// RoundAmount rounds a monetary value to the 2-decimal boundary.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyScale)
}

// RoundToNearestUnit rounds half away from zero to a whole figure,
// as the automatic round-off policy requires.
func RoundToNearestUnit(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

func ParseDecimal(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, errors.New("empty decimal string")
	}

	dec, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}

	return dec, nil
}
