package utils_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmdatafocus/retail_backend/utils"
)

func TestSafeDivZeroDivisor(t *testing.T) {
	got := utils.SafeDiv(dec("10"), decimal.Zero)
	if !got.IsZero() {
		t.Fatalf("SafeDiv by zero expected 0, got %s", got.String())
	}
}

func TestPercentage(t *testing.T) {
	assertDecimal(t, "Percentage", utils.Percentage(dec("54"), dec("13")), "7.02")
	assertDecimal(t, "Percentage", utils.Percentage(dec("200"), dec("0")), "0")
}

func TestProportionOf(t *testing.T) {
	assertDecimal(t, "ProportionOf", utils.ProportionOf(dec("10"), dec("60"), dec("100")), "6")
	// empty whole: tolerant zero, not a division error
	assertDecimal(t, "ProportionOf", utils.ProportionOf(dec("10"), dec("60"), decimal.Zero), "0")
}

func TestRoundToNearestUnitHalfAwayFromZero(t *testing.T) {
	cases := []struct{ in, expected string }{
		{"99.49", "99"},
		{"99.50", "100"},
		{"-99.50", "-100"},
		{"-99.49", "-99"},
	}
	for _, tc := range cases {
		assertDecimal(t, "RoundToNearestUnit("+tc.in+")", utils.RoundToNearestUnit(dec(tc.in)), tc.expected)
	}
}

func TestParseDecimal(t *testing.T) {
	got, err := utils.ParseDecimal("  12.34 ")
	if err != nil {
		t.Fatalf("ParseDecimal: %v", err)
	}
	assertDecimal(t, "ParseDecimal", got, "12.34")

	if _, err := utils.ParseDecimal(""); err == nil {
		t.Fatal("ParseDecimal expected error for empty string")
	}
	if _, err := utils.ParseDecimal("abc"); err == nil {
		t.Fatal("ParseDecimal expected error for garbage")
	}
}
