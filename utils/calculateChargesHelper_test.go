package utils_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmdatafocus/retail_backend/utils"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, expected string) {
	t.Helper()
	if !got.Equal(dec(expected)) {
		t.Fatalf("%s expected %s, got %s", name, expected, got.String())
	}
}

func TestDiscountAmountAllocatedProportionally(t *testing.T) {
	// 100 subtotal split 60 taxable / 40 exempt, explicit discount of 10.
	lines := []utils.ChargeLine{
		{Amount: dec("60"), VatStatus: utils.VatStatusVatable},
		{Amount: dec("40"), VatStatus: utils.VatStatusExempt},
	}
	charges, err := utils.CalculateDocumentCharges(lines, utils.ChargeParams{
		DiscountAmount:   dec("10"),
		VatExemptionMode: utils.VatExemptionAll,
	})
	if err != nil {
		t.Fatalf("CalculateDocumentCharges: %v", err)
	}

	assertDecimal(t, "SubTotal", charges.SubTotal, "100")
	assertDecimal(t, "TaxableDiscount", charges.TaxableDiscount, "6.00")
	assertDecimal(t, "NonTaxableDiscount", charges.NonTaxableDiscount, "4.00")
	assertDecimal(t, "NetTaxableAmount", charges.NetTaxableAmount, "54.00")
	assertDecimal(t, "NetNonTaxable", charges.NetNonTaxable, "36.00")
	assertDecimal(t, "GrandTotal", charges.GrandTotal, "90.00")
}

func TestDiscountAmountWinsOverPercentage(t *testing.T) {
	lines := []utils.ChargeLine{
		{Amount: dec("100"), VatStatus: utils.VatStatusVatable},
	}
	charges, err := utils.CalculateDocumentCharges(lines, utils.ChargeParams{
		DiscountAmount:     dec("10"),
		DiscountPercentage: dec("50"), // must be ignored
		VatExemptionMode:   utils.VatExemptionAll,
	})
	if err != nil {
		t.Fatalf("CalculateDocumentCharges: %v", err)
	}
	assertDecimal(t, "DiscountAmount", charges.DiscountAmount, "10.00")
	assertDecimal(t, "GrandTotal", charges.GrandTotal, "90.00")
}

func TestDiscountPercentageUsedWhenNoAmount(t *testing.T) {
	lines := []utils.ChargeLine{
		{Amount: dec("80"), VatStatus: utils.VatStatusVatable},
		{Amount: dec("20"), VatStatus: utils.VatStatusExempt},
	}
	charges, err := utils.CalculateDocumentCharges(lines, utils.ChargeParams{
		DiscountPercentage: dec("10"),
		VatExemptionMode:   utils.VatExemptionAll,
	})
	if err != nil {
		t.Fatalf("CalculateDocumentCharges: %v", err)
	}
	assertDecimal(t, "TaxableDiscount", charges.TaxableDiscount, "8.00")
	assertDecimal(t, "NonTaxableDiscount", charges.NonTaxableDiscount, "2.00")
	assertDecimal(t, "DiscountAmount", charges.DiscountAmount, "10.00")
}

func TestVatAppliesToNetTaxableOnly(t *testing.T) {
	lines := []utils.ChargeLine{
		{Amount: dec("60"), VatStatus: utils.VatStatusVatable},
		{Amount: dec("40"), VatStatus: utils.VatStatusExempt},
	}
	charges, err := utils.CalculateDocumentCharges(lines, utils.ChargeParams{
		DiscountAmount:   dec("10"),
		VatPercentage:    dec("13"),
		VatExemptionMode: utils.VatExemptionAll,
	})
	if err != nil {
		t.Fatalf("CalculateDocumentCharges: %v", err)
	}
	// 13% of 54, not of 90
	assertDecimal(t, "VatAmount", charges.VatAmount, "7.02")
	assertDecimal(t, "GrandTotal", charges.GrandTotal, "97.02")
}

func TestWhollyExemptDocumentSkipsVat(t *testing.T) {
	lines := []utils.ChargeLine{
		{Amount: dec("100"), VatStatus: utils.VatStatusExempt},
	}
	charges, err := utils.CalculateDocumentCharges(lines, utils.ChargeParams{
		VatPercentage:    dec("13"),
		VatExemptionMode: utils.VatExemptionTrue,
	})
	if err != nil {
		t.Fatalf("CalculateDocumentCharges: %v", err)
	}
	assertDecimal(t, "VatAmount", charges.VatAmount, "0.00")
	assertDecimal(t, "GrandTotal", charges.GrandTotal, "100.00")
}

func TestTaxedDocumentRejectsExemptLine(t *testing.T) {
	lines := []utils.ChargeLine{
		{Amount: dec("50"), VatStatus: utils.VatStatusVatable},
		{Amount: dec("50"), VatStatus: utils.VatStatusExempt},
	}
	_, err := utils.CalculateDocumentCharges(lines, utils.ChargeParams{
		VatExemptionMode: utils.VatExemptionFalse,
	})
	if !utils.IsPostingCode(err, utils.ErrCodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExemptDocumentRejectsVatableLine(t *testing.T) {
	lines := []utils.ChargeLine{
		{Amount: dec("50"), VatStatus: utils.VatStatusVatable},
	}
	_, err := utils.CalculateDocumentCharges(lines, utils.ChargeParams{
		VatExemptionMode: utils.VatExemptionTrue,
	})
	if !utils.IsPostingCode(err, utils.ErrCodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAutoRoundOff(t *testing.T) {
	cases := []struct {
		total      string
		grandTotal string
		roundOff   string
	}{
		{"99.40", "99", "-0.40"},
		{"99.50", "100", "0.50"},
		{"99.60", "100", "0.40"},
		{"100.00", "100", "0.00"},
	}
	for _, tc := range cases {
		lines := []utils.ChargeLine{{Amount: dec(tc.total), VatStatus: utils.VatStatusVatable}}
		charges, err := utils.CalculateDocumentCharges(lines, utils.ChargeParams{
			VatExemptionMode: utils.VatExemptionAll,
			AutoRoundOff:     true,
		})
		if err != nil {
			t.Fatalf("CalculateDocumentCharges(%s): %v", tc.total, err)
		}
		assertDecimal(t, "GrandTotal("+tc.total+")", charges.GrandTotal, tc.grandTotal)
		assertDecimal(t, "RoundOffAmount("+tc.total+")", charges.RoundOffAmount, tc.roundOff)
	}
}

func TestManualRoundOffTakenVerbatim(t *testing.T) {
	lines := []utils.ChargeLine{{Amount: dec("99.40"), VatStatus: utils.VatStatusVatable}}
	charges, err := utils.CalculateDocumentCharges(lines, utils.ChargeParams{
		VatExemptionMode: utils.VatExemptionAll,
		ManualRoundOff:   dec("0.60"),
	})
	if err != nil {
		t.Fatalf("CalculateDocumentCharges: %v", err)
	}
	assertDecimal(t, "RoundOffAmount", charges.RoundOffAmount, "0.60")
	assertDecimal(t, "GrandTotal", charges.GrandTotal, "100.00")
}

func TestInvalidVatExemptionMode(t *testing.T) {
	_, err := utils.CalculateDocumentCharges(nil, utils.ChargeParams{VatExemptionMode: "sometimes"})
	if !utils.IsPostingCode(err, utils.ErrCodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
