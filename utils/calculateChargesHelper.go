package utils

import (
	"github.com/shopspring/decimal"
)

// Vat status / exemption values shared with models (models imports utils,
// so the raw string values are anchored here).
const (
	VatStatusVatable = "vatable"
	VatStatusExempt  = "vatExempt"

	// VatExemptionAll permits mixed vatable/exempt lines on one document.
	VatExemptionAll   = "all"
	VatExemptionTrue  = "true"
	VatExemptionFalse = "false"
)

type ChargeLine struct {
	Amount    decimal.Decimal
	VatStatus string
}

type ChargeParams struct {
	DiscountPercentage decimal.Decimal
	DiscountAmount     decimal.Decimal
	VatExemptionMode   string
	VatPercentage      decimal.Decimal
	AutoRoundOff       bool
	ManualRoundOff     decimal.Decimal
}

// DocumentCharges carries every computed total of a financial document,
// already rounded to the 2-decimal storage boundary.
type DocumentCharges struct {
	SubTotal           decimal.Decimal `json:"sub_total"`
	TaxableAmount      decimal.Decimal `json:"taxable_amount"`
	NonTaxableAmount   decimal.Decimal `json:"non_taxable_amount"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	TaxableDiscount    decimal.Decimal `json:"taxable_discount"`
	NonTaxableDiscount decimal.Decimal `json:"non_taxable_discount"`
	NetTaxableAmount   decimal.Decimal `json:"net_taxable_amount"`
	NetNonTaxable      decimal.Decimal `json:"net_non_taxable_amount"`
	VatAmount          decimal.Decimal `json:"vat_amount"`
	RoundOffAmount     decimal.Decimal `json:"round_off_amount"`
	GrandTotal         decimal.Decimal `json:"grand_total"`
}

// ValidateVatMix rejects line/vat-exemption combinations before any
// computation or mutation happens:
// - mode "true" (wholly exempt): no vatable line allowed,
// - mode "false" (taxed): no exempt line allowed,
// - mode "all": any mix.
func ValidateVatMix(lines []ChargeLine, vatExemptionMode string) error {
	switch vatExemptionMode {
	case VatExemptionAll:
		return nil
	case VatExemptionTrue:
		for _, line := range lines {
			if line.VatStatus == VatStatusVatable {
				return NewValidationError("vatable item on a vat-exempt document")
			}
		}
	case VatExemptionFalse:
		for _, line := range lines {
			if line.VatStatus != VatStatusVatable {
				return NewValidationError("vat-exempt item on a taxed document")
			}
		}
	default:
		return NewValidationError("invalid vat exemption mode %q", vatExemptionMode)
	}
	return nil
}

// CalculateDocumentCharges derives a document's totals from its lines.
//
// Discount precedence: an explicit discount amount (> 0) is authoritative
// and is allocated across the taxable/non-taxable buckets proportionally to
// their share of the subtotal; the percentage is only consulted when no
// amount was supplied. This resolves the ambiguity when a user edits one
// field after having set the other.
//
// VAT applies to the discounted taxable bucket only, and never when the
// document is wholly exempt.
func CalculateDocumentCharges(lines []ChargeLine, params ChargeParams) (*DocumentCharges, error) {
	if err := ValidateVatMix(lines, params.VatExemptionMode); err != nil {
		return nil, err
	}

	subTotal := decimal.Zero
	taxableAmount := decimal.Zero
	nonTaxableAmount := decimal.Zero
	for _, line := range lines {
		subTotal = subTotal.Add(line.Amount)
		if line.VatStatus == VatStatusVatable {
			taxableAmount = taxableAmount.Add(line.Amount)
		} else {
			nonTaxableAmount = nonTaxableAmount.Add(line.Amount)
		}
	}

	var discountAmount, taxableDiscount, nonTaxableDiscount decimal.Decimal
	if params.DiscountAmount.IsPositive() {
		discountAmount = params.DiscountAmount
		taxableDiscount = ProportionOf(discountAmount, taxableAmount, subTotal)
		nonTaxableDiscount = ProportionOf(discountAmount, nonTaxableAmount, subTotal)
	} else if params.DiscountPercentage.IsPositive() {
		taxableDiscount = Percentage(taxableAmount, params.DiscountPercentage)
		nonTaxableDiscount = Percentage(nonTaxableAmount, params.DiscountPercentage)
		discountAmount = taxableDiscount.Add(nonTaxableDiscount)
	}

	netTaxable := taxableAmount.Sub(taxableDiscount)
	netNonTaxable := nonTaxableAmount.Sub(nonTaxableDiscount)

	vatAmount := decimal.Zero
	if params.VatExemptionMode != VatExemptionTrue && params.VatPercentage.IsPositive() {
		vatAmount = Percentage(netTaxable, params.VatPercentage)
	}

	totalBeforeRoundOff := RoundAmount(netTaxable.Add(netNonTaxable).Add(vatAmount))

	// Exactly one round-off path applies: the automatic company policy, or
	// the manually supplied delta taken verbatim.
	var roundOffAmount, grandTotal decimal.Decimal
	if params.AutoRoundOff {
		grandTotal = RoundToNearestUnit(totalBeforeRoundOff)
		roundOffAmount = grandTotal.Sub(totalBeforeRoundOff)
	} else {
		roundOffAmount = params.ManualRoundOff
		grandTotal = totalBeforeRoundOff.Add(roundOffAmount)
	}

	return &DocumentCharges{
		SubTotal:           RoundAmount(subTotal),
		TaxableAmount:      RoundAmount(taxableAmount),
		NonTaxableAmount:   RoundAmount(nonTaxableAmount),
		DiscountAmount:     RoundAmount(discountAmount),
		TaxableDiscount:    RoundAmount(taxableDiscount),
		NonTaxableDiscount: RoundAmount(nonTaxableDiscount),
		NetTaxableAmount:   RoundAmount(netTaxable),
		NetNonTaxable:      RoundAmount(netNonTaxable),
		VatAmount:          RoundAmount(vatAmount),
		RoundOffAmount:     RoundAmount(roundOffAmount),
		GrandTotal:         RoundAmount(grandTotal),
	}, nil
}
