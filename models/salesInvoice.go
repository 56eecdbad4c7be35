package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmdatafocus/retail_backend/utils"
)

// SalesInvoice sells stock to a customer: batches are consumed, the
// customer (party) account is debited.
type SalesInvoice struct {
	ID                  int                  `gorm:"primary_key" json:"id"`
	CompanyId           string               `gorm:"index;not null;uniqueIndex:idx_si_number,priority:1" json:"company_id"`
	FiscalYearId        int                  `gorm:"index;not null;uniqueIndex:idx_si_number,priority:2" json:"fiscal_year_id"`
	AccountId           int                  `gorm:"index;not null" json:"account_id" binding:"required"`
	DocumentNumber      string               `gorm:"size:100;not null;uniqueIndex:idx_si_number,priority:3" json:"document_number"`
	SequenceNo          int                  `gorm:"not null" json:"sequence_no"`
	InvoiceDate         time.Time            `gorm:"index;not null" json:"invoice_date" binding:"required"`
	PaymentMode         PaymentMode          `gorm:"type:enum('cash','credit');default:cash" json:"payment_mode"`
	VatExemptionMode    VatExemptionMode     `gorm:"type:enum('all','true','false');default:all" json:"vat_exemption_mode"`
	DiscountPercentage  decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"discount_percentage"`
	DiscountAmount      decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	VatPercentage       decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"vat_percentage"`
	SubTotal            decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"sub_total"`
	TaxableAmount       decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"taxable_amount"`
	NonTaxableAmount    decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"non_taxable_amount"`
	TotalDiscountAmount decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"total_discount_amount"`
	VatAmount           decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"vat_amount"`
	RoundOffAmount      decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"round_off_amount"`
	GrandTotal          decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"grand_total"`
	Details             []SalesInvoiceDetail `gorm:"foreignKey:SalesInvoiceId" json:"details"`
	CreatedAt           time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

type SalesInvoiceDetail struct {
	ID             int             `gorm:"primary_key" json:"id"`
	SalesInvoiceId int             `gorm:"index;not null" json:"sales_invoice_id"`
	ItemId         int             `gorm:"index;not null" json:"item_id" binding:"required"`
	BatchNumber    string          `gorm:"size:100;not null" json:"batch_number" binding:"required"`
	LotId          string          `gorm:"size:64;not null" json:"lot_id" binding:"required"`
	Qty            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"qty" binding:"required"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price" binding:"required"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	CostPrice      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost_price"`
	VatStatus      VatStatus       `gorm:"type:enum('vatable','vatExempt');default:vatable" json:"vat_status"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSalesInvoice struct {
	AccountId            int                     `json:"account_id" binding:"required"`
	InvoiceDate          time.Time               `json:"invoice_date" binding:"required"`
	PaymentMode          PaymentMode             `json:"payment_mode" binding:"required"`
	VatExemptionMode     VatExemptionMode        `json:"vat_exemption_mode" binding:"required"`
	DiscountPercentage   decimal.Decimal         `json:"discount_percentage"`
	DiscountAmount       decimal.Decimal         `json:"discount_amount"`
	VatPercentage        decimal.Decimal         `json:"vat_percentage"`
	ManualRoundOffAmount decimal.Decimal         `json:"manual_round_off_amount"`
	Details              []NewSalesInvoiceDetail `json:"details" binding:"required,min=1,dive"`
}

type NewSalesInvoiceDetail struct {
	ItemId      int             `json:"item_id" binding:"required"`
	BatchNumber string          `json:"batch_number" binding:"required"`
	LotId       string          `json:"lot_id" binding:"required"`
	Qty         decimal.Decimal `json:"qty" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

func (input *NewSalesInvoice) ChargeParams(autoRoundOff bool) utils.ChargeParams {
	return utils.ChargeParams{
		DiscountPercentage: input.DiscountPercentage,
		DiscountAmount:     input.DiscountAmount,
		VatExemptionMode:   string(input.VatExemptionMode),
		VatPercentage:      input.VatPercentage,
		AutoRoundOff:       autoRoundOff,
		ManualRoundOff:     input.ManualRoundOffAmount,
	}
}
