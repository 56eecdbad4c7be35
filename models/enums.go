package models

import (
	"github.com/mmdatafocus/retail_backend/utils"
)

type VatStatus string

const (
	VatStatusVatable VatStatus = VatStatus(utils.VatStatusVatable)
	VatStatusExempt  VatStatus = VatStatus(utils.VatStatusExempt)
)

// VatExemptionMode is a document-level setting:
// "all" allows mixed vatable/exempt lines, "true" means wholly exempt,
// "false" means every line must be vatable.
type VatExemptionMode string

const (
	VatExemptionModeAll   VatExemptionMode = VatExemptionMode(utils.VatExemptionAll)
	VatExemptionModeTrue  VatExemptionMode = VatExemptionMode(utils.VatExemptionTrue)
	VatExemptionModeFalse VatExemptionMode = VatExemptionMode(utils.VatExemptionFalse)
)

type ExpiryStatus string

const (
	ExpiryStatusSafe    ExpiryStatus = "safe"
	ExpiryStatusWarning ExpiryStatus = "warning"
	ExpiryStatusDanger  ExpiryStatus = "danger"
	ExpiryStatusExpired ExpiryStatus = "expired"
)

type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "cash"
	PaymentModeCredit PaymentMode = "credit"
)

// DocumentType doubles as the polymorphic reference type on ledger
// transactions and as the scope key of number series.
type DocumentType string

const (
	DocumentTypePurchase       DocumentType = "PB" // purchase bill
	DocumentTypePurchaseReturn DocumentType = "PR"
	DocumentTypeSalesInvoice   DocumentType = "SI"
	DocumentTypeSalesReturn    DocumentType = "SR"
)

type AccountType string

const (
	AccountTypeParty  AccountType = "party"
	AccountTypeSystem AccountType = "system"
)

// Fixed semantic names the posting protocol resolves per company.
const (
	AccountNamePurchase   = "Purchase"
	AccountNameSales      = "Sales"
	AccountNameVat        = "VAT"
	AccountNameRoundedOff = "Rounded Off"
	AccountNameCashInHand = "Cash in Hand"
)
