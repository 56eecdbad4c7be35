package workflow

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mmdatafocus/retail_backend/models"
	"github.com/mmdatafocus/retail_backend/utils"
)

// LedgerEntryParams describes one document's posting set, independent of
// document type internals.
type LedgerEntryParams struct {
	DocumentType   models.DocumentType
	DocumentNumber string
	ReferenceId    int
	PartyAccountId int
	PaymentMode    models.PaymentMode
	Date           time.Time
	Charges        *utils.DocumentCharges
}

// BuildDocumentLedgerEntries derives the full posting set for a document.
// Pure: no DB access, so the polarity rules are testable in isolation.
//
// Polarity mirrors the document's cash/receivable effect:
//   - documents that put the party in our debt (purchase return, sales
//     invoice) debit the party for the grand total; their balancing
//     revenue/expense, VAT and positive round-off postings are credits;
//   - purchases and sales returns mirror every side.
//
// The "Cash in Hand" posting (cash mode only) follows the party side: cash
// comes in when the party would owe us, goes out when we would owe them.
func BuildDocumentLedgerEntries(accounts *models.LedgerAccountSet, params LedgerEntryParams) []models.LedgerTransaction {
	partyDebit := params.DocumentType == models.DocumentTypePurchaseReturn ||
		params.DocumentType == models.DocumentTypeSalesInvoice

	tradeAccountId := accounts.Purchase
	if params.DocumentType == models.DocumentTypeSalesInvoice ||
		params.DocumentType == models.DocumentTypeSalesReturn {
		tradeAccountId = accounts.Sales
	}

	charges := params.Charges
	entries := make([]models.LedgerTransaction, 0, 5)

	add := func(accountId int, amount decimal.Decimal, debit bool) {
		entry := models.LedgerTransaction{
			AccountId:       accountId,
			ReferenceType:   params.DocumentType,
			ReferenceId:     params.ReferenceId,
			DocumentNumber:  params.DocumentNumber,
			PaymentMode:     params.PaymentMode,
			TransactionDate: params.Date,
		}
		if debit {
			entry.Debit = amount
		} else {
			entry.Credit = amount
		}
		entries = append(entries, entry)
	}

	add(params.PartyAccountId, charges.GrandTotal, partyDebit)

	netAmount := charges.NetTaxableAmount.Add(charges.NetNonTaxable)
	add(tradeAccountId, netAmount, !partyDebit)

	if charges.VatAmount.IsPositive() {
		add(accounts.Vat, charges.VatAmount, !partyDebit)
	}

	// Round-off rides the balancing side when positive, flips when negative,
	// and is skipped entirely at exactly zero.
	if !charges.RoundOffAmount.IsZero() {
		if charges.RoundOffAmount.IsPositive() {
			add(accounts.RoundedOff, charges.RoundOffAmount, !partyDebit)
		} else {
			add(accounts.RoundedOff, charges.RoundOffAmount.Neg(), partyDebit)
		}
	}

	if params.PaymentMode == models.PaymentModeCash {
		add(accounts.CashInHand, charges.GrandTotal, partyDebit)
	}

	return entries
}

// EmitDocumentLedger posts the entries in order, chaining each account's
// running balance inside the ambient transaction.
func EmitDocumentLedger(tx *gorm.DB, pc *PostingContext, entries []models.LedgerTransaction) error {
	for i := range entries {
		entries[i].CompanyId = pc.CompanyId
		entries[i].FiscalYearId = pc.FiscalYearId
		if err := models.PostLedgerTransaction(tx, &entries[i]); err != nil {
			return err
		}
	}
	return nil
}
