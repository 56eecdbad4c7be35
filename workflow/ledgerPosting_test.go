package workflow

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmdatafocus/retail_backend/models"
	"github.com/mmdatafocus/retail_backend/utils"
)

var testAccounts = &models.LedgerAccountSet{
	Purchase:   101,
	Sales:      102,
	Vat:        103,
	RoundedOff: 104,
	CashInHand: 105,
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testCharges() *utils.DocumentCharges {
	return &utils.DocumentCharges{
		NetTaxableAmount: dec("54.00"),
		NetNonTaxable:    dec("36.00"),
		VatAmount:        dec("7.02"),
		RoundOffAmount:   dec("-0.02"),
		GrandTotal:       dec("97.00"),
	}
}

func findEntry(t *testing.T, entries []models.LedgerTransaction, accountId int) *models.LedgerTransaction {
	t.Helper()
	for i := range entries {
		if entries[i].AccountId == accountId {
			return &entries[i]
		}
	}
	t.Fatalf("no entry for account %d", accountId)
	return nil
}

func buildFor(docType models.DocumentType, mode models.PaymentMode, charges *utils.DocumentCharges) []models.LedgerTransaction {
	return BuildDocumentLedgerEntries(testAccounts, LedgerEntryParams{
		DocumentType:   docType,
		DocumentNumber: "X-0001",
		ReferenceId:    1,
		PartyAccountId: 7,
		PaymentMode:    mode,
		Date:           time.Now(),
		Charges:        charges,
	})
}

// Documents that put the party in our debt (purchase return, sales invoice)
// debit the party; purchases and sales returns credit it. The trade account
// always balances on the opposite side.
func TestPolarityPerDocumentType(t *testing.T) {
	cases := []struct {
		docType      models.DocumentType
		partyDebit   bool
		tradeAccount int
	}{
		{models.DocumentTypePurchase, false, testAccounts.Purchase},
		{models.DocumentTypePurchaseReturn, true, testAccounts.Purchase},
		{models.DocumentTypeSalesInvoice, true, testAccounts.Sales},
		{models.DocumentTypeSalesReturn, false, testAccounts.Sales},
	}
	for _, tc := range cases {
		entries := buildFor(tc.docType, models.PaymentModeCredit, testCharges())

		party := findEntry(t, entries, 7)
		if tc.partyDebit {
			if !party.Debit.Equal(dec("97.00")) || !party.Credit.IsZero() {
				t.Fatalf("%s: party expected debit 97.00, got debit %s credit %s", tc.docType, party.Debit, party.Credit)
			}
		} else {
			if !party.Credit.Equal(dec("97.00")) || !party.Debit.IsZero() {
				t.Fatalf("%s: party expected credit 97.00, got debit %s credit %s", tc.docType, party.Debit, party.Credit)
			}
		}

		trade := findEntry(t, entries, tc.tradeAccount)
		net := dec("90.00") // 54 + 36
		if tc.partyDebit {
			if !trade.Credit.Equal(net) {
				t.Fatalf("%s: trade expected credit 90.00, got %s", tc.docType, trade.Credit)
			}
		} else {
			if !trade.Debit.Equal(net) {
				t.Fatalf("%s: trade expected debit 90.00, got %s", tc.docType, trade.Debit)
			}
		}

		vat := findEntry(t, entries, testAccounts.Vat)
		if tc.partyDebit {
			if !vat.Credit.Equal(dec("7.02")) {
				t.Fatalf("%s: vat expected credit 7.02, got %s", tc.docType, vat.Credit)
			}
		} else if !vat.Debit.Equal(dec("7.02")) {
			t.Fatalf("%s: vat expected debit 7.02, got %s", tc.docType, vat.Debit)
		}
	}
}

func TestZeroVatEntrySkipped(t *testing.T) {
	charges := testCharges()
	charges.VatAmount = decimal.Zero
	entries := buildFor(models.DocumentTypeSalesInvoice, models.PaymentModeCredit, charges)

	for _, e := range entries {
		if e.AccountId == testAccounts.Vat {
			t.Fatal("zero vat must not produce an entry")
		}
	}
}

func TestRoundOffPolarity(t *testing.T) {
	// positive round-off rides the balancing side
	charges := testCharges()
	charges.RoundOffAmount = dec("0.50")
	entries := buildFor(models.DocumentTypeSalesInvoice, models.PaymentModeCredit, charges)
	ro := findEntry(t, entries, testAccounts.RoundedOff)
	if !ro.Credit.Equal(dec("0.50")) || !ro.Debit.IsZero() {
		t.Fatalf("positive round-off expected credit 0.50, got debit %s credit %s", ro.Debit, ro.Credit)
	}

	// negative round-off flips to the party's side, magnitude positive
	charges = testCharges()
	charges.RoundOffAmount = dec("-0.40")
	entries = buildFor(models.DocumentTypeSalesInvoice, models.PaymentModeCredit, charges)
	ro = findEntry(t, entries, testAccounts.RoundedOff)
	if !ro.Debit.Equal(dec("0.40")) || !ro.Credit.IsZero() {
		t.Fatalf("negative round-off expected debit 0.40, got debit %s credit %s", ro.Debit, ro.Credit)
	}

	// zero round-off produces no entry
	charges = testCharges()
	charges.RoundOffAmount = decimal.Zero
	entries = buildFor(models.DocumentTypeSalesInvoice, models.PaymentModeCredit, charges)
	for _, e := range entries {
		if e.AccountId == testAccounts.RoundedOff {
			t.Fatal("zero round-off must not produce an entry")
		}
	}
}

func TestCashModeAddsCashEntry(t *testing.T) {
	entries := buildFor(models.DocumentTypeSalesInvoice, models.PaymentModeCash, testCharges())
	cash := findEntry(t, entries, testAccounts.CashInHand)
	// cash follows the party side: a cash sale brings cash in
	if !cash.Debit.Equal(dec("97.00")) || !cash.Credit.IsZero() {
		t.Fatalf("cash expected debit 97.00, got debit %s credit %s", cash.Debit, cash.Credit)
	}

	entries = buildFor(models.DocumentTypePurchase, models.PaymentModeCash, testCharges())
	cash = findEntry(t, entries, testAccounts.CashInHand)
	if !cash.Credit.Equal(dec("97.00")) || !cash.Debit.IsZero() {
		t.Fatalf("cash purchase expected credit 97.00, got debit %s credit %s", cash.Debit, cash.Credit)
	}
}

func TestCreditModeHasNoCashEntry(t *testing.T) {
	entries := buildFor(models.DocumentTypeSalesInvoice, models.PaymentModeCredit, testCharges())
	for _, e := range entries {
		if e.AccountId == testAccounts.CashInHand {
			t.Fatal("credit mode must not touch cash in hand")
		}
	}
}

func TestEntriesShareDocumentIdentity(t *testing.T) {
	entries := buildFor(models.DocumentTypePurchaseReturn, models.PaymentModeCash, testCharges())
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries (party, trade, vat, round-off, cash), got %d", len(entries))
	}
	for _, e := range entries {
		if e.ReferenceType != models.DocumentTypePurchaseReturn || e.ReferenceId != 1 || e.DocumentNumber != "X-0001" {
			t.Fatalf("entry missing document identity: %+v", e)
		}
	}
}
