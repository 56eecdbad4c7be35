package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mmdatafocus/retail_backend/utils"
)

// LedgerTransaction is one posting against one account for one document.
// Exactly one of Debit/Credit is nonzero. Balance is the account's running
// total (previous balance + debit - credit) at the time of posting, a
// strictly sequential per-account chain.
type LedgerTransaction struct {
	ID              int             `gorm:"primary_key" json:"id"`
	CompanyId       string          `gorm:"index;not null;index:idx_lt_company_ref,priority:1;index:idx_lt_company_acct,priority:1" json:"company_id"`
	FiscalYearId    int             `gorm:"index;not null" json:"fiscal_year_id"`
	AccountId       int             `gorm:"index;not null;index:idx_lt_company_acct,priority:2" json:"account_id" binding:"required"`
	ReferenceType   DocumentType    `gorm:"size:10;not null;index:idx_lt_company_ref,priority:2" json:"reference_type"`
	ReferenceId     int             `gorm:"index;not null;index:idx_lt_company_ref,priority:3" json:"reference_id"`
	DocumentNumber  string          `gorm:"size:100" json:"document_number"`
	Debit           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"debit"`
	Credit          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"credit"`
	Balance         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"balance"`
	PaymentMode     PaymentMode     `gorm:"type:enum('cash','credit');default:credit" json:"payment_mode"`
	TransactionDate time.Time       `gorm:"index;not null;index:idx_lt_company_acct,priority:3" json:"transaction_date"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Postings are never mutated in place; an edit deletes the document's whole
// posting set and recreates it.
func (t *LedgerTransaction) BeforeUpdate(tx *gorm.DB) error {
	return errors.New("ledger transactions cannot be updated, repost the document")
}

// PostLedgerTransaction validates the debit-xor-credit shape, chains the
// running balance off the account's most recent posting (or its opening
// balance when none exists yet) and appends the row. The previous-balance read locks the latest row so two concurrent
// posts against one account cannot chain off the same predecessor.
func PostLedgerTransaction(tx *gorm.DB, txn *LedgerTransaction) error {
	if txn.Debit.IsNegative() || txn.Credit.IsNegative() {
		return utils.NewValidationError("ledger amounts cannot be negative")
	}
	if txn.Debit.IsZero() == txn.Credit.IsZero() {
		return utils.NewValidationError("exactly one of debit/credit must be nonzero")
	}

	prevBalance, err := latestBalance(tx, txn.CompanyId, txn.AccountId)
	if err != nil {
		return err
	}
	txn.Balance = prevBalance.Add(txn.Debit).Sub(txn.Credit)
	return tx.Create(txn).Error
}

func latestBalance(tx *gorm.DB, companyId string, accountId int) (decimal.Decimal, error) {
	var last LedgerTransaction
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("company_id = ? AND account_id = ?", companyId, accountId).
		Order("transaction_date DESC, id DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// First posting for this account: the chain starts at the
		// account's opening balance, matching what statements report.
		account, aerr := FindAccountById(tx, companyId, accountId)
		if aerr != nil {
			return decimal.Zero, aerr
		}
		return account.OpeningBalance, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return last.Balance, nil
}

// DeleteLedgerTransactionsForDocument removes every posting of one document
// (matched by the polymorphic reference), ahead of a repost during edit.
func DeleteLedgerTransactionsForDocument(tx *gorm.DB, companyId string, referenceType DocumentType, referenceId int) error {
	return tx.Where("company_id = ? AND reference_type = ? AND reference_id = ?", companyId, referenceType, referenceId).
		Delete(&LedgerTransaction{}).Error
}

// GetLedgerTransactionsForDocument returns a document's current posting set.
func GetLedgerTransactionsForDocument(tx *gorm.DB, companyId string, referenceType DocumentType, referenceId int) ([]LedgerTransaction, error) {
	var txns []LedgerTransaction
	err := tx.Where("company_id = ? AND reference_type = ? AND reference_id = ?", companyId, referenceType, referenceId).
		Order("id").
		Find(&txns).Error
	return txns, err
}
