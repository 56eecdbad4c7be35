package reports

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmdatafocus/retail_backend/config"
	"github.com/mmdatafocus/retail_backend/models"
	"github.com/mmdatafocus/retail_backend/utils"
)

type AccountStatementRow struct {
	TransactionDate time.Time           `json:"transaction_date"`
	ReferenceType   models.DocumentType `json:"reference_type"`
	ReferenceId     int                 `json:"reference_id"`
	DocumentNumber  string              `json:"document_number"`
	Debit           decimal.Decimal     `json:"debit"`
	Credit          decimal.Decimal     `json:"credit"`
	Balance         decimal.Decimal     `json:"balance"`
}

type AccountStatementResponse struct {
	AccountId      int                    `json:"account_id"`
	AccountName    string                 `json:"account_name"`
	OpeningBalance decimal.Decimal        `json:"opening_balance"`
	ClosingBalance decimal.Decimal        `json:"closing_balance"`
	Rows           []*AccountStatementRow `json:"rows"`
}

// GetAccountStatement returns one account's postings between the two dates
// (inclusive), in posting order. The stored per-row running balance is
// returned verbatim; the closing balance is the last row's balance or the
// opening balance when the range is empty.
func GetAccountStatement(ctx context.Context, accountId int, fromDate time.Time, toDate time.Time) (*AccountStatementResponse, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}
	if toDate.Before(fromDate) {
		return nil, utils.NewValidationError("to date is before from date")
	}

	db := config.GetDB()
	account, err := models.FindAccountById(db.WithContext(ctx), companyId, accountId)
	if err != nil {
		return nil, err
	}

	sql := `
SELECT
    transaction_date,
    reference_type,
    reference_id,
    document_number,
    debit,
    credit,
    balance
FROM
    ledger_transactions
WHERE
    company_id = ?
    AND account_id = ?
    AND transaction_date BETWEEN ? AND ?
ORDER BY
    transaction_date ASC,
    id ASC;
`
	var rows []*AccountStatementRow
	if err := db.WithContext(ctx).Raw(sql, companyId, accountId, fromDate, toDate).Scan(&rows).Error; err != nil {
		return nil, err
	}

	resp := &AccountStatementResponse{
		AccountId:      account.ID,
		AccountName:    account.Name,
		OpeningBalance: account.OpeningBalance,
		ClosingBalance: account.OpeningBalance,
		Rows:           rows,
	}
	if len(rows) > 0 {
		resp.ClosingBalance = rows[len(rows)-1].Balance
	}
	return resp, nil
}
