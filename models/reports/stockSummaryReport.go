package reports

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmdatafocus/retail_backend/config"
	"github.com/mmdatafocus/retail_backend/utils"
)

type StockSummaryRow struct {
	ItemId     int             `json:"item_id"`
	ItemName   string          `json:"item_name"`
	Unit       string          `json:"unit"`
	VatStatus  string          `json:"vat_status"`
	Stock      decimal.Decimal `json:"stock"`
	BatchCount int             `json:"batch_count"`
	StockValue decimal.Decimal `json:"stock_value"`
}

// GetStockSummary totals each item's live batches: on-hand quantity, batch
// count and value at purchase cost. Items with no batches still appear with
// zeros so the list matches the item master.
func GetStockSummary(ctx context.Context) ([]*StockSummaryRow, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	sql := `
SELECT
    items.id AS item_id,
    items.name AS item_name,
    items.unit,
    items.vat_status,
    items.stock,
    COUNT(batches.id) AS batch_count,
    COALESCE(SUM(batches.qty * batches.purchase_price), 0) AS stock_value
FROM
    items
    LEFT JOIN batches ON batches.item_id = items.id
WHERE
    items.company_id = ?
GROUP BY
    items.id,
    items.name,
    items.unit,
    items.vat_status,
    items.stock
ORDER BY
    items.name ASC;
`
	var rows []*StockSummaryRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, companyId).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
