package reports

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mmdatafocus/retail_backend/config"
	"github.com/mmdatafocus/retail_backend/models"
	"github.com/mmdatafocus/retail_backend/utils"
)

type ExpiryReportRow struct {
	ItemId          int                 `json:"item_id"`
	ItemName        string              `json:"item_name"`
	Unit            string              `json:"unit"`
	BatchNumber     string              `json:"batch_number"`
	LotId           string              `json:"lot_id"`
	Qty             decimal.Decimal     `json:"qty"`
	PurchasePrice   decimal.Decimal     `json:"purchase_price"`
	ExpiryDate      *time.Time          `json:"expiry_date"`
	ExpiryStatus    models.ExpiryStatus `json:"expiry_status"`
	DaysUntilExpiry int                 `json:"days_until_expiry"`
}

// GetExpiryReport lists every dated batch of the company ordered by expiry
// urgency. Status and remaining days are recomputed on read, anchored at
// the start of the company's current day so every read within one local
// calendar day reports the same counts.
func GetExpiryReport(ctx context.Context, status *models.ExpiryStatus) ([]*ExpiryReportRow, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}
	company, err := models.GetCompanyById(ctx, companyId)
	if err != nil {
		return nil, err
	}

	sql := `
SELECT
    items.id AS item_id,
    items.name AS item_name,
    items.unit,
    batches.batch_number,
    batches.lot_id,
    batches.qty,
    batches.purchase_price,
    batches.expiry_date
FROM
    batches
    JOIN items ON items.id = batches.item_id
WHERE
    items.company_id = ?
    AND batches.expiry_date IS NOT NULL
ORDER BY
    batches.expiry_date ASC,
    items.name ASC;
`
	var rows []*ExpiryReportRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, companyId).Scan(&rows).Error; err != nil {
		return nil, err
	}

	now, err := utils.ConvertToDate(time.Now(), company.Timezone)
	if err != nil {
		return nil, err
	}
	filtered := make([]*ExpiryReportRow, 0, len(rows))
	for _, row := range rows {
		row.ExpiryStatus, row.DaysUntilExpiry = models.ClassifyExpiry(*row.ExpiryDate, now)
		if status != nil && row.ExpiryStatus != *status {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered, nil
}

// ExportExpiryExcel streams the expiry report as an xlsx attachment.
func ExportExpiryExcel(ctx context.Context, w http.ResponseWriter, status *models.ExpiryStatus) error {
	data, err := GetExpiryReport(ctx, status)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	sheet := "Sheet1"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headings := []string{"Item", "Unit", "BatchNumber", "LotId", "Qty", "PurchasePrice", "ExpiryDate", "Status", "DaysUntilExpiry"}
	col := 'A'
	for _, h := range headings {
		f.SetCellValue(sheet, string(col)+"1", h)
		col++
	}

	for i, d := range data {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(sheet, "A"+row, d.ItemName)
		f.SetCellValue(sheet, "B"+row, d.Unit)
		f.SetCellValue(sheet, "C"+row, d.BatchNumber)
		f.SetCellValue(sheet, "D"+row, d.LotId)
		f.SetCellValue(sheet, "E"+row, d.Qty.String())
		f.SetCellValue(sheet, "F"+row, d.PurchasePrice.String())
		if d.ExpiryDate != nil {
			f.SetCellValue(sheet, "G"+row, d.ExpiryDate.Format("2006-01-02"))
		}
		f.SetCellValue(sheet, "H"+row, string(d.ExpiryStatus))
		f.SetCellValue(sheet, "I"+row, d.DaysUntilExpiry)
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=expiry-report.xlsx")
	return f.Write(w)
}
