package workflow

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mmdatafocus/retail_backend/config"
	"github.com/mmdatafocus/retail_backend/models"
	"github.com/mmdatafocus/retail_backend/utils"
)

// CreateSalesReturn posts a customer return: the named batches get their
// quantities back (drained batches are recreated with the supplied cost
// price), the customer account is credited for the grand total.
func CreateSalesReturn(ctx context.Context, input *models.NewSalesReturn) (*models.SalesReturn, error) {
	pc, err := PostingContextFromRequest(ctx)
	if err != nil {
		return nil, err
	}
	logger := config.GetLogger()
	db := config.GetDB()

	redisLock, err := utils.CompanyLock(ctx, pc.CompanyId, "posting", "salesReturnWorkflow.go", "CreateSalesReturn")
	if err != nil {
		return nil, err
	}
	defer utils.ReleaseCompanyLock(ctx, redisLock)

	doc := &models.SalesReturn{}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := AcquireCompanyPostingLock(tx, pc.CompanyId); err != nil {
			return err
		}
		defer ReleaseCompanyPostingLock(tx, pc.CompanyId)

		session := newStockSession(tx, pc.CompanyId)
		return applySalesReturn(tx, logger, pc, session, doc, input)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateSalesReturn edits a posted return by full reversal and
// re-application. Reversing a sales return consumes the restored
// quantities back out of stock, so the edit is refused (insufficient
// stock) when the returned stock has since been sold again.
func UpdateSalesReturn(ctx context.Context, id int, input *models.NewSalesReturn) (*models.SalesReturn, error) {
	pc, err := PostingContextFromRequest(ctx)
	if err != nil {
		return nil, err
	}
	logger := config.GetLogger()
	db := config.GetDB()

	redisLock, err := utils.CompanyLock(ctx, pc.CompanyId, "posting", "salesReturnWorkflow.go", "UpdateSalesReturn")
	if err != nil {
		return nil, err
	}
	defer utils.ReleaseCompanyLock(ctx, redisLock)

	doc := &models.SalesReturn{}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := AcquireCompanyPostingLock(tx, pc.CompanyId); err != nil {
			return err
		}
		defer ReleaseCompanyPostingLock(tx, pc.CompanyId)

		var existing models.SalesReturn
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Details").
			Where("company_id = ? AND id = ?", pc.CompanyId, id).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewValidationError("sales return %d not found", id)
		} else if err != nil {
			return err
		}

		session := newStockSession(tx, pc.CompanyId)

		for _, detail := range existing.Details {
			if _, err := session.Consume(detail.ItemId, detail.BatchNumber, detail.LotId, detail.Qty); err != nil {
				config.LogError(logger, "salesReturnWorkflow.go", "UpdateSalesReturn", "ConsumeBatch", detail, err)
				return err
			}
		}
		if err := models.DeleteLedgerTransactionsForDocument(tx, pc.CompanyId, models.DocumentTypeSalesReturn, id); err != nil {
			config.LogError(logger, "salesReturnWorkflow.go", "UpdateSalesReturn", "DeleteLedgerTransactions", id, err)
			return err
		}
		if err := tx.Where("sales_return_id = ?", id).Delete(&models.SalesReturnDetail{}).Error; err != nil {
			return err
		}

		doc.ID = existing.ID
		doc.DocumentNumber = existing.DocumentNumber
		doc.SequenceNo = existing.SequenceNo
		return applySalesReturn(tx, logger, pc, session, doc, input)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func applySalesReturn(tx *gorm.DB, logger *logrus.Logger, pc *PostingContext, session *stockSession, doc *models.SalesReturn, input *models.NewSalesReturn) error {

	if _, err := models.FindAccountById(tx, pc.CompanyId, input.AccountId); err != nil {
		config.LogError(logger, "salesReturnWorkflow.go", "applySalesReturn", "FindAccountById", input.AccountId, err)
		return err
	}
	accounts, err := models.GetLedgerAccountSet(tx, pc.CompanyId)
	if err != nil {
		config.LogError(logger, "salesReturnWorkflow.go", "applySalesReturn", "GetLedgerAccountSet", pc.CompanyId, err)
		return err
	}

	chargeLines := make([]utils.ChargeLine, 0, len(input.Details))
	lineStatuses := make([]models.VatStatus, 0, len(input.Details))
	for _, detail := range input.Details {
		if !detail.Qty.IsPositive() {
			return utils.NewValidationError("line quantity must be positive")
		}
		item, err := session.Item(detail.ItemId)
		if err != nil {
			return err
		}
		chargeLines = append(chargeLines, utils.ChargeLine{
			Amount:    detail.Qty.Mul(detail.UnitPrice),
			VatStatus: string(item.VatStatus),
		})
		lineStatuses = append(lineStatuses, item.VatStatus)
	}

	policy, err := models.GetRoundOffPolicy(tx, pc.CompanyId, pc.UserId, pc.FiscalYearId, models.DocumentTypeSalesReturn)
	if err != nil {
		return err
	}
	charges, err := utils.CalculateDocumentCharges(chargeLines, input.ChargeParams(policy.Enabled))
	if err != nil {
		return err
	}

	if doc.ID == 0 {
		number, sequenceNo, err := models.NextDocumentNumber(tx, pc.CompanyId, pc.FiscalYearId, models.DocumentTypeSalesReturn)
		if err != nil {
			config.LogError(logger, "salesReturnWorkflow.go", "applySalesReturn", "NextDocumentNumber", nil, err)
			return err
		}
		doc.DocumentNumber = number
		doc.SequenceNo = sequenceNo
	}

	details := make([]models.SalesReturnDetail, 0, len(input.Details))
	for i, detail := range input.Details {
		batch, err := session.Restore(detail.ItemId, detail.BatchNumber, detail.LotId, detail.Qty, detail.CostPrice)
		if err != nil {
			config.LogError(logger, "salesReturnWorkflow.go", "applySalesReturn", "RestoreBatch", detail, err)
			return err
		}
		details = append(details, models.SalesReturnDetail{
			ItemId:      detail.ItemId,
			BatchNumber: detail.BatchNumber,
			LotId:       detail.LotId,
			Qty:         detail.Qty,
			UnitPrice:   detail.UnitPrice,
			Amount:      utils.RoundAmount(detail.Qty.Mul(detail.UnitPrice)),
			CostPrice:   batch.PurchasePrice,
			VatStatus:   lineStatuses[i],
		})
	}

	doc.CompanyId = pc.CompanyId
	doc.FiscalYearId = pc.FiscalYearId
	doc.AccountId = input.AccountId
	doc.ReturnDate = input.ReturnDate
	doc.PaymentMode = input.PaymentMode
	doc.VatExemptionMode = input.VatExemptionMode
	doc.DiscountPercentage = input.DiscountPercentage
	doc.DiscountAmount = input.DiscountAmount
	doc.VatPercentage = input.VatPercentage
	doc.SubTotal = charges.SubTotal
	doc.TaxableAmount = charges.TaxableAmount
	doc.NonTaxableAmount = charges.NonTaxableAmount
	doc.TotalDiscountAmount = charges.DiscountAmount
	doc.VatAmount = charges.VatAmount
	doc.RoundOffAmount = charges.RoundOffAmount
	doc.GrandTotal = charges.GrandTotal

	if doc.ID == 0 {
		if err := tx.Create(doc).Error; err != nil {
			config.LogError(logger, "salesReturnWorkflow.go", "applySalesReturn", "CreateDocument", doc, err)
			return err
		}
	} else if err := tx.Save(doc).Error; err != nil {
		config.LogError(logger, "salesReturnWorkflow.go", "applySalesReturn", "SaveDocument", doc, err)
		return err
	}
	for i := range details {
		details[i].SalesReturnId = doc.ID
	}
	if err := tx.Create(&details).Error; err != nil {
		return err
	}
	doc.Details = details

	entries := BuildDocumentLedgerEntries(accounts, LedgerEntryParams{
		DocumentType:   models.DocumentTypeSalesReturn,
		DocumentNumber: doc.DocumentNumber,
		ReferenceId:    doc.ID,
		PartyAccountId: doc.AccountId,
		PaymentMode:    doc.PaymentMode,
		Date:           doc.ReturnDate,
		Charges:        charges,
	})
	if err := EmitDocumentLedger(tx, pc, entries); err != nil {
		config.LogError(logger, "salesReturnWorkflow.go", "applySalesReturn", "EmitDocumentLedger", entries, err)
		return err
	}
	return nil
}
