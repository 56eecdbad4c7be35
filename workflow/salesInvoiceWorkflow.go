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

// CreateSalesInvoice posts a sale: the named batches are consumed, the
// customer account is debited for the grand total. One transaction, all or
// nothing.
func CreateSalesInvoice(ctx context.Context, input *models.NewSalesInvoice) (*models.SalesInvoice, error) {
	pc, err := PostingContextFromRequest(ctx)
	if err != nil {
		return nil, err
	}
	logger := config.GetLogger()
	db := config.GetDB()

	redisLock, err := utils.CompanyLock(ctx, pc.CompanyId, "posting", "salesInvoiceWorkflow.go", "CreateSalesInvoice")
	if err != nil {
		return nil, err
	}
	defer utils.ReleaseCompanyLock(ctx, redisLock)

	doc := &models.SalesInvoice{}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := AcquireCompanyPostingLock(tx, pc.CompanyId); err != nil {
			return err
		}
		defer ReleaseCompanyPostingLock(tx, pc.CompanyId)

		session := newStockSession(tx, pc.CompanyId)
		return applySalesInvoice(tx, logger, pc, session, doc, input)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateSalesInvoice edits a posted invoice by full reversal and
// re-application: every old line's quantity is restored to its batch (the
// captured cost price recreates the batch if it drained), the old ledger
// set is dropped, then the new line list posts under the same document
// number.
func UpdateSalesInvoice(ctx context.Context, id int, input *models.NewSalesInvoice) (*models.SalesInvoice, error) {
	pc, err := PostingContextFromRequest(ctx)
	if err != nil {
		return nil, err
	}
	logger := config.GetLogger()
	db := config.GetDB()

	redisLock, err := utils.CompanyLock(ctx, pc.CompanyId, "posting", "salesInvoiceWorkflow.go", "UpdateSalesInvoice")
	if err != nil {
		return nil, err
	}
	defer utils.ReleaseCompanyLock(ctx, redisLock)

	doc := &models.SalesInvoice{}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := AcquireCompanyPostingLock(tx, pc.CompanyId); err != nil {
			return err
		}
		defer ReleaseCompanyPostingLock(tx, pc.CompanyId)

		var existing models.SalesInvoice
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Details").
			Where("company_id = ? AND id = ?", pc.CompanyId, id).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewValidationError("sales invoice %d not found", id)
		} else if err != nil {
			return err
		}

		session := newStockSession(tx, pc.CompanyId)

		for _, detail := range existing.Details {
			if _, err := session.Restore(detail.ItemId, detail.BatchNumber, detail.LotId, detail.Qty, detail.CostPrice); err != nil {
				config.LogError(logger, "salesInvoiceWorkflow.go", "UpdateSalesInvoice", "RestoreBatch", detail, err)
				return err
			}
		}
		if err := models.DeleteLedgerTransactionsForDocument(tx, pc.CompanyId, models.DocumentTypeSalesInvoice, id); err != nil {
			config.LogError(logger, "salesInvoiceWorkflow.go", "UpdateSalesInvoice", "DeleteLedgerTransactions", id, err)
			return err
		}
		if err := tx.Where("sales_invoice_id = ?", id).Delete(&models.SalesInvoiceDetail{}).Error; err != nil {
			return err
		}

		doc.ID = existing.ID
		doc.DocumentNumber = existing.DocumentNumber
		doc.SequenceNo = existing.SequenceNo
		return applySalesInvoice(tx, logger, pc, session, doc, input)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func applySalesInvoice(tx *gorm.DB, logger *logrus.Logger, pc *PostingContext, session *stockSession, doc *models.SalesInvoice, input *models.NewSalesInvoice) error {

	if _, err := models.FindAccountById(tx, pc.CompanyId, input.AccountId); err != nil {
		config.LogError(logger, "salesInvoiceWorkflow.go", "applySalesInvoice", "FindAccountById", input.AccountId, err)
		return err
	}
	accounts, err := models.GetLedgerAccountSet(tx, pc.CompanyId)
	if err != nil {
		config.LogError(logger, "salesInvoiceWorkflow.go", "applySalesInvoice", "GetLedgerAccountSet", pc.CompanyId, err)
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

	policy, err := models.GetRoundOffPolicy(tx, pc.CompanyId, pc.UserId, pc.FiscalYearId, models.DocumentTypeSalesInvoice)
	if err != nil {
		return err
	}
	charges, err := utils.CalculateDocumentCharges(chargeLines, input.ChargeParams(policy.Enabled))
	if err != nil {
		return err
	}

	if doc.ID == 0 {
		number, sequenceNo, err := models.NextDocumentNumber(tx, pc.CompanyId, pc.FiscalYearId, models.DocumentTypeSalesInvoice)
		if err != nil {
			config.LogError(logger, "salesInvoiceWorkflow.go", "applySalesInvoice", "NextDocumentNumber", nil, err)
			return err
		}
		doc.DocumentNumber = number
		doc.SequenceNo = sequenceNo
	}

	details := make([]models.SalesInvoiceDetail, 0, len(input.Details))
	for i, detail := range input.Details {
		batch, err := session.Consume(detail.ItemId, detail.BatchNumber, detail.LotId, detail.Qty)
		if err != nil {
			config.LogError(logger, "salesInvoiceWorkflow.go", "applySalesInvoice", "ConsumeBatch", detail, err)
			return err
		}
		details = append(details, models.SalesInvoiceDetail{
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
	doc.InvoiceDate = input.InvoiceDate
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
			config.LogError(logger, "salesInvoiceWorkflow.go", "applySalesInvoice", "CreateDocument", doc, err)
			return err
		}
	} else if err := tx.Save(doc).Error; err != nil {
		config.LogError(logger, "salesInvoiceWorkflow.go", "applySalesInvoice", "SaveDocument", doc, err)
		return err
	}
	for i := range details {
		details[i].SalesInvoiceId = doc.ID
	}
	if err := tx.Create(&details).Error; err != nil {
		return err
	}
	doc.Details = details

	entries := BuildDocumentLedgerEntries(accounts, LedgerEntryParams{
		DocumentType:   models.DocumentTypeSalesInvoice,
		DocumentNumber: doc.DocumentNumber,
		ReferenceId:    doc.ID,
		PartyAccountId: doc.AccountId,
		PaymentMode:    doc.PaymentMode,
		Date:           doc.InvoiceDate,
		Charges:        charges,
	})
	if err := EmitDocumentLedger(tx, pc, entries); err != nil {
		config.LogError(logger, "salesInvoiceWorkflow.go", "applySalesInvoice", "EmitDocumentLedger", entries, err)
		return err
	}
	return nil
}
