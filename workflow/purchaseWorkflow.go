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

// CreatePurchase posts a supplier bill: stock is added batch by batch (new
// lots, or quantity merged onto an existing lot), the supplier account is
// credited for the grand total. One transaction, all or nothing.
func CreatePurchase(ctx context.Context, input *models.NewPurchase) (*models.Purchase, error) {
	pc, err := PostingContextFromRequest(ctx)
	if err != nil {
		return nil, err
	}
	logger := config.GetLogger()
	db := config.GetDB()

	redisLock, err := utils.CompanyLock(ctx, pc.CompanyId, "posting", "purchaseWorkflow.go", "CreatePurchase")
	if err != nil {
		return nil, err
	}
	defer utils.ReleaseCompanyLock(ctx, redisLock)

	doc := &models.Purchase{}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := AcquireCompanyPostingLock(tx, pc.CompanyId); err != nil {
			return err
		}
		defer ReleaseCompanyPostingLock(tx, pc.CompanyId)

		session := newStockSession(tx, pc.CompanyId)
		return applyPurchase(tx, logger, pc, session, doc, input)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdatePurchase edits a posted bill by full reversal and re-application.
// Reversing a purchase consumes its quantities back out of stock, so the
// edit is refused (insufficient stock) when the purchased stock has been
// sold in the meantime — the sale would otherwise reference quantities that
// never existed.
func UpdatePurchase(ctx context.Context, id int, input *models.NewPurchase) (*models.Purchase, error) {
	pc, err := PostingContextFromRequest(ctx)
	if err != nil {
		return nil, err
	}
	logger := config.GetLogger()
	db := config.GetDB()

	redisLock, err := utils.CompanyLock(ctx, pc.CompanyId, "posting", "purchaseWorkflow.go", "UpdatePurchase")
	if err != nil {
		return nil, err
	}
	defer utils.ReleaseCompanyLock(ctx, redisLock)

	doc := &models.Purchase{}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := AcquireCompanyPostingLock(tx, pc.CompanyId); err != nil {
			return err
		}
		defer ReleaseCompanyPostingLock(tx, pc.CompanyId)

		var existing models.Purchase
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Details").
			Where("company_id = ? AND id = ?", pc.CompanyId, id).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewValidationError("purchase %d not found", id)
		} else if err != nil {
			return err
		}

		session := newStockSession(tx, pc.CompanyId)

		for _, detail := range existing.Details {
			if _, err := session.Consume(detail.ItemId, detail.BatchNumber, detail.LotId, detail.Qty); err != nil {
				config.LogError(logger, "purchaseWorkflow.go", "UpdatePurchase", "ConsumeBatch", detail, err)
				return err
			}
		}
		if err := models.DeleteLedgerTransactionsForDocument(tx, pc.CompanyId, models.DocumentTypePurchase, id); err != nil {
			config.LogError(logger, "purchaseWorkflow.go", "UpdatePurchase", "DeleteLedgerTransactions", id, err)
			return err
		}
		if err := tx.Where("purchase_id = ?", id).Delete(&models.PurchaseDetail{}).Error; err != nil {
			return err
		}

		doc.ID = existing.ID
		doc.DocumentNumber = existing.DocumentNumber
		doc.SequenceNo = existing.SequenceNo
		return applyPurchase(tx, logger, pc, session, doc, input)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func applyPurchase(tx *gorm.DB, logger *logrus.Logger, pc *PostingContext, session *stockSession, doc *models.Purchase, input *models.NewPurchase) error {

	if _, err := models.FindAccountById(tx, pc.CompanyId, input.AccountId); err != nil {
		config.LogError(logger, "purchaseWorkflow.go", "applyPurchase", "FindAccountById", input.AccountId, err)
		return err
	}
	accounts, err := models.GetLedgerAccountSet(tx, pc.CompanyId)
	if err != nil {
		config.LogError(logger, "purchaseWorkflow.go", "applyPurchase", "GetLedgerAccountSet", pc.CompanyId, err)
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

	policy, err := models.GetRoundOffPolicy(tx, pc.CompanyId, pc.UserId, pc.FiscalYearId, models.DocumentTypePurchase)
	if err != nil {
		return err
	}
	charges, err := utils.CalculateDocumentCharges(chargeLines, input.ChargeParams(policy.Enabled))
	if err != nil {
		return err
	}

	if doc.ID == 0 {
		number, sequenceNo, err := models.NextDocumentNumber(tx, pc.CompanyId, pc.FiscalYearId, models.DocumentTypePurchase)
		if err != nil {
			config.LogError(logger, "purchaseWorkflow.go", "applyPurchase", "NextDocumentNumber", nil, err)
			return err
		}
		doc.DocumentNumber = number
		doc.SequenceNo = sequenceNo
	}

	details := make([]models.PurchaseDetail, 0, len(input.Details))
	for i, detail := range input.Details {
		batch, err := session.Add(detail.ItemId, detail.BatchNumber, detail.LotId, detail.Qty, detail.UnitPrice, detail.ExpiryDate)
		if err != nil {
			config.LogError(logger, "purchaseWorkflow.go", "applyPurchase", "AddBatch", detail, err)
			return err
		}
		details = append(details, models.PurchaseDetail{
			ItemId:      detail.ItemId,
			BatchNumber: detail.BatchNumber,
			// the lot the stock actually landed on: generated for a fresh
			// batch, the existing one on a merge
			LotId:      batch.LotId,
			Qty:        detail.Qty,
			UnitPrice:  detail.UnitPrice,
			Amount:     utils.RoundAmount(detail.Qty.Mul(detail.UnitPrice)),
			ExpiryDate: detail.ExpiryDate,
			VatStatus:  lineStatuses[i],
		})
	}

	doc.CompanyId = pc.CompanyId
	doc.FiscalYearId = pc.FiscalYearId
	doc.AccountId = input.AccountId
	doc.PurchaseDate = input.PurchaseDate
	doc.SupplierBillNumber = input.SupplierBillNumber
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
			config.LogError(logger, "purchaseWorkflow.go", "applyPurchase", "CreateDocument", doc, err)
			return err
		}
	} else if err := tx.Save(doc).Error; err != nil {
		config.LogError(logger, "purchaseWorkflow.go", "applyPurchase", "SaveDocument", doc, err)
		return err
	}
	for i := range details {
		details[i].PurchaseId = doc.ID
	}
	if err := tx.Create(&details).Error; err != nil {
		return err
	}
	doc.Details = details

	entries := BuildDocumentLedgerEntries(accounts, LedgerEntryParams{
		DocumentType:   models.DocumentTypePurchase,
		DocumentNumber: doc.DocumentNumber,
		ReferenceId:    doc.ID,
		PartyAccountId: doc.AccountId,
		PaymentMode:    doc.PaymentMode,
		Date:           doc.PurchaseDate,
		Charges:        charges,
	})
	if err := EmitDocumentLedger(tx, pc, entries); err != nil {
		config.LogError(logger, "purchaseWorkflow.go", "applyPurchase", "EmitDocumentLedger", entries, err)
		return err
	}
	return nil
}
