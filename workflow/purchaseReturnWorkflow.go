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

// CreatePurchaseReturn runs the full posting protocol for a new purchase
// return: validate, consume batches, persist the document, emit the ledger
// set. Everything happens inside one transaction; any failure rolls the
// whole posting back.
func CreatePurchaseReturn(ctx context.Context, input *models.NewPurchaseReturn) (*models.PurchaseReturn, error) {
	pc, err := PostingContextFromRequest(ctx)
	if err != nil {
		return nil, err
	}
	logger := config.GetLogger()
	db := config.GetDB()

	redisLock, err := utils.CompanyLock(ctx, pc.CompanyId, "posting", "purchaseReturnWorkflow.go", "CreatePurchaseReturn")
	if err != nil {
		return nil, err
	}
	defer utils.ReleaseCompanyLock(ctx, redisLock)

	doc := &models.PurchaseReturn{}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := AcquireCompanyPostingLock(tx, pc.CompanyId); err != nil {
			return err
		}
		defer ReleaseCompanyPostingLock(tx, pc.CompanyId)

		session := newStockSession(tx, pc.CompanyId)
		return applyPurchaseReturn(tx, logger, pc, session, doc, input)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdatePurchaseReturn edits a posted document by full reversal and
// re-application: restore every old line, drop the old ledger set, then run
// the create steps again against the new line list, in place, atomically.
// Reverse-then-reapply (rather than diffing lines) stays correct no matter
// how batches, quantities or vat statuses changed between the versions.
func UpdatePurchaseReturn(ctx context.Context, id int, input *models.NewPurchaseReturn) (*models.PurchaseReturn, error) {
	pc, err := PostingContextFromRequest(ctx)
	if err != nil {
		return nil, err
	}
	logger := config.GetLogger()
	db := config.GetDB()

	redisLock, err := utils.CompanyLock(ctx, pc.CompanyId, "posting", "purchaseReturnWorkflow.go", "UpdatePurchaseReturn")
	if err != nil {
		return nil, err
	}
	defer utils.ReleaseCompanyLock(ctx, redisLock)

	doc := &models.PurchaseReturn{}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := AcquireCompanyPostingLock(tx, pc.CompanyId); err != nil {
			return err
		}
		defer ReleaseCompanyPostingLock(tx, pc.CompanyId)

		var existing models.PurchaseReturn
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Details").
			Where("company_id = ? AND id = ?", pc.CompanyId, id).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewValidationError("purchase return %d not found", id)
		} else if err != nil {
			return err
		}

		session := newStockSession(tx, pc.CompanyId)

		// Full unconditional reversal of the old stock effects.
		for _, detail := range existing.Details {
			if _, err := session.Restore(detail.ItemId, detail.BatchNumber, detail.LotId, detail.Qty, detail.CostPrice); err != nil {
				config.LogError(logger, "purchaseReturnWorkflow.go", "UpdatePurchaseReturn", "RestoreBatch", detail, err)
				return err
			}
		}
		if err := models.DeleteLedgerTransactionsForDocument(tx, pc.CompanyId, models.DocumentTypePurchaseReturn, id); err != nil {
			config.LogError(logger, "purchaseReturnWorkflow.go", "UpdatePurchaseReturn", "DeleteLedgerTransactions", id, err)
			return err
		}
		if err := tx.Where("purchase_return_id = ?", id).Delete(&models.PurchaseReturnDetail{}).Error; err != nil {
			return err
		}

		// Re-apply under the same document identity.
		doc.ID = existing.ID
		doc.DocumentNumber = existing.DocumentNumber
		doc.SequenceNo = existing.SequenceNo
		return applyPurchaseReturn(tx, logger, pc, session, doc, input)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// applyPurchaseReturn performs validate -> reserve -> persist -> post-ledger
// for one purchase return inside the ambient transaction. doc carries the
// existing identity on edit (ID, number, sequence) and is filled in place.
func applyPurchaseReturn(tx *gorm.DB, logger *logrus.Logger, pc *PostingContext, session *stockSession, doc *models.PurchaseReturn, input *models.NewPurchaseReturn) error {

	// Validate: the party account must exist under this company, the fixed
	// ledger accounts must be configured, and the vat mix must be legal —
	// all before the first batch mutation.
	if _, err := models.FindAccountById(tx, pc.CompanyId, input.AccountId); err != nil {
		config.LogError(logger, "purchaseReturnWorkflow.go", "applyPurchaseReturn", "FindAccountById", input.AccountId, err)
		return err
	}
	accounts, err := models.GetLedgerAccountSet(tx, pc.CompanyId)
	if err != nil {
		config.LogError(logger, "purchaseReturnWorkflow.go", "applyPurchaseReturn", "GetLedgerAccountSet", pc.CompanyId, err)
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

	policy, err := models.GetRoundOffPolicy(tx, pc.CompanyId, pc.UserId, pc.FiscalYearId, models.DocumentTypePurchaseReturn)
	if err != nil {
		return err
	}
	charges, err := utils.CalculateDocumentCharges(chargeLines, input.ChargeParams(policy.Enabled))
	if err != nil {
		return err
	}

	if doc.ID == 0 {
		number, sequenceNo, err := models.NextDocumentNumber(tx, pc.CompanyId, pc.FiscalYearId, models.DocumentTypePurchaseReturn)
		if err != nil {
			config.LogError(logger, "purchaseReturnWorkflow.go", "applyPurchaseReturn", "NextDocumentNumber", nil, err)
			return err
		}
		doc.DocumentNumber = number
		doc.SequenceNo = sequenceNo
	}

	// Reserve: consume line by line; a later line referencing the same item
	// sees the quantities earlier lines left behind.
	details := make([]models.PurchaseReturnDetail, 0, len(input.Details))
	for i, detail := range input.Details {
		batch, err := session.Consume(detail.ItemId, detail.BatchNumber, detail.LotId, detail.Qty)
		if err != nil {
			config.LogError(logger, "purchaseReturnWorkflow.go", "applyPurchaseReturn", "ConsumeBatch", detail, err)
			return err
		}
		details = append(details, models.PurchaseReturnDetail{
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

	// Persist header and finalized line list.
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
			config.LogError(logger, "purchaseReturnWorkflow.go", "applyPurchaseReturn", "CreateDocument", doc, err)
			return err
		}
	} else if err := tx.Save(doc).Error; err != nil {
		config.LogError(logger, "purchaseReturnWorkflow.go", "applyPurchaseReturn", "SaveDocument", doc, err)
		return err
	}
	for i := range details {
		details[i].PurchaseReturnId = doc.ID
	}
	if err := tx.Create(&details).Error; err != nil {
		return err
	}
	doc.Details = details

	// Post-Ledger: party debit for the grand total, balancing credits for
	// the trade/vat/round-off accounts, cash movement in cash mode.
	entries := BuildDocumentLedgerEntries(accounts, LedgerEntryParams{
		DocumentType:   models.DocumentTypePurchaseReturn,
		DocumentNumber: doc.DocumentNumber,
		ReferenceId:    doc.ID,
		PartyAccountId: doc.AccountId,
		PaymentMode:    doc.PaymentMode,
		Date:           doc.ReturnDate,
		Charges:        charges,
	})
	if err := EmitDocumentLedger(tx, pc, entries); err != nil {
		config.LogError(logger, "purchaseReturnWorkflow.go", "applyPurchaseReturn", "EmitDocumentLedger", entries, err)
		return err
	}
	return nil
}
