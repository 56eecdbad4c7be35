package workflow

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mmdatafocus/retail_backend/models"
	"github.com/mmdatafocus/retail_backend/utils"
)

// stockSession drives batch mutations for one posting transaction. Items
// are loaded once (row-locked) and cached, so a later line referencing the
// same item observes the quantities left by earlier lines — line processing
// is strictly sequential.
type stockSession struct {
	tx        *gorm.DB
	companyId string
	now       time.Time
	items     map[int]*models.Item
}

func newStockSession(tx *gorm.DB, companyId string) *stockSession {
	return &stockSession{
		tx:        tx,
		companyId: companyId,
		now:       time.Now(),
		items:     make(map[int]*models.Item),
	}
}

// Item loads (and locks) the item with its batch collection, or returns the
// already-loaded copy carrying this session's pending mutations.
func (s *stockSession) Item(itemId int) (*models.Item, error) {
	if item, ok := s.items[itemId]; ok {
		return item, nil
	}
	var item models.Item
	err := s.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Batches").
		Where("company_id = ? AND id = ?", s.companyId, itemId).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewValidationError("item %d not found", itemId)
		}
		return nil, err
	}
	s.items[itemId] = &item
	return &item, nil
}

// Consume decrements the identified batch and persists the change. Returns
// the batch state before removal so callers can capture its unit cost.
func (s *stockSession) Consume(itemId int, batchNumber string, lotId string, qty decimal.Decimal) (*models.Batch, error) {
	item, err := s.Item(itemId)
	if err != nil {
		return nil, err
	}
	batch, removed, err := item.ConsumeBatch(batchNumber, lotId, qty, s.now)
	if err != nil {
		return nil, err
	}
	if removed {
		if err := s.tx.Delete(&models.Batch{}, batch.ID).Error; err != nil {
			return nil, err
		}
	} else if err := s.saveBatch(batch); err != nil {
		return nil, err
	}
	return batch, s.saveStock(item)
}

// Restore reverses a prior consumption, recreating the batch with the
// fallback cost when it was drained and removed in the meantime.
func (s *stockSession) Restore(itemId int, batchNumber string, lotId string, qty decimal.Decimal, fallbackUnitCost decimal.Decimal) (*models.Batch, error) {
	item, err := s.Item(itemId)
	if err != nil {
		return nil, err
	}
	batch, created := item.RestoreBatch(batchNumber, lotId, qty, fallbackUnitCost, s.now)
	if created {
		if err := s.tx.Create(batch).Error; err != nil {
			return nil, err
		}
	} else if err := s.saveBatch(batch); err != nil {
		return nil, err
	}
	return batch, s.saveStock(item)
}

// Add receives new stock for a purchase line, merging onto an existing lot
// when the identity pair matches.
func (s *stockSession) Add(itemId int, batchNumber string, lotId string, qty decimal.Decimal, purchasePrice decimal.Decimal, expiryDate *time.Time) (*models.Batch, error) {
	item, err := s.Item(itemId)
	if err != nil {
		return nil, err
	}
	batch, created := item.AddBatch(batchNumber, lotId, qty, purchasePrice, expiryDate, s.now)
	if created {
		if err := s.tx.Create(batch).Error; err != nil {
			return nil, err
		}
	} else if err := s.saveBatch(batch); err != nil {
		return nil, err
	}
	return batch, s.saveStock(item)
}

func (s *stockSession) saveBatch(batch *models.Batch) error {
	return s.tx.Model(&models.Batch{}).Where("id = ?", batch.ID).Updates(map[string]interface{}{
		"qty":               batch.Qty,
		"purchase_price":    batch.PurchasePrice,
		"expiry_date":       batch.ExpiryDate,
		"expiry_status":     batch.ExpiryStatus,
		"days_until_expiry": batch.DaysUntilExpiry,
	}).Error
}

func (s *stockSession) saveStock(item *models.Item) error {
	return s.tx.Model(&models.Item{}).Where("id = ?", item.ID).Update("stock", item.Stock).Error
}
