package models

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmdatafocus/retail_backend/config"
	"github.com/mmdatafocus/retail_backend/utils"
)

type Item struct {
	ID        int             `gorm:"primary_key" json:"id"`
	CompanyId string          `gorm:"index;not null" json:"company_id" binding:"required"`
	Name      string          `gorm:"size:255;not null;index" json:"name" binding:"required"`
	Unit      string          `gorm:"size:50;not null" json:"unit" binding:"required"`
	VatStatus VatStatus       `gorm:"type:enum('vatable','vatExempt');default:vatable" json:"vat_status"`
	Stock     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"stock"`
	Batches   []Batch         `gorm:"foreignKey:ItemId" json:"batches"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Batch is one receipt-lot of an item. The identity key is the
// (BatchNumber, LotId) pair: batch numbers are supplier free text and can
// legitimately recur, the system-issued lot id disambiguates.
type Batch struct {
	ID               int             `gorm:"primary_key" json:"id"`
	ItemId           int             `gorm:"index;not null;uniqueIndex:idx_batch_identity,priority:1" json:"item_id"`
	BatchNumber      string          `gorm:"size:100;not null;uniqueIndex:idx_batch_identity,priority:2" json:"batch_number"`
	LotId            string          `gorm:"size:64;not null;uniqueIndex:idx_batch_identity,priority:3" json:"lot_id"`
	Qty              decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"qty"`
	PurchasePrice    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"purchase_price"`
	ExpiryDate       *time.Time      `json:"expiry_date"`
	ExpiryStatus     ExpiryStatus    `gorm:"type:enum('safe','warning','danger','expired');default:safe" json:"expiry_status"`
	DaysUntilExpiry  int             `gorm:"default:0" json:"days_until_expiry"`
	SourceTransferId *int            `gorm:"index" json:"source_transfer_id"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewItem struct {
	Name      string    `json:"name" binding:"required"`
	Unit      string    `json:"unit" binding:"required"`
	VatStatus VatStatus `json:"vat_status"`
}

// ClassifyExpiry maps an expiry date to its urgency bucket relative to now.
// Days are counted with a ceiling: any part of a remaining day counts.
func ClassifyExpiry(expiryDate time.Time, now time.Time) (ExpiryStatus, int) {
	days := int(math.Ceil(expiryDate.Sub(now).Hours() / 24))
	switch {
	case days <= 0:
		return ExpiryStatusExpired, days
	case days <= 30:
		return ExpiryStatusDanger, days
	case days <= 90:
		return ExpiryStatusWarning, days
	default:
		return ExpiryStatusSafe, days
	}
}

// RefreshExpiry recomputes the persisted status fields. Batches without an
// expiry date never leave the safe bucket.
func (b *Batch) RefreshExpiry(now time.Time) {
	if b.ExpiryDate == nil {
		b.ExpiryStatus = ExpiryStatusSafe
		b.DaysUntilExpiry = 0
		return
	}
	b.ExpiryStatus, b.DaysUntilExpiry = ClassifyExpiry(*b.ExpiryDate, now)
}

func (item *Item) findBatchIndex(batchNumber string, lotId string) int {
	for i := range item.Batches {
		if item.Batches[i].BatchNumber == batchNumber && item.Batches[i].LotId == lotId {
			return i
		}
	}
	return -1
}

func (item *Item) FindBatch(batchNumber string, lotId string) *Batch {
	idx := item.findBatchIndex(batchNumber, lotId)
	if idx < 0 {
		return nil
	}
	return &item.Batches[idx]
}

// RecomputeStock restores the at-rest invariant item.Stock == Σ batch.Qty.
func (item *Item) RecomputeStock() {
	total := decimal.Zero
	for i := range item.Batches {
		total = total.Add(item.Batches[i].Qty)
	}
	item.Stock = total
}

// ConsumeBatch decrements the identified batch. A batch drained to exactly
// zero is removed from the item's collection (and returned so the caller
// can delete the row). The mutation is rejected wholesale when the batch is
// missing or short.
func (item *Item) ConsumeBatch(batchNumber string, lotId string, qty decimal.Decimal, now time.Time) (*Batch, bool, error) {
	idx := item.findBatchIndex(batchNumber, lotId)
	if idx < 0 {
		return nil, false, utils.NewBatchNotFoundError(batchNumber, lotId)
	}
	batch := item.Batches[idx]
	if batch.Qty.LessThan(qty) {
		return nil, false, utils.NewInsufficientStockError(batchNumber, lotId)
	}
	batch.Qty = batch.Qty.Sub(qty)
	batch.RefreshExpiry(now)

	removed := batch.Qty.IsZero()
	if removed {
		item.Batches = append(item.Batches[:idx], item.Batches[idx+1:]...)
	} else {
		item.Batches[idx] = batch
	}
	item.RecomputeStock()
	return &batch, removed, nil
}

// RestoreBatch reverses a prior consumption. When the batch was fully
// drained and removed in the meantime it is recreated with the fallback
// unit cost; restoration never fails just because the batch emptied.
func (item *Item) RestoreBatch(batchNumber string, lotId string, qty decimal.Decimal, fallbackUnitCost decimal.Decimal, now time.Time) (*Batch, bool) {
	idx := item.findBatchIndex(batchNumber, lotId)
	if idx >= 0 {
		item.Batches[idx].Qty = item.Batches[idx].Qty.Add(qty)
		item.Batches[idx].RefreshExpiry(now)
		item.RecomputeStock()
		return &item.Batches[idx], false
	}
	batch := Batch{
		ItemId:        item.ID,
		BatchNumber:   batchNumber,
		LotId:         lotId,
		Qty:           qty,
		PurchasePrice: fallbackUnitCost,
	}
	batch.RefreshExpiry(now)
	item.Batches = append(item.Batches, batch)
	item.RecomputeStock()
	return &item.Batches[len(item.Batches)-1], true
}

// AddBatch receives new stock (purchase / opening entry). An existing
// (batchNumber, lotId) pair is merged; otherwise a fresh lot id is issued
// when the caller did not supply one.
func (item *Item) AddBatch(batchNumber string, lotId string, qty decimal.Decimal, purchasePrice decimal.Decimal, expiryDate *time.Time, now time.Time) (*Batch, bool) {
	if lotId != "" {
		if idx := item.findBatchIndex(batchNumber, lotId); idx >= 0 {
			item.Batches[idx].Qty = item.Batches[idx].Qty.Add(qty)
			item.Batches[idx].PurchasePrice = purchasePrice
			if expiryDate != nil {
				item.Batches[idx].ExpiryDate = expiryDate
			}
			item.Batches[idx].RefreshExpiry(now)
			item.RecomputeStock()
			return &item.Batches[idx], false
		}
	} else {
		lotId = utils.NewLotId()
	}
	batch := Batch{
		ItemId:        item.ID,
		BatchNumber:   batchNumber,
		LotId:         lotId,
		Qty:           qty,
		PurchasePrice: purchasePrice,
		ExpiryDate:    expiryDate,
	}
	batch.RefreshExpiry(now)
	item.Batches = append(item.Batches, batch)
	item.RecomputeStock()
	return &item.Batches[len(item.Batches)-1], true
}

// SortedBatches returns batches ordered by expiry (soonest first, undated
// last) with freshly recomputed statuses, for display.
func (item *Item) SortedBatches(now time.Time) []Batch {
	batches := make([]Batch, len(item.Batches))
	copy(batches, item.Batches)
	for i := range batches {
		batches[i].RefreshExpiry(now)
	}
	sort.SliceStable(batches, func(i, j int) bool {
		bi, bj := batches[i].ExpiryDate, batches[j].ExpiryDate
		if bi == nil {
			return false
		}
		if bj == nil {
			return true
		}
		return bi.Before(*bj)
	})
	return batches
}

func CreateItem(ctx context.Context, input *NewItem) (*Item, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, utils.NewValidationError("company id is required")
	}
	if err := utils.ValidateUnique[Item](ctx, companyId, "name", input.Name, 0); err != nil {
		return nil, err
	}

	vatStatus := input.VatStatus
	if vatStatus == "" {
		vatStatus = VatStatusVatable
	}
	item := Item{
		CompanyId: companyId,
		Name:      input.Name,
		Unit:      input.Unit,
		VatStatus: vatStatus,
		Stock:     decimal.Zero,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItemWithBatches is the read contract: aggregate stock plus the sorted
// batch list with statuses recomputed against the current clock, so a batch
// that crossed an urgency threshold since its last write reads correctly.
func GetItemWithBatches(ctx context.Context, id int) (*Item, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, utils.NewValidationError("company id is required")
	}
	item, err := utils.FetchModel[Item](ctx, companyId, id, "Batches")
	if err != nil {
		return nil, err
	}
	item.Batches = item.SortedBatches(time.Now())
	return item, nil
}
