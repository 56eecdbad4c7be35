package models_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmdatafocus/retail_backend/models"
	"github.com/mmdatafocus/retail_backend/utils"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testItem() *models.Item {
	return &models.Item{
		ID:    1,
		Name:  "Paracetamol 500mg",
		Unit:  "strip",
		Stock: dec("10"),
		Batches: []models.Batch{
			{ID: 1, ItemId: 1, BatchNumber: "B1", LotId: "L1", Qty: dec("10"), PurchasePrice: dec("5")},
		},
	}
}

func TestClassifyExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		expiry   time.Time
		expected models.ExpiryStatus
	}{
		{"already expired", now.AddDate(0, 0, -1), models.ExpiryStatusExpired},
		{"expires this instant", now, models.ExpiryStatusExpired},
		{"within 30 days", now.AddDate(0, 0, 15), models.ExpiryStatusDanger},
		{"exactly 30 days", now.AddDate(0, 0, 30), models.ExpiryStatusDanger},
		{"within 90 days", now.AddDate(0, 0, 60), models.ExpiryStatusWarning},
		{"exactly 90 days", now.AddDate(0, 0, 90), models.ExpiryStatusWarning},
		{"beyond 90 days", now.AddDate(0, 0, 91), models.ExpiryStatusSafe},
	}
	for _, tc := range cases {
		status, _ := models.ClassifyExpiry(tc.expiry, now)
		if status != tc.expected {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.expected, status)
		}
	}
}

func TestClassifyExpiryCountsPartialDays(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	// half a day left still counts as one remaining day
	status, days := models.ClassifyExpiry(now.Add(12*time.Hour), now)
	if days != 1 || status != models.ExpiryStatusDanger {
		t.Fatalf("expected danger/1 day, got %s/%d", status, days)
	}
}

func TestConsumeBatchDecrementsAndKeepsStockInvariant(t *testing.T) {
	item := testItem()
	now := time.Now()

	batch, removed, err := item.ConsumeBatch("B1", "L1", dec("4"), now)
	if err != nil {
		t.Fatalf("ConsumeBatch: %v", err)
	}
	if removed {
		t.Fatal("batch with remaining qty must not be removed")
	}
	if !batch.Qty.Equal(dec("6")) {
		t.Fatalf("batch qty expected 6, got %s", batch.Qty.String())
	}
	if !item.Stock.Equal(dec("6")) {
		t.Fatalf("item stock expected 6, got %s", item.Stock.String())
	}
}

func TestConsumeBatchInsufficientStockLeavesStateUntouched(t *testing.T) {
	item := testItem()

	_, _, err := item.ConsumeBatch("B1", "L1", dec("12"), time.Now())
	if !utils.IsPostingCode(err, utils.ErrCodeInsufficientStock) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	if !item.Batches[0].Qty.Equal(dec("10")) {
		t.Fatalf("batch qty must stay 10, got %s", item.Batches[0].Qty.String())
	}
	if !item.Stock.Equal(dec("10")) {
		t.Fatalf("item stock must stay 10, got %s", item.Stock.String())
	}
}

func TestConsumeBatchUnknownIdentity(t *testing.T) {
	item := testItem()

	_, _, err := item.ConsumeBatch("B1", "L2", dec("1"), time.Now())
	if !utils.IsPostingCode(err, utils.ErrCodeBatchNotFound) {
		t.Fatalf("expected batch not found error, got %v", err)
	}
	// same batch number, different lot: the pair is the identity
	_, _, err = item.ConsumeBatch("B9", "L1", dec("1"), time.Now())
	if !utils.IsPostingCode(err, utils.ErrCodeBatchNotFound) {
		t.Fatalf("expected batch not found error, got %v", err)
	}
}

func TestConsumeBatchDrainedToZeroIsRemoved(t *testing.T) {
	item := testItem()

	batch, removed, err := item.ConsumeBatch("B1", "L1", dec("10"), time.Now())
	if err != nil {
		t.Fatalf("ConsumeBatch: %v", err)
	}
	if !removed {
		t.Fatal("fully drained batch must be removed")
	}
	if batch.ID != 1 {
		t.Fatalf("removed batch must keep its row id, got %d", batch.ID)
	}
	if len(item.Batches) != 0 {
		t.Fatalf("expected empty batch list, got %d", len(item.Batches))
	}
	if !item.Stock.IsZero() {
		t.Fatalf("item stock expected 0, got %s", item.Stock.String())
	}
}

func TestRestoreBatchIncrementsExisting(t *testing.T) {
	item := testItem()
	now := time.Now()

	batch, created := item.RestoreBatch("B1", "L1", dec("4"), dec("9.99"), now)
	if created {
		t.Fatal("existing batch must not be recreated")
	}
	if !batch.Qty.Equal(dec("14")) {
		t.Fatalf("batch qty expected 14, got %s", batch.Qty.String())
	}
	// the fallback cost only applies to recreated batches
	if !batch.PurchasePrice.Equal(dec("5")) {
		t.Fatalf("purchase price must stay 5, got %s", batch.PurchasePrice.String())
	}
	if !item.Stock.Equal(dec("14")) {
		t.Fatalf("item stock expected 14, got %s", item.Stock.String())
	}
}

func TestRestoreBatchRecreatesDrainedBatch(t *testing.T) {
	item := testItem()
	now := time.Now()

	if _, _, err := item.ConsumeBatch("B1", "L1", dec("10"), now); err != nil {
		t.Fatalf("ConsumeBatch: %v", err)
	}

	batch, created := item.RestoreBatch("B1", "L1", dec("10"), dec("5"), now)
	if !created {
		t.Fatal("drained batch must be recreated on restore")
	}
	if !batch.Qty.Equal(dec("10")) || !batch.PurchasePrice.Equal(dec("5")) {
		t.Fatalf("recreated batch expected qty 10 cost 5, got %s/%s", batch.Qty.String(), batch.PurchasePrice.String())
	}
	if !item.Stock.Equal(dec("10")) {
		t.Fatalf("item stock expected 10, got %s", item.Stock.String())
	}
}

func TestAddBatchMergesOnIdentityPair(t *testing.T) {
	item := testItem()
	now := time.Now()

	batch, created := item.AddBatch("B1", "L1", dec("5"), dec("6"), nil, now)
	if created {
		t.Fatal("matching identity pair must merge, not create")
	}
	if !batch.Qty.Equal(dec("15")) {
		t.Fatalf("merged qty expected 15, got %s", batch.Qty.String())
	}
	// merge refreshes the cost to the latest receipt
	if !batch.PurchasePrice.Equal(dec("6")) {
		t.Fatalf("merged cost expected 6, got %s", batch.PurchasePrice.String())
	}
}

func TestAddBatchIssuesLotIdWhenMissing(t *testing.T) {
	item := testItem()
	now := time.Now()

	batch, created := item.AddBatch("B1", "", dec("5"), dec("6"), nil, now)
	if !created {
		t.Fatal("empty lot id must always create a fresh lot")
	}
	if batch.LotId == "" {
		t.Fatal("created batch must carry a generated lot id")
	}
	if batch.LotId == "L1" {
		t.Fatal("generated lot id must not collide with the existing lot")
	}
	if len(item.Batches) != 2 {
		t.Fatalf("expected two batches, got %d", len(item.Batches))
	}
	if !item.Stock.Equal(dec("15")) {
		t.Fatalf("item stock expected 15, got %s", item.Stock.String())
	}
}

// Changing a line from (B1, qty 4) to (B2, qty 2): restoring the old line
// and consuming the new one must land both batches on their expected
// levels, with the stock invariant holding throughout.
func TestEditReversalRoundTrip(t *testing.T) {
	now := time.Now()
	item := &models.Item{
		ID: 1,
		Batches: []models.Batch{
			{ID: 1, ItemId: 1, BatchNumber: "B1", LotId: "L1", Qty: dec("6"), PurchasePrice: dec("5")},
			{ID: 2, ItemId: 1, BatchNumber: "B2", LotId: "L2", Qty: dec("8"), PurchasePrice: dec("7")},
		},
	}
	item.RecomputeStock()

	// reversal of the old line
	if _, created := item.RestoreBatch("B1", "L1", dec("4"), dec("5"), now); created {
		t.Fatal("B1 still exists, restore must merge")
	}
	// re-apply with the new line
	if _, _, err := item.ConsumeBatch("B2", "L2", dec("2"), now); err != nil {
		t.Fatalf("ConsumeBatch B2: %v", err)
	}

	if b1 := item.FindBatch("B1", "L1"); b1 == nil || !b1.Qty.Equal(dec("10")) {
		t.Fatalf("B1 expected qty 10 after reversal, got %v", b1)
	}
	if b2 := item.FindBatch("B2", "L2"); b2 == nil || !b2.Qty.Equal(dec("6")) {
		t.Fatalf("B2 expected qty 6 after re-apply, got %v", b2)
	}
	if !item.Stock.Equal(dec("16")) {
		t.Fatalf("item stock expected 16, got %s", item.Stock.String())
	}
}
