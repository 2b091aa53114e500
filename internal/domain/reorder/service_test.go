package reorder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/alerting"
	"stockledger/internal/domain/store/storetest"
)

var (
	productID   = id.MustParse("018f7d2a-0000-7000-8000-000000000101")
	warehouseID = id.MustParse("018f7d2a-0000-7000-8000-000000000102")

	scanNow = time.Date(2025, time.November, 15, 12, 0, 0, 0, time.UTC)
)

func qty(units float64) types.Quantity {
	return types.NewQuantityFromFloat64(units)
}

func qtyPtr(units float64) *types.Quantity {
	q := qty(units)
	return &q
}

func testProduct(minStock, reorderPoint float64, maxStock *types.Quantity) entity.Product {
	rp := qty(reorderPoint)
	return entity.Product{
		ID:           productID,
		SKU:          "FLT-0001",
		Name:         "Oil filter",
		Unit:         "pcs",
		MinStock:     qty(minStock),
		MaxStock:     maxStock,
		ReorderPoint: &rp,
		IsActive:     true,
	}
}

func testWarehouse() entity.Warehouse {
	return entity.Warehouse{ID: warehouseID, Name: "Main", IsActive: true}
}

func addInflow(s *storetest.Store, pid id.ID, units float64, at time.Time) {
	s.AddMovement(entity.Movement{
		ID:          id.New(),
		ProductID:   pid,
		WarehouseID: warehouseID,
		OccurredAt:  at,
		Kind:        entity.MovementInflow,
		Quantity:    qty(units),
	})
}

func addOutflow(s *storetest.Store, pid id.ID, units float64, at time.Time) {
	s.AddMovement(entity.Movement{
		ID:          id.New(),
		ProductID:   pid,
		WarehouseID: warehouseID,
		OccurredAt:  at,
		Kind:        entity.MovementOutflow,
		Quantity:    qty(units),
	})
}

func TestScan_ConsumptionRateAndSuggestion(t *testing.T) {
	st := storetest.New()
	st.AddProduct(testProduct(20, 20, qtyPtr(100)))
	st.AddWarehouse(testWarehouse())

	// Stock 15 on hand, 60 units consumed inside the trailing 30 days.
	addInflow(st, productID, 75, scanNow.AddDate(0, 0, -40))
	addOutflow(st, productID, 60, scanNow.AddDate(0, 0, -10))

	svc := NewService(st, st, st, nil)
	candidates, err := svc.Scan(context.Background(), ScanParams{Now: scanNow})
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, qty(15), c.StockOnHand)
	assert.Equal(t, "2", c.ConsumptionRate.String())
	assert.InDelta(t, 7.5, c.EstimatedDaysToStockout, 1e-9)
	assert.Equal(t, qty(85), c.SuggestedQuantity)
}

func TestScan_SkipsProductsAboveReorderPoint(t *testing.T) {
	st := storetest.New()
	st.AddProduct(testProduct(20, 20, qtyPtr(100)))
	st.AddWarehouse(testWarehouse())

	addInflow(st, productID, 50, scanNow.AddDate(0, 0, -5))

	svc := NewService(st, st, st, nil)
	candidates, err := svc.Scan(context.Background(), ScanParams{Now: scanNow})
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestScan_OutflowOutsideWindowIgnored(t *testing.T) {
	st := storetest.New()
	st.AddProduct(testProduct(20, 20, qtyPtr(100)))
	st.AddWarehouse(testWarehouse())

	addInflow(st, productID, 70, scanNow.AddDate(0, 0, -90))
	// Consumption older than the window contributes to stock but not
	// to the rate.
	addOutflow(st, productID, 60, scanNow.AddDate(0, 0, -45))

	svc := NewService(st, st, st, nil)
	candidates, err := svc.Scan(context.Background(), ScanParams{Now: scanNow})
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, qty(10), c.StockOnHand)
	assert.True(t, c.ConsumptionRate.IsZero())
	assert.Equal(t, NoConsumptionDays, c.EstimatedDaysToStockout)
}

func TestScan_NoHistoryMeansZeroStock(t *testing.T) {
	st := storetest.New()
	st.AddProduct(testProduct(10, 10, nil))
	st.AddWarehouse(testWarehouse())

	svc := NewService(st, st, st, nil)
	candidates, err := svc.Scan(context.Background(), ScanParams{Now: scanNow})
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.True(t, c.StockOnHand.IsZero())
	// Target falls back to twice min_stock when max_stock is unset.
	assert.Equal(t, qty(20), c.SuggestedQuantity)
}

func TestScan_SuggestedQuantityAtLeastOneUnit(t *testing.T) {
	st := storetest.New()
	// Reorder point above the replenish target: stock 30 is under the
	// reorder point but already above max_stock.
	p := testProduct(10, 40, qtyPtr(25))
	st.AddProduct(p)
	st.AddWarehouse(testWarehouse())

	addInflow(st, productID, 30, scanNow.AddDate(0, 0, -5))

	svc := NewService(st, st, st, nil)
	candidates, err := svc.Scan(context.Background(), ScanParams{Now: scanNow})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, qty(1), candidates[0].SuggestedQuantity)
}

func TestScan_OrdersMostUrgentFirst(t *testing.T) {
	slowID := id.MustParse("018f7d2a-0000-7000-8000-000000000103")
	idleID := id.MustParse("018f7d2a-0000-7000-8000-000000000104")

	st := storetest.New()
	st.AddWarehouse(testWarehouse())

	fast := testProduct(20, 20, qtyPtr(100))
	st.AddProduct(fast)

	slow := testProduct(20, 20, qtyPtr(100))
	slow.ID = slowID
	slow.SKU = "FLT-0002"
	st.AddProduct(slow)

	idle := testProduct(20, 20, qtyPtr(100))
	idle.ID = idleID
	idle.SKU = "FLT-0003"
	st.AddProduct(idle)

	// fast: 15 on hand, 60 consumed -> 7.5 days
	addInflow(st, productID, 75, scanNow.AddDate(0, 0, -40))
	addOutflow(st, productID, 60, scanNow.AddDate(0, 0, -10))
	// slow: 15 on hand, 15 consumed -> 30 days
	addInflow(st, slowID, 30, scanNow.AddDate(0, 0, -40))
	addOutflow(st, slowID, 15, scanNow.AddDate(0, 0, -10))
	// idle: 15 on hand, no consumption -> sentinel, sorts last
	addInflow(st, idleID, 15, scanNow.AddDate(0, 0, -40))

	svc := NewService(st, st, st, nil)
	candidates, err := svc.Scan(context.Background(), ScanParams{Now: scanNow})
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, "FLT-0001", candidates[0].SKU)
	assert.Equal(t, "FLT-0002", candidates[1].SKU)
	assert.Equal(t, "FLT-0003", candidates[2].SKU)
}

func TestScan_RejectsNegativeWindow(t *testing.T) {
	svc := NewService(storetest.New(), storetest.New(), storetest.New(), nil)
	_, err := svc.Scan(context.Background(), ScanParams{WindowDays: -1})
	require.Error(t, err)
}

func TestRaiseAlerts_CreatesAndDeduplicates(t *testing.T) {
	st := storetest.New()
	st.AddProduct(testProduct(20, 20, qtyPtr(100)))
	st.AddWarehouse(testWarehouse())

	addInflow(st, productID, 75, scanNow.AddDate(0, 0, -40))
	addOutflow(st, productID, 60, scanNow.AddDate(0, 0, -10))

	rules, err := alerting.NewEngine(alerting.DefaultCriticalExpr)
	require.NoError(t, err)

	svc := NewService(st, st, st, rules)
	candidates, err := svc.Scan(context.Background(), ScanParams{Now: scanNow})
	require.NoError(t, err)

	created, err := svc.RaiseAlerts(context.Background(), candidates)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	alerts := st.Alerts()
	require.Len(t, alerts, 1)
	// 15 on hand vs min 20: low but not critical (> half of min_stock,
	// 7.5 days runway).
	assert.Equal(t, entity.AlertStockLow, alerts[0].Type)
	assert.Equal(t, entity.AlertPending, alerts[0].State)

	// A second scan must not duplicate the pending alert.
	created, err = svc.RaiseAlerts(context.Background(), candidates)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Len(t, st.Alerts(), 1)
}

func TestRaiseAlerts_CriticalWhenStockoutImminent(t *testing.T) {
	st := storetest.New()
	st.AddProduct(testProduct(20, 20, qtyPtr(100)))
	st.AddWarehouse(testWarehouse())

	// 4 on hand, 120 consumed in 30 days -> 1 day of runway.
	addInflow(st, productID, 124, scanNow.AddDate(0, 0, -40))
	addOutflow(st, productID, 120, scanNow.AddDate(0, 0, -10))

	rules, err := alerting.NewEngine(alerting.DefaultCriticalExpr)
	require.NoError(t, err)

	svc := NewService(st, st, st, rules)
	candidates, err := svc.Scan(context.Background(), ScanParams{Now: scanNow})
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	created, err := svc.RaiseAlerts(context.Background(), candidates)
	require.NoError(t, err)
	require.Equal(t, 1, created)
	assert.Equal(t, entity.AlertStockCritical, st.Alerts()[0].Type)
}

func TestScan_StoreOutagePropagates(t *testing.T) {
	st := storetest.New()
	st.AddProduct(testProduct(20, 20, qtyPtr(100)))
	st.AddWarehouse(testWarehouse())
	st.Err = assert.AnError

	svc := NewService(st, st, st, nil)
	_, err := svc.Scan(context.Background(), ScanParams{Now: scanNow})
	require.Error(t, err)
}
