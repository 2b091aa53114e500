package kardex

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/store/storetest"
)

var (
	productID   = id.MustParse("018f7d2a-0000-7000-8000-000000000001")
	warehouseID = id.MustParse("018f7d2a-0000-7000-8000-000000000002")
)

func day(n int) time.Time {
	return time.Date(2025, 11, n, 0, 0, 0, 0, time.UTC)
}

func money(s string) *types.Money {
	m := types.MustMoney(s)
	return &m
}

func seedProduct(st *storetest.Store) {
	st.AddProduct(entity.Product{
		ID:       productID,
		SKU:      "WID-001",
		Name:     "Widget",
		Unit:     "pcs",
		IsActive: true,
	})
}

func addMovement(st *storetest.Store, d time.Time, kind entity.MovementKind, qty float64, cost *types.Money) {
	m := entity.NewMovement(productID, warehouseID, d, kind, types.NewQuantityFromFloat64(qty), cost)
	st.AddMovement(m)
}

func TestLedger_SimpleReplay(t *testing.T) {
	st := storetest.New()
	seedProduct(st)
	addMovement(st, day(1), entity.MovementInflow, 100, money("10"))
	addMovement(st, day(2), entity.MovementOutflow, 30, nil)
	addMovement(st, day(3), entity.MovementInflow, 50, money("12"))

	svc := NewService(st, st)
	report, err := svc.Ledger(context.Background(), Query{ProductID: productID})
	require.NoError(t, err)

	require.Len(t, report.Lines, 3)
	assert.Equal(t, types.NewQuantityFromFloat64(120), report.Summary.ClosingBalance)
	assert.Equal(t, types.NewQuantityFromFloat64(150), report.Summary.TotalInflows)
	assert.Equal(t, types.NewQuantityFromFloat64(30), report.Summary.TotalOutflows)
	assert.False(t, report.Inconsistent)

	// Running quantities after each line: 100, 70, 120.
	assert.Equal(t, types.NewQuantityFromFloat64(100), report.Lines[0].RunningQuantity)
	assert.Equal(t, types.NewQuantityFromFloat64(70), report.Lines[1].RunningQuantity)
	assert.Equal(t, types.NewQuantityFromFloat64(120), report.Lines[2].RunningQuantity)
}

func TestLedger_Deterministic(t *testing.T) {
	st := storetest.New()
	seedProduct(st)
	addMovement(st, day(1), entity.MovementInflow, 10, money("5"))
	addMovement(st, day(1), entity.MovementOutflow, 4, nil)
	addMovement(st, day(2), entity.MovementAdjustmentPositive, 1, money("5"))

	svc := NewService(st, st)
	first, err := svc.Ledger(context.Background(), Query{ProductID: productID})
	require.NoError(t, err)
	second, err := svc.Ledger(context.Background(), Query{ProductID: productID})
	require.NoError(t, err)

	assert.Equal(t, first.Summary, second.Summary)
	require.Equal(t, len(first.Lines), len(second.Lines))
	for i := range first.Lines {
		assert.Equal(t, first.Lines[i], second.Lines[i])
	}
}

func TestLedger_BalanceArithmetic(t *testing.T) {
	st := storetest.New()
	seedProduct(st)
	inflows := []float64{5, 12.5, 7}
	outflows := []float64{3, 1.5}
	for i, q := range inflows {
		addMovement(st, day(i+1), entity.MovementInflow, q, money("2"))
	}
	for i, q := range outflows {
		addMovement(st, day(i+10), entity.MovementOutflow, q, nil)
	}

	svc := NewService(st, st)
	report, err := svc.Ledger(context.Background(), Query{ProductID: productID})
	require.NoError(t, err)

	want := types.NewQuantityFromFloat64(5 + 12.5 + 7 - 3 - 1.5)
	assert.Equal(t, want, report.Summary.ClosingBalance)
	assert.Equal(t, report.Summary.OpeningBalance+report.Summary.TotalInflows-report.Summary.TotalOutflows,
		report.Summary.ClosingBalance)
}

func TestLedger_OpeningBalanceCarriedForward(t *testing.T) {
	st := storetest.New()
	seedProduct(st)
	addMovement(st, day(1), entity.MovementInflow, 100, money("10"))
	addMovement(st, day(2), entity.MovementOutflow, 40, nil)
	addMovement(st, day(10), entity.MovementInflow, 5, money("11"))

	from := day(5)
	svc := NewService(st, st)
	report, err := svc.Ledger(context.Background(), Query{ProductID: productID, From: &from})
	require.NoError(t, err)

	assert.Equal(t, types.NewQuantityFromFloat64(60), report.Summary.OpeningBalance)
	require.Len(t, report.Lines, 1)
	assert.Equal(t, types.NewQuantityFromFloat64(65), report.Summary.ClosingBalance)
}

func TestLedger_NegativeBalanceFlagged(t *testing.T) {
	st := storetest.New()
	seedProduct(st)
	addMovement(st, day(1), entity.MovementOutflow, 10, nil)

	svc := NewService(st, st)
	report, err := svc.Ledger(context.Background(), Query{ProductID: productID})
	require.NoError(t, err)

	// Preserved, not clamped.
	assert.Equal(t, types.NewQuantityFromFloat64(-10), report.Summary.ClosingBalance)
	assert.True(t, report.Inconsistent)
	require.NotNil(t, report.Warning)
	assert.Equal(t, apperror.CodeInconsistentLedger, report.Warning.Code)
}

func TestLedger_UnknownProduct(t *testing.T) {
	st := storetest.New()
	svc := NewService(st, st)

	_, err := svc.Ledger(context.Background(), Query{ProductID: id.New()})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestLedger_MalformedDateRange(t *testing.T) {
	st := storetest.New()
	seedProduct(st)
	svc := NewService(st, st)

	from := day(10)
	to := day(1)
	_, err := svc.Ledger(context.Background(), Query{ProductID: productID, From: &from, To: &to})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidArgument, appErr.Code)
}

func TestLedger_CostFallbackToAverage(t *testing.T) {
	st := storetest.New()
	avg := types.MustMoney("7.50")
	st.AddProduct(entity.Product{
		ID: productID, SKU: "WID-001", Name: "Widget", Unit: "pcs",
		AverageCost: &avg, IsActive: true,
	})
	addMovement(st, day(1), entity.MovementInflow, 4, nil)

	svc := NewService(st, st)
	report, err := svc.Ledger(context.Background(), Query{ProductID: productID})
	require.NoError(t, err)

	require.Len(t, report.Lines, 1)
	assert.True(t, report.Lines[0].UnitCost.Equal(avg))
	assert.True(t, report.Lines[0].RunningCostValue.Equal(types.MustMoney("30")))
}

func TestStockOnHand_AsOfDate(t *testing.T) {
	st := storetest.New()
	seedProduct(st)
	addMovement(st, day(1), entity.MovementInflow, 100, money("10"))
	addMovement(st, day(5), entity.MovementOutflow, 30, nil)

	svc := NewService(st, st)

	asOf := day(3)
	qty, err := svc.StockOnHand(context.Background(), productID, nil, &asOf)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(100), qty)

	qty, err = svc.StockOnHand(context.Background(), productID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(70), qty)
}
