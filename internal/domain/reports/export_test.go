package reports

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/kardex"
	"stockledger/internal/domain/valuation"
)

var (
	productID   = id.MustParse("018f7d2a-0000-7000-8000-000000000201")
	warehouseID = id.MustParse("018f7d2a-0000-7000-8000-000000000202")
	categoryID  = id.MustParse("018f7d2a-0000-7000-8000-000000000203")
)

func testKardexReport() *kardex.Report {
	day1 := time.Date(2025, time.November, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, time.November, 2, 9, 0, 0, 0, time.UTC)

	return &kardex.Report{
		ProductID:   productID,
		ProductSKU:  "FLT-0001",
		ProductName: "Oil filter",
		Unit:        "pcs",
		Lines: []kardex.Line{
			{
				MovementID:       id.New(),
				OccurredAt:       day1,
				Kind:             entity.MovementInflow,
				Document:         "GRN-55",
				WarehouseID:      warehouseID,
				Quantity:         types.NewQuantityFromUnits(100),
				UnitCost:         types.MustMoney("10"),
				RunningQuantity:  types.NewQuantityFromUnits(100),
				RunningCostValue: types.MustMoney("1000"),
			},
			{
				MovementID:       id.New(),
				OccurredAt:       day2,
				Kind:             entity.MovementOutflow,
				Document:         "ISS-9",
				WarehouseID:      warehouseID,
				Quantity:         types.NewQuantityFromUnits(30),
				UnitCost:         types.MustMoney("10"),
				RunningQuantity:  types.NewQuantityFromUnits(70),
				RunningCostValue: types.MustMoney("700"),
			},
		},
		Summary: kardex.Summary{
			OpeningBalance: 0,
			TotalInflows:   types.NewQuantityFromUnits(100),
			TotalOutflows:  types.NewQuantityFromUnits(30),
			ClosingBalance: types.NewQuantityFromUnits(70),
		},
	}
}

func TestKardexCSV_Layout(t *testing.T) {
	exporter, err := NewExporter()
	require.NoError(t, err)

	names := map[id.ID]string{warehouseID: "Main"}
	out, err := exporter.KardexCSV(testKardexReport(), names, Options{})
	require.NoError(t, err)

	reader := csv.NewReader(strings.NewReader(string(out)))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)
	// header + 2 lines + 4 trailers
	require.Len(t, records, 7)

	assert.Equal(t, kardexHeader, records[0])

	inflow := records[1]
	assert.Equal(t, "2025-11-01 09:00:00", inflow[0])
	assert.Equal(t, "inflow", inflow[1])
	assert.Equal(t, "GRN-55", inflow[2])
	assert.Equal(t, "Main", inflow[3])
	assert.Equal(t, "100.0000", inflow[4])
	assert.Equal(t, "", inflow[5])
	assert.Equal(t, "1000.00", inflow[8])

	outflow := records[2]
	assert.Equal(t, "", outflow[4])
	assert.Equal(t, "30.0000", outflow[5])
	assert.Equal(t, "70.0000", outflow[6])
	assert.Equal(t, "700.00", outflow[9])

	assert.Equal(t, []string{"Opening Balance", "0.0000"}, records[3])
	assert.Equal(t, []string{"Total Inflows", "100.0000"}, records[4])
	assert.Equal(t, []string{"Total Outflows", "30.0000"}, records[5])
	assert.Equal(t, []string{"Closing Balance", "70.0000"}, records[6])
}

func TestKardexCSV_UnknownWarehouseFallsBackToID(t *testing.T) {
	exporter, err := NewExporter()
	require.NoError(t, err)

	out, err := exporter.KardexCSV(testKardexReport(), nil, Options{})
	require.NoError(t, err)
	assert.Contains(t, string(out), warehouseID.String())
}

func testValuationResult() *valuation.Result {
	lastInflow := time.Date(2025, time.October, 20, 14, 0, 0, 0, time.UTC)

	return &valuation.Result{
		Method: valuation.WeightedAverage,
		AsOf:   time.Date(2025, time.November, 15, 0, 0, 0, 0, time.UTC),
		Items: []valuation.Item{
			{
				ProductID:     productID,
				SKU:           "FLT-0001",
				Name:          "Oil filter",
				Unit:          "pcs",
				CategoryID:    categoryID,
				CategoryName:  "Filters",
				Quantity:      types.NewQuantityFromUnits(120),
				UnitCost:      types.MustMoney("10.67"),
				TotalValue:    types.MustMoney("1280.40"),
				LastInflowAt:  &lastInflow,
				LastOutflowAt: nil,
			},
		},
		Categories: []valuation.CategoryTotal{
			{
				CategoryID:   categoryID,
				CategoryName: "Filters",
				ItemCount:    1,
				Quantity:     types.NewQuantityFromUnits(120),
				Value:        types.MustMoney("1280.40"),
			},
		},
		TotalProducts: 1,
		TotalQuantity: types.NewQuantityFromUnits(120),
		TotalValue:    types.MustMoney("1280.40"),
	}
}

func TestValuationCSV_Layout(t *testing.T) {
	exporter, err := NewExporter()
	require.NoError(t, err)

	out, err := exporter.ValuationCSV(testValuationResult(), Options{})
	require.NoError(t, err)

	reader := csv.NewReader(strings.NewReader(string(out)))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)
	// header + 1 item + 3 trailers + category header + 1 category
	require.Len(t, records, 7)

	assert.Equal(t, valuationHeader, records[0])

	item := records[1]
	assert.Equal(t, "FLT-0001", item[0])
	assert.Equal(t, "Filters", item[2])
	assert.Equal(t, "120.0000", item[4])
	assert.Equal(t, "10.67", item[5])
	assert.Equal(t, "1280.40", item[6])
	assert.Equal(t, "2025-10-20", item[7])
	assert.Equal(t, "", item[8])

	assert.Equal(t, []string{"Total Products", "1"}, records[2])
	assert.Equal(t, []string{"Total Units", "120.0000"}, records[3])
	assert.Equal(t, []string{"Total Value", "1280.40"}, records[4])

	assert.Equal(t, []string{"Category", "Items", "Quantity", "Value"}, records[5])
	assert.Equal(t, []string{"Filters", "1", "120.0000", "1280.40"}, records[6])
}

func TestValuationCSV_CompressRoundTrip(t *testing.T) {
	exporter, err := NewExporter()
	require.NoError(t, err)

	plain, err := exporter.ValuationCSV(testValuationResult(), Options{})
	require.NoError(t, err)

	compressed, err := exporter.ValuationCSV(testValuationResult(), Options{Compress: true})
	require.NoError(t, err)
	assert.NotEqual(t, plain, compressed)

	restored, err := Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, plain, restored)
}
