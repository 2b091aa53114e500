package reorder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcontext "stockledger/internal/core/context"
	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/store/storetest"
	"stockledger/pkg/numerator"
)

func newTestGenerator(st *storetest.Store) *Generator {
	g := NewGenerator(st, st, numerator.New(st, numerator.DefaultConfig()))
	g.now = func() time.Time { return scanNow }
	return g
}

func candidate(productID, warehouseID id.ID, sku string, suggested float64) Candidate {
	return Candidate{
		ProductID:         productID,
		WarehouseID:       warehouseID,
		SKU:               sku,
		SuggestedQuantity: qty(suggested),
	}
}

func TestGenerate_SingleWarehouse(t *testing.T) {
	st := storetest.New()
	g := newTestGenerator(st)

	ctx := appcontext.WithActor(context.Background(), "planner-7")
	reqs, err := g.Generate(ctx, []Candidate{
		candidate(productID, warehouseID, "FLT-0001", 85),
	}, entity.OriginAutomatic)
	require.NoError(t, err)
	require.Len(t, reqs, 1)

	req := reqs[0]
	assert.Equal(t, "REQ25110001", req.Number)
	assert.Equal(t, entity.RequisitionPending, req.Status)
	assert.Equal(t, entity.OriginAutomatic, req.Origin)
	assert.Equal(t, "planner-7", req.RequestedBy)
	require.Len(t, req.Lines, 1)
	assert.Equal(t, productID, req.Lines[0].ProductID)
	assert.Equal(t, qty(85), req.Lines[0].Quantity)

	stored, err := st.GetRequisition(context.Background(), "REQ25110001")
	require.NoError(t, err)
	assert.Equal(t, req.ID, stored.ID)
}

func TestGenerate_SplitsPerWarehouse(t *testing.T) {
	otherWarehouse := id.MustParse("018f7d2a-0000-7000-8000-000000000110")
	otherProduct := id.MustParse("018f7d2a-0000-7000-8000-000000000111")

	st := storetest.New()
	g := newTestGenerator(st)

	reqs, err := g.Generate(context.Background(), []Candidate{
		candidate(productID, warehouseID, "FLT-0001", 85),
		candidate(otherProduct, otherWarehouse, "FLT-0002", 10),
		candidate(otherProduct, warehouseID, "FLT-0002", 5),
	}, entity.OriginAutomatic)
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	// First-seen warehouse order, sequential numbers.
	assert.Equal(t, "REQ25110001", reqs[0].Number)
	assert.Equal(t, warehouseID, reqs[0].WarehouseID)
	require.Len(t, reqs[0].Lines, 2)

	assert.Equal(t, "REQ25110002", reqs[1].Number)
	assert.Equal(t, otherWarehouse, reqs[1].WarehouseID)
	require.Len(t, reqs[1].Lines, 1)
}

func TestGenerate_RaisesSummaryAlertOncePerWarehouse(t *testing.T) {
	st := storetest.New()
	g := newTestGenerator(st)

	cands := []Candidate{candidate(productID, warehouseID, "FLT-0001", 85)}

	_, err := g.Generate(context.Background(), cands, entity.OriginAutomatic)
	require.NoError(t, err)

	alerts := st.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, entity.AlertRequisitionGenerated, alerts[0].Type)
	assert.Equal(t, warehouseID, alerts[0].WarehouseID)
	assert.True(t, id.IsNil(alerts[0].ProductID))

	// While the first alert is still pending, another batch does not
	// add a second one.
	_, err = g.Generate(context.Background(), cands, entity.OriginAutomatic)
	require.NoError(t, err)
	assert.Len(t, st.Alerts(), 1)
}

func TestGenerate_EmptyCandidates(t *testing.T) {
	g := newTestGenerator(storetest.New())

	_, err := g.Generate(context.Background(), nil, entity.OriginAutomatic)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidArgument, appErr.Code)
}

func TestGenerate_StoreFailureStopsBatch(t *testing.T) {
	st := storetest.New()
	g := newTestGenerator(st)
	st.Err = assert.AnError

	_, err := g.Generate(context.Background(), []Candidate{
		candidate(productID, warehouseID, "FLT-0001", 85),
	}, entity.OriginAutomatic)
	require.Error(t, err)
	assert.Empty(t, st.Requisitions())
}
