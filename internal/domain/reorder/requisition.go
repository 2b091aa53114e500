package reorder

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"stockledger/internal/core/apperror"
	appcontext "stockledger/internal/core/context"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/alerting"
	"stockledger/internal/domain/store"
	"stockledger/pkg/logger"
	"stockledger/pkg/numerator"
)

// Generator turns reorder candidates into purchase requisitions.
type Generator struct {
	requisitions store.RequisitionStore
	alerts       store.AlertStore
	numbers      *numerator.Service
	now          func() time.Time
}

// NewGenerator creates a requisition generator.
func NewGenerator(requisitions store.RequisitionStore, alerts store.AlertStore, numbers *numerator.Service) *Generator {
	return &Generator{
		requisitions: requisitions,
		alerts:       alerts,
		numbers:      numbers,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Generate creates one pending requisition per warehouse represented in
// the candidate list, preserving candidate order within each warehouse.
// Every line quantity is the candidate's suggested quantity. A
// requisition_generated alert is raised per warehouse unless one is
// already pending.
func (g *Generator) Generate(ctx context.Context, candidates []Candidate, origin entity.RequisitionOrigin) ([]*entity.Requisition, error) {
	if len(candidates) == 0 {
		return nil, apperror.NewInvalidArgument("at least one candidate is required")
	}
	if origin == "" {
		origin = entity.OriginAutomatic
	}

	ctx, span := tracer.Start(ctx, "reorder.Generate")
	defer span.End()

	// Group per warehouse, keeping first-seen warehouse order so output
	// is deterministic for a sorted candidate list.
	var order []id.ID
	byWarehouse := make(map[id.ID][]Candidate)
	for _, c := range candidates {
		if _, seen := byWarehouse[c.WarehouseID]; !seen {
			order = append(order, c.WarehouseID)
		}
		byWarehouse[c.WarehouseID] = append(byWarehouse[c.WarehouseID], c)
	}

	now := g.now()
	requestedBy := appcontext.GetActor(ctx)

	requisitions := make([]*entity.Requisition, 0, len(order))
	for _, warehouseID := range order {
		group := byWarehouse[warehouseID]

		number, err := g.numbers.Next(ctx, now)
		if err != nil {
			return requisitions, fmt.Errorf("allocate requisition number: %w", err)
		}

		req := &entity.Requisition{
			ID:          id.New(),
			Number:      number,
			Date:        now,
			WarehouseID: warehouseID,
			Status:      entity.RequisitionPending,
			Origin:      origin,
			RequestedBy: requestedBy,
			CreatedAt:   now,
		}
		for _, c := range group {
			req.Lines = append(req.Lines, entity.RequisitionLine{
				ID:            id.New(),
				RequisitionID: req.ID,
				ProductID:     c.ProductID,
				Quantity:      c.SuggestedQuantity,
				SupplierID:    c.PreferredSupplierID,
			})
		}

		if err := g.requisitions.InsertRequisition(ctx, req); err != nil {
			return requisitions, fmt.Errorf("insert requisition %s: %w", number, err)
		}
		requisitions = append(requisitions, req)

		if err := g.raiseGeneratedAlert(ctx, req); err != nil {
			return requisitions, err
		}

		logger.Info(ctx, "requisition generated",
			"number", req.Number,
			"warehouse_id", warehouseID.String(),
			"lines", len(req.Lines),
			"requested_by", requestedBy,
		)
	}

	span.SetAttributes(attribute.Int("reorder.requisitions", len(requisitions)))
	return requisitions, nil
}

// Get fetches a previously generated requisition by number.
func (g *Generator) Get(ctx context.Context, number string) (*entity.Requisition, error) {
	if number == "" {
		return nil, apperror.NewInvalidArgument("requisition number is required")
	}
	return g.requisitions.GetRequisition(ctx, number)
}

func (g *Generator) raiseGeneratedAlert(ctx context.Context, req *entity.Requisition) error {
	existing, err := g.alerts.FindPending(ctx, id.Nil(), req.WarehouseID, entity.AlertRequisitionGenerated)
	if err != nil {
		return fmt.Errorf("find pending alerts: %w", err)
	}
	if existing != nil {
		return nil
	}

	msg := fmt.Sprintf("requisition %s generated with %d line(s)", req.Number, len(req.Lines))
	alert := entity.NewAlert(entity.AlertRequisitionGenerated, id.Nil(), req.WarehouseID, alerting.PriorityInfo, msg)
	if err := g.alerts.Insert(ctx, alert); err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}
