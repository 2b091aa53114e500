// Package reorder detects products that need replenishment and turns
// the resulting candidates into alerts and purchase requisitions.
package reorder

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/alerting"
	"stockledger/internal/domain/kardex"
	"stockledger/internal/domain/store"
	"stockledger/pkg/logger"
)

var tracer = otel.Tracer("stockledger/reorder")

// Service scans stock levels against reorder points.
type Service struct {
	movements store.MovementReader
	catalog   store.CatalogReader
	alerts    store.AlertStore
	rules     *alerting.Engine
}

// NewService creates the reorder service. rules may be nil, in which
// case RaiseAlerts classifies everything as stock_low.
func NewService(movements store.MovementReader, catalog store.CatalogReader, alerts store.AlertStore, rules *alerting.Engine) *Service {
	return &Service{
		movements: movements,
		catalog:   catalog,
		alerts:    alerts,
		rules:     rules,
	}
}

type pairKey struct {
	product   id.ID
	warehouse id.ID
}

// Scan computes reorder candidates for every reorder-managed active
// product across the selected warehouses. All movements are fetched in
// one batch query so the scan sees a single consistent snapshot.
// Candidates come back most urgent first (ascending days to stockout,
// then SKU).
func (s *Service) Scan(ctx context.Context, p ScanParams) ([]Candidate, error) {
	if err := p.normalize(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "reorder.Scan")
	defer span.End()

	products, err := s.catalog.ListProducts(ctx, store.ProductQuery{
		ActiveOnly:         true,
		ReorderManagedOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if len(products) == 0 {
		return nil, nil
	}

	warehouses, err := s.scanWarehouses(ctx, p.WarehouseID)
	if err != nil {
		return nil, err
	}
	if len(warehouses) == 0 {
		return nil, nil
	}

	productIDs := make([]id.ID, 0, len(products))
	for _, prod := range products {
		productIDs = append(productIDs, prod.ID)
	}

	movements, err := s.movements.ListMovements(ctx, store.MovementQuery{
		ProductIDs:  productIDs,
		WarehouseID: p.WarehouseID,
	})
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}

	grouped := make(map[pairKey][]entity.Movement)
	for _, m := range movements {
		key := pairKey{product: m.ProductID, warehouse: m.WarehouseID}
		grouped[key] = append(grouped[key], m)
	}

	windowStart := p.Now.AddDate(0, 0, -p.WindowDays)
	windowDays := decimal.NewFromInt(int64(p.WindowDays))

	var candidates []Candidate
	for _, prod := range products {
		for _, wh := range warehouses {
			movs := grouped[pairKey{product: prod.ID, warehouse: wh.ID}]
			stock := kardex.Balance(movs)
			if stock > prod.EffectiveReorderPoint() {
				continue
			}
			candidates = append(candidates, s.buildCandidate(prod, wh, movs, stock, windowStart, windowDays, p.Now))
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].EstimatedDaysToStockout != candidates[j].EstimatedDaysToStockout {
			return candidates[i].EstimatedDaysToStockout < candidates[j].EstimatedDaysToStockout
		}
		return candidates[i].SKU < candidates[j].SKU
	})

	span.SetAttributes(
		attribute.Int("reorder.products", len(products)),
		attribute.Int("reorder.candidates", len(candidates)),
	)
	logger.Debug(ctx, "reorder scan finished",
		"products", len(products),
		"warehouses", len(warehouses),
		"candidates", len(candidates),
	)
	return candidates, nil
}

func (s *Service) scanWarehouses(ctx context.Context, warehouseID *id.ID) ([]entity.Warehouse, error) {
	if warehouseID != nil {
		wh, err := s.catalog.GetWarehouse(ctx, *warehouseID)
		if err != nil {
			return nil, err
		}
		return []entity.Warehouse{*wh}, nil
	}
	warehouses, err := s.catalog.ListWarehouses(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	return warehouses, nil
}

func (s *Service) buildCandidate(prod entity.Product, wh entity.Warehouse, movs []entity.Movement, stock types.Quantity, windowStart time.Time, windowDays decimal.Decimal, now time.Time) Candidate {
	var outflow types.Quantity
	for _, m := range movs {
		if m.Kind.IsInbound() {
			continue
		}
		if m.OccurredAt.Before(windowStart) || !m.OccurredAt.Before(now) {
			continue
		}
		outflow += m.Quantity
	}

	rate := decimal.Zero
	if windowDays.IsPositive() {
		rate = outflow.Decimal().Div(windowDays)
	}

	days := NoConsumptionDays
	if rate.IsPositive() {
		if stock <= 0 {
			days = 0
		} else {
			days, _ = stock.Decimal().Div(rate).Round(2).Float64()
		}
	}

	suggested := (prod.ReplenishTarget() - stock).CeilUnits()
	if minOrder := types.NewQuantityFromUnits(1); suggested < minOrder {
		suggested = minOrder
	}

	return Candidate{
		ProductID:               prod.ID,
		WarehouseID:             wh.ID,
		SKU:                     prod.SKU,
		ProductName:             prod.Name,
		Warehouse:               wh.Name,
		Unit:                    prod.Unit,
		StockOnHand:             stock,
		MinStock:                prod.MinStock,
		MaxStock:                prod.MaxStock,
		ReorderPoint:            prod.EffectiveReorderPoint(),
		ConsumptionRate:         rate.Round(4),
		EstimatedDaysToStockout: days,
		SuggestedQuantity:       suggested,
		PreferredSupplierID:     prod.PreferredSupplierID,
	}
}

// RaiseAlerts creates a pending alert for each candidate that does not
// already have one of the same type for the same product/warehouse.
// Returns the number of alerts created.
func (s *Service) RaiseAlerts(ctx context.Context, candidates []Candidate) (int, error) {
	created := 0
	for _, c := range candidates {
		alertType, priority := s.classify(c)

		existing, err := s.alerts.FindPending(ctx, c.ProductID, c.WarehouseID, alertType)
		if err != nil {
			return created, fmt.Errorf("find pending alerts: %w", err)
		}
		if existing != nil {
			continue
		}

		alert := entity.NewAlert(alertType, c.ProductID, c.WarehouseID, priority, alertMessage(c, alertType))
		if err := s.alerts.Insert(ctx, alert); err != nil {
			return created, fmt.Errorf("insert alert: %w", err)
		}
		created++
	}
	if created > 0 {
		logger.Info(ctx, "reorder alerts raised", "created", created, "candidates", len(candidates))
	}
	return created, nil
}

func (s *Service) classify(c Candidate) (entity.AlertType, int) {
	if s.rules == nil {
		return entity.AlertStockLow, alerting.PriorityLow
	}
	stock, _ := c.StockOnHand.Decimal().Float64()
	minStock, _ := c.MinStock.Decimal().Float64()
	reorderPoint, _ := c.ReorderPoint.Decimal().Float64()
	return s.rules.Evaluate(alerting.Input{
		StockOnHand:    stock,
		MinStock:       minStock,
		ReorderPoint:   reorderPoint,
		DaysToStockout: c.EstimatedDaysToStockout,
	})
}

func alertMessage(c Candidate, alertType entity.AlertType) string {
	verb := "low"
	if alertType == entity.AlertStockCritical {
		verb = "critical"
	}
	return fmt.Sprintf("stock %s for %s at %s: %s %s on hand, reorder point %s",
		verb, c.SKU, c.Warehouse, c.StockOnHand.String(), c.Unit, c.ReorderPoint.String())
}
