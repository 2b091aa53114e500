package kardex

import (
	"context"
	"fmt"
	"sort"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/store"
	"stockledger/pkg/logger"
)

// Service replays the movement log into ledgers and balances.
// Stateless: every call recomputes from the store.
type Service struct {
	movements store.MovementReader
	catalog   store.CatalogReader
}

// NewService creates a new kardex service.
func NewService(movements store.MovementReader, catalog store.CatalogReader) *Service {
	return &Service{
		movements: movements,
		catalog:   catalog,
	}
}

// Ledger replays the filtered window for one product into ordered
// lines plus a summary. Replay is deterministic for a fixed log: two
// calls against an unchanged log return identical output.
func (s *Service) Ledger(ctx context.Context, q Query) (*Report, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	product, err := s.catalog.GetProduct(ctx, q.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	report := &Report{
		ProductID:   product.ID,
		ProductSKU:  product.SKU,
		ProductName: product.Name,
		Unit:        product.Unit,
		From:        q.From,
		To:          q.To,
	}

	// Carried-forward balance: quantity-only replay of everything
	// strictly before the window.
	if q.From != nil {
		opening, err := s.movements.ListMovements(ctx, store.MovementQuery{
			ProductIDs:  []id.ID{q.ProductID},
			WarehouseID: q.WarehouseID,
			To:          q.From,
		})
		if err != nil {
			return nil, fmt.Errorf("list opening movements: %w", err)
		}
		report.Summary.OpeningBalance = Balance(opening)
	}

	window, err := s.movements.ListMovements(ctx, store.MovementQuery{
		ProductIDs:  []id.ID{q.ProductID},
		WarehouseID: q.WarehouseID,
		From:        q.From,
		To:          q.To,
	})
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}

	runningQty := report.Summary.OpeningBalance
	runningCost := types.ZeroMoney()
	report.Lines = make([]Line, 0, len(window))

	for _, m := range window {
		unitCost := product.FallbackUnitCost()
		if m.UnitCost != nil {
			unitCost = *m.UnitCost
		}
		lineValue := m.Quantity.Decimal().Mul(unitCost)

		if m.Kind.IsInbound() {
			runningQty += m.Quantity
			runningCost = runningCost.Add(lineValue)
			report.Summary.TotalInflows += m.Quantity
		} else {
			runningQty -= m.Quantity
			runningCost = runningCost.Sub(lineValue)
			report.Summary.TotalOutflows += m.Quantity
		}

		// A negative running quantity means an outflow was recorded
		// before its matching inflow. Preserved, never clamped: the
		// ledger must stay auditable.
		if runningQty.IsNegative() && !report.Inconsistent {
			report.Inconsistent = true
			report.Warning = inconsistentWarning(m)
			logger.Warn(ctx, "negative running balance during replay",
				"product_id", m.ProductID,
				"warehouse_id", m.WarehouseID,
				"movement_id", m.ID,
				"running_quantity", runningQty.String(),
			)
		}

		notes := ""
		if m.Notes != nil {
			notes = *m.Notes
		}
		report.Lines = append(report.Lines, Line{
			MovementID:       m.ID,
			OccurredAt:       m.OccurredAt,
			Kind:             m.Kind,
			Document:         m.Document,
			WarehouseID:      m.WarehouseID,
			Quantity:         m.Quantity,
			UnitCost:         unitCost,
			RunningQuantity:  runningQty,
			RunningCostValue: runningCost,
			Notes:            notes,
		})
	}

	report.Summary.ClosingBalance = runningQty
	return report, nil
}

// StockOnHand is the quantity primitive shared by valuation and
// reorder detection: the signed sum of all movements up to asOf.
func (s *Service) StockOnHand(ctx context.Context, productID id.ID, warehouseID *id.ID, asOf *time.Time) (types.Quantity, error) {
	q := store.MovementQuery{
		ProductIDs:  []id.ID{productID},
		WarehouseID: warehouseID,
		To:          asOf,
	}
	if err := q.Validate(); err != nil {
		return 0, err
	}
	movements, err := s.movements.ListMovements(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("list movements: %w", err)
	}
	return Balance(movements), nil
}

// Balance is the pure quantity replay over an ordered movement slice.
func Balance(movements []entity.Movement) types.Quantity {
	var total types.Quantity
	for i := range movements {
		total += movements[i].SignedQuantity()
	}
	return total
}

// SortChronological orders movements by (occurred_at, seq) ascending.
// Store results already arrive ordered; this is for in-memory groups
// assembled from batch range queries.
func SortChronological(movements []entity.Movement) {
	sort.SliceStable(movements, func(i, j int) bool {
		if !movements[i].OccurredAt.Equal(movements[j].OccurredAt) {
			return movements[i].OccurredAt.Before(movements[j].OccurredAt)
		}
		return movements[i].Seq < movements[j].Seq
	})
}

func inconsistentWarning(m entity.Movement) *apperror.AppError {
	return apperror.NewInconsistentLedger(m.ProductID.String(), m.WarehouseID.String()).
		WithDetail("movement_id", m.ID.String())
}
