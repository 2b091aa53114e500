package valuation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/kardex"
	"stockledger/internal/domain/store"
	"stockledger/pkg/logger"
)

var tracer = otel.Tracer("stockledger/valuation")

// DefaultConcurrency bounds the parallel per-product workers.
const DefaultConcurrency = 8

// Service values the stock of a product catalog as of a cut-off date.
// Stateless: each call replays the movement log.
type Service struct {
	movements   store.MovementReader
	catalog     store.CatalogReader
	concurrency int
}

// NewService creates a valuation service.
func NewService(movements store.MovementReader, catalog store.CatalogReader) *Service {
	return &Service{
		movements:   movements,
		catalog:     catalog,
		concurrency: DefaultConcurrency,
	}
}

// Valuate computes quantity on hand, unit cost, and total value per
// product, with a per-category rollup and a grand total. Products are
// processed in parallel worker tasks; per-product failures are
// collected into Result.Errors instead of aborting the batch.
func (s *Service) Valuate(ctx context.Context, p Params) (*Result, error) {
	if !p.Method.IsValid() {
		_, err := ParseMethod(string(p.Method))
		return nil, err
	}
	if p.AsOf.IsZero() {
		p.AsOf = time.Now().UTC()
	}

	products, err := s.catalog.ListProducts(ctx, store.ProductQuery{
		CategoryID: p.CategoryID,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	ctx, span := tracer.Start(ctx, "valuation.batch")
	defer span.End()
	span.SetAttributes(
		attribute.String("valuation.method", string(p.Method)),
		attribute.Int("valuation.products", len(products)),
	)

	limit := p.Concurrency
	if limit <= 0 {
		limit = s.concurrency
	}

	type slot struct {
		item *Item
		err  *ItemError
	}
	slots := make([]slot, len(products))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range products {
		g.Go(func() error {
			product := &products[i]
			item, itemErr := s.valuateProduct(gctx, p, product)
			slots[i] = slot{item: item, err: itemErr}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// On cancellation the partial computation is discarded.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		Method:     p.Method,
		AsOf:       p.AsOf,
		TotalValue: types.ZeroMoney(),
	}
	for _, sl := range slots {
		if sl.err != nil {
			result.Errors = append(result.Errors, *sl.err)
			continue
		}
		if sl.item == nil {
			continue
		}
		result.Items = append(result.Items, *sl.item)
		result.TotalQuantity += sl.item.Quantity
		result.TotalValue = result.TotalValue.Add(sl.item.TotalValue)
	}
	result.TotalProducts = len(result.Items)
	result.Categories = rollupCategories(result.Items)

	logger.Debug(ctx, "valuation complete",
		"method", string(p.Method),
		"items", result.TotalProducts,
		"errors", len(result.Errors),
	)
	return result, nil
}

// valuateProduct values a single product; returns (nil, nil) when the
// product is skipped for empty stock.
func (s *Service) valuateProduct(ctx context.Context, p Params, product *entity.Product) (*Item, *ItemError) {
	movements, err := s.movements.ListMovements(ctx, store.MovementQuery{
		ProductIDs:  []id.ID{product.ID},
		WarehouseID: p.WarehouseID,
		To:          &p.AsOf,
	})
	if err != nil {
		return nil, &ItemError{ProductID: product.ID, SKU: product.SKU, Message: err.Error()}
	}

	onHand := kardex.Balance(movements)
	if !onHand.IsPositive() && !p.IncludeEmpty {
		return nil, nil
	}

	cost := unitCost(p.Method, movements, product, onHand)

	item := &Item{
		ProductID:    product.ID,
		SKU:          product.SKU,
		Name:         product.Name,
		Unit:         product.Unit,
		CategoryID:   product.CategoryID,
		CategoryName: product.CategoryName,
		Quantity:     onHand,
		UnitCost:     cost,
		TotalValue:   onHand.Decimal().Mul(cost),
	}
	for i := range movements {
		m := &movements[i]
		t := m.OccurredAt
		if m.Kind.IsInbound() {
			item.LastInflowAt = &t
		} else {
			item.LastOutflowAt = &t
		}
	}
	return item, nil
}

func rollupCategories(items []Item) []CategoryTotal {
	byCategory := make(map[id.ID]*CategoryTotal)
	for i := range items {
		item := &items[i]
		ct, ok := byCategory[item.CategoryID]
		if !ok {
			ct = &CategoryTotal{
				CategoryID:   item.CategoryID,
				CategoryName: item.CategoryName,
				Value:        types.ZeroMoney(),
			}
			byCategory[item.CategoryID] = ct
		}
		ct.ItemCount++
		ct.Quantity += item.Quantity
		ct.Value = ct.Value.Add(item.TotalValue)
	}

	out := make([]CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CategoryName != out[j].CategoryName {
			return out[i].CategoryName < out[j].CategoryName
		}
		return out[i].CategoryID.String() < out[j].CategoryID.String()
	})
	return out
}
