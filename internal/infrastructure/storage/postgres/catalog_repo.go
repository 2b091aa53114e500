package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/store"
)

const (
	productsTable   = "products"
	categoriesTable = "product_categories"
	warehousesTable = "warehouses"
)

var warehouseColumns = ExtractDBColumns[entity.Warehouse]()

// CatalogRepo implements store.CatalogReader. Products and warehouses
// are reference data owned upstream; this repo only reads.
type CatalogRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewCatalogRepo creates a catalog reader bound to the given
// transaction manager.
func NewCatalogRepo(txm *TxManager) *CatalogRepo {
	return &CatalogRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *CatalogRepo) productSelect() squirrel.SelectBuilder {
	return r.builder.Select(
		"p.id", "p.sku", "p.name", "p.unit",
		"p.category_id", "c.name AS category_name",
		"p.min_stock", "p.max_stock", "p.reorder_point",
		"p.preferred_supplier_id", "p.average_cost",
		"p.is_active", "p.created_at", "p.updated_at",
	).
		From(productsTable + " p").
		LeftJoin(categoriesTable + " c ON c.id = p.category_id")
}

func (r *CatalogRepo) GetProduct(ctx context.Context, productID id.ID) (*entity.Product, error) {
	sql, args, err := r.productSelect().
		Where(squirrel.Eq{"p.id": productID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var product entity.Product
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &product, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID.String())
		}
		return nil, mapError("get product", err)
	}
	return &product, nil
}

func (r *CatalogRepo) ListProducts(ctx context.Context, q store.ProductQuery) ([]entity.Product, error) {
	qb := r.productSelect().OrderBy("p.sku")

	if q.ActiveOnly {
		qb = qb.Where(squirrel.Eq{"p.is_active": true})
	}
	if q.CategoryID != nil {
		qb = qb.Where(squirrel.Eq{"p.category_id": *q.CategoryID})
	}
	if q.ReorderManagedOnly {
		qb = qb.Where(squirrel.Gt{"p.min_stock": 0})
	}

	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []entity.Product
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &products, sql, args...); err != nil {
		return nil, mapError("list products", err)
	}
	return products, nil
}

func (r *CatalogRepo) ListWarehouses(ctx context.Context, activeOnly bool) ([]entity.Warehouse, error) {
	qb := r.builder.Select(warehouseColumns...).
		From(warehousesTable).
		OrderBy("name")
	if activeOnly {
		qb = qb.Where(squirrel.Eq{"is_active": true})
	}

	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var warehouses []entity.Warehouse
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &warehouses, sql, args...); err != nil {
		return nil, mapError("list warehouses", err)
	}
	return warehouses, nil
}

func (r *CatalogRepo) GetWarehouse(ctx context.Context, warehouseID id.ID) (*entity.Warehouse, error) {
	sql, args, err := r.builder.Select(warehouseColumns...).
		From(warehousesTable).
		Where(squirrel.Eq{"id": warehouseID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var warehouse entity.Warehouse
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &warehouse, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("warehouse", warehouseID.String())
		}
		return nil, mapError("get warehouse", err)
	}
	return &warehouse, nil
}
