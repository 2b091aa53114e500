// Package store defines the read/write contract against the
// persistent collaborator (movement log, catalogs, requisitions,
// alerts). Implementations live under infrastructure/storage.
package store

import (
	"context"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
)

// MovementQuery selects movements from the append-only log.
// The query is an explicit, validated parameter struct; results are
// always ordered by (occurred_at, seq) ascending.
type MovementQuery struct {
	// ProductIDs limits the query to these products. Required:
	// unbounded log scans are not part of the contract.
	ProductIDs []id.ID

	WarehouseID *id.ID

	// From is inclusive, To is exclusive.
	From *time.Time
	To   *time.Time

	Kinds []entity.MovementKind
}

// Validate checks the query before dispatch to the store.
func (q MovementQuery) Validate() error {
	if len(q.ProductIDs) == 0 {
		return apperror.NewInvalidArgument("movement query requires at least one product_id")
	}
	for _, pid := range q.ProductIDs {
		if id.IsNil(pid) {
			return apperror.NewInvalidArgument("movement query contains nil product_id")
		}
	}
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return apperror.NewInvalidArgument("malformed date range: from is after to").
			WithDetail("from", q.From.Format(time.RFC3339)).
			WithDetail("to", q.To.Format(time.RFC3339))
	}
	return nil
}

// ProductQuery selects products from the catalog.
type ProductQuery struct {
	CategoryID *id.ID
	ActiveOnly bool

	// ReorderManagedOnly keeps only products with min_stock > 0.
	ReorderManagedOnly bool
}

// MovementReader is the read side of the movement log.
type MovementReader interface {
	// ListMovements returns movements ordered by (occurred_at, seq).
	ListMovements(ctx context.Context, q MovementQuery) ([]entity.Movement, error)
}

// CatalogReader exposes the product and warehouse catalogs.
type CatalogReader interface {
	GetProduct(ctx context.Context, productID id.ID) (*entity.Product, error)
	ListProducts(ctx context.Context, q ProductQuery) ([]entity.Product, error)
	ListWarehouses(ctx context.Context, activeOnly bool) ([]entity.Warehouse, error)
	GetWarehouse(ctx context.Context, warehouseID id.ID) (*entity.Warehouse, error)
}

// RequisitionStore persists generated requisitions and allocates
// their sequence numbers.
type RequisitionStore interface {
	// NextSequence atomically increments and returns the monthly
	// requisition counter. Implementations must serialize the
	// read-increment-write (UPSERT ... RETURNING or equivalent).
	NextSequence(ctx context.Context, year int, month time.Month) (int64, error)

	// InsertRequisition writes the header and lines in one transaction.
	InsertRequisition(ctx context.Context, req *entity.Requisition) error

	GetRequisition(ctx context.Context, number string) (*entity.Requisition, error)
}

// AlertStore persists stock alerts with pending-state dedup.
type AlertStore interface {
	// FindPending returns the pending alert for the key, or nil.
	FindPending(ctx context.Context, productID, warehouseID id.ID, alertType entity.AlertType) (*entity.Alert, error)

	Insert(ctx context.Context, alert entity.Alert) error
}
