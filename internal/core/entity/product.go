package entity

import (
	"time"

	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// Product is catalog reference data for the ledger. The catalog owns
// and mutates products; the ledger core only reads them.
type Product struct {
	ID   id.ID  `db:"id" json:"id"`
	SKU  string `db:"sku" json:"sku"`
	Name string `db:"name" json:"name"`

	// Unit is the unit of measure label (pcs, kg, ...).
	Unit string `db:"unit" json:"unit"`

	CategoryID   id.ID  `db:"category_id" json:"categoryId"`
	CategoryName string `db:"category_name" json:"categoryName,omitempty"`

	// MinStock > 0 marks the product as reorder-managed.
	MinStock types.Quantity  `db:"min_stock" json:"minStock"`
	MaxStock *types.Quantity `db:"max_stock" json:"maxStock,omitempty"`

	// ReorderPoint defaults to MinStock when unset.
	ReorderPoint *types.Quantity `db:"reorder_point" json:"reorderPoint,omitempty"`

	PreferredSupplierID *id.ID `db:"preferred_supplier_id" json:"preferredSupplierId,omitempty"`

	// AverageCost is the catalog-maintained average cost, used as the
	// replay fallback for movements without a unit cost.
	AverageCost *types.Money `db:"average_cost" json:"averageCost,omitempty"`

	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// EffectiveReorderPoint returns the reorder point, falling back to MinStock.
func (p *Product) EffectiveReorderPoint() types.Quantity {
	if p.ReorderPoint != nil {
		return *p.ReorderPoint
	}
	return p.MinStock
}

// ReplenishTarget is the stock level replenishment aims for:
// max_stock when configured, otherwise twice the minimum.
func (p *Product) ReplenishTarget() types.Quantity {
	if p.MaxStock != nil && p.MaxStock.IsPositive() {
		return *p.MaxStock
	}
	return p.MinStock * 2
}

// FallbackUnitCost returns the stored average cost or zero.
func (p *Product) FallbackUnitCost() types.Money {
	if p.AverageCost != nil {
		return *p.AverageCost
	}
	return types.ZeroMoney()
}

// Warehouse is static reference data for the ledger.
type Warehouse struct {
	ID        id.ID     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
