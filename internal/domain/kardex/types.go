// Package kardex replays the stock movement log into per-product
// running balances (a perpetual-inventory card).
package kardex

import (
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// Query selects the ledger window for one product.
type Query struct {
	ProductID   id.ID
	WarehouseID *id.ID

	// From is inclusive; when set, the balance of all movements
	// strictly before it is carried forward as the opening balance.
	From *time.Time

	// To is exclusive.
	To *time.Time
}

// Validate checks the query shape.
func (q Query) Validate() error {
	if id.IsNil(q.ProductID) {
		return apperror.NewInvalidArgument("product_id is required")
	}
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return apperror.NewInvalidArgument("malformed date range: from is after to").
			WithDetail("product_id", q.ProductID.String())
	}
	return nil
}

// Line is one derived ledger entry. Lines are computed fresh on every
// query and never cached: the underlying log can grow between calls.
type Line struct {
	MovementID  id.ID               `json:"movementId"`
	OccurredAt  time.Time           `json:"occurredAt"`
	Kind        entity.MovementKind `json:"kind"`
	Document    string              `json:"document,omitempty"`
	WarehouseID id.ID               `json:"warehouseId"`

	Quantity types.Quantity `json:"quantity"`
	UnitCost types.Money    `json:"unitCost"`

	RunningQuantity  types.Quantity `json:"runningQuantity"`
	RunningCostValue types.Money    `json:"runningCostValue"`

	Notes string `json:"notes,omitempty"`
}

// Summary aggregates the replayed window.
type Summary struct {
	OpeningBalance types.Quantity `json:"openingBalance"`
	TotalInflows   types.Quantity `json:"totalInflows"`
	TotalOutflows  types.Quantity `json:"totalOutflows"`
	ClosingBalance types.Quantity `json:"closingBalance"`
}

// Report is the full kardex for one product.
type Report struct {
	ProductID   id.ID     `json:"productId"`
	ProductSKU  string    `json:"productSku"`
	ProductName string    `json:"productName"`
	Unit        string    `json:"unit"`
	From        *time.Time `json:"from,omitempty"`
	To          *time.Time `json:"to,omitempty"`

	Lines   []Line  `json:"lines"`
	Summary Summary `json:"summary"`

	// Inconsistent is set when the replay produced a negative running
	// quantity (an outflow recorded before its matching inflow). The
	// ledger still renders for audit; nothing is clamped.
	Inconsistent bool               `json:"inconsistent"`
	Warning      *apperror.AppError `json:"warning,omitempty"`
}
