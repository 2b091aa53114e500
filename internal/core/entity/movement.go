// Package entity provides the core ledger entities.
package entity

import (
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// MovementKind defines the direction of a stock movement.
// Quantity is always non-negative; direction is encoded by the kind,
// never by sign.
type MovementKind string

const (
	MovementInflow             MovementKind = "inflow"
	MovementOutflow            MovementKind = "outflow"
	MovementAdjustmentPositive MovementKind = "adjustment_positive"
	MovementAdjustmentNegative MovementKind = "adjustment_negative"
)

// IsValid reports whether the kind is one of the four movement kinds.
func (k MovementKind) IsValid() bool {
	switch k {
	case MovementInflow, MovementOutflow, MovementAdjustmentPositive, MovementAdjustmentNegative:
		return true
	default:
		return false
	}
}

// IsInbound reports whether the kind increases the balance.
func (k MovementKind) IsInbound() bool {
	return k == MovementInflow || k == MovementAdjustmentPositive
}

// Movement is one entry in the append-only stock movement log.
// Movements are immutable once created and never deleted; corrections
// are recorded as new adjustment movements.
type Movement struct {
	ID          id.ID     `db:"id" json:"id"`
	ProductID   id.ID     `db:"product_id" json:"productId"`
	WarehouseID id.ID     `db:"warehouse_id" json:"warehouseId"`

	// OccurredAt is the business date of the movement; Seq breaks ties
	// between movements sharing the same timestamp (insertion order).
	OccurredAt time.Time `db:"occurred_at" json:"occurredAt"`
	Seq        int64     `db:"seq" json:"seq"`

	Kind     MovementKind   `db:"kind" json:"kind"`
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// UnitCost is the acquisition cost per unit; nil when the upstream
	// event carried no cost (replay falls back to the product's stored
	// average cost).
	UnitCost *types.Money `db:"unit_cost" json:"unitCost,omitempty"`

	// Document references the operational document that produced the
	// movement (purchase, consumption, correction).
	Document string  `db:"document" json:"document,omitempty"`
	Notes    *string `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewMovement creates a movement with a generated UUIDv7 id.
func NewMovement(productID, warehouseID id.ID, occurredAt time.Time, kind MovementKind, qty types.Quantity, unitCost *types.Money) Movement {
	return Movement{
		ID:          id.New(),
		ProductID:   productID,
		WarehouseID: warehouseID,
		OccurredAt:  occurredAt,
		Kind:        kind,
		Quantity:    qty,
		UnitCost:    unitCost,
		CreatedAt:   time.Now().UTC(),
	}
}

// SignedQuantity returns the quantity with direction applied.
func (m *Movement) SignedQuantity() types.Quantity {
	if m.Kind.IsInbound() {
		return m.Quantity
	}
	return m.Quantity.Neg()
}

// Validate checks the movement invariants.
func (m *Movement) Validate() error {
	if !m.Kind.IsValid() {
		return apperror.NewInvalidArgument("invalid movement kind").
			WithDetail("kind", string(m.Kind))
	}
	if m.Quantity.IsNegative() {
		return apperror.NewInvalidArgument("movement quantity must be non-negative").
			WithDetail("product_id", m.ProductID.String()).
			WithDetail("quantity", m.Quantity.String())
	}
	if id.IsNil(m.ProductID) {
		return apperror.NewInvalidArgument("product_id is required")
	}
	return nil
}
