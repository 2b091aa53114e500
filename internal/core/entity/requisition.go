package entity

import (
	"time"

	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// RequisitionStatus is the approval state of a purchase requisition.
// The ledger core only ever creates pending requisitions; the
// downstream approval workflow owns later transitions.
type RequisitionStatus string

const (
	RequisitionPending   RequisitionStatus = "pending"
	RequisitionApproved  RequisitionStatus = "approved"
	RequisitionRejected  RequisitionStatus = "rejected"
	RequisitionFulfilled RequisitionStatus = "fulfilled"
)

// RequisitionOrigin records how the requisition came to exist.
type RequisitionOrigin string

const (
	OriginAutomatic RequisitionOrigin = "automatic"
	OriginManual    RequisitionOrigin = "manual"
)

// Requisition is a purchase request grouping under-stocked products
// of one warehouse. Immutable after creation in this core.
type Requisition struct {
	ID          id.ID             `db:"id" json:"id"`
	Number      string            `db:"number" json:"number"`
	Date        time.Time         `db:"date" json:"date"`
	WarehouseID id.ID             `db:"warehouse_id" json:"warehouseId"`
	Status      RequisitionStatus `db:"status" json:"status"`
	Origin      RequisitionOrigin `db:"origin" json:"origin"`

	// RequestedBy is the acting-user identifier passed through from
	// the caller; opaque to the core.
	RequestedBy string `db:"requested_by" json:"requestedBy"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	Lines []RequisitionLine `db:"-" json:"lines"`
}

// RequisitionLine is one product on a requisition.
type RequisitionLine struct {
	ID            id.ID          `db:"id" json:"id"`
	RequisitionID id.ID          `db:"requisition_id" json:"requisitionId"`
	ProductID     id.ID          `db:"product_id" json:"productId"`
	Quantity      types.Quantity `db:"quantity" json:"quantity"`
	SupplierID    *id.ID         `db:"supplier_id" json:"supplierId,omitempty"`
}
