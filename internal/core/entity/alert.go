package entity

import (
	"time"

	"stockledger/internal/core/id"
)

// AlertType classifies stock alerts raised by the reorder flow.
type AlertType string

const (
	AlertStockLow             AlertType = "stock_low"
	AlertStockCritical        AlertType = "stock_critical"
	AlertRequisitionGenerated AlertType = "requisition_generated"
)

// AlertState tracks whether an alert has been acknowledged.
type AlertState string

const (
	AlertPending      AlertState = "pending"
	AlertAcknowledged AlertState = "acknowledged"
)

// Alert is a notification about a stock condition. Alerts are
// deduplicated: at most one pending alert exists per
// (product, warehouse, type).
type Alert struct {
	ID          id.ID      `db:"id" json:"id"`
	Type        AlertType  `db:"type" json:"type"`
	ProductID   id.ID      `db:"product_id" json:"productId"`
	WarehouseID id.ID      `db:"warehouse_id" json:"warehouseId"`
	Priority    int        `db:"priority" json:"priority"`
	State       AlertState `db:"state" json:"state"`
	Message     string     `db:"message" json:"message"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
}

// NewAlert creates a pending alert.
func NewAlert(alertType AlertType, productID, warehouseID id.ID, priority int, message string) Alert {
	return Alert{
		ID:          id.New(),
		Type:        alertType,
		ProductID:   productID,
		WarehouseID: warehouseID,
		Priority:    priority,
		State:       AlertPending,
		Message:     message,
		CreatedAt:   time.Now().UTC(),
	}
}
