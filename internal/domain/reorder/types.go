package reorder

import (
	"time"

	"github.com/shopspring/decimal"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// DefaultWindowDays is the trailing window used to estimate the
// consumption rate when the caller does not specify one.
const DefaultWindowDays = 30

// NoConsumptionDays is the days-to-stockout sentinel for candidates
// with no outflows in the trailing window. They sort after everything
// with measurable consumption.
const NoConsumptionDays = 99999.0

// ScanParams narrows a reorder scan.
type ScanParams struct {
	// WarehouseID restricts the scan to a single warehouse.
	// When nil every active warehouse is scanned.
	WarehouseID *id.ID

	// WindowDays is the trailing consumption window (default 30).
	WindowDays int

	// Now anchors the scan. Zero means time.Now().UTC().
	Now time.Time
}

func (p *ScanParams) normalize() error {
	if p.WindowDays < 0 {
		return apperror.NewInvalidArgument("window_days must not be negative")
	}
	if p.WindowDays == 0 {
		p.WindowDays = DefaultWindowDays
	}
	if p.Now.IsZero() {
		p.Now = time.Now().UTC()
	}
	return nil
}

// Candidate is a product/warehouse pair at or below its reorder point.
type Candidate struct {
	ProductID   id.ID  `json:"product_id"`
	WarehouseID id.ID  `json:"warehouse_id"`
	SKU         string `json:"sku"`
	ProductName string `json:"product_name"`
	Warehouse   string `json:"warehouse"`
	Unit        string `json:"unit"`

	StockOnHand  types.Quantity  `json:"stock_on_hand"`
	MinStock     types.Quantity  `json:"min_stock"`
	MaxStock     *types.Quantity `json:"max_stock,omitempty"`
	ReorderPoint types.Quantity  `json:"reorder_point"`

	// ConsumptionRate is outflow units per day over the trailing window.
	ConsumptionRate decimal.Decimal `json:"consumption_rate"`

	// EstimatedDaysToStockout is stock divided by the consumption rate.
	// NoConsumptionDays when the rate is zero.
	EstimatedDaysToStockout float64 `json:"estimated_days_to_stockout"`

	// SuggestedQuantity replenishes up to max_stock (or twice min_stock
	// when max_stock is unset), never less than one whole unit.
	SuggestedQuantity types.Quantity `json:"suggested_quantity"`

	PreferredSupplierID *id.ID `json:"preferred_supplier_id,omitempty"`
}
