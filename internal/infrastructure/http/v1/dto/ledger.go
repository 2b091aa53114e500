package dto

// KardexRequest selects the ledger window for one product.
// Dates are RFC3339; from is inclusive, to is exclusive.
type KardexRequest struct {
	WarehouseID *string `form:"warehouseId"`
	From        *string `form:"from"`
	To          *string `form:"to"`
}

// ValuationRequest configures a valuation run.
type ValuationRequest struct {
	Method       string  `form:"method"`
	AsOf         *string `form:"asOf"`
	WarehouseID  *string `form:"warehouseId"`
	CategoryID   *string `form:"categoryId"`
	IncludeEmpty bool    `form:"includeEmpty"`
}

// ExportRequest adds export options on top of the report parameters.
type ExportRequest struct {
	Compress bool `form:"compress"`
}

// ReorderScanRequest narrows a reorder scan.
type ReorderScanRequest struct {
	WarehouseID *string `form:"warehouseId"`
	WindowDays  int     `form:"windowDays"`
}

// GenerateRequisitionsRequest selects scan candidates to turn into
// requisitions. An empty selection generates from a fresh scan.
type GenerateRequisitionsRequest struct {
	WarehouseID *string `json:"warehouseId"`
	WindowDays  int     `json:"windowDays"`

	// ProductIDs, when set, restricts generation to these candidates.
	ProductIDs []string `json:"productIds"`
}
