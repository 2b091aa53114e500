// Package valuation computes stock value under multiple costing
// conventions and classifies it by Pareto significance.
package valuation

import (
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// Method selects the costing convention for stock on hand.
type Method string

const (
	WeightedAverage Method = "weighted_average"
	FIFO            Method = "fifo"
	LIFO            Method = "lifo"
)

// IsValid reports whether the method is supported.
func (m Method) IsValid() bool {
	switch m {
	case WeightedAverage, FIFO, LIFO:
		return true
	default:
		return false
	}
}

// ParseMethod converts a string to a Method.
func ParseMethod(s string) (Method, error) {
	m := Method(s)
	if !m.IsValid() {
		return "", apperror.NewInvalidArgument("unsupported costing method").
			WithDetail("method", s)
	}
	return m, nil
}

// Params configures one valuation run.
type Params struct {
	Method Method

	// AsOf is the cut-off date (exclusive); zero means now.
	AsOf time.Time

	WarehouseID *id.ID
	CategoryID  *id.ID

	// IncludeEmpty keeps products with zero or negative stock.
	IncludeEmpty bool

	// Concurrency bounds the parallel per-product workers;
	// zero uses the service default.
	Concurrency int
}

// Item is the valuation of one product.
type Item struct {
	ProductID    id.ID  `json:"productId"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Unit         string `json:"unit"`
	CategoryID   id.ID  `json:"categoryId"`
	CategoryName string `json:"categoryName,omitempty"`

	Quantity   types.Quantity `json:"quantity"`
	UnitCost   types.Money    `json:"unitCost"`
	TotalValue types.Money    `json:"totalValue"`

	LastInflowAt  *time.Time `json:"lastInflowAt,omitempty"`
	LastOutflowAt *time.Time `json:"lastOutflowAt,omitempty"`
}

// CategoryTotal is the per-category rollup.
type CategoryTotal struct {
	CategoryID   id.ID          `json:"categoryId"`
	CategoryName string         `json:"categoryName,omitempty"`
	ItemCount    int            `json:"itemCount"`
	Quantity     types.Quantity `json:"quantity"`
	Value        types.Money    `json:"value"`
}

// ItemError records a per-product failure inside a batch valuation.
// Partial failures are collected, not fatal to the batch.
type ItemError struct {
	ProductID id.ID  `json:"productId"`
	SKU       string `json:"sku,omitempty"`
	Message   string `json:"message"`
}

// Result is a full valuation report. Invariant:
// TotalValue == sum of category values == sum of item values.
type Result struct {
	Method Method    `json:"method"`
	AsOf   time.Time `json:"asOf"`

	Items      []Item          `json:"items"`
	Categories []CategoryTotal `json:"categories"`

	TotalProducts int            `json:"totalProducts"`
	TotalQuantity types.Quantity `json:"totalQuantity"`
	TotalValue    types.Money    `json:"totalValue"`

	Errors []ItemError `json:"errors,omitempty"`
}
