package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/reorder"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// ReorderHandler serves reorder scans and requisition generation.
type ReorderHandler struct {
	*BaseHandler
	service   *reorder.Service
	generator *reorder.Generator
}

// NewReorderHandler creates a new reorder handler.
func NewReorderHandler(base *BaseHandler, service *reorder.Service, generator *reorder.Generator) *ReorderHandler {
	return &ReorderHandler{
		BaseHandler: base,
		service:     service,
		generator:   generator,
	}
}

// Scan handles GET /reorder/scan
func (h *ReorderHandler) Scan(c *gin.Context) {
	var req dto.ReorderScanRequest
	if !h.BindQuery(c, &req) {
		return
	}

	warehouseID, ok := h.ParseOptionalID(c, "warehouseId", req.WarehouseID)
	if !ok {
		return
	}

	candidates, err := h.service.Scan(c.Request.Context(), reorder.ScanParams{
		WarehouseID: warehouseID,
		WindowDays:  req.WindowDays,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{
		"candidates": candidates,
		"count":      len(candidates),
	})
}

// Alerts handles POST /reorder/alerts — scans and raises pending
// alerts for the result.
func (h *ReorderHandler) Alerts(c *gin.Context) {
	var req dto.ReorderScanRequest
	if !h.BindQuery(c, &req) {
		return
	}

	warehouseID, ok := h.ParseOptionalID(c, "warehouseId", req.WarehouseID)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	candidates, err := h.service.Scan(ctx, reorder.ScanParams{
		WarehouseID: warehouseID,
		WindowDays:  req.WindowDays,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	created, err := h.service.RaiseAlerts(ctx, candidates)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{
		"candidates": len(candidates),
		"created":    created,
	})
}

// Generate handles POST /requisitions — turns scan candidates into
// pending requisitions, one per warehouse.
func (h *ReorderHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequisitionsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	warehouseID, ok := h.ParseOptionalID(c, "warehouseId", req.WarehouseID)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	candidates, err := h.service.Scan(ctx, reorder.ScanParams{
		WarehouseID: warehouseID,
		WindowDays:  req.WindowDays,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	if len(req.ProductIDs) > 0 {
		selected := make(map[id.ID]bool, len(req.ProductIDs))
		for _, raw := range req.ProductIDs {
			pid, err := id.Parse(raw)
			if err != nil {
				h.Error(c, apperror.NewInvalidArgument("invalid product id").WithDetail("product_id", raw))
				return
			}
			selected[pid] = true
		}
		filtered := candidates[:0]
		for _, cand := range candidates {
			if selected[cand.ProductID] {
				filtered = append(filtered, cand)
			}
		}
		candidates = filtered
	}

	requisitions, err := h.generator.Generate(ctx, candidates, entity.OriginManual)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{
		"requisitions": requisitions,
		"count":        len(requisitions),
	})
}

// GetRequisition handles GET /requisitions/:number
func (h *ReorderHandler) GetRequisition(c *gin.Context) {
	req, err := h.generator.Get(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, req)
}
