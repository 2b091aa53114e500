package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/kardex"
	"stockledger/internal/domain/reports"
	"stockledger/internal/domain/store"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// KardexHandler serves the per-product movement ledger.
type KardexHandler struct {
	*BaseHandler
	service  *kardex.Service
	catalog  store.CatalogReader
	exporter *reports.Exporter
}

// NewKardexHandler creates a new kardex handler.
func NewKardexHandler(base *BaseHandler, service *kardex.Service, catalog store.CatalogReader, exporter *reports.Exporter) *KardexHandler {
	return &KardexHandler{
		BaseHandler: base,
		service:     service,
		catalog:     catalog,
		exporter:    exporter,
	}
}

func (h *KardexHandler) buildQuery(c *gin.Context) (kardex.Query, bool) {
	var req dto.KardexRequest
	if !h.BindQuery(c, &req) {
		return kardex.Query{}, false
	}

	productID, ok := h.ParseIDParam(c, "productId")
	if !ok {
		return kardex.Query{}, false
	}

	warehouseID, ok := h.ParseOptionalID(c, "warehouseId", req.WarehouseID)
	if !ok {
		return kardex.Query{}, false
	}

	q := kardex.Query{ProductID: productID, WarehouseID: warehouseID}

	if req.From != nil && *req.From != "" {
		from, err := time.Parse(time.RFC3339, *req.From)
		if err != nil {
			h.Error(c, apperror.NewInvalidArgument("invalid from date, expected RFC3339"))
			return kardex.Query{}, false
		}
		q.From = &from
	}
	if req.To != nil && *req.To != "" {
		to, err := time.Parse(time.RFC3339, *req.To)
		if err != nil {
			h.Error(c, apperror.NewInvalidArgument("invalid to date, expected RFC3339"))
			return kardex.Query{}, false
		}
		q.To = &to
	}
	return q, true
}

// Get handles GET /kardex/:productId
func (h *KardexHandler) Get(c *gin.Context) {
	q, ok := h.buildQuery(c)
	if !ok {
		return
	}

	report, err := h.service.Ledger(c.Request.Context(), q)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// Export handles GET /kardex/:productId/export
func (h *KardexHandler) Export(c *gin.Context) {
	q, ok := h.buildQuery(c)
	if !ok {
		return
	}

	var exportReq dto.ExportRequest
	if !h.BindQuery(c, &exportReq) {
		return
	}

	ctx := c.Request.Context()
	report, err := h.service.Ledger(ctx, q)
	if err != nil {
		h.Error(c, err)
		return
	}

	warehouses, err := h.catalog.ListWarehouses(ctx, false)
	if err != nil {
		h.Error(c, err)
		return
	}
	names := make(map[id.ID]string, len(warehouses))
	for _, w := range warehouses {
		names[w.ID] = w.Name
	}

	out, err := h.exporter.KardexCSV(report, names, reports.Options{Compress: exportReq.Compress})
	if err != nil {
		h.Error(c, err)
		return
	}

	filename := "kardex-" + report.ProductSKU + ".csv"
	if exportReq.Compress {
		filename += ".zst"
		c.Header("Content-Encoding", "zstd")
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", out)
}

// StockOnHand handles GET /kardex/:productId/stock
func (h *KardexHandler) StockOnHand(c *gin.Context) {
	q, ok := h.buildQuery(c)
	if !ok {
		return
	}

	stock, err := h.service.StockOnHand(c.Request.Context(), q.ProductID, q.WarehouseID, q.To)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{
		"productId":   q.ProductID,
		"stockOnHand": stock,
	})
}

// RegisterRoutes registers kardex routes.
func (h *KardexHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:productId", h.Get)
	rg.GET("/:productId/export", h.Export)
	rg.GET("/:productId/stock", h.StockOnHand)
}
