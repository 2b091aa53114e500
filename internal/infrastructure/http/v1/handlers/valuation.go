package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockledger/internal/core/apperror"
	"stockledger/internal/domain/reports"
	"stockledger/internal/domain/valuation"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// ValuationHandler serves stock valuation and ABC classification.
type ValuationHandler struct {
	*BaseHandler
	service  *valuation.Service
	exporter *reports.Exporter
}

// NewValuationHandler creates a new valuation handler.
func NewValuationHandler(base *BaseHandler, service *valuation.Service, exporter *reports.Exporter) *ValuationHandler {
	return &ValuationHandler{
		BaseHandler: base,
		service:     service,
		exporter:    exporter,
	}
}

func (h *ValuationHandler) buildParams(c *gin.Context) (valuation.Params, bool) {
	var req dto.ValuationRequest
	if !h.BindQuery(c, &req) {
		return valuation.Params{}, false
	}

	method := valuation.WeightedAverage
	if req.Method != "" {
		parsed, err := valuation.ParseMethod(req.Method)
		if err != nil {
			h.Error(c, err)
			return valuation.Params{}, false
		}
		method = parsed
	}

	p := valuation.Params{
		Method:       method,
		IncludeEmpty: req.IncludeEmpty,
	}

	if req.AsOf != nil && *req.AsOf != "" {
		asOf, err := time.Parse(time.RFC3339, *req.AsOf)
		if err != nil {
			h.Error(c, apperror.NewInvalidArgument("invalid asOf date, expected RFC3339"))
			return valuation.Params{}, false
		}
		p.AsOf = asOf
	}

	warehouseID, ok := h.ParseOptionalID(c, "warehouseId", req.WarehouseID)
	if !ok {
		return valuation.Params{}, false
	}
	p.WarehouseID = warehouseID

	categoryID, ok := h.ParseOptionalID(c, "categoryId", req.CategoryID)
	if !ok {
		return valuation.Params{}, false
	}
	p.CategoryID = categoryID

	return p, true
}

// Get handles GET /valuation
func (h *ValuationHandler) Get(c *gin.Context) {
	p, ok := h.buildParams(c)
	if !ok {
		return
	}

	result, err := h.service.Valuate(c.Request.Context(), p)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// ABC handles GET /valuation/abc
func (h *ValuationHandler) ABC(c *gin.Context) {
	p, ok := h.buildParams(c)
	if !ok {
		return
	}

	result, err := h.service.Valuate(c.Request.Context(), p)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, valuation.Classify(result))
}

// Export handles GET /valuation/export
func (h *ValuationHandler) Export(c *gin.Context) {
	p, ok := h.buildParams(c)
	if !ok {
		return
	}

	var exportReq dto.ExportRequest
	if !h.BindQuery(c, &exportReq) {
		return
	}

	result, err := h.service.Valuate(c.Request.Context(), p)
	if err != nil {
		h.Error(c, err)
		return
	}

	out, err := h.exporter.ValuationCSV(result, reports.Options{Compress: exportReq.Compress})
	if err != nil {
		h.Error(c, err)
		return
	}

	filename := "valuation-" + string(result.Method) + ".csv"
	if exportReq.Compress {
		filename += ".zst"
		c.Header("Content-Encoding", "zstd")
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", out)
}

// RegisterRoutes registers valuation routes.
func (h *ValuationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Get)
	rg.GET("/abc", h.ABC)
	rg.GET("/export", h.Export)
}
