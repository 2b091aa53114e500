// Package reports renders ledger query results as CSV exports with
// stable column layouts.
package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/klauspost/compress/zstd"

	"stockledger/internal/core/id"
	"stockledger/internal/domain/kardex"
	"stockledger/internal/domain/valuation"
)

const timestampLayout = "2006-01-02 15:04:05"

// Options controls the rendering of one export.
type Options struct {
	// Compress wraps the CSV output in a zstd frame. Intended for
	// large valuation exports; the Content-Encoding is the caller's
	// concern.
	Compress bool
}

// Exporter renders kardex and valuation reports as CSV.
// Safe for concurrent use.
type Exporter struct {
	encoder *zstd.Encoder
}

// NewExporter creates an exporter with a shared zstd encoder.
func NewExporter() (*Exporter, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return &Exporter{encoder: encoder}, nil
}

var kardexHeader = []string{
	"Date", "Type", "Document", "Warehouse",
	"Inflow", "Outflow", "Balance",
	"UnitCost", "TotalCost", "BalanceCost", "Notes",
}

// KardexCSV renders one product ledger. warehouseNames maps warehouse
// ids to display names; unknown ids fall back to the raw id.
func (e *Exporter) KardexCSV(report *kardex.Report, warehouseNames map[id.ID]string, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(kardexHeader); err != nil {
		return nil, fmt.Errorf("write kardex header: %w", err)
	}

	for _, line := range report.Lines {
		inflow, outflow := "", ""
		if line.Kind.IsInbound() {
			inflow = line.Quantity.String()
		} else {
			outflow = line.Quantity.String()
		}

		totalCost := line.UnitCost.Mul(line.Quantity.Decimal())

		record := []string{
			line.OccurredAt.UTC().Format(timestampLayout),
			string(line.Kind),
			line.Document,
			warehouseName(warehouseNames, line.WarehouseID),
			inflow,
			outflow,
			line.RunningQuantity.String(),
			line.UnitCost.StringFixed(2),
			totalCost.StringFixed(2),
			line.RunningCostValue.StringFixed(2),
			line.Notes,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write kardex line: %w", err)
		}
	}

	trailers := [][]string{
		{"Opening Balance", report.Summary.OpeningBalance.String()},
		{"Total Inflows", report.Summary.TotalInflows.String()},
		{"Total Outflows", report.Summary.TotalOutflows.String()},
		{"Closing Balance", report.Summary.ClosingBalance.String()},
	}
	for _, trailer := range trailers {
		if err := w.Write(trailer); err != nil {
			return nil, fmt.Errorf("write kardex trailer: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush kardex csv: %w", err)
	}
	return e.finish(buf.Bytes(), opts), nil
}

var valuationHeader = []string{
	"SKU", "Product", "Category", "Unit",
	"Quantity", "UnitCost", "TotalValue",
	"LastInflow", "LastOutflow",
}

// ValuationCSV renders a valuation result: the item table, grand
// totals, then the per-category breakdown section.
func (e *Exporter) ValuationCSV(result *valuation.Result, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(valuationHeader); err != nil {
		return nil, fmt.Errorf("write valuation header: %w", err)
	}

	for _, item := range result.Items {
		record := []string{
			item.SKU,
			item.Name,
			item.CategoryName,
			item.Unit,
			item.Quantity.String(),
			item.UnitCost.StringFixed(2),
			item.TotalValue.StringFixed(2),
			formatDate(item.LastInflowAt),
			formatDate(item.LastOutflowAt),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write valuation item: %w", err)
		}
	}

	trailers := [][]string{
		{"Total Products", strconv.Itoa(result.TotalProducts)},
		{"Total Units", result.TotalQuantity.String()},
		{"Total Value", result.TotalValue.StringFixed(2)},
	}
	for _, trailer := range trailers {
		if err := w.Write(trailer); err != nil {
			return nil, fmt.Errorf("write valuation trailer: %w", err)
		}
	}

	if err := w.Write([]string{"Category", "Items", "Quantity", "Value"}); err != nil {
		return nil, fmt.Errorf("write category header: %w", err)
	}
	for _, cat := range result.Categories {
		record := []string{
			cat.CategoryName,
			strconv.Itoa(cat.ItemCount),
			cat.Quantity.String(),
			cat.Value.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write category row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush valuation csv: %w", err)
	}
	return e.finish(buf.Bytes(), opts), nil
}

func (e *Exporter) finish(data []byte, opts Options) []byte {
	if !opts.Compress {
		return data
	}
	return e.encoder.EncodeAll(data, make([]byte, 0, len(data)/2))
}

// Decompress reverses a compressed export. Useful for tests and for
// callers that stored the compressed frame.
func Decompress(data []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()
	out, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress export: %w", err)
	}
	return out, nil
}

func warehouseName(names map[id.ID]string, warehouseID id.ID) string {
	if name, ok := names[warehouseID]; ok {
		return name
	}
	return warehouseID.String()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
