package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
)

const (
	requisitionsTable     = "requisitions"
	requisitionLinesTable = "requisition_lines"
	sequencesTable        = "requisition_sequences"
)

var requisitionLineColumns = ExtractDBColumns[entity.RequisitionLine]()

// RequisitionRepo implements store.RequisitionStore.
type RequisitionRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewRequisitionRepo creates a requisition store bound to the given
// transaction manager.
func NewRequisitionRepo(txm *TxManager) *RequisitionRepo {
	return &RequisitionRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// NextSequence atomically increments the monthly counter. The UPSERT
// serializes concurrent allocators on the (year, month) row; no two
// callers can observe the same value.
func (r *RequisitionRepo) NextSequence(ctx context.Context, year int, month time.Month) (int64, error) {
	var num int64
	querier := r.txm.GetQuerier(ctx)
	err := querier.QueryRow(ctx, `
        INSERT INTO requisition_sequences (year, month, current_val)
        VALUES ($1, $2, 1)
        ON CONFLICT (year, month) DO UPDATE SET current_val = requisition_sequences.current_val + 1
        RETURNING current_val
	`, year, int(month)).Scan(&num)
	if err != nil {
		return 0, mapError("next requisition sequence", err)
	}
	return num, nil
}

// InsertRequisition writes the header and its lines in one
// transaction. Lines go through the COPY protocol.
func (r *RequisitionRepo) InsertRequisition(ctx context.Context, req *entity.Requisition) error {
	return r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		sql, args, err := r.builder.Insert(requisitionsTable).
			Columns("id", "number", "date", "warehouse_id", "status", "origin", "requested_by", "created_at").
			Values(req.ID, req.Number, req.Date, req.WarehouseID, req.Status, req.Origin, req.RequestedBy, req.CreatedAt).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}

		querier := r.txm.GetQuerier(ctx)
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return mapError("insert requisition", err)
		}

		if len(req.Lines) == 0 {
			return nil
		}

		rows := make([][]any, 0, len(req.Lines))
		for _, line := range req.Lines {
			rows = append(rows, []any{
				line.ID, line.RequisitionID, line.ProductID, line.Quantity, line.SupplierID,
			})
		}
		inserter := NewBatchInserter(r.txm)
		if _, err := inserter.CopyFromSlice(ctx, requisitionLinesTable, requisitionLineColumns, rows); err != nil {
			return mapError("insert requisition lines", err)
		}
		return nil
	})
}

// GetRequisition fetches a requisition with its lines by number.
func (r *RequisitionRepo) GetRequisition(ctx context.Context, number string) (*entity.Requisition, error) {
	sql, args, err := r.builder.Select(
		"id", "number", "date", "warehouse_id", "status", "origin", "requested_by", "created_at",
	).
		From(requisitionsTable).
		Where(squirrel.Eq{"number": number}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var req entity.Requisition
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &req, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("requisition", number)
		}
		return nil, mapError("get requisition", err)
	}

	sql, args, err = r.builder.Select(requisitionLineColumns...).
		From(requisitionLinesTable).
		Where(squirrel.Eq{"requisition_id": req.ID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &req.Lines, sql, args...); err != nil {
		return nil, mapError("get requisition lines", err)
	}
	return &req, nil
}
