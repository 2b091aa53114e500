package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
)

const alertsTable = "stock_alerts"

var alertColumns = ExtractDBColumns[entity.Alert]()

// AlertRepo implements store.AlertStore.
type AlertRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewAlertRepo creates an alert store bound to the given transaction
// manager.
func NewAlertRepo(txm *TxManager) *AlertRepo {
	return &AlertRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// FindPending returns the pending alert for the key, or nil when none
// exists. The dedup key is (product_id, warehouse_id, type).
func (r *AlertRepo) FindPending(ctx context.Context, productID, warehouseID id.ID, alertType entity.AlertType) (*entity.Alert, error) {
	sql, args, err := r.builder.Select(alertColumns...).
		From(alertsTable).
		Where(squirrel.Eq{
			"product_id":   productID,
			"warehouse_id": warehouseID,
			"type":         alertType,
			"state":        entity.AlertPending,
		}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var alert entity.Alert
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &alert, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, mapError("find pending alert", err)
	}
	return &alert, nil
}

// Insert writes a new alert.
func (r *AlertRepo) Insert(ctx context.Context, alert entity.Alert) error {
	sql, args, err := r.builder.Insert(alertsTable).
		SetMap(StructToMap(alert)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return mapError("insert alert", err)
	}
	return nil
}
