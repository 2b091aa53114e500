package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/entity"
	"stockledger/internal/domain/store"
)

const movementsTable = "stock_movements"

var movementColumns = ExtractDBColumns[entity.Movement]()

// MovementRepo implements store.MovementReader on the append-only
// movement log.
type MovementRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewMovementRepo creates a movement reader bound to the given
// transaction manager.
func NewMovementRepo(txm *TxManager) *MovementRepo {
	return &MovementRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListMovements returns movements matching the query ordered by
// (occurred_at, seq). The product filter is a single IN clause so
// batch callers read one consistent snapshot.
func (r *MovementRepo) ListMovements(ctx context.Context, q store.MovementQuery) ([]entity.Movement, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	qb := r.builder.Select(movementColumns...).
		From(movementsTable).
		Where(squirrel.Eq{"product_id": q.ProductIDs}).
		OrderBy("occurred_at", "seq")

	if q.WarehouseID != nil {
		qb = qb.Where(squirrel.Eq{"warehouse_id": *q.WarehouseID})
	}
	if q.From != nil {
		qb = qb.Where(squirrel.GtOrEq{"occurred_at": *q.From})
	}
	if q.To != nil {
		qb = qb.Where(squirrel.Lt{"occurred_at": *q.To})
	}
	if len(q.Kinds) > 0 {
		qb = qb.Where(squirrel.Eq{"kind": q.Kinds})
	}

	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.Movement
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, mapError("list movements", err)
	}
	return movements, nil
}
