package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"stockledger/internal/core/apperror"
)

// pg error class prefixes that indicate a transient store problem the
// caller may retry with backoff. Not retried here: retrying a failed
// sequence allocation internally risks a duplicate write.
var transientClasses = []string{
	"08", // connection exceptions
	"53", // insufficient resources
	"57", // operator intervention (shutdown, crash)
	"58", // system errors
}

// mapError converts low-level pgx errors into apperror values.
// nil passes through; already-mapped AppErrors are returned as-is.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.NewStoreUnavailable(op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return apperror.NewDuplicate(op, pgErr.ConstraintName, pgErr.Detail)
		case "40001", "40P01":
			// serialization failure / deadlock
			return apperror.NewConcurrencyConflict(op, pgErr.ConstraintName)
		}
		for _, class := range transientClasses {
			if strings.HasPrefix(pgErr.Code, class) {
				return apperror.NewStoreUnavailable(op, err)
			}
		}
		return apperror.NewInternal(err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return apperror.NewStoreUnavailable(op, err)
	}

	return err
}
