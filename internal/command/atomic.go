package command

import (
	"context"
	"database/sql"

	"sqlpp/internal/errs"
)

// Atomic brackets fn with BEGIN and COMMIT/ROLLBACK on h's connection,
// guaranteeing the transaction is released on every exit path (normal,
// error, or panic), grounded on internal/apply's applyWithTransaction
// begin/commit/rollback pattern.
func (h *Handle) Atomic(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) (err error) {
	tx, err := h.conn.BeginTx(ctx, nil)
	if err != nil {
		return errs.Wrap(errs.KindBackend, err, "beginning transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
