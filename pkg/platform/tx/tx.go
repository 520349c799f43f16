// Package tx carries a SQL transaction through context so that multiple
// stores touched by one service operation share a single commit point.
package tx

import (
	"context"
	"database/sql"
)

type txKey struct{}

// WithTx returns a context carrying dbTx for downstream stores to join.
func WithTx(ctx context.Context, dbTx *sql.Tx) context.Context {
	if dbTx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey{}, dbTx)
}

// From reports the transaction stashed in ctx, if any. Stores fall back to
// their own *sql.DB when none is present.
func From(ctx context.Context) (*sql.Tx, bool) {
	dbTx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return dbTx, ok
}
