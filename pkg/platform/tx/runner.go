package tx

import (
	"context"
	"database/sql"
	"time"

	dErrors "summit/pkg/domain-errors"
)

// defaultTxTimeout is the maximum duration for a transactional block when
// the caller's context carries no deadline.
const defaultTxTimeout = 5 * time.Second

// Runner provides a transactional boundary for store mutations.
// Implementations may wrap a database transaction or, in-memory, rely on
// the store's own locking.
type Runner interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// SQLRunner runs fn inside a database transaction. The transaction is
// stashed in the context via WithTx so every store called with txCtx joins
// it instead of opening its own.
type SQLRunner struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLRunner(db *sql.DB) *SQLRunner {
	return &SQLRunner{db: db}
}

func (r *SQLRunner) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := r.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = dbTx.Rollback()
	}()

	if err := fn(WithTx(ctx, dbTx)); err != nil {
		return err
	}
	return dbTx.Commit()
}

// PassthroughRunner satisfies Runner without a database. In-memory stores
// serialize mutations through their own mutex, so fn runs directly against
// the caller's context.
type PassthroughRunner struct{}

func NewPassthroughRunner() *PassthroughRunner {
	return &PassthroughRunner{}
}

func (r *PassthroughRunner) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx)
}
