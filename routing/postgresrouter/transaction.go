package postgresrouter

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/replica-routing-go/routing"
	"github.com/AntonStoeckl/replica-routing-go/routing/postgresrouter/internal/adapters"
)

// InTransaction runs fn inside a transaction on the primary.
//
// Every statement the Router runs with the context passed to fn goes to the primary, through the
// transaction. The transaction is committed when fn returns nil and rolled back when fn returns an
// error or panics; the error of fn is returned unchanged. Nested calls join the outer transaction.
func (r *Router) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := transactionFromContext(ctx); ok {
		return fn(ctx)
	}

	primary, err := r.registry.Resolve(r.registry.Default())
	if err != nil {
		return err
	}

	tx, beginErr := primary.Begin(ctx)
	if beginErr != nil {
		r.logError(ctx, logMsgBeginFailed, logAttrError, beginErr.Error())
		return errors.Join(ErrBeginTransactionFailed, beginErr)
	}

	txCtx := routing.WithActiveTransaction(withTransaction(ctx, tx))

	committed := false
	defer func() {
		if !committed {
			r.rollback(ctx, tx)
		}
	}()

	if fnErr := fn(txCtx); fnErr != nil {
		return fnErr
	}

	committed = true
	if commitErr := tx.Commit(ctx); commitErr != nil {
		r.logError(ctx, logMsgCommitFailed, logAttrError, commitErr.Error())
		return errors.Join(ErrCommitTransactionFailed, commitErr)
	}

	return nil
}

func (r *Router) rollback(ctx context.Context, tx adapters.DBTx) {
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil {
		r.logWarn(ctx, logMsgRollbackFailed, logAttrError, err.Error())
	}
}
