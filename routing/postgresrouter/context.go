package postgresrouter

import (
	"context"

	"github.com/AntonStoeckl/replica-routing-go/routing/postgresrouter/internal/adapters"
)

type contextKey string

const (
	transactionKey   contextKey = "postgresrouter.transaction"
	operationNameKey contextKey = "postgresrouter.operation_name"
)

// WithOperationName names the statements run with ctx in logs, metrics and spans,
// e.g. "orders.find_by_customer". Unnamed statements are labeled query, query_returning or exec.
func WithOperationName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, operationNameKey, name)
}

func operationNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(operationNameKey).(string)
	return name, ok && name != ""
}

func withTransaction(ctx context.Context, tx adapters.DBTx) context.Context {
	return context.WithValue(ctx, transactionKey, tx)
}

func transactionFromContext(ctx context.Context) (adapters.DBTx, bool) {
	tx, ok := ctx.Value(transactionKey).(adapters.DBTx)
	return tx, ok
}
