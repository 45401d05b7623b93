package routing

import "context"

// TransactionStateSource reports whether the unit of work behind ctx has an open transaction.
type TransactionStateSource interface {
	IsActive(ctx context.Context) bool
}

// TransactionStateFunc adapts a plain function to TransactionStateSource.
type TransactionStateFunc func(ctx context.Context) bool

// IsActive calls f(ctx).
func (f TransactionStateFunc) IsActive(ctx context.Context) bool {
	return f(ctx)
}

// ContextTransactionState reads the marker set by WithActiveTransaction.
// It is the default TransactionStateSource of an Interceptor.
var ContextTransactionState TransactionStateSource = TransactionStateFunc(IsTransactionActive)

// WithActiveTransaction returns a context marking that a transaction is open for this unit of work.
// Whoever begins the transaction sets the marker; the routing core only reads it.
func WithActiveTransaction(ctx context.Context) context.Context {
	return context.WithValue(ctx, transactionKey, true)
}

// IsTransactionActive reports whether ctx was marked by WithActiveTransaction.
func IsTransactionActive(ctx context.Context) bool {
	active, _ := ctx.Value(transactionKey).(bool)
	return active
}
