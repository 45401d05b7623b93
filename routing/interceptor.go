package routing

import (
	"context"
	"fmt"
	"time"
)

// Operation is the call metadata of one outgoing database operation.
type Operation struct {
	// Name identifies the operation in logs and spans, e.g. "orders.find_by_id".
	Name                 string
	Kind                 CommandKind
	RequiresGeneratedKey bool
	Statement            string
}

// Interceptor wraps outgoing database calls: it decides the identity of each call,
// keeps it in the unit of work's Scope while the call runs and clears it afterward.
type Interceptor struct {
	decider          Decider
	txState          TransactionStateSource
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
}

// NewInterceptor creates an Interceptor using decider, with optional configuration.
func NewInterceptor(decider Decider, options ...Option) (*Interceptor, error) {
	interceptor := &Interceptor{
		decider: decider,
		txState: ContextTransactionState,
	}

	for _, option := range options {
		if err := option(interceptor); err != nil {
			return nil, err
		}
	}

	return interceptor, nil
}

// Decider returns the Decider the Interceptor routes with.
func (i *Interceptor) Decider() Decider {
	return i.decider
}

// Intercept runs call with the identity decided for op held in a routing Scope of its own.
//
// The context passed to call carries a Scope derived for this call only: it has the ID of the Scope
// carried by ctx (or a new one) and holds the decided identity. The Scope of ctx is never written,
// so concurrent calls sharing ctx cannot see each other's identities. The call's Scope is cleared
// whatever happens inside call (error, panic, cancellation). The error of call is returned unchanged;
// a panic is recorded as a failed dispatch and then re-raised.
func (i *Interceptor) Intercept(ctx context.Context, op Operation, call func(ctx context.Context) error) (err error) {
	ctx, scope := newCallScope(ctx)

	txState := i.txState
	if txState == nil {
		txState = ContextTransactionState
	}

	descriptor := NewDescriptor(op.Kind, op.RequiresGeneratedKey, op.Statement)
	descriptor.PrimaryRequested = GetConsistencyLevel(ctx) == StrongConsistency

	decision := i.decider.Decide(descriptor, txState.IsActive(ctx))

	scope.Set(decision.Identity)
	defer scope.Clear()

	i.logDecision(ctx, scope, op, decision)
	i.recordDecisionMetrics(ctx, op, decision)

	ctx, span := i.startDispatchSpan(ctx, op, decision)

	start := time.Now()
	defer func() {
		recovered := recover()

		dispatchErr := err
		if recovered != nil {
			dispatchErr = fmt.Errorf("%w: %v", ErrOperationPanicked, recovered)
		}

		i.finishDispatch(ctx, span, op, decision, time.Since(start), dispatchErr)

		if recovered != nil {
			panic(recovered)
		}
	}()

	return call(ctx)
}

// Dispatch is the value-returning variant of Interceptor.Intercept.
func Dispatch[T any](
	ctx context.Context,
	interceptor *Interceptor,
	op Operation,
	call func(ctx context.Context) (T, error),
) (T, error) {
	var result T
	err := interceptor.Intercept(ctx, op, func(ctx context.Context) error {
		var callErr error
		result, callErr = call(ctx)

		return callErr
	})

	return result, err
}

// Invoker executes one operation.
type Invoker func(ctx context.Context, op Operation) error

// Middleware decorates an Invoker.
type Middleware func(next Invoker) Invoker

// Middleware returns the Interceptor as a Middleware, so it can be composed with others via Chain.
func (i *Interceptor) Middleware() Middleware {
	return func(next Invoker) Invoker {
		return func(ctx context.Context, op Operation) error {
			return i.Intercept(ctx, op, func(ctx context.Context) error {
				return next(ctx, op)
			})
		}
	}
}

// Chain wraps invoker with middlewares; the first middleware is the outermost.
func Chain(invoker Invoker, middlewares ...Middleware) Invoker {
	for idx := len(middlewares) - 1; idx >= 0; idx-- {
		invoker = middlewares[idx](invoker)
	}

	return invoker
}
