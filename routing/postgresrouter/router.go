package postgresrouter

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/replica-routing-go/routing"
	"github.com/AntonStoeckl/replica-routing-go/routing/postgresrouter/internal/adapters"
)

const (
	logMsgSQLExecuted       = "executed sql"
	logMsgResolveFailed     = "no database registered for routed identity"
	logMsgBeginFailed       = "failed to begin transaction"
	logMsgCommitFailed      = "failed to commit transaction"
	logMsgRollbackFailed    = "failed to roll back transaction"
	logMsgBuildQueryFailed  = "failed to build query from dataset"
	logAttrError            = "error"
	logAttrOperation        = "operation"
	logAttrIdentity         = "identity"
	logAttrQuery            = "query"
	logAttrDurationMS       = "duration_ms"
	logAttrTransaction      = "in_transaction"
	operationQuery          = "query"
	operationQueryReturning = "query_returning"
	operationExec           = "exec"
)

// Rows is the result set of a query. It must be closed by the caller.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

// Result is the outcome of an executed statement.
type Result interface {
	RowsAffected() (int64, error)
}

// Router runs statements on the primary or on a replica, as decided by its routing.Interceptor.
type Router struct {
	registry           *routing.Registry[adapters.DBAdapter]
	interceptor        *routing.Interceptor
	replicas           []routing.Entry[adapters.DBAdapter]
	selector           routing.ReplicaSelector
	interceptorOptions []routing.Option
	logger             routing.Logger
	contextualLogger   routing.ContextualLogger
}

// NewRouterFromPGXPool creates a new Router with a pgx Pool as primary and optional configuration.
func NewRouterFromPGXPool(primary *pgxpool.Pool, options ...Option) (*Router, error) {
	if primary == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newRouter(adapters.NewPGXAdapter(primary), options...)
}

// NewRouterFromSQLDB creates a new Router with a sql.DB as primary and optional configuration.
func NewRouterFromSQLDB(primary *sql.DB, options ...Option) (*Router, error) {
	if primary == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newRouter(adapters.NewSQLAdapter(primary), options...)
}

// NewRouterFromSQLX creates a new Router with a sqlx.DB as primary and optional configuration.
func NewRouterFromSQLX(primary *sqlx.DB, options ...Option) (*Router, error) {
	if primary == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newRouter(adapters.NewSQLXAdapter(primary), options...)
}

func newRouter(primary adapters.DBAdapter, options ...Option) (*Router, error) {
	r := &Router{selector: routing.FirstReplica{}}

	for _, option := range options {
		if err := option(r); err != nil {
			return nil, err
		}
	}

	registry, err := routing.NewRegistry(primary, r.replicas...)
	if err != nil {
		return nil, err
	}

	interceptor, err := routing.NewInterceptor(
		routing.NewDecider(registry.Replicas(), r.selector),
		r.interceptorOptions...,
	)
	if err != nil {
		return nil, err
	}

	r.registry = registry
	r.interceptor = interceptor
	r.replicas = nil
	r.interceptorOptions = nil

	return r, nil
}

// Query runs a read query. It goes to a replica unless it must see the primary's state.
func (r *Router) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	return r.query(ctx, r.operation(ctx, operationQuery, routing.KindRead, false, query), args)
}

// QueryReturning runs a statement that returns generated keys, e.g. INSERT ... RETURNING id.
// It always goes to the primary.
func (r *Router) QueryReturning(ctx context.Context, query string, args ...any) (Rows, error) {
	op := r.operation(ctx, operationQueryReturning, routing.InferCommandKind(query), true, query)

	return r.query(ctx, op, args)
}

// Exec runs a write statement on the primary.
func (r *Router) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	return r.exec(ctx, r.operation(ctx, operationExec, routing.KindWrite, false, query), args)
}

// Ping checks every registered database. The returned map holds an entry per identity,
// with a nil error for databases that responded.
func (r *Router) Ping(ctx context.Context) map[routing.Identity]error {
	results := make(map[routing.Identity]error)

	for _, identity := range r.registry.Identities() {
		adapter, err := r.registry.Resolve(identity)
		if err != nil {
			results[identity] = err
			continue
		}

		results[identity] = adapter.Ping(ctx)
	}

	return results
}

// Identities returns the primary identity followed by the replica identities in registration order.
func (r *Router) Identities() []routing.Identity {
	return r.registry.Identities()
}

// Interceptor returns the routing.Interceptor of the Router, e.g. to route other calls the same way.
func (r *Router) Interceptor() *routing.Interceptor {
	return r.interceptor
}

func (r *Router) operation(ctx context.Context, defaultName string, kind routing.CommandKind, generatedKey bool, query string) routing.Operation {
	name := defaultName
	if named, ok := operationNameFromContext(ctx); ok {
		name = named
	}

	return routing.Operation{
		Name:                 name,
		Kind:                 kind,
		RequiresGeneratedKey: generatedKey,
		Statement:            query,
	}
}

func (r *Router) query(ctx context.Context, op routing.Operation, args []any) (Rows, error) {
	return routing.Dispatch(ctx, r.interceptor, op, func(ctx context.Context) (Rows, error) {
		querier, identity, err := r.querier(ctx)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		rows, queryErr := querier.Query(ctx, op.Statement, args...)
		r.logSQL(ctx, op, identity, time.Since(start))

		if queryErr != nil {
			return nil, queryErr
		}

		return rows, nil
	})
}

func (r *Router) exec(ctx context.Context, op routing.Operation, args []any) (Result, error) {
	return routing.Dispatch(ctx, r.interceptor, op, func(ctx context.Context) (Result, error) {
		querier, identity, err := r.querier(ctx)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		result, execErr := querier.Exec(ctx, op.Statement, args...)
		r.logSQL(ctx, op, identity, time.Since(start))

		if execErr != nil {
			return nil, execErr
		}

		return result, nil
	})
}

// querier returns what the statement of ctx runs on: the open transaction if there is one,
// otherwise the database registered for the identity held in the routing scope.
func (r *Router) querier(ctx context.Context) (adapters.Querier, routing.Identity, error) {
	if tx, ok := transactionFromContext(ctx); ok {
		return tx, routing.Primary, nil
	}

	identity := routing.CurrentIdentity(ctx)

	adapter, err := r.registry.Resolve(identity)
	if err != nil {
		r.logError(ctx, logMsgResolveFailed, logAttrError, err.Error(), logAttrIdentity, identity.String())
		return nil, identity, err
	}

	return adapter, identity, nil
}

func (r *Router) logSQL(ctx context.Context, op routing.Operation, identity routing.Identity, duration time.Duration) {
	args := []any{
		logAttrOperation, op.Name,
		logAttrIdentity, identity.String(),
		logAttrQuery, op.Statement,
		logAttrTransaction, routing.IsTransactionActive(ctx),
		logAttrDurationMS, routing.ToMilliseconds(duration),
	}

	if r.logger != nil {
		r.logger.Debug(logMsgSQLExecuted, args...)
	}

	if r.contextualLogger != nil {
		r.contextualLogger.DebugContext(ctx, logMsgSQLExecuted, args...)
	}
}

func (r *Router) logWarn(ctx context.Context, msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}

	if r.contextualLogger != nil {
		r.contextualLogger.WarnContext(ctx, msg, args...)
	}
}

func (r *Router) logError(ctx context.Context, msg string, args ...any) {
	if r.logger != nil {
		r.logger.Error(msg, args...)
	}

	if r.contextualLogger != nil {
		r.contextualLogger.ErrorContext(ctx, msg, args...)
	}
}
