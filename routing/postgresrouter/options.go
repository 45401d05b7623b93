package postgresrouter

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/replica-routing-go/routing"
	"github.com/AntonStoeckl/replica-routing-go/routing/postgresrouter/internal/adapters"
)

// Option defines a functional option for configuring a Router.
type Option func(*Router) error

// WithPGXReplica registers a pgx pool under the replica identity id.
func WithPGXReplica(id routing.Identity, pool *pgxpool.Pool) Option {
	if pool == nil {
		return failingOption(ErrNilDatabaseConnection)
	}

	return withReplicaAdapter(id, adapters.NewPGXAdapter(pool))
}

// WithSQLDBReplica registers a sql.DB under the replica identity id.
func WithSQLDBReplica(id routing.Identity, db *sql.DB) Option {
	if db == nil {
		return failingOption(ErrNilDatabaseConnection)
	}

	return withReplicaAdapter(id, adapters.NewSQLAdapter(db))
}

// WithSQLXReplica registers a sqlx.DB under the replica identity id.
func WithSQLXReplica(id routing.Identity, db *sqlx.DB) Option {
	if db == nil {
		return failingOption(ErrNilDatabaseConnection)
	}

	return withReplicaAdapter(id, adapters.NewSQLXAdapter(db))
}

// WithSelector sets how a read is spread over several replicas. The default is routing.FirstReplica.
func WithSelector(selector routing.ReplicaSelector) Option {
	return func(r *Router) error {
		if selector == nil {
			return routing.ErrNilSelector
		}

		r.selector = selector

		return nil
	}
}

// WithLogger sets the logger for the Router.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: routing decisions and executed SQL with timing (development use)
// Warn level: non-critical issues like rollback failures
// Error level: failed statements, unknown replica identities, transaction failures.
func WithLogger(logger routing.Logger) Option {
	return func(r *Router) error {
		r.logger = logger
		r.interceptorOptions = append(r.interceptorOptions, routing.WithLogger(logger))

		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Router.
// It receives the same messages as the Logger, with the context of the statement.
func WithContextualLogger(logger routing.ContextualLogger) Option {
	return func(r *Router) error {
		r.contextualLogger = logger
		r.interceptorOptions = append(r.interceptorOptions, routing.WithContextualLogger(logger))

		return nil
	}
}

// WithMetrics sets the metrics collector for routing decisions and statement durations.
func WithMetrics(collector routing.MetricsCollector) Option {
	return func(r *Router) error {
		r.interceptorOptions = append(r.interceptorOptions, routing.WithMetrics(collector))
		return nil
	}
}

// WithTracing sets the tracing collector. One span is started per routed statement.
func WithTracing(collector routing.TracingCollector) Option {
	return func(r *Router) error {
		r.interceptorOptions = append(r.interceptorOptions, routing.WithTracing(collector))
		return nil
	}
}

// WithTransactionState sets an additional source of the active-transaction flag, for transactions
// the Router did not start itself. Transactions started with Router.InTransaction are always detected.
func WithTransactionState(source routing.TransactionStateSource) Option {
	return func(r *Router) error {
		if source == nil {
			return routing.ErrNilTransactionState
		}

		combined := routing.TransactionStateFunc(func(ctx context.Context) bool {
			return routing.IsTransactionActive(ctx) || source.IsActive(ctx)
		})

		r.interceptorOptions = append(r.interceptorOptions, routing.WithTransactionState(combined))

		return nil
	}
}

func withReplicaAdapter(id routing.Identity, adapter adapters.DBAdapter) Option {
	return func(r *Router) error {
		r.replicas = append(r.replicas, routing.Entry[adapters.DBAdapter]{Identity: id, Provider: adapter})
		return nil
	}
}

func failingOption(err error) Option {
	return func(*Router) error {
		return err
	}
}
