package adapters

import "context"

// Querier defines the statement execution shared by connection pools and transactions.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (DBRows, error)
	Exec(ctx context.Context, query string, args ...any) (DBResult, error)
}

// DBAdapter defines the interface for database operations needed by the router.
type DBAdapter interface {
	Querier
	Begin(ctx context.Context) (DBTx, error)
	Ping(ctx context.Context) error
}

// DBTx defines the interface for a transaction started on a DBAdapter.
type DBTx interface {
	Querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
}
