// Package postgresrouter routes PostgreSQL statements between a primary and its read replicas.
//
// A Router owns no connections: the caller opens the primary and replica pools (pgxpool.Pool,
// sql.DB or sqlx.DB) and registers them under replica identities. Every statement passes through
// a routing.Interceptor, which decides the identity for it; the Router then resolves the pool for
// that identity and runs the statement on it.
//
// Usage examples:
//
//	primary, _ := pgxpool.New(ctx, primaryDSN)
//	replica, _ := pgxpool.New(ctx, replicaDSN)
//
//	router, _ := postgresrouter.NewRouterFromPGXPool(
//		primary,
//		postgresrouter.WithPGXReplica(routing.Replica, replica),
//		postgresrouter.WithLogger(logger),
//	)
//
//	// runs on the replica
//	rows, _ := router.Query(ctx, "SELECT id, total FROM orders WHERE customer_id = $1", customerID)
//
//	// runs on the primary
//	_, _ = router.Exec(ctx, "UPDATE orders SET total = $1 WHERE id = $2", total, id)
//
//	// every statement inside runs on the primary, in one transaction
//	err := router.InTransaction(ctx, func(ctx context.Context) error {
//		rows, err := router.Query(ctx, "SELECT total FROM orders WHERE id = $1 FOR UPDATE", id)
//		...
//	})
package postgresrouter
