// Package routing decides, per database operation, whether it runs against the writable primary
// or one of the read-only replicas.
//
// The package is storage-agnostic. It defines:
//   - Identity: the tag a connection provider is registered under (Primary, Replica, ...)
//   - Scope: the per-unit-of-work routing context carried through a context.Context
//   - Descriptor: the facts about one outgoing operation the decision is based on
//   - Decide / Decider: the routing rules and the selection among several replicas
//   - Interceptor: the wrapper that runs one call with the decided identity in its scope
//   - Registry: the static identity -> provider mapping that resolves the decision
//
// Routing rules, first match wins:
//   - an open transaction always routes to the primary
//   - a caller that asked for strong consistency gets the primary
//   - anything that is not a read routes to the primary
//   - a read that needs a generated key routes to the primary
//   - a read whose statement contains one of the tokens insert, update, delete routes to the primary
//   - every other read routes to a replica
//
// Typical wiring:
//
//	registry, _ := routing.NewRegistry(primaryPool,
//		routing.Entry[*pgxpool.Pool]{Identity: routing.Replica, Provider: replicaPool})
//	interceptor, _ := routing.NewInterceptor(
//		routing.NewDecider(registry.Replicas(), routing.FirstReplica{}),
//		routing.WithLogger(slog.Default()),
//	)
//
//	err := interceptor.Intercept(ctx, routing.Operation{Kind: routing.KindRead, Statement: sql},
//		func(ctx context.Context) error {
//			pool, _, err := registry.ResolveContext(ctx)
//			if err != nil {
//				return err
//			}
//			// use pool
//			return nil
//		})
package routing
