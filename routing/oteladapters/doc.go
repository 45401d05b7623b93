// Package oteladapters provides OpenTelemetry implementations of the routing observability interfaces:
// routing.MetricsCollector, routing.TracingCollector and routing.ContextualLogger.
//
// Wire them into a Router or Interceptor like any other collector:
//
//	router, _ := postgresrouter.NewRouterFromPGXPool(
//		primary,
//		postgresrouter.WithPGXReplica(routing.Replica, replica),
//		postgresrouter.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter("replicarouter"))),
//		postgresrouter.WithTracing(oteladapters.NewTracingCollector(otel.Tracer("replicarouter"))),
//		postgresrouter.WithContextualLogger(oteladapters.NewSlogBridgeLogger("replicarouter")),
//	)
package oteladapters
