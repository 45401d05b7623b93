// Package adapters provide database adapter implementations for the routing Router.
//
// This package implements the adapter pattern to support multiple PostgreSQL database libraries:
// pgx.Pool, sql.DB, and sqlx.DB. Every replica identity of a Router is backed by one DBAdapter,
// so primaries and replicas of different connection types can be mixed behind a common interface.
//
// The adapters handle the specifics of each database library (argument passing, transactions,
// result handling) while presenting a unified interface to the router.
package adapters
