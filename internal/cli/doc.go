// Package cli implements the replicarouter command line tool.
//
// Commands:
//   - decide: explain where statements would be routed, without any database
//   - check: load a topology config and ping the primary and every replica
package cli
