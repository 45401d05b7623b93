// Package helper provides test doubles for the routing observability interfaces:
// a slog.Handler spy, a metrics collector spy, a tracing collector spy and a contextual logger spy.
package helper
