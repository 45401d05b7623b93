package routing

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// contextKey is a private type to prevent context key collisions.
type contextKey string

const (
	scopeKey            contextKey = "routing.scope"
	consistencyLevelKey contextKey = "routing.consistency_level"
	transactionKey      contextKey = "routing.transaction_active"
)

// Scope is the routing context of one unit of execution, e.g. one request or one job.
//
// It holds the identity selected for the operation that is currently being dispatched.
// Interceptor.Intercept never writes to the Scope it finds in the caller's context: every
// intercepted call runs with a Scope of its own, derived with the same ID. A request context
// may therefore be shared by goroutines fanning out one request.
type Scope struct {
	id       uuid.UUID
	identity atomic.Pointer[Identity]
}

// NewScope starts a new unit of execution and returns a context carrying its Scope.
func NewScope(ctx context.Context) (context.Context, *Scope) {
	scope := &Scope{id: uuid.New()}

	return context.WithValue(ctx, scopeKey, scope), scope
}

// newCallScope returns a context carrying a fresh Scope for one intercepted call.
// The Scope inherits the ID of the Scope carried by ctx, if any, but never its identity.
func newCallScope(ctx context.Context) (context.Context, *Scope) {
	scope := &Scope{id: uuid.New()}
	if parent, ok := ScopeFromContext(ctx); ok {
		scope.id = parent.id
	}

	return context.WithValue(ctx, scopeKey, scope), scope
}

// ScopeFromContext returns the Scope carried by ctx, if any.
func ScopeFromContext(ctx context.Context) (*Scope, bool) {
	scope, ok := ctx.Value(scopeKey).(*Scope)
	return scope, ok && scope != nil
}

// ID returns the unit of execution's correlation id.
func (s *Scope) ID() uuid.UUID {
	return s.id
}

// Set stores the identity for this unit of execution, overwriting any prior value.
func (s *Scope) Set(identity Identity) {
	s.identity.Store(&identity)
}

// Get returns the stored identity, or Primary if none is set.
func (s *Scope) Get() Identity {
	if identity, ok := s.Lookup(); ok {
		return identity
	}

	return Primary
}

// Lookup returns the stored identity and whether one is set.
func (s *Scope) Lookup() (Identity, bool) {
	if stored := s.identity.Load(); stored != nil {
		return *stored, true
	}

	return "", false
}

// Clear removes the stored identity so that Get reverts to Primary.
func (s *Scope) Clear() {
	s.identity.Store(nil)
}

// CurrentIdentity returns the identity selected in the Scope carried by ctx.
// A context without a Scope, or with an empty Scope, resolves to Primary.
func CurrentIdentity(ctx context.Context) Identity {
	if scope, ok := ScopeFromContext(ctx); ok {
		return scope.Get()
	}

	return Primary
}

// ConsistencyLevel defines which nodes a read may be served from.
type ConsistencyLevel int

const (
	// EventualConsistency lets the routing rules send plain reads to a replica,
	// accepting replica lag. This is the default.
	EventualConsistency ConsistencyLevel = iota

	// StrongConsistency sends every operation to the primary for read-after-write consistency.
	StrongConsistency
)

// WithStrongConsistency returns a context that routes every operation to the primary.
//
// This is typically used by command handlers that read state they have just written:
//
//	ctx = routing.WithStrongConsistency(ctx)
//	rows, err := router.Query(ctx, "select balance from accounts where id = $1", id)
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, consistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context that lets plain reads be served by replicas.
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, consistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel extracts the consistency level from the context.
// If no consistency level is set, it returns EventualConsistency.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(consistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return EventualConsistency
}

// String provides a string representation of ConsistencyLevel for logging and debugging.
func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
