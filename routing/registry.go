package routing

import (
	"context"
	"errors"
	"fmt"
)

// Entry pairs a replica identity with its connection provider.
type Entry[P any] struct {
	Identity Identity
	Provider P
}

// Registry is the static mapping from replica identity to connection provider.
// It is immutable after construction and therefore safe for concurrent use.
type Registry[P any] struct {
	providers map[Identity]P
	replicas  []Identity
}

// NewRegistry creates a Registry with primary registered under Primary and the given replicas.
func NewRegistry[P any](primary P, replicas ...Entry[P]) (*Registry[P], error) {
	registry := &Registry[P]{
		providers: map[Identity]P{Primary: primary},
		replicas:  make([]Identity, 0, len(replicas)),
	}

	for _, entry := range replicas {
		if entry.Identity == "" {
			return nil, ErrEmptyReplicaIdentity
		}

		if _, exists := registry.providers[entry.Identity]; exists {
			return nil, errors.Join(ErrDuplicateReplicaIdentity, fmt.Errorf("identity: %s", entry.Identity))
		}

		registry.providers[entry.Identity] = entry.Provider
		registry.replicas = append(registry.replicas, entry.Identity)
	}

	return registry, nil
}

// Resolve returns the provider registered under identity.
func (r *Registry[P]) Resolve(identity Identity) (P, error) {
	provider, ok := r.providers[identity]
	if !ok {
		var empty P
		return empty, errors.Join(ErrUnknownReplicaIdentity, fmt.Errorf("identity: %s", identity))
	}

	return provider, nil
}

// ResolveContext resolves the identity currently selected in the routing Scope of ctx.
func (r *Registry[P]) ResolveContext(ctx context.Context) (P, Identity, error) {
	identity := CurrentIdentity(ctx)
	provider, err := r.Resolve(identity)

	return provider, identity, err
}

// Has reports whether identity is registered.
func (r *Registry[P]) Has(identity Identity) bool {
	_, ok := r.providers[identity]
	return ok
}

// Default returns the identity used when no explicit selection occurred.
func (r *Registry[P]) Default() Identity {
	return Primary
}

// Replicas returns the replica identities in registration order.
func (r *Registry[P]) Replicas() []Identity {
	return append([]Identity(nil), r.replicas...)
}

// Identities returns the primary followed by all replica identities.
func (r *Registry[P]) Identities() []Identity {
	return append([]Identity{Primary}, r.replicas...)
}
