package routing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/replica-routing-go/routing"
)

func Test_Registry_ResolvesRegisteredIdentities(t *testing.T) {
	// arrange
	registry, err := routing.NewRegistry("primary-pool",
		routing.Entry[string]{Identity: routing.Replica, Provider: "replica-pool"},
		routing.Entry[string]{Identity: "replica-2", Provider: "replica-2-pool"},
	)
	require.NoError(t, err)

	// act
	primary, primaryErr := registry.Resolve(routing.Primary)
	replica, replicaErr := registry.Resolve(routing.Replica)

	// assert
	assert.NoError(t, primaryErr)
	assert.NoError(t, replicaErr)
	assert.Equal(t, "primary-pool", primary)
	assert.Equal(t, "replica-pool", replica)
	assert.Equal(t, routing.Primary, registry.Default())
	assert.Equal(t, []routing.Identity{routing.Replica, "replica-2"}, registry.Replicas())
	assert.Equal(t, []routing.Identity{routing.Primary, routing.Replica, "replica-2"}, registry.Identities())
	assert.True(t, registry.Has("replica-2"))
	assert.False(t, registry.Has("replica-3"))
}

func Test_Registry_UnknownIdentityIsAConfigurationError(t *testing.T) {
	// arrange
	registry, err := routing.NewRegistry("primary-pool")
	require.NoError(t, err)

	// act
	_, resolveErr := registry.Resolve(routing.Replica)

	// assert
	assert.ErrorIs(t, resolveErr, routing.ErrUnknownReplicaIdentity)
	assert.ErrorContains(t, resolveErr, "replica")
}

func Test_Registry_RejectsInvalidEntries(t *testing.T) {
	testCases := []struct {
		name     string
		entries  []routing.Entry[int]
		expected error
	}{
		{
			name:     "empty identity",
			entries:  []routing.Entry[int]{{Identity: "", Provider: 1}},
			expected: routing.ErrEmptyReplicaIdentity,
		},
		{
			name:     "duplicate replica",
			entries:  []routing.Entry[int]{{Identity: routing.Replica, Provider: 1}, {Identity: routing.Replica, Provider: 2}},
			expected: routing.ErrDuplicateReplicaIdentity,
		},
		{
			name:     "replica named primary",
			entries:  []routing.Entry[int]{{Identity: routing.Primary, Provider: 1}},
			expected: routing.ErrDuplicateReplicaIdentity,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := routing.NewRegistry(0, tc.entries...)

			// assert
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func Test_Registry_ResolveContextUsesScopeIdentity(t *testing.T) {
	// setup
	registry, err := routing.NewRegistry("primary-pool",
		routing.Entry[string]{Identity: routing.Replica, Provider: "replica-pool"})
	require.NoError(t, err)

	ctx, scope := routing.NewScope(context.Background())

	// act
	defaultProvider, defaultIdentity, defaultErr := registry.ResolveContext(ctx)
	scope.Set(routing.Replica)
	replicaProvider, replicaIdentity, replicaErr := registry.ResolveContext(ctx)

	// assert
	assert.NoError(t, defaultErr)
	assert.Equal(t, "primary-pool", defaultProvider)
	assert.Equal(t, routing.Primary, defaultIdentity)

	assert.NoError(t, replicaErr)
	assert.Equal(t, "replica-pool", replicaProvider)
	assert.Equal(t, routing.Replica, replicaIdentity)
}

func Test_ReplicaIdentityFor(t *testing.T) {
	assert.Equal(t, routing.Replica, routing.ReplicaIdentityFor(0))
	assert.Equal(t, routing.Identity("replica-2"), routing.ReplicaIdentityFor(1))
	assert.Equal(t, routing.Identity("replica-3"), routing.ReplicaIdentityFor(2))
	assert.True(t, routing.Primary.IsPrimary())
	assert.False(t, routing.Replica.IsPrimary())
}
