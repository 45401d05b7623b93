package routing

import "fmt"

// Identity is the tag a connection provider is registered under.
type Identity string

const (
	// Primary is the single writable node. It is also the identity used when nothing was selected.
	Primary Identity = "primary"

	// Replica is the identity of the first (or only) read-only node.
	Replica Identity = "replica"
)

// ReplicaIdentityFor returns the conventional identity of the n-th (0-based) replica:
// "replica", "replica-2", "replica-3", ...
func ReplicaIdentityFor(n int) Identity {
	if n <= 0 {
		return Replica
	}

	return Identity(fmt.Sprintf("%s-%d", Replica, n+1))
}

// IsPrimary reports whether the identity denotes the primary.
func (i Identity) IsPrimary() bool {
	return i == Primary
}

// String implements fmt.Stringer.
func (i Identity) String() string {
	return string(i)
}
