package routing

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
)

// Selection policy names accepted by ParseSelector.
const (
	SelectionFirst      = "first"
	SelectionRoundRobin = "round_robin"
)

// ReplicaSelector picks one replica for a read. It is only called with a non-empty slice.
type ReplicaSelector interface {
	Select(replicas []Identity) Identity
}

// FirstReplica always picks the first configured replica.
type FirstReplica struct{}

// Select implements ReplicaSelector.
func (FirstReplica) Select(replicas []Identity) Identity {
	return replicas[0]
}

// RoundRobin cycles through the configured replicas. It is safe for concurrent use.
type RoundRobin struct {
	next atomic.Uint64
}

// NewRoundRobin creates a RoundRobin selector starting at the first replica.
func NewRoundRobin() *RoundRobin {
	return &RoundRobin{}
}

// Select implements ReplicaSelector.
func (r *RoundRobin) Select(replicas []Identity) Identity {
	n := r.next.Add(1) - 1
	return replicas[n%uint64(len(replicas))]
}

// ParseSelector returns the ReplicaSelector for a policy name. An empty name selects FirstReplica.
func ParseSelector(name string) (ReplicaSelector, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SelectionFirst:
		return FirstReplica{}, nil
	case SelectionRoundRobin, "round-robin", "roundrobin":
		return NewRoundRobin(), nil
	default:
		return nil, errors.Join(ErrUnknownSelector, fmt.Errorf("policy: %q", name))
	}
}
