package routing

import "errors"

// ErrUnknownReplicaIdentity is returned when an identity has no provider in the Registry.
// It indicates a wiring defect and is never retried.
var ErrUnknownReplicaIdentity = errors.New("unknown replica identity")

// ErrEmptyReplicaIdentity is returned when a provider is registered under an empty identity.
var ErrEmptyReplicaIdentity = errors.New("empty replica identity supplied")

// ErrDuplicateReplicaIdentity is returned when two providers are registered under the same identity.
var ErrDuplicateReplicaIdentity = errors.New("duplicate replica identity supplied")

// ErrNilSelector is returned when a Decider or Router is given a nil ReplicaSelector.
var ErrNilSelector = errors.New("nil replica selector supplied")

// ErrNilTransactionState is returned when a nil TransactionStateSource is supplied.
var ErrNilTransactionState = errors.New("nil transaction state source supplied")

// ErrUnknownSelector is returned by ParseSelector for unsupported selection policy names.
var ErrUnknownSelector = errors.New("unknown replica selection policy")

// ErrOperationPanicked is the error a dispatch is logged, counted and traced with when its call panics.
var ErrOperationPanicked = errors.New("routed operation panicked")
