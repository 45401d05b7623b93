package routing

import "regexp"

// Reason names the routing rule that produced a Decision.
type Reason string

const (
	ReasonTransactionActive Reason = "transaction_active"
	ReasonStrongConsistency Reason = "strong_consistency"
	ReasonNotARead          Reason = "not_a_read"
	ReasonGeneratedKey      Reason = "generated_key"
	ReasonWriteVerb         Reason = "write_verb"
	ReasonPlainRead         Reason = "plain_read"
	ReasonNoReplica         Reason = "no_replica"
)

// writeVerbPattern matches insert, update and delete as whole tokens only, so that identifiers
// like updated_flag or last_update do not count. A locking read (select ... for update) matches.
var writeVerbPattern = regexp.MustCompile(`(?i)\b(insert|update|delete)\b`)

// Decision is the result of evaluating the routing rules for one operation.
type Decision struct {
	Identity Identity
	Reason   Reason
}

// Decide returns Primary or Replica for the described operation.
// It is deterministic, has no side effects and never fails: anything it cannot classify
// goes to the Primary.
func Decide(descriptor Descriptor, transactionActive bool) Identity {
	return Explain(descriptor, transactionActive).Identity
}

// Explain evaluates the same rules as Decide and also reports which rule matched.
func Explain(descriptor Descriptor, transactionActive bool) Decision {
	switch {
	case transactionActive:
		return Decision{Identity: Primary, Reason: ReasonTransactionActive}

	case descriptor.PrimaryRequested:
		return Decision{Identity: Primary, Reason: ReasonStrongConsistency}

	case descriptor.Kind != KindRead:
		return Decision{Identity: Primary, Reason: ReasonNotARead}

	case descriptor.RequiresGeneratedKey:
		return Decision{Identity: Primary, Reason: ReasonGeneratedKey}

	case writeVerbPattern.MatchString(descriptor.StatementText):
		return Decision{Identity: Primary, Reason: ReasonWriteVerb}

	default:
		return Decision{Identity: Replica, Reason: ReasonPlainRead}
	}
}

// Decider applies the routing rules and maps the replica outcome onto one of the configured replicas.
type Decider struct {
	replicas []Identity
	selector ReplicaSelector
}

// NewDecider creates a Decider choosing among replicas with selector.
// A nil selector falls back to FirstReplica.
func NewDecider(replicas []Identity, selector ReplicaSelector) Decider {
	if selector == nil {
		selector = FirstReplica{}
	}

	return Decider{
		replicas: append([]Identity(nil), replicas...),
		selector: selector,
	}
}

// Replicas returns a copy of the replica identities the Decider chooses from.
func (d Decider) Replicas() []Identity {
	return append([]Identity(nil), d.replicas...)
}

// Decide evaluates the routing rules for one operation.
// Without configured replicas every read degrades to the Primary.
func (d Decider) Decide(descriptor Descriptor, transactionActive bool) Decision {
	decision := Explain(descriptor, transactionActive)
	if decision.Identity.IsPrimary() {
		return decision
	}

	if len(d.replicas) == 0 {
		return Decision{Identity: Primary, Reason: ReasonNoReplica}
	}

	selector := d.selector
	if selector == nil {
		selector = FirstReplica{}
	}

	decision.Identity = selector.Select(d.replicas)

	return decision
}
