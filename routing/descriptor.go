package routing

import "strings"

// CommandKind is the declared kind of an outgoing operation.
type CommandKind int

const (
	// KindOther covers every operation that is neither a plain read nor a plain write,
	// including kinds that were not declared at all.
	KindOther CommandKind = iota

	// KindRead is a query that is expected to return rows without changing state.
	KindRead

	// KindWrite is a statement that changes state.
	KindWrite
)

var statementNewlines = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

// String provides a string representation of CommandKind for logging and metrics labels.
func (k CommandKind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindWrite:
		return "write"
	default:
		return "other"
	}
}

// ParseCommandKind maps a kind name to a CommandKind. Unknown names yield KindOther.
func ParseCommandKind(name string) CommandKind {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "read", "select", "query":
		return KindRead
	case "write", "insert", "update", "delete", "exec":
		return KindWrite
	default:
		return KindOther
	}
}

// InferCommandKind classifies a raw statement by its leading keyword.
// It is meant for callers that only have the statement text; statements starting with an
// unrecognised keyword are KindOther.
func InferCommandKind(statement string) CommandKind {
	text := strings.TrimLeft(NormalizeStatement(statement), " (")

	verb := text
	if end := strings.IndexAny(text, " (;"); end >= 0 {
		verb = text[:end]
	}

	switch verb {
	case "select", "show", "explain", "values", "table", "with":
		return KindRead
	case "insert", "update", "delete", "merge", "upsert", "replace",
		"create", "alter", "drop", "truncate", "grant", "revoke", "copy", "call":
		return KindWrite
	default:
		return KindOther
	}
}

// NormalizeStatement lowercases a statement and turns tabs, newlines and carriage returns into spaces.
func NormalizeStatement(statement string) string {
	return statementNewlines.Replace(strings.ToLower(statement))
}

// Descriptor holds what the routing rules need to know about one outgoing operation.
// It is derived per call and not retained after the decision.
type Descriptor struct {
	Kind                 CommandKind
	RequiresGeneratedKey bool
	StatementText        string

	// PrimaryRequested is set when the caller asked for StrongConsistency.
	PrimaryRequested bool
}

// NewDescriptor builds a Descriptor with a normalized statement text.
func NewDescriptor(kind CommandKind, requiresGeneratedKey bool, statement string) Descriptor {
	return Descriptor{
		Kind:                 kind,
		RequiresGeneratedKey: requiresGeneratedKey,
		StatementText:        NormalizeStatement(statement),
	}
}
