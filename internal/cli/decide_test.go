package cli

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeDecisions(t *testing.T, output string) []DecisionResult {
	t.Helper()

	var results []DecisionResult
	require.NoError(t, jsoniter.ConfigFastest.UnmarshalFromString(output, &results))

	return results
}

func Test_Decide_TextOutput(t *testing.T) {
	// act
	out, _, err := execute(t, "",
		"decide",
		"select * from orders where id = 1",
		"update orders set total = 0 where id = 1",
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t,
		"replica\tplain_read\tselect * from orders where id = 1\n"+
			"primary\tnot_a_read\tupdate orders set total = 0 where id = 1\n",
		out)
}

func Test_Decide_JSONOutput(t *testing.T) {
	// act
	out, _, err := execute(t, "", "--format", "json", "decide", "select * from orders for update")

	// assert
	require.NoError(t, err)

	results := decodeDecisions(t, out)
	require.Len(t, results, 1)
	assert.Equal(t, DecisionResult{
		Statement: "select * from orders for update",
		Kind:      "read",
		Identity:  "primary",
		Reason:    "write_verb",
	}, results[0])
}

func Test_Decide_ReadsStatementsFromStdin(t *testing.T) {
	// arrange
	stdin := "select 1\n\n   \ninsert into orders (id) values (1)\n"

	// act
	out, _, err := execute(t, stdin, "--format", "json", "decide")

	// assert
	require.NoError(t, err)

	results := decodeDecisions(t, out)
	require.Len(t, results, 2)
	assert.Equal(t, "replica", results[0].Identity)
	assert.Equal(t, "write", results[1].Kind)
	assert.Equal(t, "primary", results[1].Identity)
}

func Test_Decide_Flags(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		identity string
		reason   string
	}{
		{
			name:     "in transaction",
			args:     []string{"--in-transaction"},
			identity: "primary",
			reason:   "transaction_active",
		},
		{
			name:     "strong consistency",
			args:     []string{"--strong"},
			identity: "primary",
			reason:   "strong_consistency",
		},
		{
			name:     "generated key",
			args:     []string{"--generated-key"},
			identity: "primary",
			reason:   "generated_key",
		},
		{
			name:     "explicit write kind",
			args:     []string{"--kind", "write"},
			identity: "primary",
			reason:   "not_a_read",
		},
		{
			name:     "no replicas",
			args:     []string{"--replicas", "0"},
			identity: "primary",
			reason:   "no_replica",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			args := append([]string{"--format", "json", "decide"}, tc.args...)
			args = append(args, "select * from orders")

			// act
			out, _, err := execute(t, "", args...)

			// assert
			require.NoError(t, err)

			results := decodeDecisions(t, out)
			require.Len(t, results, 1)
			assert.Equal(t, tc.identity, results[0].Identity)
			assert.Equal(t, tc.reason, results[0].Reason)
		})
	}
}

func Test_Decide_RoundRobinOverReplicas(t *testing.T) {
	// act
	out, _, err := execute(t, "",
		"--format", "json", "decide",
		"--replicas", "2", "--selection", "round_robin",
		"select 1", "select 2", "select 3",
	)

	// assert
	require.NoError(t, err)

	results := decodeDecisions(t, out)
	require.Len(t, results, 3)
	assert.Equal(t, "replica", results[0].Identity)
	assert.Equal(t, "replica-2", results[1].Identity)
	assert.Equal(t, "replica", results[2].Identity)
}

func Test_Decide_InvalidFlags(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		message string
	}{
		{name: "unknown kind", args: []string{"--kind", "maybe"}, message: `kind "maybe"`},
		{name: "unknown selection", args: []string{"--selection", "random"}, message: "invalid selection"},
		{name: "negative replicas", args: []string{"--replicas", "-1"}, message: "invalid replica count -1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			args := append([]string{"decide"}, tc.args...)
			args = append(args, "select 1")

			// act
			_, _, err := execute(t, "", args...)

			// assert
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}
