package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout, stderr and the error.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(bytes.NewBufferString(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), errOut.String(), err
}

func Test_RootCommand_HasSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	assert.Contains(t, names, "decide")
	assert.Contains(t, names, "check")
}

func Test_RootCommand_RejectsInvalidFormat(t *testing.T) {
	// act
	_, _, err := execute(t, "", "--format", "yaml", "decide", "select 1")

	// assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func Test_GetExitCode(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "no error", err: nil, expected: ExitSuccess},
		{name: "plain error", err: errors.New("boom"), expected: ExitFailure},
		{name: "exit error", err: NewExitError(ExitCommandError, "bad flag"), expected: ExitCommandError},
		{
			name:     "wrapped exit error",
			err:      errors.Join(errors.New("outer"), WrapExitError(ExitFailure, "unreachable", errors.New("refused"))),
			expected: ExitFailure,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GetExitCode(tc.err))
		})
	}
}

func Test_ExitError_MessageAndUnwrap(t *testing.T) {
	// arrange
	cause := errors.New("connection refused")

	// act
	err := WrapExitError(ExitFailure, "ping failed", cause)

	// assert
	assert.Equal(t, "ping failed: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "bad flag", NewExitError(ExitCommandError, "bad flag").Error())
}
