package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/replica-routing-go/routing"
)

const kindAuto = "auto"

// DecideOptions holds the flags of the decide command.
type DecideOptions struct {
	Kind          string
	GeneratedKey  bool
	InTransaction bool
	Strong        bool
	Replicas      int
	Selection     string
}

// DecisionResult is the routing decision for one statement.
type DecisionResult struct {
	Statement string `json:"statement"`
	Kind      string `json:"kind"`
	Identity  string `json:"identity"`
	Reason    string `json:"reason"`
}

// NewDecideCommand creates the decide command.
func NewDecideCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DecideOptions{}

	cmd := &cobra.Command{
		Use:   "decide [statement...]",
		Short: "Explain where statements would be routed",
		Long: `Explain the routing decision for each statement without connecting to a database.

Statements are taken from the arguments, or one per line from stdin when there are none.
The command kind is inferred from the leading verb unless --kind is given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecide(rootOpts, opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", kindAuto, "command kind (auto|read|write|other)")
	cmd.Flags().BoolVar(&opts.GeneratedKey, "generated-key", false, "statements return generated keys")
	cmd.Flags().BoolVar(&opts.InTransaction, "in-transaction", false, "statements run inside an active transaction")
	cmd.Flags().BoolVar(&opts.Strong, "strong", false, "require strong consistency (read your writes)")
	cmd.Flags().IntVar(&opts.Replicas, "replicas", 1, "number of configured replicas")
	cmd.Flags().StringVar(&opts.Selection, "selection", routing.SelectionFirst, "replica selection (first|round_robin)")

	return cmd
}

func runDecide(rootOpts *RootOptions, opts *DecideOptions, args []string, cmd *cobra.Command) error {
	if opts.Replicas < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid replica count %d", opts.Replicas))
	}

	selector, err := routing.ParseSelector(opts.Selection)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid selection", err)
	}

	statements := args
	if len(statements) == 0 {
		if statements, err = readStatements(cmd.InOrStdin()); err != nil {
			return WrapExitError(ExitCommandError, "reading statements failed", err)
		}
	}

	replicas := make([]routing.Identity, 0, opts.Replicas)
	for idx := range opts.Replicas {
		replicas = append(replicas, routing.ReplicaIdentityFor(idx))
	}

	decider := routing.NewDecider(replicas, selector)
	results := make([]DecisionResult, 0, len(statements))

	for _, statement := range statements {
		kind, kindErr := commandKind(opts.Kind, statement)
		if kindErr != nil {
			return WrapExitError(ExitCommandError, "invalid kind", kindErr)
		}

		descriptor := routing.NewDescriptor(kind, opts.GeneratedKey, statement)
		descriptor.PrimaryRequested = opts.Strong

		decision := decider.Decide(descriptor, opts.InTransaction)

		results = append(results, DecisionResult{
			Statement: statement,
			Kind:      kind.String(),
			Identity:  decision.Identity.String(),
			Reason:    string(decision.Reason),
		})
	}

	formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

	return formatter.Write(results, func(w io.Writer) error {
		for _, result := range results {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", result.Identity, result.Reason, result.Statement); err != nil {
				return err
			}
		}

		return nil
	})
}

func commandKind(flag, statement string) (routing.CommandKind, error) {
	switch flag {
	case kindAuto:
		return routing.InferCommandKind(statement), nil
	case routing.KindRead.String(), routing.KindWrite.String(), routing.KindOther.String():
		return routing.ParseCommandKind(flag), nil
	default:
		return routing.KindOther, fmt.Errorf("kind %q must be one of auto, read, write, other", flag)
	}
}

// readStatements reads one statement per non-blank line.
func readStatements(r io.Reader) ([]string, error) {
	statements := make([]string, 0)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			statements = append(statements, line)
		}
	}

	return statements, scanner.Err()
}
