package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{formatText, formatJSON}

// NewRootCommand creates the root command of the replicarouter CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "replicarouter",
		Short: "Route PostgreSQL statements between a primary and its read replicas",
		Long: `replicarouter explains routing decisions for SQL statements and checks
the connectivity of a primary/replica topology.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", formatText, "output format (json|text)")

	cmd.AddCommand(NewDecideCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}
