package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/replica-routing-go/config"
	"github.com/AntonStoeckl/replica-routing-go/routing/postgresrouter"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// CheckOptions holds the flags of the check command.
type CheckOptions struct {
	ConfigPath string
	Timeout    time.Duration
}

// CheckResult is the connectivity of one database of the topology.
type CheckResult struct {
	Identity string `json:"identity"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Ping the primary and every replica of a topology",
		Long: `Load the topology from a config file and the REPLICA_ROUTING_* environment,
open the pools with the configured driver and ping every database.

Exits with 1 when any database does not respond.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to the YAML config file")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "timeout for all pings")

	return cmd
}

func runCheck(rootOpts *RootOptions, opts *CheckOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading config failed", err)
	}

	logger, err := config.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return WrapExitError(ExitCommandError, "creating logger failed", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
	defer cancel()

	topology, err := config.OpenTopology(ctx, cfg, postgresrouter.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "opening databases failed", err)
	}
	defer topology.Close()

	pings := topology.Router.Ping(ctx)

	results := make([]CheckResult, 0, len(pings))
	failed := 0

	for _, identity := range topology.Router.Identities() {
		result := CheckResult{Identity: identity.String(), Status: statusOK}

		if pingErr := pings[identity]; pingErr != nil {
			result.Status = statusError
			result.Error = pingErr.Error()
			failed++

			logger.Error("database did not respond", "identity", identity.String(), "error", pingErr.Error())
		}

		results = append(results, result)
	}

	formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

	writeErr := formatter.Write(results, func(w io.Writer) error {
		for _, result := range results {
			line := fmt.Sprintf("%s\t%s", result.Identity, result.Status)
			if result.Error != "" {
				line += "\t" + result.Error
			}

			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}

		return nil
	})
	if writeErr != nil {
		return writeErr
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d databases did not respond", failed, len(results)))
	}

	return nil
}
