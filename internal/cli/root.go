package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thruflo/brigadier/internal/lifecycle"
)

// Version is set at build time via ldflags.
var Version = "dev"

// usageBanner is printed to standard error ahead of a usage error.
const usageBanner = "Usage: brigadier project [task] [--option[=value]]"

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brigadier project [task] [--option[=value]]",
		Short: "Project-local task runner",
		Long: `Brigadier loads a Lua project definition, merges command line options
into the project configuration and builds one task, or the task named
"default" when none is given. Options may appear anywhere; a bare --option
is true and values are decoded as JSON scalars when they parse.`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		RunE:               runBuild,
	}
	cmd.Version = Version
	cmd.SetVersionTemplate("brigadier version {{.Version}}\n")
	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return execute(context.Background(), rootCmd)
}

func execute(ctx context.Context, cmd *cobra.Command) int {
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	if IsUsageError(err) {
		fmt.Fprintln(cmd.ErrOrStderr(), usageBanner)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
	return lifecycle.ExitCode(err)
}
