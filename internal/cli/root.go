package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Exit codes. A warn verdict still exits zero so advisory findings
// never break a pipeline; only a blocking verdict is non-zero.
const (
	ExitSuccess      = 0
	ExitBlocked      = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   "gitguard",
	Short: "Commit guard for secrets, message quality, and change cohesion",
	Long:  "Gitguard checks commits and pull requests for leaked secrets, weak commit messages, and unrelated changes bundled together, and blocks or warns with deterministic exit codes.",
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// Run executes the root command and returns an exit code. An interrupt
// cancels in-flight analysis; commands report partial results.
func Run() int {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(prCmd)
	rootCmd.AddCommand(prepareCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print gitguard version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "gitguard version %s\n", version)
	},
}
