package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gitguardhq/gitguard/internal/config"
	"github.com/gitguardhq/gitguard/internal/gitrepo"
	"github.com/gitguardhq/gitguard/internal/logging"
	"github.com/gitguardhq/gitguard/internal/output"
	"github.com/gitguardhq/gitguard/internal/pipeline"
	"github.com/gitguardhq/gitguard/internal/verdict"
	"github.com/spf13/cobra"
)

// Shared analysis flags
var (
	flagConfig      string
	flagFormat      string
	flagOut         string
	flagDebug       bool
	flagNoAI        bool
	flagStaged      bool
	flagMessage     string
	flagMaxInFlight int
)

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagConfig, "config", "", "Config file path (replaces global and repo config files)")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&flagNoAI, "no-ai", false, "Disable AI suggestions for this run")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagMaxInFlight > 0 {
		m["maxInFlight"] = strconv.Itoa(flagMaxInFlight)
	}
	if flagDebug {
		m["debug"] = "1"
	}
	if flagNoAI {
		m["noAI"] = "1"
	}
	return m
}

// setup opens the repository, loads configuration, and assembles the
// analysis pipeline. On failure it reports the error, records the exit
// code, and returns ok = false.
func setup(ctx context.Context) (*pipeline.Pipeline, config.Config, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return nil, config.Config{}, false
	}
	repo, err := gitrepo.Open(ctx, cwd, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return nil, config.Config{}, false
	}
	cfg, err := config.Load(repo.Root(), flagConfig, buildOverrides())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitConfigError
		return nil, config.Config{}, false
	}
	p, err := pipeline.New(repo, cfg, logging.New(cfg.Debug))
	if err != nil {
		// Bad scan rules or an unusable provider: fatal before any check runs.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitConfigError
		return nil, config.Config{}, false
	}
	return p, cfg, true
}

// failRun classifies an error from a running check.
func failRun(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if gitrepo.IsNotARepository(err) || gitrepo.IsInvalidRevision(err) {
		exitCode = ExitUsageError
		return
	}
	exitCode = ExitRuntimeError
}

// render writes to --out when set, stdout otherwise.
func render(write func(io.Writer) error) error {
	if flagOut == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(flagOut)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var checkCmd = &cobra.Command{
	Use:   "check [revision]",
	Short: "Check a commit (default HEAD) or the staged changes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, cfg, ok := setup(ctx)
		if !ok {
			return nil
		}

		var v verdict.Verdict
		var err error
		if flagStaged {
			v, err = p.CheckStaged(ctx, flagMessage)
		} else {
			rev := "HEAD"
			if len(args) == 1 {
				rev = args[0]
			}
			v, err = p.CheckCommit(ctx, rev)
		}
		if err != nil {
			failRun(err)
			return nil
		}

		w, err := output.GetWriter(cfg.Format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitConfigError
			return nil
		}
		if err := render(func(dst io.Writer) error { return w.WriteVerdict(dst, v) }); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		if v.Status == verdict.StatusBlock {
			exitCode = ExitBlocked
		}
		return nil
	},
}

var prCmd = &cobra.Command{
	Use:   "pr <revRange>",
	Short: "Check every commit in a pull-request range",
	Long:  "Check each commit in a revision range (e.g. origin/main..HEAD) and aggregate the verdicts. The worst per-commit status wins.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, cfg, ok := setup(ctx)
		if !ok {
			return nil
		}

		pr, err := p.CheckRange(ctx, args[0])
		interrupted := err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
		if err != nil && !interrupted {
			failRun(err)
			return nil
		}

		w, err := output.GetWriter(cfg.Format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitConfigError
			return nil
		}
		if err := render(func(dst io.Writer) error { return w.WritePR(dst, pr) }); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		if interrupted {
			fmt.Fprintln(os.Stderr, "Interrupted; results are partial.")
		}
		switch {
		case pr.Status == verdict.StatusBlock:
			// A definitive block survives interruption.
			exitCode = ExitBlocked
		case interrupted:
			exitCode = ExitRuntimeError
		}
		return nil
	},
}

func init() {
	addAnalysisFlags(checkCmd)
	addAnalysisFlags(prCmd)

	checkCmd.Flags().BoolVar(&flagStaged, "staged", false, "Check the staged changes instead of a commit")
	checkCmd.Flags().StringVar(&flagMessage, "message", "", "Commit message to check alongside --staged")

	prCmd.Flags().IntVar(&flagMaxInFlight, "max-in-flight", 0, "Maximum commits analyzed concurrently")
}
