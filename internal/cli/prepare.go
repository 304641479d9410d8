package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/gitguardhq/gitguard/internal/analyze"
	"github.com/gitguardhq/gitguard/internal/commitmsg"
	"github.com/gitguardhq/gitguard/internal/suggest"
	"github.com/spf13/cobra"
)

var flagApply bool

var prepareCmd = &cobra.Command{
	Use:   "prepare <message-file> [source]",
	Short: "Draft a commit message for the staged changes",
	Long: "Prepare drafts a conventional commit message from the staged changes. It is meant to run " +
		"from the prepare-commit-msg hook: git passes the message file and the message source. Merge " +
		"and squash commits are left alone. The suggestion is written to the file with --apply or " +
		"when autoApply is set; otherwise it is printed.",
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		msgFile := args[0]
		var source string
		if len(args) == 2 {
			source = args[1]
		}
		if source == "merge" || source == "squash" {
			return nil
		}

		raw, err := os.ReadFile(msgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading message file: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		message := strings.TrimSpace(commitmsg.StripComments(string(raw)))
		if strings.HasPrefix(message, "Merge ") {
			return nil
		}

		p, cfg, ok := setup(ctx)
		if !ok {
			return nil
		}

		suggestions, report, err := p.SuggestMessage(ctx, message)
		if err != nil {
			failRun(err)
			return nil
		}
		if len(report.Packages) == 0 {
			fmt.Fprintln(os.Stdout, "No staged changes.")
			return nil
		}

		final := suggestions[0].Message + packagesTrailer(report.Packages)

		if flagApply || cfg.AutoApply {
			if err := os.WriteFile(msgFile, []byte(final+"\n"), 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing message file: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			fmt.Fprintf(os.Stdout, "Applied: %s\n", firstLine(final))
			return nil
		}

		fmt.Fprintln(os.Stdout, "Suggested commit messages:")
		for i, s := range suggestions {
			fmt.Fprintf(os.Stdout, "  %d. %s %s\n", i+1, firstLine(s.Message), provenance(s))
		}
		fmt.Fprintln(os.Stdout, "Apply the first with --apply, or set autoApply to write it without asking.")
		return nil
	},
}

// packagesTrailer names every touched package when the commit spans
// more than one, so reviewers see the blast radius in the message.
func packagesTrailer(groups []analyze.PackageGroup) string {
	if len(groups) < 2 {
		return ""
	}
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	return "\n\nAffected packages: " + strings.Join(names, ", ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func provenance(s suggest.Suggestion) string {
	if s.Provenance == suggest.ProvenanceAI {
		if s.Model != "" {
			return fmt.Sprintf("(ai: %s)", s.Model)
		}
		return "(ai)"
	}
	return "(heuristic)"
}

func init() {
	addAnalysisFlags(prepareCmd)
	prepareCmd.Flags().BoolVar(&flagApply, "apply", false, "Write the top suggestion to the message file")
}
