package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const (
	hookPrepareCommitMsg = "prepare-commit-msg"
	hookPreCommit        = "pre-commit"
)

var flagHookType string

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage gitguard git hooks",
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install gitguard as a git hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagHookType != hookPrepareCommitMsg && flagHookType != hookPreCommit {
			return fmt.Errorf("unknown hook type %q (want %s or %s)", flagHookType, hookPrepareCommitMsg, hookPreCommit)
		}

		hookPath, err := getHookPath(flagHookType)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		section := generateHookScript(flagHookType)

		existing, err := os.ReadFile(hookPath)
		if err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error reading hook file: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		var content string
		if os.IsNotExist(err) || len(existing) == 0 {
			// No existing hook — create new file
			content = "#!/bin/sh\n" + section
		} else {
			content = replaceHookSection(string(existing), section, flagHookType)
		}

		if err := os.MkdirAll(filepath.Dir(hookPath), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating hooks directory: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing hook file: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		fmt.Fprintf(os.Stdout, "Installed gitguard %s hook at %s\n", flagHookType, hookPath)
		return nil
	},
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the gitguard git hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagHookType != hookPrepareCommitMsg && flagHookType != hookPreCommit {
			return fmt.Errorf("unknown hook type %q (want %s or %s)", flagHookType, hookPrepareCommitMsg, hookPreCommit)
		}

		hookPath, err := getHookPath(flagHookType)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		existing, err := os.ReadFile(hookPath)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintf(os.Stdout, "No %s hook found.\n", flagHookType)
				return nil
			}
			fmt.Fprintf(os.Stderr, "Error reading hook file: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		content := removeHookSection(string(existing), flagHookType)

		// If only a shebang (and whitespace) remains, delete the file entirely
		trimmed := strings.TrimSpace(content)
		if trimmed == "" || trimmed == "#!/bin/sh" || trimmed == "#!/bin/bash" {
			if err := os.Remove(hookPath); err != nil {
				fmt.Fprintf(os.Stderr, "Error removing hook file: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			fmt.Fprintf(os.Stdout, "Removed gitguard %s hook at %s\n", flagHookType, hookPath)
			return nil
		}

		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing hook file: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		fmt.Fprintf(os.Stdout, "Removed gitguard section from %s\n", hookPath)
		return nil
	},
}

func getHookPath(hook string) (string, error) {
	out, err := exec.Command("git", "rev-parse", "--git-dir").Output()
	if err != nil {
		return "", fmt.Errorf("not a git repository (git rev-parse --git-dir failed)")
	}
	gitDir := strings.TrimSpace(string(out))
	return filepath.Join(gitDir, "hooks", hook), nil
}

func hookMarkers(hook string) (string, string) {
	return fmt.Sprintf("# >>> gitguard %s hook >>>", hook),
		fmt.Sprintf("# <<< gitguard %s hook <<<", hook)
}

func generateHookScript(hook string) string {
	start, end := hookMarkers(hook)
	var b strings.Builder
	b.WriteString(start + "\n")
	switch hook {
	case hookPreCommit:
		b.WriteString("gitguard check --staged\n")
		b.WriteString("GITGUARD_EXIT=$?\n")
		b.WriteString("if [ $GITGUARD_EXIT -eq 1 ]; then\n")
		b.WriteString("  echo \"gitguard: blocking issues found, commit aborted\"\n")
		b.WriteString("  exit 1\n")
		b.WriteString("elif [ $GITGUARD_EXIT -ge 2 ]; then\n")
		b.WriteString("  echo \"gitguard: warning — check failed (exit $GITGUARD_EXIT), allowing commit\"\n")
		b.WriteString("fi\n")
	default:
		// Drafting a message must never abort the commit.
		b.WriteString("gitguard prepare \"$1\" \"$2\" || true\n")
	}
	b.WriteString(end + "\n")
	return b.String()
}

func replaceHookSection(existing, section, hook string) string {
	start, end := hookMarkers(hook)
	startIdx := strings.Index(existing, start)
	endIdx := strings.Index(existing, end)

	if startIdx == -1 || endIdx == -1 {
		// No existing gitguard section — append
		if !strings.HasSuffix(existing, "\n") {
			existing += "\n"
		}
		return existing + section
	}

	// Replace existing section
	before := existing[:startIdx]
	after := existing[endIdx+len(end):]
	// Trim leading newline from after to avoid double newlines
	after = strings.TrimPrefix(after, "\n")
	return before + section + after
}

func removeHookSection(existing, hook string) string {
	start, end := hookMarkers(hook)
	startIdx := strings.Index(existing, start)
	endIdx := strings.Index(existing, end)

	if startIdx == -1 || endIdx == -1 {
		return existing
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(end):]
	after = strings.TrimPrefix(after, "\n")

	return before + after
}

func init() {
	hookCmd.AddCommand(hookInstallCmd)
	hookCmd.AddCommand(hookUninstallCmd)
	hookCmd.PersistentFlags().StringVar(&flagHookType, "hook", hookPrepareCommitMsg, "Hook to manage (prepare-commit-msg, pre-commit)")
}
