package suggest

import (
	"fmt"
	"strings"

	"github.com/gitguardhq/gitguard/internal/gitrepo"
	"github.com/gitguardhq/gitguard/internal/scan"
)

const (
	maxDiffFiles    = 20
	maxLinesPerFile = 40
	maxLineLength   = 200
)

// systemPrompt instructs the provider to answer with a strict JSON
// payload of conventional commit suggestions.
func systemPrompt(maxSuggestions int) string {
	return fmt.Sprintf(`You are a helpful git commit message assistant.
Provide %d different conventional commit messages that are clear and concise.
Return your response in the following JSON format:
{
    "suggestions": [
        {
            "message": "type(scope): description",
            "explanation": "Brief explanation of why this format was chosen",
            "type": "commit type used",
            "scope": "scope used",
            "description": "main message"
        }
    ]
}
Return only JSON, no other text.`, maxSuggestions)
}

// userPrompt renders the analysis results for the provider. All diff and
// message text passes through redaction first so secrets never leave the
// machine.
func userPrompt(in Input) string {
	var b strings.Builder

	b.WriteString("Please suggest a git commit message following conventional commits format.\n\n")
	fmt.Fprintf(&b, "Original message: %q\n", scan.RedactText(in.Report.Message.Raw))
	fmt.Fprintf(&b, "Cohesion score: %.2f\n", in.Report.Cohesion)
	fmt.Fprintf(&b, "Detected change types: %s\n", strings.Join(in.Report.ChangeTypes, ", "))

	if len(in.Report.Packages) > 0 {
		b.WriteString("\nChanged packages:\n")
		for _, pkg := range in.Report.Packages {
			fmt.Fprintf(&b, "- %s (%d files)\n", pkg.Name, len(pkg.Files))
		}
	}

	if len(in.Findings) > 0 {
		b.WriteString("\nSecurity findings (already flagged, do not repeat them):\n")
		for _, f := range in.Findings {
			fmt.Fprintf(&b, "- %s [%s] at %s:%d\n", f.RuleID, f.Severity, f.Path, f.Line)
		}
	}

	b.WriteString("\nChanges:\n")
	b.WriteString(diffSummary(in.Changes))

	b.WriteString(`
Please provide commit messages that:
1. Follow the format: type(scope): description
2. Use the most significant package as scope
3. Keep the description clear and concise

Use one of: feat|fix|docs|style|refactor|perf|test|chore`)

	return b.String()
}

// diffSummary renders a bounded, redacted view of the change set.
func diffSummary(changes []gitrepo.FileChange) string {
	var b strings.Builder
	for i, fc := range changes {
		if i >= maxDiffFiles {
			fmt.Fprintf(&b, "... and %d more files\n", len(changes)-maxDiffFiles)
			break
		}
		fmt.Fprintf(&b, "%s (%s)\n", fc.Path, fc.Kind)

		lines := 0
		for _, h := range fc.Hunks {
			for _, line := range h.Removed {
				if lines >= maxLinesPerFile {
					break
				}
				fmt.Fprintf(&b, "- %s\n", clip(scan.RedactText(line.Text)))
				lines++
			}
			for _, line := range h.Added {
				if lines >= maxLinesPerFile {
					break
				}
				fmt.Fprintf(&b, "+ %s\n", clip(scan.RedactText(line.Text)))
				lines++
			}
		}
		if lines >= maxLinesPerFile {
			b.WriteString("  ...\n")
		}
	}
	return b.String()
}

func clip(s string) string {
	if len(s) <= maxLineLength {
		return s
	}
	return s[:maxLineLength] + "..."
}
