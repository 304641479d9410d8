package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/gitguardhq/gitguard/internal/split"
	"github.com/gitguardhq/gitguard/internal/suggest"
	"github.com/gitguardhq/gitguard/internal/verdict"
)

const ruleWidth = 60

// TextWriter renders a human-readable terminal report.
type TextWriter struct{}

func (t *TextWriter) WriteVerdict(w io.Writer, v verdict.Verdict) error {
	ew := &errWriter{w: w}

	ew.printf("Verdict: %s\n", statusLabel(v.Status))
	if v.Commit != nil {
		ew.printf("Commit: %s  %s\n", shortSHA(v.Commit.SHA), v.Commit.Subject)
	}
	if v.Cohesion > 0 {
		ew.printf("Cohesion: %.2f\n", v.Cohesion)
	}
	ew.println(strings.Repeat("─", ruleWidth))

	if len(v.Issues) == 0 {
		ew.println("No issues found. Looks good!")
		return ew.err
	}

	block, warn, info := severityCounts(v.Issues)
	ew.printf("Issues: %d (%d block, %d warn, %d info)\n", len(v.Issues), block, warn, info)
	for _, is := range v.Issues {
		ew.println("")
		writeIssue(ew, is, "")
	}

	writeSplit(ew, v.Split)
	writeSuggestions(ew, v.Suggestions)
	ew.printf("\n%s\n", strings.Repeat("─", ruleWidth))
	return ew.err
}

func (t *TextWriter) WritePR(w io.Writer, pr verdict.PRVerdict) error {
	ew := &errWriter{w: w}

	noun := "commits"
	if len(pr.Commits) == 1 {
		noun = "commit"
	}
	ew.printf("Checked %d %s — %s\n", len(pr.Commits), noun, statusLabel(pr.Status))
	ew.println(strings.Repeat("─", ruleWidth))

	for _, v := range pr.Commits {
		sha, subject := "(staged)", ""
		if v.Commit != nil {
			sha = shortSHA(v.Commit.SHA)
			subject = v.Commit.Subject
		}
		ew.printf("\n%s  %s  %s\n", sha, statusLabel(v.Status), subject)
		for _, is := range v.Issues {
			writeIssue(ew, is, "  ")
		}
	}
	return ew.err
}

func writeIssue(ew *errWriter, is verdict.Issue, indent string) {
	head := string(is.Source)
	if is.Path != "" {
		head += fmt.Sprintf("  %s:%d", is.Path, is.Line)
	}
	ew.printf("%s%s %s\n", indent, severityIcon(is.Severity), head)

	cont := indent + "     "
	for _, line := range wrapText(is.Message, 70) {
		ew.printf("%s%s\n", cont, line)
	}
	if is.Remediation != "" {
		for _, line := range wrapText("fix: "+is.Remediation, 70) {
			ew.printf("%s%s\n", cont, dimStyle.Render(line))
		}
	}
}

func writeSplit(ew *errWriter, sp *split.Suggestion) {
	if sp == nil || len(sp.Groups) == 0 {
		return
	}
	ew.println("\nSuggested split:")
	for i, g := range sp.Groups {
		ew.printf("  %d. %s\n", i+1, g.Rationale)
		for _, f := range g.Files {
			ew.printf("     - %s\n", f)
		}
	}
}

func writeSuggestions(ew *errWriter, suggestions []suggest.Suggestion) {
	if len(suggestions) == 0 {
		return
	}
	ew.println("\nSuggested messages:")
	for i, s := range suggestions {
		ew.printf("  %d. %s  %s\n", i+1, s.Message, dimStyle.Render(provenanceTag(s)))
		if s.Explanation != "" {
			for _, line := range wrapText(s.Explanation, 70) {
				ew.printf("     %s\n", line)
			}
		}
	}
}

func provenanceTag(s suggest.Suggestion) string {
	if s.Provenance == suggest.ProvenanceAI {
		if s.Model != "" {
			return fmt.Sprintf("(ai: %s)", s.Model)
		}
		return "(ai)"
	}
	return "(heuristic)"
}

func severityCounts(issues []verdict.Issue) (block, warn, info int) {
	for _, is := range issues {
		switch is.Severity {
		case verdict.SeverityBlock:
			block++
		case verdict.SeverityWarn:
			warn++
		case verdict.SeverityInfo:
			info++
		}
	}
	return block, warn, info
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
