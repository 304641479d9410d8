package verdict

import (
	"fmt"

	"github.com/gitguardhq/gitguard/internal/analyze"
	"github.com/gitguardhq/gitguard/internal/scan"
	"github.com/gitguardhq/gitguard/internal/split"
	"github.com/gitguardhq/gitguard/internal/suggest"
)

// Status is the overall outcome of a check.
type Status string

const (
	StatusPass  Status = "pass"
	StatusWarn  Status = "warn"
	StatusBlock Status = "block"
)

// StatusRank orders statuses by severity for worst-wins comparison.
func StatusRank(s Status) int {
	switch s {
	case StatusBlock:
		return 2
	case StatusWarn:
		return 1
	case StatusPass:
		return 0
	default:
		return 0
	}
}

// Severity grades a single issue. Only block issues can block a run;
// info issues never change the status.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityBlock Severity = "block"
)

// Source names the analysis stage an issue came from.
type Source string

const (
	SourceSecurity Source = "security"
	SourceMessage  Source = "message"
	SourceCohesion Source = "cohesion"
	SourceSplit    Source = "split"
	SourceAnalysis Source = "analysis"
)

// Issue is one actionable problem surfaced by a check.
type Issue struct {
	Source      Source   `json:"source"`
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
	Remediation string   `json:"remediation,omitempty"`
	Path        string   `json:"path,omitempty"`
	Line        int      `json:"line,omitempty"`
	Commit      string   `json:"commit,omitempty"`
}

// CommitRef identifies the commit a verdict applies to. Nil on a
// verdict means the staged changes were checked.
type CommitRef struct {
	SHA     string `json:"sha"`
	Subject string `json:"subject"`
}

// Verdict is the decision for one commit or the staged changes.
type Verdict struct {
	Status      Status               `json:"status"`
	Commit      *CommitRef           `json:"commit,omitempty"`
	Cohesion    float64              `json:"cohesion"`
	Issues      []Issue              `json:"issues"`
	Findings    []scan.Finding       `json:"findings,omitempty"`
	Split       *split.Suggestion    `json:"split,omitempty"`
	Suggestions []suggest.Suggestion `json:"suggestions,omitempty"`
}

// PRVerdict is the decision for a commit range. Status is the worst
// per-commit status.
type PRVerdict struct {
	Status  Status    `json:"status"`
	Commits []Verdict `json:"commits"`
}

// Evidence is everything Aggregate folds into a verdict.
type Evidence struct {
	Commit   *CommitRef
	Report   analyze.Report
	Findings []scan.Finding
	Split    split.Suggestion
}

// Aggregate folds evidence into a verdict. Issues are ordered security
// findings first (highest severity leading), then message quality,
// then cohesion, then the split advisory.
func Aggregate(ev Evidence) Verdict {
	findings := make([]scan.Finding, len(ev.Findings))
	copy(findings, ev.Findings)
	scan.SortFindings(findings)

	issues := make([]Issue, 0, len(findings)+len(ev.Report.MessageIssues)+len(ev.Report.CohesionIssues)+1)
	for _, f := range findings {
		issues = append(issues, findingIssue(f, ev.Commit))
	}
	for _, is := range ev.Report.MessageIssues {
		issues = append(issues, adviceIssue(SourceMessage, is, ev.Commit))
	}
	for _, is := range ev.Report.CohesionIssues {
		issues = append(issues, adviceIssue(SourceCohesion, is, ev.Commit))
	}

	v := Verdict{
		Commit:   ev.Commit,
		Cohesion: ev.Report.Cohesion,
		Findings: findings,
	}
	if len(ev.Split.Groups) >= 2 {
		sp := ev.Split
		v.Split = &sp
		issues = append(issues, Issue{
			Source:      SourceSplit,
			Severity:    SeverityWarn,
			Message:     fmt.Sprintf("commit mixes %d separable groups of changes", len(sp.Groups)),
			Remediation: "split into atomic commits (git add -p, or git reset and re-stage in stages)",
			Commit:      commitSHA(ev.Commit),
		})
	}

	v.Issues = issues
	v.Status = statusOf(issues)
	return v
}

// AggregatePR combines per-commit verdicts; the worst status wins.
func AggregatePR(commits []Verdict) PRVerdict {
	status := StatusPass
	for _, v := range commits {
		if StatusRank(v.Status) > StatusRank(status) {
			status = v.Status
		}
	}
	return PRVerdict{Status: status, Commits: commits}
}

// FailureVerdict is used when a commit could not be analyzed at all.
// Failures block so a broken analysis can never look clean.
func FailureVerdict(ref CommitRef, err error) Verdict {
	return Verdict{
		Status: StatusBlock,
		Commit: &ref,
		Issues: []Issue{{
			Source:   SourceAnalysis,
			Severity: SeverityBlock,
			Message:  fmt.Sprintf("analysis failed: %v", err),
			Commit:   ref.SHA,
		}},
	}
}

func statusOf(issues []Issue) Status {
	status := StatusPass
	for _, is := range issues {
		switch is.Severity {
		case SeverityBlock:
			return StatusBlock
		case SeverityWarn:
			status = StatusWarn
		}
	}
	return status
}

func findingIssue(f scan.Finding, ref *CommitRef) Issue {
	sev := SeverityBlock
	switch f.Severity {
	case scan.SeverityMedium:
		sev = SeverityWarn
	case scan.SeverityLow:
		sev = SeverityInfo
	}
	return Issue{
		Source:      SourceSecurity,
		Severity:    sev,
		Message:     fmt.Sprintf("%s (%s) at %s:%d", f.Description, f.RuleID, f.Path, f.Line),
		Remediation: "remove the secret from the change and rotate it; read it from the environment or a secret manager instead",
		Path:        f.Path,
		Line:        f.Line,
		Commit:      commitSHA(ref),
	}
}

func adviceIssue(src Source, is analyze.Issue, ref *CommitRef) Issue {
	sev := SeverityInfo
	if is.Warn {
		sev = SeverityWarn
	}
	return Issue{
		Source:      src,
		Severity:    sev,
		Message:     is.Text,
		Remediation: is.Hint,
		Commit:      commitSHA(ref),
	}
}

func commitSHA(ref *CommitRef) string {
	if ref == nil {
		return ""
	}
	return ref.SHA
}
