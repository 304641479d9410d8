package analyze

import (
	"fmt"
	"strings"

	"github.com/gitguardhq/gitguard/internal/commitmsg"
	"github.com/gitguardhq/gitguard/internal/config"
	"github.com/gitguardhq/gitguard/internal/gitrepo"
)

const (
	maxSubjectLength = 72
	largeChangeFiles = 5
)

// Issue is a single observation about message quality or cohesion.
// Warn issues affect the verdict; the rest are informational.
type Issue struct {
	Text string `json:"text"`
	Hint string `json:"hint,omitempty"`
	Warn bool   `json:"warn"`
}

// Report is the analyzer's view of one commit.
type Report struct {
	Message        commitmsg.Message `json:"-"`
	MessageIssues  []Issue           `json:"messageIssues,omitempty"`
	Cohesion       float64           `json:"cohesion"`
	CohesionIssues []Issue           `json:"cohesionIssues,omitempty"`
	ChangeTypes    []string          `json:"changeTypes"`
	Packages       []PackageGroup    `json:"packages"`
}

// Analyzer classifies commits. It is stateless apart from configuration
// and safe for concurrent use.
type Analyzer struct {
	root      string
	threshold float64
}

// NewAnalyzer returns an analyzer for a repository rooted at root. The
// root may be empty, in which case package names are not resolved from
// package.json files.
func NewAnalyzer(root string, cfg config.CohesionConfig) *Analyzer {
	th := cfg.Threshold
	if th <= 0 {
		th = 0.5
	}
	return &Analyzer{root: root, threshold: th}
}

// Analyze parses the commit message and scores the change set. It never
// fails: malformed input degrades to issues on the report.
func (a *Analyzer) Analyze(raw string, changes []gitrepo.FileChange) Report {
	msg := commitmsg.Parse(raw)
	paths := changedPaths(changes)
	types := DetectChangeTypes(paths)

	r := Report{
		Message:     msg,
		ChangeTypes: types,
		Packages:    GroupByPackage(a.root, paths),
		Cohesion:    cohesionScore(paths, types),
	}
	r.MessageIssues = a.messageIssues(msg, len(changes), types)
	r.CohesionIssues = a.cohesionIssues(r.Cohesion, paths, types, r.Packages)
	return r
}

func changedPaths(changes []gitrepo.FileChange) []string {
	paths := make([]string, 0, len(changes))
	for _, fc := range changes {
		paths = append(paths, fc.Path)
	}
	return paths
}

// cohesionScore blends the share of files under the modal top-level
// directory with the purity of detected change types. One file (or
// none) is trivially cohesive.
func cohesionScore(paths, types []string) float64 {
	if len(paths) <= 1 {
		return 1.0
	}
	counts := make(map[string]int)
	for _, p := range paths {
		counts[topSegment(p)]++
	}
	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	topDirRatio := float64(max) / float64(len(paths))
	typePurity := 1.0 / float64(len(types))
	return 0.7*topDirRatio + 0.3*typePurity
}

// topSegment returns the grouping directory for a path: the package
// directory for monorepo paths, the first path segment otherwise, and
// "" for files at the repository root.
func topSegment(p string) string {
	if strings.HasPrefix(p, "packages/") {
		parts := strings.SplitN(p, "/", 3)
		if len(parts) > 1 {
			return "packages/" + parts[1]
		}
	}
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return ""
}

func (a *Analyzer) messageIssues(msg commitmsg.Message, fileCount int, types []string) []Issue {
	if strings.TrimSpace(msg.Raw) == "" {
		return []Issue{{
			Text: "commit message is empty",
			Hint: "describe the change as type(scope): summary",
			Warn: true,
		}}
	}

	var issues []Issue
	if !msg.Conventional {
		issues = append(issues, Issue{
			Text: fmt.Sprintf("subject %q does not follow the conventional commit format", msg.Subject),
			Hint: "use type(scope): description with a type like feat, fix, docs or chore",
			Warn: true,
		})
	}
	if header := firstLine(msg.Raw); len(header) > maxSubjectLength {
		issues = append(issues, Issue{
			Text: fmt.Sprintf("subject line is %d characters", len(header)),
			Hint: fmt.Sprintf("keep it at or under %d characters", maxSubjectLength),
			Warn: true,
		})
	}
	if isWorkInProgress(msg.Subject) {
		issues = append(issues, Issue{
			Text: "subject carries a work-in-progress marker",
			Hint: "finish the change or amend the message before sharing it",
			Warn: true,
		})
	}
	if fileCount >= largeChangeFiles && msg.Body == "" {
		issues = append(issues, Issue{
			Text: fmt.Sprintf("%d files changed but the message has no body", fileCount),
			Hint: "add a body paragraph explaining what changed and why",
		})
	}
	if msg.Conventional && len(types) == 1 && types[0] != msg.Type && detectable(msg.Type) {
		issues = append(issues, Issue{
			Text: fmt.Sprintf("message type is %q but the changes look like %q", msg.Type, types[0]),
		})
	}
	return issues
}

func (a *Analyzer) cohesionIssues(score float64, paths, types []string, pkgs []PackageGroup) []Issue {
	var issues []Issue
	if len(paths) > 1 && score < a.threshold {
		dirs := make(map[string]bool)
		for _, p := range paths {
			dirs[topSegment(p)] = true
		}
		issues = append(issues, Issue{
			Text: fmt.Sprintf("changes span %d top-level directories and %d change types (cohesion %.2f)",
				len(dirs), len(types), score),
			Hint: "consider splitting into atomic commits",
			Warn: true,
		})
	}
	if len(pkgs) > 1 {
		names := make([]string, 0, len(pkgs))
		for _, g := range pkgs {
			names = append(names, g.Name)
		}
		issues = append(issues, Issue{
			Text: fmt.Sprintf("commit touches %d packages (%s)", len(pkgs), strings.Join(names, ", ")),
			Hint: "commit each package separately",
			Warn: true,
		})
	}
	return issues
}

func firstLine(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func isWorkInProgress(subject string) bool {
	s := strings.ToLower(subject)
	if s == "wip" || strings.HasPrefix(s, "wip:") || strings.HasPrefix(s, "wip ") {
		return true
	}
	return strings.HasPrefix(s, "fixup!") || strings.HasPrefix(s, "squash!")
}

// detectable reports whether a commit type is one the path heuristic can
// produce, so a mismatch against it is meaningful.
func detectable(t string) bool {
	for _, ct := range changeTypeOrder {
		if ct == t {
			return true
		}
	}
	return false
}
