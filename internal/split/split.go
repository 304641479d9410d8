package split

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gitguardhq/gitguard/internal/analyze"
	"github.com/gitguardhq/gitguard/internal/config"
	"github.com/gitguardhq/gitguard/internal/gitrepo"
)

// Group is one suggested atomic commit: a non-empty set of file paths
// and a short rationale for why they belong together.
type Group struct {
	Files     []string `json:"files"`
	Rationale string   `json:"rationale"`
}

// Suggestion is an ordered list of groups that exactly partitions the
// analyzed change set.
type Suggestion struct {
	Groups []Group `json:"groups"`
}

// Empty reports whether the suggestion carries no groups.
func (s Suggestion) Empty() bool {
	return len(s.Groups) == 0
}

// Advisor builds split suggestions. It is stateless apart from the
// similarity threshold and safe for concurrent use.
type Advisor struct {
	minSimilarity float64
}

// NewAdvisor returns an advisor using the configured similarity
// threshold for graph edges.
func NewAdvisor(cfg config.SplitConfig) *Advisor {
	min := cfg.MinSimilarity
	if min <= 0 {
		min = 0.5
	}
	return &Advisor{minSimilarity: min}
}

type node struct {
	path string
	kind gitrepo.ChangeKind
}

// Suggest partitions the change set into groups of related files. The
// result covers every input file exactly once, including the degenerate
// single-file case.
func (a *Advisor) Suggest(changes []gitrepo.FileChange) Suggestion {
	nodes := collectNodes(changes)
	if len(nodes) == 0 {
		return Suggestion{}
	}

	// Connected components over the similarity graph, visited in sorted
	// path order so output is deterministic.
	visited := make([]bool, len(nodes))
	var groups []Group
	for i := range nodes {
		if visited[i] {
			continue
		}
		component := []int{i}
		visited[i] = true
		for qi := 0; qi < len(component); qi++ {
			cur := component[qi]
			for j := range nodes {
				if visited[j] {
					continue
				}
				if a.similarity(nodes[cur], nodes[j]) >= a.minSimilarity {
					visited[j] = true
					component = append(component, j)
				}
			}
		}

		files := make([]string, 0, len(component))
		for _, idx := range component {
			files = append(files, nodes[idx].path)
		}
		sort.Strings(files)
		groups = append(groups, Group{Files: files, Rationale: rationale(files)})
	}
	return Suggestion{Groups: groups}
}

// collectNodes dedupes paths and sorts them so graph traversal order is
// stable.
func collectNodes(changes []gitrepo.FileChange) []node {
	seen := make(map[string]bool)
	var nodes []node
	for _, fc := range changes {
		if fc.Path == "" || seen[fc.Path] {
			continue
		}
		seen[fc.Path] = true
		nodes = append(nodes, node{path: fc.Path, kind: fc.Kind})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].path < nodes[j].path })
	return nodes
}

// similarity weighs how strongly two files belong to the same logical
// change: 0.6 for the same immediate directory (0.3 for just the same
// top-level segment), 0.2 for the same change kind, plus up to 0.4 for
// path token overlap.
func (a *Advisor) similarity(x, y node) float64 {
	var score float64
	switch {
	case dirOf(x.path) == dirOf(y.path):
		score += 0.6
	case topSegment(x.path) == topSegment(y.path):
		score += 0.3
	}
	if x.kind == y.kind {
		score += 0.2
	}
	score += 0.4 * jaccard(pathTokens(x.path), pathTokens(y.path))
	return score
}

func dirOf(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return ""
}

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

func pathTokens(p string) map[string]bool {
	tokens := make(map[string]bool)
	for _, t := range strings.FieldsFunc(strings.ToLower(p), func(r rune) bool {
		return r == '/' || r == '.' || r == '_' || r == '-'
	}) {
		if t != "" {
			tokens[t] = true
		}
	}
	return tokens
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if b[t] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// typeNames maps detected change types to rationale wording.
var typeNames = map[string]string{
	"feat":  "feature",
	"fix":   "fix",
	"docs":  "documentation",
	"style": "styling",
	"test":  "test",
	"chore": "build/config",
}

// rationale describes a group by its uniform change type and location,
// falling back to generic wording when the group is mixed.
func rationale(files []string) string {
	types := analyze.DetectChangeTypes(files)
	top := topSegment(files[0])
	sameTop := true
	for _, f := range files[1:] {
		if topSegment(f) != top {
			sameTop = false
			break
		}
	}

	var what string
	if len(types) == 1 {
		what = typeNames[types[0]] + " changes"
	} else {
		what = "related changes"
	}
	if len(files) == 1 {
		what = strings.TrimSuffix(what, " changes") + " change"
	}

	switch {
	case sameTop && top != "":
		return fmt.Sprintf("%s under %s/", what, top)
	case sameTop:
		return fmt.Sprintf("%s at the repository root", what)
	default:
		return what
	}
}
