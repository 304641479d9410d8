package analyze

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gitguardhq/gitguard/internal/config"
	"github.com/gitguardhq/gitguard/internal/gitrepo"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer("", config.CohesionConfig{Threshold: 0.5})
}

func fc(paths ...string) []gitrepo.FileChange {
	changes := make([]gitrepo.FileChange, 0, len(paths))
	for _, p := range paths {
		changes = append(changes, gitrepo.FileChange{Path: p, Kind: gitrepo.KindModified})
	}
	return changes
}

func warnCount(issues []Issue) int {
	n := 0
	for _, i := range issues {
		if i.Warn {
			n++
		}
	}
	return n
}

func TestDetectChangeTypes(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{"feature code", []string{"src/app.ts"}, []string{"feat"}},
		{"js tests", []string{"src/app.test.ts"}, []string{"test"}},
		{"go tests", []string{"internal/scan/scanner_test.go"}, []string{"test"}},
		{"docs", []string{"README.md"}, []string{"docs"}},
		{"styles", []string{"styles/main.css"}, []string{"style"}},
		{"node manifest", []string{"package.json"}, []string{"chore"}},
		{"go manifest", []string{"go.mod"}, []string{"chore"}},
		{"bug fix path", []string{"src/login-bugfix.ts"}, []string{"fix"}},
		{"empty set", nil, []string{"feat"}},
		{
			"mixed in canonical order",
			[]string{"src/app.ts", "src/app.test.ts", "README.md"},
			[]string{"test", "docs", "feat"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectChangeTypes(tt.paths)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestGroupByPackage(t *testing.T) {
	groups := GroupByPackage("", []string{
		"packages/core/src/index.ts",
		"packages/core/src/util.ts",
		"packages/ui/button.tsx",
		"README.md",
	})
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3: %+v", len(groups), groups)
	}
	if groups[0].Name != "core" || len(groups[0].Files) != 2 {
		t.Errorf("groups[0] = %+v, want core with 2 files", groups[0])
	}
	if groups[1].Name != "ui" {
		t.Errorf("groups[1].Name = %q, want ui", groups[1].Name)
	}
	if groups[2].Name != "root" || len(groups[2].Files) != 1 {
		t.Errorf("groups[2] = %+v, want root with 1 file", groups[2])
	}
}

func TestGroupByPackage_ManifestName(t *testing.T) {
	root := t.TempDir()
	pkgDir := filepath.Join(root, "packages", "core")
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := `{"name": "@acme/core", "version": "1.0.0"}`
	if err := os.WriteFile(filepath.Join(pkgDir, "package.json"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	groups := GroupByPackage(root, []string{"packages/core/src/index.ts"})
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].Name != "@acme/core" {
		t.Errorf("Name = %q, want @acme/core", groups[0].Name)
	}
	if groups[0].Scope != "core" {
		t.Errorf("Scope = %q, want core", groups[0].Scope)
	}
}

func TestAnalyze_CleanCommit(t *testing.T) {
	a := newTestAnalyzer()
	r := a.Analyze("feat(core): add rate limiter",
		fc("src/limiter.ts", "src/limiter.test.ts"))

	if len(r.MessageIssues) != 0 {
		t.Errorf("MessageIssues = %+v, want none", r.MessageIssues)
	}
	if len(r.CohesionIssues) != 0 {
		t.Errorf("CohesionIssues = %+v, want none", r.CohesionIssues)
	}
	if r.Cohesion < 0.5 {
		t.Errorf("Cohesion = %v, want >= 0.5", r.Cohesion)
	}
	if !r.Message.Conventional {
		t.Error("message should parse as conventional")
	}
}

func TestAnalyze_SingleFileCohesion(t *testing.T) {
	a := newTestAnalyzer()
	r := a.Analyze("feat: one file", fc("src/app.ts"))
	if r.Cohesion != 1.0 {
		t.Errorf("Cohesion = %v, want 1.0 for a single file", r.Cohesion)
	}
}

func TestAnalyze_CohesionBlend(t *testing.T) {
	// Same directory, two change types: 0.7*1.0 + 0.3*0.5.
	a := newTestAnalyzer()
	r := a.Analyze("feat: add limiter with tests",
		fc("src/limiter.ts", "src/limiter.test.ts"))
	if math.Abs(r.Cohesion-0.85) > 1e-9 {
		t.Errorf("Cohesion = %v, want 0.85", r.Cohesion)
	}
}

func TestAnalyze_ScatteredWIP(t *testing.T) {
	var paths []string
	for _, dir := range []string{"alpha", "beta", "gamma", "delta"} {
		for i := 1; i <= 3; i++ {
			paths = append(paths, fmt.Sprintf("%s/file%d.ts", dir, i))
		}
	}

	a := newTestAnalyzer()
	r := a.Analyze("wip", fc(paths...))

	if r.Cohesion >= 0.5 {
		t.Errorf("Cohesion = %v, want < 0.5 for 12 files in 4 directories", r.Cohesion)
	}
	if warnCount(r.MessageIssues) < 1 {
		t.Errorf("expected warn-level message issues, got %+v", r.MessageIssues)
	}
	if warnCount(r.CohesionIssues) < 1 {
		t.Errorf("expected warn-level cohesion issue, got %+v", r.CohesionIssues)
	}
}

func TestAnalyze_EmptyMessage(t *testing.T) {
	a := newTestAnalyzer()
	r := a.Analyze("", fc("src/app.ts"))
	if len(r.MessageIssues) != 1 {
		t.Fatalf("got %d message issues, want 1: %+v", len(r.MessageIssues), r.MessageIssues)
	}
	if !r.MessageIssues[0].Warn {
		t.Error("empty message issue should be warn level")
	}
}

func TestAnalyze_UnconventionalKeepsRaw(t *testing.T) {
	a := newTestAnalyzer()
	raw := "changed some stuff"
	r := a.Analyze(raw, fc("src/app.ts"))

	if r.Message.Raw != raw {
		t.Errorf("Raw = %q, want %q", r.Message.Raw, raw)
	}
	if len(r.MessageIssues) != 1 || !r.MessageIssues[0].Warn {
		t.Fatalf("got %+v, want one warn issue", r.MessageIssues)
	}
	if !strings.Contains(r.MessageIssues[0].Text, raw) {
		t.Errorf("issue text %q should preserve the raw subject", r.MessageIssues[0].Text)
	}
}

func TestAnalyze_LongSubject(t *testing.T) {
	a := newTestAnalyzer()
	r := a.Analyze("feat: "+strings.Repeat("x", 80), fc("src/app.ts"))
	if len(r.MessageIssues) != 1 {
		t.Fatalf("got %d issues, want 1: %+v", len(r.MessageIssues), r.MessageIssues)
	}
	if !strings.Contains(r.MessageIssues[0].Text, "characters") {
		t.Errorf("unexpected issue: %+v", r.MessageIssues[0])
	}
}

func TestAnalyze_TypeMismatch(t *testing.T) {
	a := newTestAnalyzer()
	r := a.Analyze("docs: update readme", fc("src/app.ts"))
	if len(r.MessageIssues) != 1 {
		t.Fatalf("got %d issues, want 1: %+v", len(r.MessageIssues), r.MessageIssues)
	}
	if r.MessageIssues[0].Warn {
		t.Error("type mismatch should be informational, not warn")
	}
}

func TestAnalyze_LargeChangeWithoutBody(t *testing.T) {
	a := newTestAnalyzer()
	paths := []string{"src/f1.ts", "src/f2.ts", "src/f3.ts", "src/f4.ts", "src/f5.ts"}

	r := a.Analyze("feat: batch update", fc(paths...))
	if len(r.MessageIssues) != 1 || r.MessageIssues[0].Warn {
		t.Fatalf("got %+v, want one informational issue", r.MessageIssues)
	}

	r = a.Analyze("feat: batch update\n\nDetailed reasoning here.", fc(paths...))
	if len(r.MessageIssues) != 0 {
		t.Errorf("body present, got %+v, want none", r.MessageIssues)
	}
}

func TestAnalyze_MultiPackage(t *testing.T) {
	a := newTestAnalyzer()
	r := a.Analyze("feat: cross-package change",
		fc("packages/core/index.ts", "packages/ui/button.tsx"))

	found := false
	for _, i := range r.CohesionIssues {
		if strings.Contains(i.Text, "packages") && i.Warn {
			found = true
		}
	}
	if !found {
		t.Errorf("expected multi-package warn issue, got %+v", r.CohesionIssues)
	}
}
