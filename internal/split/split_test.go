package split

import (
	"fmt"
	"math/rand"
	"path"
	"reflect"
	"testing"

	"github.com/gitguardhq/gitguard/internal/config"
	"github.com/gitguardhq/gitguard/internal/gitrepo"
)

func newTestAdvisor() *Advisor {
	return NewAdvisor(config.SplitConfig{MinSimilarity: 0.5})
}

func modified(paths ...string) []gitrepo.FileChange {
	changes := make([]gitrepo.FileChange, 0, len(paths))
	for _, p := range paths {
		changes = append(changes, gitrepo.FileChange{Path: p, Kind: gitrepo.KindModified})
	}
	return changes
}

func TestSuggest_Empty(t *testing.T) {
	a := newTestAdvisor()
	if sug := a.Suggest(nil); !sug.Empty() {
		t.Errorf("got %+v, want empty suggestion", sug)
	}
}

func TestSuggest_SingleFile(t *testing.T) {
	a := newTestAdvisor()
	sug := a.Suggest(modified("src/app.ts"))
	if len(sug.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(sug.Groups))
	}
	if len(sug.Groups[0].Files) != 1 || sug.Groups[0].Files[0] != "src/app.ts" {
		t.Errorf("group = %+v, want the single file", sug.Groups[0])
	}
	if sug.Groups[0].Rationale == "" {
		t.Error("group should carry a rationale")
	}
}

func TestSuggest_GroupsRelatedFiles(t *testing.T) {
	a := newTestAdvisor()
	sug := a.Suggest(modified(
		"src/limiter.ts",
		"src/limiter.test.ts",
		"docs/guide.md",
	))
	if len(sug.Groups) != 2 {
		t.Fatalf("got %d groups, want 2: %+v", len(sug.Groups), sug.Groups)
	}
	// Groups come back in sorted-path order: docs first.
	if !reflect.DeepEqual(sug.Groups[0].Files, []string{"docs/guide.md"}) {
		t.Errorf("groups[0].Files = %v", sug.Groups[0].Files)
	}
	if !reflect.DeepEqual(sug.Groups[1].Files, []string{"src/limiter.test.ts", "src/limiter.ts"}) {
		t.Errorf("groups[1].Files = %v", sug.Groups[1].Files)
	}
}

func TestSuggest_SeparatesPackages(t *testing.T) {
	a := newTestAdvisor()
	sug := a.Suggest(modified(
		"packages/core/src/index.ts",
		"packages/ui/src/button.tsx",
	))
	if len(sug.Groups) != 2 {
		t.Fatalf("got %d groups, want 2: %+v", len(sug.Groups), sug.Groups)
	}
}

func TestSuggest_Deterministic(t *testing.T) {
	a := newTestAdvisor()
	forward := a.Suggest(modified("src/a.ts", "docs/b.md", "pkg/c.go"))
	reversed := a.Suggest(modified("pkg/c.go", "docs/b.md", "src/a.ts"))
	if !reflect.DeepEqual(forward, reversed) {
		t.Errorf("input order changed output:\n%+v\nvs\n%+v", forward, reversed)
	}
}

func TestSuggest_DuplicatePaths(t *testing.T) {
	a := newTestAdvisor()
	changes := append(modified("src/a.ts"), modified("src/a.ts")...)
	sug := a.Suggest(changes)
	total := 0
	for _, g := range sug.Groups {
		total += len(g.Files)
	}
	if total != 1 {
		t.Errorf("duplicate input path should appear once, got %d files", total)
	}
}

func TestSuggest_PartitionProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	dirs := []string{"", "src", "src/sub", "pkg", "docs", "packages/a", "packages/b", "internal/core"}
	kinds := []gitrepo.ChangeKind{
		gitrepo.KindAdded, gitrepo.KindModified, gitrepo.KindDeleted, gitrepo.KindRenamed,
	}
	a := newTestAdvisor()

	for round := 0; round < 50; round++ {
		n := rng.Intn(12) + 1
		seen := make(map[string]bool)
		var changes []gitrepo.FileChange
		for len(changes) < n {
			p := path.Join(
				dirs[rng.Intn(len(dirs))],
				fmt.Sprintf("file%c%d.go", 'a'+rune(rng.Intn(26)), rng.Intn(40)),
			)
			if seen[p] {
				continue
			}
			seen[p] = true
			changes = append(changes, gitrepo.FileChange{Path: p, Kind: kinds[rng.Intn(len(kinds))]})
		}

		sug := a.Suggest(changes)
		counts := make(map[string]int)
		for _, g := range sug.Groups {
			if len(g.Files) == 0 {
				t.Fatalf("round %d: empty group", round)
			}
			for _, f := range g.Files {
				counts[f]++
			}
		}
		if len(counts) != len(changes) {
			t.Fatalf("round %d: %d files in groups, want %d", round, len(counts), len(changes))
		}
		for _, fc := range changes {
			if counts[fc.Path] != 1 {
				t.Fatalf("round %d: %s appears %d times, want exactly once", round, fc.Path, counts[fc.Path])
			}
		}
	}
}

func TestRationale(t *testing.T) {
	a := newTestAdvisor()

	sug := a.Suggest(modified("docs/guide.md", "docs/install.md"))
	if len(sug.Groups) != 1 {
		t.Fatalf("got %d groups, want 1: %+v", len(sug.Groups), sug.Groups)
	}
	want := "documentation changes under docs/"
	if sug.Groups[0].Rationale != want {
		t.Errorf("Rationale = %q, want %q", sug.Groups[0].Rationale, want)
	}
}
