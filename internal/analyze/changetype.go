package analyze

import (
	"path/filepath"
	"strings"
)

// changeTypeOrder fixes the output order of detected types.
var changeTypeOrder = []string{"test", "docs", "style", "chore", "fix", "feat"}

// DetectChangeTypes classifies changed paths into conventional commit
// types. Each path contributes at most one type; a path matching nothing
// counts as feature work, so the result is never empty.
func DetectChangeTypes(paths []string) []string {
	found := make(map[string]bool)
	for _, p := range paths {
		lower := strings.ToLower(p)
		name := strings.ToLower(filepath.Base(p))
		switch {
		case containsAny(lower, ".test.", ".spec.", "/tests/") || strings.HasSuffix(lower, "_test.go"):
			found["test"] = true
		case containsAny(lower, ".md", "readme", "docs/"):
			found["docs"] = true
		case containsAny(lower, ".css", ".scss", ".styled."):
			found["style"] = true
		case containsAny(name, "package.json", ".config.", "tsconfig") ||
			name == "go.mod" || name == "go.sum" || name == "makefile" || name == "dockerfile":
			found["chore"] = true
		case containsAny(lower, "fix", "bug", "patch"):
			found["fix"] = true
		default:
			found["feat"] = true
		}
	}
	if len(found) == 0 {
		found["feat"] = true
	}

	out := make([]string, 0, len(found))
	for _, t := range changeTypeOrder {
		if found[t] {
			out = append(out, t)
		}
	}
	return out
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
