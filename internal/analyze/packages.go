package analyze

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// PackageGroup is the set of changed files belonging to one monorepo
// package. Files outside packages/ fall into the "root" group.
type PackageGroup struct {
	Name  string   `json:"name"`
	Scope string   `json:"scope"`
	Files []string `json:"files"`
}

// GroupByPackage buckets changed paths by their packages/<name> prefix.
// When the repository root is known, the package name is read from the
// package's package.json; otherwise the directory name is used. The
// scope is the last segment of the name, so "@acme/core" scopes as
// "core". Groups come back sorted by bucket path with root last.
func GroupByPackage(root string, paths []string) []PackageGroup {
	buckets := make(map[string][]string)
	for _, p := range paths {
		if p == "" {
			continue
		}
		key := "root"
		if strings.HasPrefix(p, "packages/") {
			parts := strings.SplitN(p, "/", 3)
			if len(parts) > 1 && parts[1] != "" {
				key = "packages/" + parts[1]
			}
		}
		buckets[key] = append(buckets[key], p)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]PackageGroup, 0, len(keys))
	for _, k := range keys {
		g := PackageGroup{Files: buckets[k]}
		if k == "root" {
			g.Name, g.Scope = "root", "root"
		} else {
			g.Name = path.Base(k)
			if name := packageJSONName(root, k); name != "" {
				g.Name = name
			}
			g.Scope = g.Name[strings.LastIndex(g.Name, "/")+1:]
		}
		groups = append(groups, g)
	}
	return groups
}

func packageJSONName(root, pkgDir string) string {
	if root == "" {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(root, pkgDir, "package.json"))
	if err != nil {
		return ""
	}
	var pkg struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return ""
	}
	return pkg.Name
}
