package gitrepo

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// ParseDiff parses a unified diff into FileChange values.
func ParseDiff(raw string) ([]FileChange, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	files, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	var changes []FileChange
	for _, f := range files {
		fc := FileChange{
			Kind:   kindOf(f),
			Binary: f.IsBinary,
		}

		switch {
		case f.IsDelete:
			fc.Path = f.OldName
		case f.IsRename:
			fc.Path = f.NewName
			fc.OldPath = f.OldName
		default:
			fc.Path = f.NewName
			if fc.Path == "" {
				fc.Path = f.OldName
			}
		}

		for _, frag := range f.TextFragments {
			fc.Hunks = append(fc.Hunks, parseFragment(frag))
		}

		changes = append(changes, fc)
	}

	return changes, nil
}

func kindOf(f *gitdiff.File) ChangeKind {
	switch {
	case f.IsNew:
		return KindAdded
	case f.IsDelete:
		return KindDeleted
	case f.IsRename:
		return KindRenamed
	default:
		return KindModified
	}
}

func parseFragment(frag *gitdiff.TextFragment) Hunk {
	h := Hunk{
		OldStart: int(frag.OldPosition),
		OldCount: int(frag.OldLines),
		NewStart: int(frag.NewPosition),
		NewCount: int(frag.NewLines),
	}

	oldNum := int(frag.OldPosition)
	newNum := int(frag.NewPosition)
	for _, line := range frag.Lines {
		text := strings.TrimSuffix(line.Line, "\n")
		switch line.Op {
		case gitdiff.OpAdd:
			h.Added = append(h.Added, Line{Number: newNum, Text: text})
			newNum++
		case gitdiff.OpDelete:
			h.Removed = append(h.Removed, Line{Number: oldNum, Text: text})
			oldNum++
		case gitdiff.OpContext:
			oldNum++
			newNum++
		}
	}

	return h
}
