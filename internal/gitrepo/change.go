package gitrepo

// ChangeKind classifies how a file was changed.
type ChangeKind string

const (
	KindAdded    ChangeKind = "added"
	KindModified ChangeKind = "modified"
	KindDeleted  ChangeKind = "deleted"
	KindRenamed  ChangeKind = "renamed"
)

// Line is a single added or removed line within a hunk.
// Number is in new-file coordinates for added lines and old-file
// coordinates for removed lines.
type Line struct {
	Number int
	Text   string
}

// Hunk is one contiguous region of change within a file.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Added    []Line
	Removed  []Line
}

// FileChange describes all changes to a single file.
type FileChange struct {
	Path    string
	OldPath string // set for renames
	Kind    ChangeKind
	Binary  bool
	Hunks   []Hunk
}

// AddedLines returns the total number of added lines across all hunks.
func (fc FileChange) AddedLines() int {
	n := 0
	for _, h := range fc.Hunks {
		n += len(h.Added)
	}
	return n
}

// RemovedLines returns the total number of removed lines across all hunks.
func (fc FileChange) RemovedLines() int {
	n := 0
	for _, h := range fc.Hunks {
		n += len(h.Removed)
	}
	return n
}

// Commit is a single commit with its message and parsed changes.
type Commit struct {
	SHA        string
	Subject    string
	RawMessage string
	Author     string
	Changes    []FileChange
}

// ShortSHA returns the abbreviated commit SHA.
func (c Commit) ShortSHA() string {
	if len(c.SHA) > 7 {
		return c.SHA[:7]
	}
	return c.SHA
}

// CommitRef identifies a commit in a revision range without its changes loaded.
type CommitRef struct {
	SHA     string
	Subject string
}
