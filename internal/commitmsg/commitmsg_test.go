package commitmsg

import (
	"reflect"
	"testing"
)

func TestParse_Conventional(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		typ     string
		scope   string
		subject string
	}{
		{"plain type", "feat: add login flow", "feat", "", "add login flow"},
		{"with scope", "fix(auth): handle expired tokens", "fix", "auth", "handle expired tokens"},
		{"uppercase type", "Fix(auth): handle expired tokens", "fix", "auth", "handle expired tokens"},
		{"docs", "docs: update readme", "docs", "", "update readme"},
		{"chore with dotted scope", "chore(deps.dev): bump versions", "chore", "deps.dev", "bump versions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := Parse(tt.raw)
			if !msg.Conventional {
				t.Fatalf("Parse(%q).Conventional = false, want true", tt.raw)
			}
			if msg.Type != tt.typ {
				t.Errorf("Type = %q, want %q", msg.Type, tt.typ)
			}
			if msg.Scope != tt.scope {
				t.Errorf("Scope = %q, want %q", msg.Scope, tt.scope)
			}
			if msg.Subject != tt.subject {
				t.Errorf("Subject = %q, want %q", msg.Subject, tt.subject)
			}
		})
	}
}

func TestParse_Unconventional(t *testing.T) {
	tests := []string{
		"update stuff",
		"WIP: still working on it",
		"Fixed the bug in the parser",
		"feat add login", // missing colon
	}
	for _, raw := range tests {
		msg := Parse(raw)
		if msg.Conventional {
			t.Errorf("Parse(%q).Conventional = true, want false", raw)
		}
		if msg.Subject != raw {
			t.Errorf("Subject = %q, want raw first line %q", msg.Subject, raw)
		}
		if msg.Raw != raw {
			t.Errorf("Raw = %q, want %q", msg.Raw, raw)
		}
	}
}

func TestParse_Empty(t *testing.T) {
	msg := Parse("")
	if msg.Conventional {
		t.Error("empty message should not be conventional")
	}
	if msg.Subject != "" {
		t.Errorf("Subject = %q, want empty", msg.Subject)
	}
}

func TestParse_Body(t *testing.T) {
	raw := "feat(api): add rate limiting\n\nRequests above the limit now receive 429.\n\nRefs #42 and #7."
	msg := Parse(raw)
	if !msg.Conventional {
		t.Fatal("expected conventional message")
	}
	if msg.Body != "Requests above the limit now receive 429.\n\nRefs #42 and #7." {
		t.Errorf("Body = %q", msg.Body)
	}
	if !reflect.DeepEqual(msg.IssueRefs, []string{"#42", "#7"}) {
		t.Errorf("IssueRefs = %v, want [#42 #7]", msg.IssueRefs)
	}
}

func TestParse_IssueRefs_Dedup(t *testing.T) {
	msg := Parse("fix: close #12\n\nCloses #12, relates to #13.")
	if !reflect.DeepEqual(msg.IssueRefs, []string{"#12", "#13"}) {
		t.Errorf("IssueRefs = %v, want [#12 #13]", msg.IssueRefs)
	}
}

func TestParse_BreakingBang(t *testing.T) {
	msg := Parse("feat(api)!: drop v1 endpoints")
	if !msg.Breaking {
		t.Error("Breaking = false, want true for ! marker")
	}
	if msg.Type != "feat" || msg.Scope != "api" {
		t.Errorf("Type/Scope = %q/%q, want feat/api", msg.Type, msg.Scope)
	}
}

func TestParse_BreakingFooter(t *testing.T) {
	raw := "refactor: rework storage layout\n\nBREAKING CHANGE: on-disk format is not backward compatible"
	msg := Parse(raw)
	if !msg.Breaking {
		t.Error("Breaking = false, want true for footer")
	}
	if len(msg.BreakingNote) != 1 || msg.BreakingNote[0] != "on-disk format is not backward compatible" {
		t.Errorf("BreakingNote = %v", msg.BreakingNote)
	}
}

func TestParse_BreakingDashFooter(t *testing.T) {
	msg := Parse("feat: x\n\nBREAKING-CHANGE: renamed config keys")
	if !msg.Breaking {
		t.Error("Breaking = false, want true for BREAKING-CHANGE footer")
	}
}

func TestKnownType(t *testing.T) {
	for _, typ := range []string{"feat", "fix", "docs", "style", "refactor", "perf", "test", "chore", "build", "ci"} {
		if !KnownType(typ) {
			t.Errorf("KnownType(%q) = false, want true", typ)
		}
	}
	if KnownType("feature") {
		t.Error("KnownType(feature) = true, want false")
	}
}

func TestStripComments(t *testing.T) {
	raw := "feat: add thing\n# Please enter the commit message\n#\n# Changes to be committed:\n"
	got := StripComments(raw)
	if got != "feat: add thing" {
		t.Errorf("StripComments = %q, want %q", got, "feat: add thing")
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		typ, scope, subject string
		breaking            bool
		want                string
	}{
		{"feat", "auth", "add login", false, "feat(auth): add login"},
		{"fix", "", "handle nil", false, "fix: handle nil"},
		{"feat", "api", "drop v1", true, "feat(api)!: drop v1"},
	}
	for _, tt := range tests {
		got := Format(tt.typ, tt.scope, tt.subject, tt.breaking)
		if got != tt.want {
			t.Errorf("Format(%q,%q,%q,%v) = %q, want %q", tt.typ, tt.scope, tt.subject, tt.breaking, got, tt.want)
		}
	}
}
