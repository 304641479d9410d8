package commitmsg

import (
	"fmt"
	"regexp"
	"strings"
)

// Message is the parsed structure of a commit message.
type Message struct {
	Raw          string
	Type         string
	Scope        string
	Subject      string
	Body         string
	Breaking     bool
	BreakingNote []string
	IssueRefs    []string
	Conventional bool
}

// knownTypes are the conventional commit types recognized by the parser.
var knownTypes = map[string]bool{
	"feat":     true,
	"fix":      true,
	"docs":     true,
	"style":    true,
	"refactor": true,
	"perf":     true,
	"test":     true,
	"chore":    true,
	"build":    true,
	"ci":       true,
}

// KnownType reports whether t is a recognized conventional commit type.
func KnownType(t string) bool {
	return knownTypes[strings.ToLower(t)]
}

var (
	headerRe   = regexp.MustCompile(`^([A-Za-z]+)(?:\(([^)]*)\))?(!)?:\s*(\S.*)$`)
	issueRefRe = regexp.MustCompile(`#(\d+)`)
	breakingRe = regexp.MustCompile(`(?m)^BREAKING[ -]CHANGE:\s*(.*)$`)
)

// Parse splits a raw commit message into its conventional parts.
// It never fails; unconventional messages keep their first line as
// Subject with Conventional set to false.
func Parse(raw string) Message {
	msg := Message{Raw: raw}

	trimmed := strings.TrimRight(raw, "\n\t ")
	if trimmed == "" {
		return msg
	}

	lines := strings.Split(trimmed, "\n")
	header := strings.TrimSpace(lines[0])
	msg.Subject = header

	if m := headerRe.FindStringSubmatch(header); m != nil && KnownType(m[1]) {
		msg.Conventional = true
		msg.Type = strings.ToLower(m[1])
		msg.Scope = strings.TrimSpace(m[2])
		msg.Breaking = m[3] == "!"
		msg.Subject = strings.TrimSpace(m[4])
	}

	if len(lines) > 1 {
		msg.Body = strings.TrimSpace(strings.Join(lines[1:], "\n"))
	}

	for _, m := range breakingRe.FindAllStringSubmatch(msg.Body, -1) {
		msg.Breaking = true
		if note := strings.TrimSpace(m[1]); note != "" {
			msg.BreakingNote = append(msg.BreakingNote, note)
		}
	}

	seen := make(map[string]bool)
	for _, m := range issueRefRe.FindAllStringSubmatch(trimmed, -1) {
		ref := "#" + m[1]
		if !seen[ref] {
			seen[ref] = true
			msg.IssueRefs = append(msg.IssueRefs, ref)
		}
	}

	return msg
}

// StripComments removes git comment lines (leading '#') from a commit
// message file, as git itself does before recording the message.
func StripComments(raw string) string {
	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimRight(strings.Join(kept, "\n"), "\n\t ")
}

// Format assembles a conventional commit header from its parts.
func Format(typ, scope, subject string, breaking bool) string {
	var b strings.Builder
	b.WriteString(typ)
	if scope != "" {
		fmt.Fprintf(&b, "(%s)", scope)
	}
	if breaking {
		b.WriteString("!")
	}
	b.WriteString(": ")
	b.WriteString(subject)
	return b.String()
}
