package scan

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gitguardhq/gitguard/internal/config"
	"github.com/gitguardhq/gitguard/internal/gitrepo"
)

const placeholder = "[REDACTED]"

// Finding is a single detected occurrence of security-sensitive content.
// The snippet is the matched line with every secret span redacted.
type Finding struct {
	RuleID      string   `json:"ruleId"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Path        string   `json:"path"`
	Line        int      `json:"line"`
	Snippet     string   `json:"snippet"`
	Confidence  float64  `json:"confidence"`
	Entropy     float64  `json:"entropy,omitempty"`
}

// Scanner detects secrets in added diff lines. It is safe for concurrent
// use: scanning is a pure function over its input.
type Scanner struct {
	rules            []rule
	tokenRe          *regexp.Regexp
	entropyThreshold float64
	minRank          int
	allowPaths       []string
	allowPatterns    []*regexp.Regexp
}

// NewScanner compiles the rule set described by cfg. A malformed custom
// rule or allowlist pattern is reported here, once, as a configuration
// error; Scan itself cannot fail.
func NewScanner(cfg config.SecurityConfig) (*Scanner, error) {
	rules, err := compileRules(cfg.CustomRules)
	if err != nil {
		return nil, err
	}

	var allowPatterns []*regexp.Regexp
	for _, p := range cfg.Allowlist.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: allowlist pattern %q: %v", config.ErrInvalid, p, err)
		}
		allowPatterns = append(allowPatterns, re)
	}

	minLen := cfg.MinTokenLength
	if minLen <= 0 {
		minLen = 20
	}
	threshold := cfg.EntropyThreshold
	if threshold <= 0 {
		threshold = 4.0
	}

	return &Scanner{
		rules:            rules,
		tokenRe:          regexp.MustCompile(fmt.Sprintf(`[A-Za-z0-9+/=_-]{%d,}`, minLen)),
		entropyThreshold: threshold,
		minRank:          SeverityRank(Severity(cfg.MinSeverity)),
		allowPaths:       cfg.Allowlist.Paths,
		allowPatterns:    allowPatterns,
	}, nil
}

// Scan returns the findings for one file change. Deleted and binary files
// yield no findings, as does any file on the path allowlist.
func (s *Scanner) Scan(fc gitrepo.FileChange) []Finding {
	seen := make(map[string]bool)
	return s.scan(fc, seen)
}

// ScanChanges scans every file change in order, deduplicating findings by
// rule, path and line across the whole set.
func (s *Scanner) ScanChanges(changes []gitrepo.FileChange) []Finding {
	seen := make(map[string]bool)
	var findings []Finding
	for _, fc := range changes {
		findings = append(findings, s.scan(fc, seen)...)
	}
	return findings
}

func (s *Scanner) scan(fc gitrepo.FileChange, seen map[string]bool) []Finding {
	if fc.Kind == gitrepo.KindDeleted || fc.Binary {
		return nil
	}
	if s.allowedPath(fc.Path) {
		return nil
	}
	var findings []Finding
	for _, h := range fc.Hunks {
		for _, line := range h.Added {
			findings = s.scanLine(fc.Path, line, seen, findings)
		}
	}
	return findings
}

func (s *Scanner) scanLine(path string, line gitrepo.Line, seen map[string]bool, out []Finding) []Finding {
	text := line.Text

	type hit struct {
		r     rule
		match string
	}
	var hits []hit
	var spans [][]int
	for _, r := range s.rules {
		locs := r.re.FindAllStringIndex(text, -1)
		if len(locs) == 0 {
			continue
		}
		spans = append(spans, locs...)
		hits = append(hits, hit{r: r, match: text[locs[0][0]:locs[0][1]]})
	}

	for _, h := range hits {
		if s.allowedText(h.match) {
			continue
		}
		if SeverityRank(h.r.severity) < s.minRank {
			continue
		}
		key := h.r.id + ":" + path + ":" + strconv.Itoa(line.Number)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, Finding{
			RuleID:      h.r.id,
			Description: h.r.description,
			Severity:    h.r.severity,
			Path:        path,
			Line:        line.Number,
			Snippet:     strings.TrimSpace(maskSpans(text, spans)),
			Confidence:  h.r.confidence,
		})
	}

	// Entropy heuristic for opaque secrets that match no known format.
	if SeverityRank(SeverityMedium) >= s.minRank {
		for _, loc := range s.tokenRe.FindAllStringIndex(text, -1) {
			if overlaps(loc, spans) {
				continue
			}
			tok := text[loc[0]:loc[1]]
			h := ShannonEntropy(tok)
			if h < s.entropyThreshold {
				continue
			}
			if s.allowedText(tok) {
				continue
			}
			key := EntropyRuleID + ":" + path + ":" + strconv.Itoa(line.Number)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, Finding{
				RuleID:      EntropyRuleID,
				Description: "High-entropy string",
				Severity:    SeverityMedium,
				Path:        path,
				Line:        line.Number,
				Snippet:     strings.TrimSpace(maskSpans(text, append(spans, loc))),
				Confidence:  normalizedEntropy(h),
				Entropy:     h,
			})
		}
	}

	return out
}

// allowedPath reports whether the path matches an allowlist glob. Patterns
// with a "**/" prefix also match against the bare file name.
func (s *Scanner) allowedPath(path string) bool {
	for _, pattern := range s.allowPaths {
		if ok, err := filepath.Match(pattern, path); err == nil && ok {
			return true
		}
		if rest := strings.TrimPrefix(pattern, "**/"); rest != pattern {
			if ok, err := filepath.Match(rest, filepath.Base(path)); err == nil && ok {
				return true
			}
		}
	}
	return false
}

func (s *Scanner) allowedText(match string) bool {
	for _, re := range s.allowPatterns {
		if re.MatchString(match) {
			return true
		}
	}
	return false
}

func overlaps(loc []int, spans [][]int) bool {
	for _, sp := range spans {
		if loc[0] < sp[1] && sp[0] < loc[1] {
			return true
		}
	}
	return false
}

// maskSpans replaces each span of text with the redaction placeholder,
// merging overlapping spans.
func maskSpans(text string, spans [][]int) string {
	if len(spans) == 0 {
		return text
	}
	sorted := make([][]int, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i][0] < sorted[j][0] })

	var b strings.Builder
	pos := 0
	for _, sp := range sorted {
		if sp[0] < pos {
			if sp[1] > pos {
				pos = sp[1]
			}
			continue
		}
		b.WriteString(text[pos:sp[0]])
		b.WriteString(placeholder)
		pos = sp[1]
	}
	b.WriteString(text[pos:])
	return b.String()
}

// RedactText masks every builtin-rule match in text. Use it to keep
// secrets out of prompts and log lines.
func RedactText(text string) string {
	for _, r := range builtinRules {
		text = r.re.ReplaceAllString(text, placeholder)
	}
	return text
}

// SortFindings orders findings by severity (highest first), then by path,
// then by line.
func SortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		ri, rj := SeverityRank(findings[i].Severity), SeverityRank(findings[j].Severity)
		if ri != rj {
			return ri > rj
		}
		if findings[i].Path != findings[j].Path {
			return findings[i].Path < findings[j].Path
		}
		return findings[i].Line < findings[j].Line
	})
}
