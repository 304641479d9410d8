package scan

import (
	"fmt"
	"regexp"

	"github.com/gitguardhq/gitguard/internal/config"
)

// Severity of a security finding.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// SeverityRank returns a numeric rank for severity comparison.
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// EntropyRuleID identifies findings produced by the entropy heuristic
// rather than a literal pattern rule.
const EntropyRuleID = "high-entropy-string"

// literalConfidence is the starting confidence for pattern-rule matches.
const literalConfidence = 0.9

type rule struct {
	id          string
	description string
	severity    Severity
	re          *regexp.Regexp
	confidence  float64
}

// builtinRules are regex signatures for common secret formats.
var builtinRules = []rule{
	{
		id:          "aws-access-key-id",
		description: "AWS access key ID",
		severity:    SeverityCritical,
		re:          regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	},
	{
		id:          "aws-secret-access-key",
		description: "AWS secret access key",
		severity:    SeverityCritical,
		re:          regexp.MustCompile(`(?i)aws[_-]?secret[_-]?access[_-]?key\s*[:=]\s*["']?[A-Za-z0-9/+=]{40}["']?`),
	},
	{
		id:          "github-token",
		description: "GitHub token",
		severity:    SeverityCritical,
		re:          regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	},
	{
		id:          "private-key",
		description: "Private key block",
		severity:    SeverityCritical,
		re:          regexp.MustCompile(`-----BEGIN\s+(?:[A-Z]+\s+)?PRIVATE KEY-----`),
	},
	{
		id:          "anthropic-api-key",
		description: "Anthropic API key",
		severity:    SeverityCritical,
		re:          regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`),
	},
	{
		id:          "openai-api-key",
		description: "OpenAI API key",
		severity:    SeverityCritical,
		re:          regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`),
	},
	{
		id:          "stripe-secret-key",
		description: "Stripe secret key",
		severity:    SeverityCritical,
		re:          regexp.MustCompile(`sk_(?:live|test)_[A-Za-z0-9]{16,}`),
	},
	{
		id:          "slack-token",
		description: "Slack token",
		severity:    SeverityHigh,
		re:          regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`),
	},
	{
		id:          "jwt",
		description: "JSON Web Token",
		severity:    SeverityHigh,
		re:          regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	},
	{
		id:          "bearer-token",
		description: "Bearer token",
		severity:    SeverityHigh,
		re:          regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
	},
	{
		id:          "generic-api-key",
		description: "API key assignment",
		severity:    SeverityHigh,
		re:          regexp.MustCompile(`(?i)(?:api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?[A-Za-z0-9/+=_-]{20,}["']?`),
	},
	{
		id:          "generic-secret",
		description: "Secret assignment",
		severity:    SeverityHigh,
		re:          regexp.MustCompile(`(?i)(?:secret|token|password|passwd|credential)\s*[:=]\s*["'][^"']{8,}["']`),
	},
	{
		id:          "hex-secret",
		description: "Hex-encoded secret assignment",
		severity:    SeverityMedium,
		re:          regexp.MustCompile(`(?i)(?:key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`),
	},
}

// compileRules returns the builtin rules followed by the compiled custom
// rules from cfg. A malformed custom pattern is a configuration error.
func compileRules(custom []config.RuleConfig) ([]rule, error) {
	rules := make([]rule, len(builtinRules), len(builtinRules)+len(custom))
	copy(rules, builtinRules)
	for i := range rules {
		rules[i].confidence = literalConfidence
	}
	for _, rc := range custom {
		re, err := regexp.Compile(rc.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: security rule %q: %v", config.ErrInvalid, rc.ID, err)
		}
		conf := rc.Confidence
		if conf == 0 {
			conf = literalConfidence
		}
		rules = append(rules, rule{
			id:          rc.ID,
			description: rc.Description,
			severity:    Severity(rc.Severity),
			re:          re,
			confidence:  conf,
		})
	}
	return rules, nil
}
