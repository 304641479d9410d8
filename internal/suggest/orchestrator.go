package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gitguardhq/gitguard/internal/analyze"
	"github.com/gitguardhq/gitguard/internal/commitmsg"
	"github.com/gitguardhq/gitguard/internal/config"
	"github.com/gitguardhq/gitguard/internal/gitrepo"
	"github.com/gitguardhq/gitguard/internal/providers"
	"github.com/gitguardhq/gitguard/internal/scan"
)

// Provenance marks where a suggestion came from.
type Provenance string

const (
	ProvenanceAI        Provenance = "ai"
	ProvenanceHeuristic Provenance = "heuristic"
)

// Suggestion is one proposed commit message.
type Suggestion struct {
	Message     string     `json:"message"`
	Explanation string     `json:"explanation,omitempty"`
	Type        string     `json:"type,omitempty"`
	Scope       string     `json:"scope,omitempty"`
	Description string     `json:"description,omitempty"`
	Provenance  Provenance `json:"provenance"`
	Model       string     `json:"model,omitempty"`
}

// Input is everything the orchestrator may put in a prompt.
type Input struct {
	Report   analyze.Report
	Findings []scan.Finding
	Changes  []gitrepo.FileChange
}

// Orchestrator requests suggestions from a provider with a time budget
// and a bounded retry policy.
type Orchestrator struct {
	provider       providers.Completer
	policy         providers.RetryPolicy
	timeout        time.Duration
	maxSuggestions int
	log            *zap.Logger
}

// NewOrchestrator wires a provider to the configured budgets. A nil
// logger disables logging.
func NewOrchestrator(provider providers.Completer, cfg config.AIConfig, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxSuggestions := cfg.MaxSuggestions
	if maxSuggestions <= 0 {
		maxSuggestions = 3
	}
	return &Orchestrator{
		provider:       provider,
		policy:         providers.RetryPolicy{MaxRetries: cfg.MaxRetries},
		timeout:        timeout,
		maxSuggestions: maxSuggestions,
		log:            log,
	}
}

// Suggest asks the provider for commit-message suggestions. It never
// fails the run: timeouts, rate limits that outlive the retry budget,
// and unparseable responses all come back as no suggestions. Transient
// errors are retried with backoff; a malformed response is permanent
// for its attempt and is not.
func (o *Orchestrator) Suggest(ctx context.Context, in Input) []Suggestion {
	if o.provider == nil {
		return nil
	}

	req := providers.Request{
		SystemPrompt: systemPrompt(o.maxSuggestions),
		UserPrompt:   userPrompt(in),
		MaxTokens:    1000,
		Temperature:  0.7,
	}

	var suggestions []Suggestion
	err := o.policy.Do(ctx, func() error {
		actx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()

		resp, err := o.provider.Complete(actx, req)
		if err != nil {
			return err
		}
		parsed, err := parseSuggestions(resp.Text)
		if err != nil {
			return err
		}
		for i := range parsed {
			parsed[i].Provenance = ProvenanceAI
			parsed[i].Model = resp.Model
		}
		suggestions = parsed
		return nil
	})
	if err != nil {
		if !errors.Is(err, providers.ErrDisabled) {
			o.log.Warn("ai suggestions unavailable",
				zap.String("provider", o.provider.Name()),
				zap.Error(err))
		}
		return nil
	}

	if len(suggestions) > o.maxSuggestions {
		suggestions = suggestions[:o.maxSuggestions]
	}
	o.log.Debug("ai suggestions received",
		zap.String("provider", o.provider.Name()),
		zap.Int("count", len(suggestions)))
	return suggestions
}

// parseSuggestions decodes the provider's JSON payload, tolerating
// markdown code fences around it. Suggestions without a message are
// dropped; an empty result is an error so the caller can tell a bad
// response from an honest "nothing to suggest".
func parseSuggestions(text string) ([]Suggestion, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var payload struct {
		Suggestions []Suggestion `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("parsing suggestions: %w", err)
	}

	var out []Suggestion
	for _, s := range payload.Suggestions {
		if strings.TrimSpace(s.Message) == "" {
			continue
		}
		// Backfill structure from the message itself when the provider
		// left the fields empty.
		if s.Type == "" || s.Description == "" {
			if parsed := commitmsg.Parse(s.Message); parsed.Conventional {
				if s.Type == "" {
					s.Type = parsed.Type
				}
				if s.Scope == "" {
					s.Scope = parsed.Scope
				}
				if s.Description == "" {
					s.Description = parsed.Subject
				}
			}
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("response carried no usable suggestions")
	}
	return out, nil
}

// Heuristic builds a single suggestion without a provider, from the
// detected change types and dominant package.
func Heuristic(in Input) Suggestion {
	msg := in.Report.Message

	typ := msg.Type
	if typ == "" && len(in.Report.ChangeTypes) > 0 {
		typ = in.Report.ChangeTypes[0]
	}
	if typ == "" {
		typ = "feat"
	}

	scope := dominantScope(in.Report.Packages)

	desc := msg.Subject
	if desc == "" {
		desc = "update " + scopeOr(scope, "project")
	}

	return Suggestion{
		Message:     commitmsg.Format(typ, scope, desc, msg.Breaking),
		Type:        typ,
		Scope:       scope,
		Description: desc,
		Provenance:  ProvenanceHeuristic,
	}
}

// dominantScope picks the package touching the most files. The root
// group only wins when nothing else is present.
func dominantScope(pkgs []analyze.PackageGroup) string {
	best := ""
	bestFiles := 0
	for _, g := range pkgs {
		if g.Scope == "root" && len(pkgs) > 1 {
			continue
		}
		if len(g.Files) > bestFiles {
			best = g.Scope
			bestFiles = len(g.Files)
		}
	}
	if best == "root" {
		return ""
	}
	return best
}

func scopeOr(scope, fallback string) string {
	if scope == "" {
		return fallback
	}
	return scope
}
