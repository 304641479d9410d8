package pipeline

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/gitguardhq/gitguard/internal/analyze"
	"github.com/gitguardhq/gitguard/internal/cache"
	"github.com/gitguardhq/gitguard/internal/config"
	"github.com/gitguardhq/gitguard/internal/gitrepo"
	"github.com/gitguardhq/gitguard/internal/providers"
	"github.com/gitguardhq/gitguard/internal/scan"
	"github.com/gitguardhq/gitguard/internal/split"
	"github.com/gitguardhq/gitguard/internal/suggest"
	"github.com/gitguardhq/gitguard/internal/verdict"
)

// Pipeline wires the analysis stages over one repository.
type Pipeline struct {
	repo      gitrepo.Repository
	cfg       config.Config
	scanner   *scan.Scanner
	analyzer  *analyze.Analyzer
	advisor   *split.Advisor
	suggester *suggest.Orchestrator
	verdicts  *cache.Cache
	// fingerprint keys cached verdicts to the effective config, so a
	// settings change invalidates them.
	fingerprint string
	log         *zap.Logger
}

// New builds a pipeline from configuration. Invalid scan rules,
// unknown providers, and an unusable cache directory surface here,
// before any check runs.
func New(repo gitrepo.Repository, cfg config.Config, log *zap.Logger) (*Pipeline, error) {
	if log == nil {
		log = zap.NewNop()
	}
	scanner, err := scan.NewScanner(cfg.Security)
	if err != nil {
		return nil, err
	}
	provider, err := providers.New(cfg.AI)
	if err != nil {
		return nil, err
	}
	verdicts, err := cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		return nil, err
	}
	fingerprint, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		repo:        repo,
		cfg:         cfg,
		scanner:     scanner,
		analyzer:    analyze.NewAnalyzer(repo.Root(), cfg.Cohesion),
		advisor:     split.NewAdvisor(cfg.Split),
		suggester:   suggest.NewOrchestrator(provider, cfg.AI, log),
		verdicts:    verdicts,
		fingerprint: string(fingerprint),
		log:         log,
	}, nil
}

// target is one unit of work: a message plus its changes.
type target struct {
	ref     *verdict.CommitRef
	message string
	// messageKnown distinguishes "no message yet" (staged checks before
	// the user has typed one) from a genuinely empty commit message.
	messageKnown bool
	changes      []gitrepo.FileChange
}

// CheckStaged checks the staged changes. message may be empty when no
// commit message exists yet; message-quality checks are skipped then.
func (p *Pipeline) CheckStaged(ctx context.Context, message string) (verdict.Verdict, error) {
	changes, err := p.repo.Staged(ctx)
	if err != nil {
		return verdict.Verdict{}, err
	}
	return p.evaluate(ctx, target{
		message:      message,
		messageKnown: message != "",
		changes:      changes,
	}), nil
}

// CheckCommit checks a single commit.
func (p *Pipeline) CheckCommit(ctx context.Context, rev string) (verdict.Verdict, error) {
	c, err := p.repo.Commit(ctx, rev)
	if err != nil {
		return verdict.Verdict{}, err
	}
	return p.evaluate(ctx, target{
		ref:          &verdict.CommitRef{SHA: c.SHA, Subject: c.Subject},
		message:      c.RawMessage,
		messageKnown: true,
		changes:      c.Changes,
	}), nil
}

// CheckRange checks every commit in a revision range, oldest first,
// with at most cfg.MaxInFlight commits analyzed concurrently. A commit
// that cannot be analyzed becomes a blocking verdict for that commit;
// the others are still checked. On cancellation the verdicts completed
// so far are returned along with ctx.Err().
func (p *Pipeline) CheckRange(ctx context.Context, revRange string) (verdict.PRVerdict, error) {
	refs, err := p.repo.ListCommits(ctx, revRange, true)
	if err != nil {
		return verdict.PRVerdict{}, err
	}
	if len(refs) == 0 {
		return verdict.PRVerdict{Status: verdict.StatusPass}, nil
	}

	maxInFlight := p.cfg.MaxInFlight
	if maxInFlight < 1 {
		maxInFlight = 1
	}

	results := make([]verdict.Verdict, len(refs))
	done := make([]bool, len(refs))
	sem := make(chan struct{}, maxInFlight)
	var wg sync.WaitGroup

schedule:
	for i, ref := range refs {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break schedule
		}
		wg.Add(1)
		go func(i int, ref gitrepo.CommitRef) {
			defer wg.Done()
			defer func() { <-sem }()

			v, err := p.checkRef(ctx, ref)
			if err != nil {
				if ctx.Err() != nil {
					// Cancelled mid-flight; not a verdict on the commit.
					return
				}
				p.log.Warn("commit analysis failed",
					zap.String("sha", ref.SHA),
					zap.Error(err))
				v = verdict.FailureVerdict(verdict.CommitRef{SHA: ref.SHA, Subject: ref.Subject}, err)
			}
			results[i] = v
			done[i] = true
		}(i, ref)
	}
	wg.Wait()

	completed := make([]verdict.Verdict, 0, len(refs))
	for i := range results {
		if done[i] {
			completed = append(completed, results[i])
		}
	}
	pr := verdict.AggregatePR(completed)
	if err := ctx.Err(); err != nil {
		return pr, err
	}
	return pr, nil
}

// SuggestMessage proposes commit messages for the staged changes. The
// provider is consulted first; the heuristic covers for it when it is
// disabled or yields nothing. The report is returned alongside so
// callers can render package groupings.
func (p *Pipeline) SuggestMessage(ctx context.Context, message string) ([]suggest.Suggestion, analyze.Report, error) {
	changes, err := p.repo.Staged(ctx)
	if err != nil {
		return nil, analyze.Report{}, err
	}
	report := p.analyzer.Analyze(message, changes)

	var findings []scan.Finding
	if p.cfg.Checks.Security {
		findings = p.scanner.ScanChanges(changes)
	}

	in := suggest.Input{Report: report, Findings: findings, Changes: changes}
	suggestions := p.suggester.Suggest(ctx, in)
	if len(suggestions) == 0 {
		suggestions = []suggest.Suggestion{suggest.Heuristic(in)}
	}
	return suggestions, report, nil
}

// checkRef analyzes one commit from a range, going through the verdict
// cache. Only refs are cached: they carry immutable SHAs, unlike the
// user-supplied revisions CheckCommit sees.
func (p *Pipeline) checkRef(ctx context.Context, ref gitrepo.CommitRef) (verdict.Verdict, error) {
	key := cache.BuildKey(ref.SHA, p.fingerprint)
	if v, ok := p.verdicts.Get(key); ok {
		return v, nil
	}

	c, err := p.repo.Commit(ctx, ref.SHA)
	if err != nil {
		return verdict.Verdict{}, err
	}
	v := p.evaluate(ctx, target{
		ref:          &verdict.CommitRef{SHA: c.SHA, Subject: c.Subject},
		message:      c.RawMessage,
		messageKnown: true,
		changes:      c.Changes,
	})
	if err := p.verdicts.Put(key, v); err != nil {
		p.log.Debug("verdict cache write failed",
			zap.String("sha", ref.SHA),
			zap.Error(err))
	}
	return v, nil
}

func (p *Pipeline) evaluate(ctx context.Context, t target) verdict.Verdict {
	// Scanner, analyzer and advisor are pure transformations over the
	// same immutable change set; they run as parallel subtasks, each
	// writing its own slot.
	var (
		report   analyze.Report
		findings []scan.Finding
		sp       split.Suggestion
		wg       sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		report = p.analyzer.Analyze(t.message, t.changes)
	}()
	if p.cfg.Checks.Security {
		wg.Add(1)
		go func() {
			defer wg.Done()
			findings = p.scanner.ScanChanges(t.changes)
		}()
	}
	if p.cfg.Checks.Cohesion && len(t.changes) >= 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sp = p.advisor.Suggest(t.changes)
		}()
	}
	wg.Wait()

	if !t.messageKnown || !p.cfg.Checks.Message {
		report.MessageIssues = nil
	}
	if !p.cfg.Checks.Cohesion {
		report.CohesionIssues = nil
	}
	// The partition is computed speculatively; it reaches the verdict
	// only when cohesion actually fell below the threshold.
	if report.Cohesion >= p.cfg.Cohesion.Threshold {
		sp = split.Suggestion{}
	}

	v := verdict.Aggregate(verdict.Evidence{
		Commit:   t.ref,
		Report:   report,
		Findings: findings,
		Split:    sp,
	})

	if v.Status != verdict.StatusPass {
		v.Suggestions = p.suggestions(ctx, suggest.Input{
			Report:   report,
			Findings: findings,
			Changes:  t.changes,
		})
	}
	return v
}

// suggestions attaches provider suggestions when available, falling
// back to the heuristic only when the message itself needs work.
func (p *Pipeline) suggestions(ctx context.Context, in suggest.Input) []suggest.Suggestion {
	if got := p.suggester.Suggest(ctx, in); len(got) > 0 {
		return got
	}
	for _, is := range in.Report.MessageIssues {
		if is.Warn {
			return []suggest.Suggestion{suggest.Heuristic(in)}
		}
	}
	return nil
}
