// Package orchestrator sequences the newsroom workflows: discovery,
// writing, review, publication, and the weekly research report. It is
// the layer the CLI and the daemon drive.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/yourusername/newsroom/internal/agent"
	"github.com/yourusername/newsroom/internal/article"
	"github.com/yourusername/newsroom/internal/config"
	"github.com/yourusername/newsroom/internal/gitops"
	"github.com/yourusername/newsroom/internal/logbook"
	"github.com/yourusername/newsroom/internal/newsroom"
	"github.com/yourusername/newsroom/internal/scheduler"
)

// discoveryWindow is how far back each discovery pass looks.
const discoveryWindow = 6 * time.Hour

// flagshipModels is the default lineup for the weekly research report.
var flagshipModels = []string{"GPT-5", "Claude Opus", "Gemini", "Grok", "Qwen"}

// Orchestrator ties the manager, the git repository, and the scheduler
// into runnable workflows.
type Orchestrator struct {
	manager *newsroom.Manager
	repo    *gitops.Repo
	sched   *scheduler.Scheduler
	cfg     config.Config
	log     *logbook.Logbook
	now     func() time.Time
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the clock (tests).
func WithClock(clock func() time.Time) Option {
	return func(o *Orchestrator) {
		if clock != nil {
			o.now = clock
		}
	}
}

// WithLogbook attaches a logbook.
func WithLogbook(log *logbook.Logbook) Option {
	return func(o *Orchestrator) {
		o.log = log.With("orchestrator")
	}
}

// WithGitRepo installs the git repository used after publication. A nil
// repo disables git integration regardless of configuration.
func WithGitRepo(repo *gitops.Repo) Option {
	return func(o *Orchestrator) {
		o.repo = repo
	}
}

// WithScheduler overrides the scheduler used by Daemon.
func WithScheduler(sched *scheduler.Scheduler) Option {
	return func(o *Orchestrator) {
		if sched != nil {
			o.sched = sched
		}
	}
}

// New builds an orchestrator around a fully assembled manager.
func New(manager *newsroom.Manager, cfg config.Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		manager: manager,
		cfg:     cfg,
		sched:   scheduler.New(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Manager exposes the underlying manager for status queries.
func (o *Orchestrator) Manager() *newsroom.Manager {
	return o.manager
}

// CycleSummary reports one complete pipeline pass.
type CycleSummary struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	Discovered int
	Written    int
	Reviewed   int
	Approved   int
	Published  int
	Errors     []string
}

// DiscoverLeads fans discovery out over the reporter desks for the
// trailing window and returns the aggregated report without writing
// anything up.
func (o *Orchestrator) DiscoverLeads(ctx context.Context) newsroom.DiscoveryReport {
	end := o.now().UTC()
	return o.manager.RunDiscoveryCycle(ctx, agent.TimeRange{
		Start: end.Add(-discoveryWindow).Format(time.RFC3339),
		End:   end.Format(time.RFC3339),
	})
}

// RunWriting has each desk write up its own leads. Per-lead failures
// are collected, not fatal. Desks are processed in id order so repeated
// runs over the same report behave identically.
func (o *Orchestrator) RunWriting(ctx context.Context, leads map[string][]agent.Lead) (written int, errs []string) {
	reporterIDs := make([]string, 0, len(leads))
	for id := range leads {
		reporterIDs = append(reporterIDs, id)
	}
	sort.Strings(reporterIDs)

	for _, id := range reporterIDs {
		for _, lead := range leads[id] {
			if _, err := o.manager.CreateArticle(ctx, id, lead); err != nil {
				o.log.Error("writing failed for %s lead %q: %v", id, lead.Title, err)
				errs = append(errs, err.Error())
				continue
			}
			written++
		}
	}
	o.log.Info("writing workflow: %d articles from %d desks", written, len(leads))
	return written, errs
}

// RunDiscovery composes discovery and writing: scan the sources, then
// write up everything that was found.
func (o *Orchestrator) RunDiscovery(ctx context.Context) (discovered, written int, errs []string) {
	report := o.DiscoverLeads(ctx)
	written, errs = o.RunWriting(ctx, report.Leads)
	o.log.Info("discovery workflow: %d leads, %d articles", report.Total, written)
	return report.Total, written, errs
}

// RunReviewCycle drains the review queue through the editor. Returns how
// many articles were reviewed and how many came out approved.
func (o *Orchestrator) RunReviewCycle(ctx context.Context) (reviewed, approved int, errs []string) {
	for {
		outcome, err := o.manager.ReviewNextArticle(ctx)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if outcome == nil {
			break
		}
		reviewed++
		if outcome.Article.Status == article.StatusApproved {
			approved++
		}
	}
	o.log.Info("review workflow: %d reviewed, %d approved", reviewed, approved)
	return reviewed, approved, errs
}

// RunPublish persists approved articles and, when git integration is
// active, commits them. Pushing happens only with auto_publish on.
func (o *Orchestrator) RunPublish(ctx context.Context) ([]string, error) {
	locations, err := o.manager.PublishApprovedArticles()
	if len(locations) > 0 && o.cfg.GitEnabled && o.repo != nil {
		if gitErr := o.repo.PublishArticles(ctx, locations, o.cfg.AutoPublish); gitErr != nil {
			err = errors.Join(err, gitErr)
		}
	}
	o.log.Info("publish workflow: %d articles", len(locations))
	return locations, err
}

// RunResearch produces a benchmark report over the given models (the
// flagship lineup when none are given) and submits it for review like
// any other draft. Two or more models produce a comparison.
func (o *Orchestrator) RunResearch(ctx context.Context, models []string) error {
	expert := o.manager.ResearchExpert()
	if expert == nil {
		return fmt.Errorf("orchestrator: no research expert configured")
	}
	if len(models) == 0 {
		models = flagshipModels
	}
	task := agent.EvaluateTask(models[0])
	if len(models) > 1 {
		task = agent.CompareTask(models)
	}
	outcome, err := expert.Execute(ctx, task)
	if err != nil {
		return fmt.Errorf("orchestrator: research workflow: %w", err)
	}
	if outcome.Article == nil {
		return fmt.Errorf("orchestrator: research workflow produced no article")
	}
	return o.manager.SubmitArticle(outcome.Article)
}

// RunCompleteCycle executes discovery, writing, review, and publication
// in order and reports the counts. Stage errors are accumulated in the
// summary; a later stage still runs so partial progress is never lost.
func (o *Orchestrator) RunCompleteCycle(ctx context.Context) CycleSummary {
	summary := CycleSummary{StartedAt: o.now().UTC()}

	discovered, written, discoveryErrs := o.RunDiscovery(ctx)
	summary.Discovered = discovered
	summary.Written = written
	summary.Errors = append(summary.Errors, discoveryErrs...)

	reviewed, approved, reviewErrs := o.RunReviewCycle(ctx)
	summary.Reviewed = reviewed
	summary.Approved = approved
	summary.Errors = append(summary.Errors, reviewErrs...)

	locations, err := o.RunPublish(ctx)
	summary.Published = len(locations)
	if err != nil {
		summary.Errors = append(summary.Errors, err.Error())
	}

	summary.FinishedAt = o.now().UTC()
	summary.Duration = summary.FinishedAt.Sub(summary.StartedAt)
	o.log.Info("complete cycle: %d discovered, %d written, %d reviewed, %d published in %s",
		summary.Discovered, summary.Written, summary.Reviewed, summary.Published, summary.Duration)
	return summary
}

// Daemon registers the recurring jobs on the configured cron schedules
// and runs until ctx is cancelled.
func (o *Orchestrator) Daemon(ctx context.Context) error {
	jobs := []struct {
		name string
		spec string
		job  scheduler.Job
	}{
		{"discovery", o.cfg.Schedules.Discovery, func(ctx context.Context) error {
			_, _, errs := o.RunDiscovery(ctx)
			return joinStrings(errs)
		}},
		{"review", o.cfg.Schedules.Review, func(ctx context.Context) error {
			_, _, errs := o.RunReviewCycle(ctx)
			_, pubErr := o.RunPublish(ctx)
			return errors.Join(joinStrings(errs), pubErr)
		}},
		{"research", o.cfg.Schedules.Research, func(ctx context.Context) error {
			return o.RunResearch(ctx, nil)
		}},
	}
	for _, j := range jobs {
		if err := o.sched.Register(j.name, j.spec, j.job); err != nil {
			return err
		}
	}
	o.log.Info("daemon started")
	return o.sched.Start(ctx)
}

func joinStrings(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	collected := make([]error, 0, len(errs))
	for _, e := range errs {
		collected = append(collected, errors.New(e))
	}
	return errors.Join(collected...)
}
