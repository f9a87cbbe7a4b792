// Package newsroom owns the article queues and the lifecycle that moves a
// draft through review into publication. The Manager is the single
// authority for article status: agents produce articles and hand them
// over, the content store receives approved ones at publish time.
package newsroom

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yourusername/newsroom/internal/agent"
	"github.com/yourusername/newsroom/internal/article"
	"github.com/yourusername/newsroom/internal/logbook"
	"github.com/yourusername/newsroom/internal/review"
)

// ErrUnknownReporter is returned when a caller names a reporter id that
// was never registered.
var ErrUnknownReporter = errors.New("newsroom: unknown reporter")

// Store persists one article and returns its durable location. The
// Manager hands an article to the store only when it is approved.
type Store interface {
	Persist(a *article.Article) (string, error)
}

// Manager coordinates the reporter registry, the research expert, the
// editor, and the three article queues.
type Manager struct {
	mu        sync.Mutex
	reporters map[string]agent.Agent
	research  agent.Agent
	editor    agent.Agent
	store     Store
	log       *logbook.Logbook
	now       func() time.Time

	draftQueue  []*article.Article
	reviewQueue []*article.Article
	approved    []*article.Article
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock overrides the manager clock (tests).
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithLogbook attaches a logbook for lifecycle diagnostics.
func WithLogbook(log *logbook.Logbook) Option {
	return func(m *Manager) {
		m.log = log.With("manager")
	}
}

// WithResearchExpert installs the research expert agent.
func WithResearchExpert(research agent.Agent) Option {
	return func(m *Manager) {
		m.research = research
	}
}

// New builds a Manager around the editor and the content store.
func New(editor agent.Agent, store Store, opts ...Option) *Manager {
	m := &Manager{
		reporters: map[string]agent.Agent{},
		editor:    editor,
		store:     store,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RegisterReporter installs a reporter under a stable id.
func (m *Manager) RegisterReporter(id string, reporter agent.Agent) error {
	if id == "" {
		return fmt.Errorf("newsroom: reporter id is required")
	}
	if reporter == nil {
		return fmt.Errorf("newsroom: reporter %s is nil", id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.reporters[id]; exists {
		return fmt.Errorf("newsroom: reporter %s already registered", id)
	}
	m.reporters[id] = reporter
	return nil
}

// ReporterIDs returns the registered reporter ids in sorted order.
func (m *Manager) ReporterIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.reporters))
	for id := range m.reporters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ResearchExpert returns the installed research expert, if any.
func (m *Manager) ResearchExpert() agent.Agent {
	return m.research
}

// DiscoveryReport aggregates one discovery cycle.
type DiscoveryReport struct {
	Total      int
	ByReporter map[string]int
	Leads      map[string][]agent.Lead
}

// RunDiscoveryCycle fans discovery out across every registered reporter.
// Reporters run independently; one reporter failing is logged and counted
// as zero discoveries without disturbing the others. Each task settles
// into a complete sub-result before aggregation, so no partial counts are
// ever observable.
func (m *Manager) RunDiscoveryCycle(ctx context.Context, tr agent.TimeRange) DiscoveryReport {
	m.mu.Lock()
	reporters := make(map[string]agent.Agent, len(m.reporters))
	for id, r := range m.reporters {
		reporters[id] = r
	}
	m.mu.Unlock()

	type subResult struct {
		id    string
		leads []agent.Lead
		err   error
	}

	results := make(chan subResult, len(reporters))
	var wg sync.WaitGroup
	for id, reporter := range reporters {
		wg.Add(1)
		go func(id string, reporter agent.Agent) {
			defer wg.Done()
			outcome, err := reporter.Execute(ctx, agent.DiscoverTask(tr))
			results <- subResult{id: id, leads: outcome.Leads, err: err}
		}(id, reporter)
	}
	wg.Wait()
	close(results)

	report := DiscoveryReport{
		ByReporter: make(map[string]int, len(reporters)),
		Leads:      make(map[string][]agent.Lead, len(reporters)),
	}
	for sub := range results {
		if sub.err != nil {
			m.log.Error("discovery failed for %s: %v", sub.id, sub.err)
			report.ByReporter[sub.id] = 0
			continue
		}
		report.ByReporter[sub.id] = len(sub.leads)
		report.Leads[sub.id] = sub.leads
		report.Total += len(sub.leads)
	}
	m.log.Info("discovery cycle completed: %d leads", report.Total)
	return report
}

// CreateArticle asks the named reporter to write and self-review a draft
// for the lead. Drafts that pass self-review are submitted to the tail of
// the review queue; the rest land in the draft queue for manual follow-up.
func (m *Manager) CreateArticle(ctx context.Context, reporterID string, lead agent.Lead) (agent.Outcome, error) {
	m.mu.Lock()
	reporter, ok := m.reporters[reporterID]
	m.mu.Unlock()
	if !ok {
		return agent.Outcome{}, fmt.Errorf("%w: %s", ErrUnknownReporter, reporterID)
	}

	outcome, err := reporter.Execute(ctx, agent.WriteTask(lead))
	if err != nil {
		return agent.Outcome{}, fmt.Errorf("newsroom: create article via %s: %w", reporterID, err)
	}
	if outcome.Article == nil {
		return outcome, fmt.Errorf("newsroom: reporter %s produced no article", reporterID)
	}

	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if outcome.ReadyForReview {
		if err := outcome.Article.SetStatus(article.StatusSubmitted, now); err != nil {
			return outcome, err
		}
		m.reviewQueue = append(m.reviewQueue, outcome.Article)
		m.log.Info("article submitted for review: %s", outcome.Article.ID)
	} else {
		m.draftQueue = append(m.draftQueue, outcome.Article)
		m.log.Warn("article held in drafts: %s (%d issues)", outcome.Article.ID, issueCount(outcome.SelfReview))
	}
	return outcome, nil
}

// SubmitArticle enqueues an externally produced draft for review. The
// research expert's reports enter the pipeline here since they bypass
// the reporter desks.
func (m *Manager) SubmitArticle(a *article.Article) error {
	if a == nil {
		return fmt.Errorf("newsroom: nil article")
	}
	if err := a.SetStatus(article.StatusSubmitted, m.now()); err != nil {
		return err
	}
	m.mu.Lock()
	m.reviewQueue = append(m.reviewQueue, a)
	m.mu.Unlock()
	m.log.Info("article submitted for review: %s", a.ID)
	return nil
}

// ReviewOutcome bundles a completed editorial pass.
type ReviewOutcome struct {
	Article  *article.Article
	Result   review.Result
	Feedback string
}

// ReviewNextArticle dequeues the oldest submission and runs it through the
// editor. An empty queue yields nil, not an error. Revision-required and
// rejected articles are terminal for this cycle; nothing re-enqueues them
// to the originating reporter.
func (m *Manager) ReviewNextArticle(ctx context.Context) (*ReviewOutcome, error) {
	m.mu.Lock()
	if len(m.reviewQueue) == 0 {
		m.mu.Unlock()
		return nil, nil
	}
	next := m.reviewQueue[0]
	m.reviewQueue = m.reviewQueue[1:]
	m.mu.Unlock()

	now := m.now()
	if err := next.SetStatus(article.StatusUnderReview, now); err != nil {
		return nil, err
	}

	outcome, err := m.editor.Execute(ctx, agent.ReviewTask(next))
	if err != nil {
		m.log.Error("review failed for %s: %v", next.ID, err)
		return nil, fmt.Errorf("newsroom: review %s: %w", next.ID, err)
	}
	result := *outcome.Review

	var target article.Status
	switch result.Decision {
	case review.DecisionApproved:
		target = article.StatusApproved
	case review.DecisionRevisionRequired:
		target = article.StatusRevisionRequired
	default:
		target = article.StatusRejected
	}
	if err := next.SetStatus(target, m.now()); err != nil {
		return nil, err
	}
	next.ReviewNotes = append(next.ReviewNotes, article.ReviewNote{
		Reviewer: m.editor.Name(),
		Decision: string(result.Decision),
		Score:    result.QualityScore,
		Note:     outcome.Feedback,
		At:       m.now().UTC(),
	})

	switch result.Decision {
	case review.DecisionApproved:
		m.mu.Lock()
		m.approved = append(m.approved, next)
		m.mu.Unlock()
		m.log.Info("article approved: %s (%.1f)", next.ID, result.QualityScore)
	case review.DecisionRevisionRequired:
		m.log.Info("article needs revision: %s (%.1f)", next.ID, result.QualityScore)
	default:
		m.log.Info("article rejected: %s (%.1f)", next.ID, result.QualityScore)
	}

	return &ReviewOutcome{Article: next, Result: result, Feedback: outcome.Feedback}, nil
}

// PublishApprovedArticles persists every approved article. One article
// failing to persist does not stop the rest; failed articles stay in the
// approved queue for the next attempt instead of being dropped. Returns
// the durable locations of everything persisted this call.
func (m *Manager) PublishApprovedArticles() ([]string, error) {
	m.mu.Lock()
	pending := m.approved
	m.approved = nil
	m.mu.Unlock()

	var (
		locations []string
		retained  []*article.Article
		errs      []error
	)
	for _, a := range pending {
		location, err := m.store.Persist(a)
		if err != nil {
			m.log.Error("publish failed for %s: %v", a.ID, err)
			retained = append(retained, a)
			errs = append(errs, fmt.Errorf("newsroom: publish %s: %w", a.ID, err))
			continue
		}
		if err := a.SetStatus(article.StatusPublished, m.now()); err != nil {
			retained = append(retained, a)
			errs = append(errs, err)
			continue
		}
		locations = append(locations, location)
		m.log.Info("article published: %s", location)
	}

	if len(retained) > 0 {
		m.mu.Lock()
		m.approved = append(retained, m.approved...)
		m.mu.Unlock()
	}
	return locations, errors.Join(errs...)
}

// Snapshot is a read-only view of queue depths.
type Snapshot struct {
	DraftQueue       int
	ReviewQueue      int
	ApprovedArticles int
	Reporters        int
}

// Status reports current queue depths and the reporter count.
func (m *Manager) Status() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		DraftQueue:       len(m.draftQueue),
		ReviewQueue:      len(m.reviewQueue),
		ApprovedArticles: len(m.approved),
		Reporters:        len(m.reporters),
	}
}

func issueCount(sr *agent.SelfReview) int {
	if sr == nil {
		return 0
	}
	return len(sr.Issues)
}
