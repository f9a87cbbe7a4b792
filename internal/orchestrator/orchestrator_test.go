package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/yourusername/newsroom/internal/agent"
	"github.com/yourusername/newsroom/internal/article"
	"github.com/yourusername/newsroom/internal/config"
	"github.com/yourusername/newsroom/internal/gitops"
	"github.com/yourusername/newsroom/internal/newsroom"
	"github.com/yourusername/newsroom/internal/review"
	"github.com/yourusername/newsroom/internal/scheduler"
)

var testNow = time.Date(2025, 12, 2, 9, 0, 0, 0, time.UTC)

type fakeAgent struct {
	name    string
	execute func(ctx context.Context, task agent.Task) (agent.Outcome, error)
}

func (f *fakeAgent) Name() string { return f.name }

func (f *fakeAgent) Execute(ctx context.Context, task agent.Task) (agent.Outcome, error) {
	return f.execute(ctx, task)
}

type fakeStore struct {
	persisted []string
}

func (s *fakeStore) Persist(a *article.Article) (string, error) {
	s.persisted = append(s.persisted, a.ID)
	return "src/content/posts/" + a.Filename(), nil
}

func readyArticle(id string) *article.Article {
	return &article.Article{
		ID: id,
		Metadata: article.Metadata{
			Title:       "title " + id,
			Description: "description " + id,
			Tags:        []string{"AI"},
		},
		Content: "content",
		Status:  article.StatusDraft,
	}
}

// deskReporter discovers the given leads and writes a ready draft per lead.
func deskReporter(name string, leads []agent.Lead) *fakeAgent {
	return &fakeAgent{
		name: name,
		execute: func(ctx context.Context, task agent.Task) (agent.Outcome, error) {
			switch task.Kind {
			case agent.TaskDiscover:
				return agent.Outcome{Leads: leads}, nil
			case agent.TaskWrite:
				return agent.Outcome{
					Article:        readyArticle(name + "-" + task.Lead.Slug + "-202512"),
					ReadyForReview: true,
				}, nil
			default:
				return agent.Outcome{}, fmt.Errorf("unexpected task %s", task.Kind)
			}
		},
	}
}

func approvingEditor() *fakeAgent {
	return &fakeAgent{
		name: "editor-in-chief",
		execute: func(ctx context.Context, task agent.Task) (agent.Outcome, error) {
			return agent.Outcome{
				Review:   &review.Result{Decision: review.DecisionApproved, QualityScore: 8.0},
				Feedback: "approved",
			}, nil
		},
	}
}

func newTestManager(t *testing.T, store newsroom.Store, opts ...newsroom.Option) *newsroom.Manager {
	t.Helper()
	opts = append(opts, newsroom.WithClock(func() time.Time { return testNow }))
	m := newsroom.New(approvingEditor(), store, opts...)
	leads := []agent.Lead{
		{Title: "Gemini 3", Slug: "gemini-3", Category: string(article.CategoryGoogle)},
		{Title: "TPU v6", Slug: "tpu-v6", Category: string(article.CategoryGoogle)},
	}
	if err := m.RegisterReporter("google", deskReporter("google", leads)); err != nil {
		t.Fatalf("register: %v", err)
	}
	return m
}

func TestRunCompleteCycle(t *testing.T) {
	store := &fakeStore{}
	cfg := config.Default()
	cfg.GitEnabled = false
	o := New(newTestManager(t, store), cfg, WithClock(func() time.Time { return testNow }))

	summary := o.RunCompleteCycle(context.Background())
	if summary.Discovered != 2 || summary.Written != 2 {
		t.Fatalf("discovery counts = %d/%d", summary.Discovered, summary.Written)
	}
	if summary.Reviewed != 2 || summary.Approved != 2 {
		t.Fatalf("review counts = %d/%d", summary.Reviewed, summary.Approved)
	}
	if summary.Published != 2 {
		t.Fatalf("published = %d", summary.Published)
	}
	if len(summary.Errors) != 0 {
		t.Fatalf("errors = %v", summary.Errors)
	}
	if !summary.StartedAt.Equal(testNow) || !summary.FinishedAt.Equal(testNow) {
		t.Fatalf("timestamps = %s / %s", summary.StartedAt, summary.FinishedAt)
	}
	if len(store.persisted) != 2 {
		t.Fatalf("persisted = %v", store.persisted)
	}
}

func TestRunDiscoveryIsolatesWritingFailures(t *testing.T) {
	store := &fakeStore{}
	m := newsroom.New(approvingEditor(), store, newsroom.WithClock(func() time.Time { return testNow }))
	broken := &fakeAgent{
		name: "grok",
		execute: func(ctx context.Context, task agent.Task) (agent.Outcome, error) {
			if task.Kind == agent.TaskDiscover {
				return agent.Outcome{Leads: []agent.Lead{{Title: "xAI", Slug: "xai"}}}, nil
			}
			return agent.Outcome{}, errors.New("backend down")
		},
	}
	if err := m.RegisterReporter("grok", broken); err != nil {
		t.Fatalf("register: %v", err)
	}
	o := New(m, config.Default(), WithClock(func() time.Time { return testNow }))

	discovered, written, errs := o.RunDiscovery(context.Background())
	if discovered != 1 || written != 0 {
		t.Fatalf("counts = %d/%d", discovered, written)
	}
	if len(errs) != 1 {
		t.Fatalf("errs = %v", errs)
	}
}

func TestRunWritingFromStoredLeads(t *testing.T) {
	o := New(newTestManager(t, &fakeStore{}), config.Default(), WithClock(func() time.Time { return testNow }))

	// Writing can run over a report gathered earlier, without re-discovering.
	leads := map[string][]agent.Lead{
		"google": {{Title: "Gemini 3", Slug: "gemini-3"}},
	}
	written, errs := o.RunWriting(context.Background(), leads)
	if written != 1 || len(errs) != 0 {
		t.Fatalf("written = %d, errs = %v", written, errs)
	}
	if got := o.Manager().Status(); got.ReviewQueue != 1 {
		t.Fatalf("review queue = %d, want 1", got.ReviewQueue)
	}
}

func TestRunWritingUnknownDeskCollected(t *testing.T) {
	o := New(newTestManager(t, &fakeStore{}), config.Default())
	written, errs := o.RunWriting(context.Background(), map[string][]agent.Lead{
		"nobody": {{Title: "x", Slug: "x"}},
	})
	if written != 0 || len(errs) != 1 {
		t.Fatalf("written = %d, errs = %v", written, errs)
	}
}

func TestRunPublishCommitsWithoutPush(t *testing.T) {
	var calls [][]string
	repo, err := gitops.Open("/tmp/site", gitops.WithRunner(func(ctx context.Context, dir string, args ...string) (string, error) {
		calls = append(calls, args)
		return "", nil
	}))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	store := &fakeStore{}
	cfg := config.Default() // git on, auto-publish off
	o := New(newTestManager(t, store), cfg, WithClock(func() time.Time { return testNow }), WithGitRepo(repo))

	ctx := context.Background()
	o.RunDiscovery(ctx)
	o.RunReviewCycle(ctx)
	locations, err := o.RunPublish(ctx)
	if err != nil {
		t.Fatalf("RunPublish: %v", err)
	}
	if len(locations) != 2 {
		t.Fatalf("locations = %v", locations)
	}

	var sawCommit bool
	for _, args := range calls {
		switch args[0] {
		case "commit":
			sawCommit = true
			if args[2] != "feat: add 2 new articles" {
				t.Fatalf("commit message = %q", args[2])
			}
		case "push":
			t.Fatal("push ran despite auto_publish=false")
		}
	}
	if !sawCommit {
		t.Fatalf("no commit in %v", calls)
	}
}

func TestRunPublishSkipsGitWhenDisabled(t *testing.T) {
	var calls int
	repo, err := gitops.Open("/tmp/site", gitops.WithRunner(func(ctx context.Context, dir string, args ...string) (string, error) {
		calls++
		return "", nil
	}))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	cfg := config.Default()
	cfg.GitEnabled = false
	o := New(newTestManager(t, &fakeStore{}), cfg, WithClock(func() time.Time { return testNow }), WithGitRepo(repo))

	ctx := context.Background()
	o.RunDiscovery(ctx)
	o.RunReviewCycle(ctx)
	if _, err := o.RunPublish(ctx); err != nil {
		t.Fatalf("RunPublish: %v", err)
	}
	if calls != 0 {
		t.Fatalf("git ran %d times despite git_enabled=false", calls)
	}
}

func TestRunResearchSubmitsReport(t *testing.T) {
	expert := &fakeAgent{
		name: "research-expert",
		execute: func(ctx context.Context, task agent.Task) (agent.Outcome, error) {
			if task.Kind != agent.TaskCompare {
				return agent.Outcome{}, fmt.Errorf("unexpected task %s", task.Kind)
			}
			if len(task.Models) != len(flagshipModels) {
				return agent.Outcome{}, fmt.Errorf("models = %v", task.Models)
			}
			return agent.Outcome{Article: readyArticle("modeleval-weekly-202512")}, nil
		},
	}
	m := newsroom.New(approvingEditor(), &fakeStore{},
		newsroom.WithClock(func() time.Time { return testNow }),
		newsroom.WithResearchExpert(expert))
	o := New(m, config.Default(), WithClock(func() time.Time { return testNow }))

	if err := o.RunResearch(context.Background(), nil); err != nil {
		t.Fatalf("RunResearch: %v", err)
	}
	if got := m.Status(); got.ReviewQueue != 1 {
		t.Fatalf("review queue = %d, want 1", got.ReviewQueue)
	}
}

func TestRunResearchSingleModelEvaluates(t *testing.T) {
	expert := &fakeAgent{
		name: "research-expert",
		execute: func(ctx context.Context, task agent.Task) (agent.Outcome, error) {
			if task.Kind != agent.TaskEvaluate {
				return agent.Outcome{}, fmt.Errorf("unexpected task %s", task.Kind)
			}
			return agent.Outcome{Article: readyArticle("modeleval-gpt-5-202512")}, nil
		},
	}
	m := newsroom.New(approvingEditor(), &fakeStore{},
		newsroom.WithClock(func() time.Time { return testNow }),
		newsroom.WithResearchExpert(expert))
	o := New(m, config.Default(), WithClock(func() time.Time { return testNow }))

	if err := o.RunResearch(context.Background(), []string{"GPT-5"}); err != nil {
		t.Fatalf("RunResearch: %v", err)
	}
}

func TestRunResearchWithoutExpert(t *testing.T) {
	o := New(newTestManager(t, &fakeStore{}), config.Default())
	if err := o.RunResearch(context.Background(), nil); err == nil {
		t.Fatal("expected missing expert error")
	}
}

func TestDaemonRegistersScheduledJobs(t *testing.T) {
	sched := scheduler.New()
	o := New(newTestManager(t, &fakeStore{}), config.Default(), WithScheduler(sched))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := o.Daemon(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Daemon returned %v", err)
	}

	names := sched.Names()
	want := []string{"discovery", "research", "review"}
	if len(names) != len(want) {
		t.Fatalf("jobs = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("jobs = %v, want %v", names, want)
		}
	}
}
