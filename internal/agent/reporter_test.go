package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yourusername/newsroom/internal/article"
	"github.com/yourusername/newsroom/internal/generative"
)

var fixedNow = time.Date(2025, 12, 2, 9, 0, 0, 0, time.UTC)

func staticClient(text string) generative.Client {
	return generative.ClientFunc(func(context.Context, generative.Request) (generative.Response, error) {
		return generative.Response{Text: text}, nil
	})
}

func failingClient(err error) generative.Client {
	return generative.ClientFunc(func(context.Context, generative.Request) (generative.Response, error) {
		return generative.Response{}, err
	})
}

func newTestReporter(gen generative.Client, sink Sink) *Reporter {
	return NewReporter("GoogleReporter", article.CategoryGoogle,
		[]string{"https://blog.google/technology/ai/"},
		gen, sink,
		WithReporterClock(func() time.Time { return fixedNow }))
}

func TestReporterSelfReviewBoundaries(t *testing.T) {
	r := newTestReporter(staticClient(""), nil)
	meta := article.Metadata{Title: "t", Description: "d", Tags: []string{"ai"}}
	cases := []struct {
		length int
		passed bool
	}{
		{799, false},
		{800, true},
		{1500, true},
		{1501, false},
	}
	for _, tc := range cases {
		a := &article.Article{ID: "google-x-202512", Metadata: meta, Content: strings.Repeat("x", tc.length)}
		sr := r.SelfReview(a)
		if sr.Passed != tc.passed {
			t.Errorf("length %d: passed = %v, want %v (issues %v)", tc.length, sr.Passed, tc.passed, sr.Issues)
		}
	}
}

func TestReporterSelfReviewMetadata(t *testing.T) {
	r := newTestReporter(staticClient(""), nil)
	a := &article.Article{ID: "google-x-202512", Content: strings.Repeat("x", 900)}
	sr := r.SelfReview(a)
	if sr.Passed {
		t.Fatal("expected failure for empty metadata")
	}
	if len(sr.Issues) != 3 {
		t.Fatalf("issues = %v, want title/description/tags", sr.Issues)
	}
}

func TestReporterWriteStructuredPayload(t *testing.T) {
	response := "```json\n" +
		`{"content": "# Gemini\n\nBody.", "metadata": {"title": "Gemini 3.0", "description": "New model", "reading_time": "6 分鐘閱讀", "tags": ["Google", "Gemini"]}}` +
		"\n```"
	r := newTestReporter(staticClient(response), nil)
	a, err := r.Write(context.Background(), Lead{
		Title:  "Gemini 3.0 launch",
		Slug:   "gemini-3-release",
		Source: "https://blog.google/technology/ai/gemini-3/",
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if a.ID != "google-gemini-3-release-202512" {
		t.Fatalf("id = %q", a.ID)
	}
	if a.Status != article.StatusDraft {
		t.Fatalf("status = %s", a.Status)
	}
	if a.Metadata.Title != "Gemini 3.0" || a.Metadata.ReadingTime != "6 分鐘閱讀" {
		t.Fatalf("metadata = %+v", a.Metadata)
	}
	if a.Metadata.Image != "/images/google-gemini-3-release-202512.jpg" {
		t.Fatalf("image = %q", a.Metadata.Image)
	}
	if a.Metadata.Author != defaultAuthor || a.Metadata.Date != "2025-12-02" {
		t.Fatalf("metadata = %+v", a.Metadata)
	}
	if a.Agent != "GoogleReporter" || a.Version != 1 {
		t.Fatalf("article = %+v", a)
	}
}

func TestReporterWriteFallsBackToRawText(t *testing.T) {
	raw := "Just prose, no JSON anywhere."
	r := newTestReporter(staticClient(raw), nil)
	a, err := r.Write(context.Background(), Lead{Slug: "story"})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if a.Content != raw {
		t.Fatalf("content = %q", a.Content)
	}
	if a.Metadata.Title != "" {
		t.Fatalf("title should stay empty, got %q", a.Metadata.Title)
	}
	if a.Status != article.StatusDraft {
		t.Fatalf("status = %s", a.Status)
	}
}

func TestReporterExecuteWriteReportsReadiness(t *testing.T) {
	body := strings.Repeat("x", 900)
	response := "```json\n" +
		`{"content": "` + body + `", "metadata": {"title": "T", "description": "D", "tags": ["ai"]}}` +
		"\n```"
	r := newTestReporter(staticClient(response), nil)
	outcome, err := r.Execute(context.Background(), WriteTask(Lead{Slug: "ok"}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !outcome.ReadyForReview {
		t.Fatalf("not ready: %+v", outcome.SelfReview)
	}

	// An empty draft still comes back as an article, only not ready.
	r = newTestReporter(staticClient("too short"), nil)
	outcome, err = r.Execute(context.Background(), WriteTask(Lead{Slug: "thin"}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if outcome.ReadyForReview {
		t.Fatal("unexpectedly ready for review")
	}
	if outcome.Article == nil || outcome.SelfReview == nil {
		t.Fatalf("outcome incomplete: %+v", outcome)
	}
}

func TestReporterDiscover(t *testing.T) {
	response := "```json\n" +
		`{"discoveries": [{"title": "A", "slug": "a", "source": "s", "summary": "sum"}]}` +
		"\n```"
	r := newTestReporter(staticClient(response), nil)
	leads, err := r.Discover(context.Background(), TimeRange{Start: "2025-12-01", End: "2025-12-02"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(leads) != 1 || leads[0].Slug != "a" || leads[0].Category != "Google" {
		t.Fatalf("leads = %+v", leads)
	}
}

func TestReporterDiscoverMalformedPayloadDegradesToEmpty(t *testing.T) {
	r := newTestReporter(staticClient("no structured data here"), nil)
	leads, err := r.Discover(context.Background(), TimeRange{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(leads) != 0 {
		t.Fatalf("leads = %+v", leads)
	}
}

func TestReporterDiscoverPropagatesBackendError(t *testing.T) {
	backendErr := errors.New("quota exceeded")
	r := newTestReporter(failingClient(backendErr), nil)
	if _, err := r.Discover(context.Background(), TimeRange{}); !errors.Is(err, backendErr) {
		t.Fatalf("err = %v", err)
	}
}

func TestReporterRecordsAuditEvents(t *testing.T) {
	sink := &MemorySink{}
	r := newTestReporter(staticClient("prose"), sink)
	if _, err := r.Execute(context.Background(), WriteTask(Lead{Slug: "x"})); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	events := sink.Events()
	if len(events) != 2 {
		t.Fatalf("events = %d, want write + self_review", len(events))
	}
	if events[0].Action != "write_article" || events[1].Action != "self_review" {
		t.Fatalf("actions = %s, %s", events[0].Action, events[1].Action)
	}
	for _, e := range events {
		if e.ID == "" || e.Agent != "GoogleReporter" || e.Timestamp.IsZero() {
			t.Fatalf("event incomplete: %+v", e)
		}
	}
}

func TestReporterRejectsForeignTasks(t *testing.T) {
	r := newTestReporter(staticClient(""), nil)
	if _, err := r.Execute(context.Background(), ReviewTask(&article.Article{})); err == nil {
		t.Fatal("expected unsupported task error")
	}
}
