package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/newsroom/internal/article"
	"github.com/yourusername/newsroom/internal/generative"
)

const (
	// Content length bounds, measured in characters, a draft must satisfy
	// during self-review before it may be submitted.
	minDraftLength = 800
	maxDraftLength = 1500

	defaultAuthor      = "AI News 編輯部"
	defaultReadingTime = "5 分鐘閱讀"
)

// Reporter covers a single category: it discovers leads from its source
// list and turns leads into draft articles.
type Reporter struct {
	name     string
	category article.Category
	sources  []string
	gen      generative.Client
	rec      *Recorder
	now      func() time.Time
}

var _ Agent = (*Reporter)(nil)

// ReporterOption customizes a Reporter.
type ReporterOption func(*Reporter)

// WithReporterClock overrides the reporter clock (tests).
func WithReporterClock(clock func() time.Time) ReporterOption {
	return func(r *Reporter) {
		if clock != nil {
			r.now = clock
		}
	}
}

// NewReporter builds a reporter for one category with its source list.
func NewReporter(name string, category article.Category, sources []string, gen generative.Client, sink Sink, opts ...ReporterOption) *Reporter {
	r := &Reporter{
		name:     name,
		category: category,
		sources:  append([]string{}, sources...),
		gen:      gen,
		rec:      NewRecorder(name, sink),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the agent name.
func (r *Reporter) Name() string { return r.name }

// Category returns the beat this reporter covers.
func (r *Reporter) Category() article.Category { return r.category }

// Execute dispatches discover and write tasks.
func (r *Reporter) Execute(ctx context.Context, task Task) (Outcome, error) {
	switch task.Kind {
	case TaskDiscover:
		leads, err := r.Discover(ctx, task.TimeRange)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Leads: leads}, nil
	case TaskWrite:
		a, err := r.Write(ctx, task.Lead)
		if err != nil {
			return Outcome{}, err
		}
		sr := r.SelfReview(a)
		return Outcome{Article: a, SelfReview: &sr, ReadyForReview: sr.Passed}, nil
	default:
		return Outcome{}, unsupportedTask(r.name, task.Kind)
	}
}

// Discover asks the backend for newsworthy leads within the window. An
// empty result is legitimate; a malformed payload degrades to no leads
// rather than failing the cycle.
func (r *Reporter) Discover(ctx context.Context, tr TimeRange) ([]Lead, error) {
	r.rec.Action("discover_news", map[string]any{
		"category":   string(r.category),
		"time_range": fmt.Sprintf("%s..%s", tr.Start, tr.End),
	})
	resp, err := r.gen.Generate(ctx, generative.Request{
		Prompt:      r.discoveryPrompt(tr),
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("agent: %s discover: %w", r.name, err)
	}
	var payload struct {
		Discoveries []Lead `json:"discoveries"`
	}
	if err := generative.DecodeFencedJSON(resp.Text, &payload); err != nil {
		r.rec.Action("discover_unparseable", map[string]any{"category": string(r.category)})
		return nil, nil
	}
	for i := range payload.Discoveries {
		if payload.Discoveries[i].Category == "" {
			payload.Discoveries[i].Category = string(r.category)
		}
	}
	return payload.Discoveries, nil
}

// Write drafts an article from a lead. It always produces a draft, even an
// incomplete one; self-review is responsible for flagging emptiness, not
// for blocking creation.
func (r *Reporter) Write(ctx context.Context, lead Lead) (*article.Article, error) {
	r.rec.Action("write_article", map[string]any{
		"topic":    lead.Title,
		"category": string(r.category),
	})
	resp, err := r.gen.Generate(ctx, generative.Request{
		Prompt:      r.writingPrompt(lead),
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("agent: %s write: %w", r.name, err)
	}

	var payload struct {
		Content  string `json:"content"`
		Metadata struct {
			Title       string   `json:"title"`
			Description string   `json:"description"`
			ReadingTime string   `json:"reading_time"`
			Tags        []string `json:"tags"`
		} `json:"metadata"`
	}
	if err := generative.DecodeFencedJSON(resp.Text, &payload); err != nil {
		// Unstructured answer: keep the raw text as content so nothing
		// already generated is lost.
		payload.Content = resp.Text
	}

	now := r.now()
	id := article.NewID(r.category, lead.Slug, now)
	readingTime := payload.Metadata.ReadingTime
	if readingTime == "" {
		readingTime = defaultReadingTime
	}
	a := &article.Article{
		ID: id,
		Metadata: article.Metadata{
			Title:       payload.Metadata.Title,
			Description: payload.Metadata.Description,
			Date:        now.UTC().Format("2006-01-02"),
			Category:    r.category,
			Image:       fmt.Sprintf("/images/%s.jpg", id),
			ReadingTime: readingTime,
			Author:      defaultAuthor,
			Tags:        payload.Metadata.Tags,
			Source:      lead.Source,
		},
		Content:   payload.Content,
		Status:    article.StatusDraft,
		Agent:     r.name,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
		Version:   1,
	}
	return a, nil
}

// SelfReview applies the fixed deterministic checks: content length within
// bounds and complete frontmatter essentials.
func (r *Reporter) SelfReview(a *article.Article) SelfReview {
	var issues []string
	length := a.Length()
	if length < minDraftLength {
		issues = append(issues, fmt.Sprintf("content too short: %d < %d", length, minDraftLength))
	} else if length > maxDraftLength {
		issues = append(issues, fmt.Sprintf("content too long: %d > %d", length, maxDraftLength))
	}
	if strings.TrimSpace(a.Metadata.Title) == "" {
		issues = append(issues, "missing title")
	}
	if strings.TrimSpace(a.Metadata.Description) == "" {
		issues = append(issues, "missing description")
	}
	if len(a.Metadata.Tags) == 0 {
		issues = append(issues, "missing tags")
	}
	result := SelfReview{Passed: len(issues) == 0, Issues: issues}
	r.rec.Action("self_review", map[string]any{
		"article_id": a.ID,
		"passed":     result.Passed,
		"issues":     issues,
	})
	return result
}

func (r *Reporter) discoveryPrompt(tr TimeRange) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the %s beat reporter for an AI news site.\n", r.category)
	fmt.Fprintf(&b, "Survey these sources for news published between %s and %s:\n", tr.Start, tr.End)
	for _, src := range r.sources {
		fmt.Fprintf(&b, "- %s\n", src)
	}
	b.WriteString("\nReturn JSON: {\"discoveries\": [{\"title\", \"slug\", \"source\", \"summary\"}]}.\n")
	b.WriteString("Return an empty list when nothing newsworthy happened.")
	return b.String()
}

func (r *Reporter) writingPrompt(lead Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a technical news article about %s.\n\n", r.category)
	fmt.Fprintf(&b, "Title: %s\nSource: %s\nSummary: %s\n\n", lead.Title, lead.Source, lead.Summary)
	fmt.Fprintf(&b, "Target length: %d-%d characters of markdown body.\n\n", minDraftLength, maxDraftLength)
	b.WriteString("Return JSON:\n```json\n{\n")
	b.WriteString("  \"content\": \"markdown body\",\n")
	b.WriteString("  \"metadata\": {\"title\": \"...\", \"description\": \"...\", \"reading_time\": \"...\", \"tags\": [\"...\"]}\n")
	b.WriteString("}\n```")
	return b.String()
}
