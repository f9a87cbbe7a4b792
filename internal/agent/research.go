package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/newsroom/internal/article"
	"github.com/yourusername/newsroom/internal/generative"
)

// benchmarkSuites lists the evaluation suites the research expert asks the
// backend to cover for every model under review.
var benchmarkSuites = []string{
	"MMLU", "HumanEval", "MATH", "GPQA", "BBH",
	"ARC", "HellaSwag", "WinoGrande",
}

// ResearchExpert produces model evaluation articles through a fixed
// three-stage delegation: collect benchmark data, analyze it, write the
// report. Any stage failure aborts the remaining stages.
type ResearchExpert struct {
	name string
	gen  generative.Client
	rec  *Recorder
	now  func() time.Time
}

var _ Agent = (*ResearchExpert)(nil)

// ResearchOption customizes a ResearchExpert.
type ResearchOption func(*ResearchExpert)

// WithResearchClock overrides the expert clock (tests).
func WithResearchClock(clock func() time.Time) ResearchOption {
	return func(e *ResearchExpert) {
		if clock != nil {
			e.now = clock
		}
	}
}

// NewResearchExpert builds the research expert agent.
func NewResearchExpert(gen generative.Client, sink Sink, opts ...ResearchOption) *ResearchExpert {
	e := &ResearchExpert{
		name: "ResearchExpert",
		gen:  gen,
		rec:  NewRecorder("ResearchExpert", sink),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the agent name.
func (e *ResearchExpert) Name() string { return e.name }

// Execute runs evaluate and compare tasks through the collect, analyze,
// report sequence.
func (e *ResearchExpert) Execute(ctx context.Context, task Task) (Outcome, error) {
	switch task.Kind {
	case TaskEvaluate, TaskCompare:
		if len(task.Models) == 0 {
			return Outcome{}, fmt.Errorf("agent: %s requires at least one model", e.name)
		}
		data, err := e.Collect(ctx, task.Models)
		if err != nil {
			return Outcome{}, err
		}
		analysis, err := e.Analyze(ctx, data)
		if err != nil {
			return Outcome{}, err
		}
		a, err := e.Report(ctx, task.Models, analysis)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Article: a}, nil
	default:
		return Outcome{}, unsupportedTask(e.name, task.Kind)
	}
}

// Collect gathers benchmark results for the model set.
func (e *ResearchExpert) Collect(ctx context.Context, models []string) (string, error) {
	e.rec.Action("collect_benchmark_data", map[string]any{"models": models})
	resp, err := e.gen.Generate(ctx, generative.Request{
		Prompt:      e.collectPrompt(models),
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("agent: %s collect: %w", e.name, err)
	}
	return resp.Text, nil
}

// Analyze interprets collected benchmark data.
func (e *ResearchExpert) Analyze(ctx context.Context, data string) (string, error) {
	e.rec.Action("analyze_performance", nil)
	resp, err := e.gen.Generate(ctx, generative.Request{
		Prompt:      "Analyze the following benchmark data in depth. Compare strengths, weaknesses, and notable deltas.\n\n" + data,
		Temperature: 0.5,
	})
	if err != nil {
		return "", fmt.Errorf("agent: %s analyze: %w", e.name, err)
	}
	return resp.Text, nil
}

// Report renders the analysis into an evaluation article draft.
func (e *ResearchExpert) Report(ctx context.Context, models []string, analysis string) (*article.Article, error) {
	e.rec.Action("write_evaluation_report", map[string]any{"models_count": len(models)})
	resp, err := e.gen.Generate(ctx, generative.Request{
		Prompt:      e.reportPrompt(models, analysis),
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("agent: %s report: %w", e.name, err)
	}

	var payload struct {
		Content  string `json:"content"`
		Metadata struct {
			Title       string   `json:"title"`
			Description string   `json:"description"`
			Tags        []string `json:"tags"`
		} `json:"metadata"`
	}
	if err := generative.DecodeFencedJSON(resp.Text, &payload); err != nil {
		payload.Content = resp.Text
	}

	now := e.now()
	id := article.NewID(article.CategoryModelEval, slugForModels(models), now)
	return &article.Article{
		ID: id,
		Metadata: article.Metadata{
			Title:       payload.Metadata.Title,
			Description: payload.Metadata.Description,
			Date:        now.UTC().Format("2006-01-02"),
			Category:    article.CategoryModelEval,
			Image:       fmt.Sprintf("/images/%s.jpg", id),
			ReadingTime: defaultReadingTime,
			Author:      defaultAuthor,
			Tags:        payload.Metadata.Tags,
		},
		Content:   payload.Content,
		Status:    article.StatusDraft,
		Agent:     e.name,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
		Version:   1,
	}, nil
}

func (e *ResearchExpert) collectPrompt(models []string) string {
	var b strings.Builder
	b.WriteString("Collect the latest published benchmark results for these models:\n")
	for _, m := range models {
		fmt.Fprintf(&b, "- %s\n", m)
	}
	b.WriteString("\nCover these suites where numbers exist: ")
	b.WriteString(strings.Join(benchmarkSuites, ", "))
	b.WriteString(".\nCite the source for every figure.")
	return b.String()
}

func (e *ResearchExpert) reportPrompt(models []string, analysis string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write an evaluation report article covering %s.\n\n", strings.Join(models, ", "))
	b.WriteString("Base it on this analysis:\n\n")
	b.WriteString(analysis)
	b.WriteString("\n\nReturn JSON:\n```json\n{\"content\": \"markdown body\", \"metadata\": {\"title\": \"...\", \"description\": \"...\", \"tags\": [\"...\"]}}\n```")
	return b.String()
}

func slugForModels(models []string) string {
	parts := make([]string, 0, len(models))
	for _, m := range models {
		slug := strings.ToLower(strings.TrimSpace(m))
		slug = strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
				return r
			default:
				return '-'
			}
		}, slug)
		slug = strings.Trim(slug, "-")
		if slug != "" {
			parts = append(parts, slug)
		}
	}
	if len(parts) == 0 {
		return "evaluation"
	}
	return strings.Join(parts, "-vs-")
}
