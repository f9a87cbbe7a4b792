package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourusername/newsroom/internal/article"
	"github.com/yourusername/newsroom/internal/generative"
	"github.com/yourusername/newsroom/internal/review"
)

// Tool names the deep-review schema exposes to the backend. Any subset may
// come back; a missing tool means no issue was raised there.
const (
	toolValidateFrontmatter = "validate_frontmatter"
	toolCheckStructure      = "check_content_structure"
	toolAssessQuality       = "assess_quality"
	toolVerifyFacts         = "verify_facts"
	toolMakeDecision        = "make_decision"
)

// minReviewLength is the content floor for the deterministic initial
// check. Intentionally looser than the reporter self-review band: the
// editor rejects padding-free shorts but does not police the upper bound.
const minReviewLength = 800

// Editor is the editor-in-chief: it reviews submitted articles in four
// ordered, short-circuiting stages and renders feedback for the author.
type Editor struct {
	name       string
	gen        generative.Client
	rec        *Recorder
	guidelines string
	thresholds review.Thresholds
}

var _ Agent = (*Editor)(nil)

// EditorOption customizes an Editor.
type EditorOption func(*Editor)

// WithGuidelines sets the editorial guidelines embedded in review prompts.
func WithGuidelines(guidelines string) EditorOption {
	return func(e *Editor) {
		e.guidelines = guidelines
	}
}

// WithThresholds overrides the decision gate thresholds.
func WithThresholds(t review.Thresholds) EditorOption {
	return func(e *Editor) {
		e.thresholds = t
	}
}

// NewEditor builds the editor-in-chief agent.
func NewEditor(gen generative.Client, sink Sink, opts ...EditorOption) *Editor {
	e := &Editor{
		name:       "EditorInChief",
		gen:        gen,
		rec:        NewRecorder("EditorInChief", sink),
		thresholds: review.DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the agent name.
func (e *Editor) Name() string { return e.name }

// Execute runs a review task and bundles the result with rendered feedback.
func (e *Editor) Execute(ctx context.Context, task Task) (Outcome, error) {
	if task.Kind != TaskReview {
		return Outcome{}, unsupportedTask(e.name, task.Kind)
	}
	if task.Article == nil {
		return Outcome{}, fmt.Errorf("agent: %s review task missing article", e.name)
	}
	result, err := e.ReviewArticle(ctx, task.Article)
	if err != nil {
		return Outcome{}, err
	}
	e.rec.Action("review_completed", map[string]any{
		"article_id":    task.Article.ID,
		"decision":      string(result.Decision),
		"quality_score": result.QualityScore,
	})
	return Outcome{Review: &result, Feedback: e.ProvideFeedback(result)}, nil
}

// ReviewArticle runs the review stages in order. The initial check is
// deterministic and short-circuits to rejection; the deep review and fact
// check delegate to the backend; the final decision is recomputed locally
// from the score and issue count regardless of what the backend proposed.
func (e *Editor) ReviewArticle(ctx context.Context, a *article.Article) (review.Result, error) {
	e.rec.Action("review_article", map[string]any{
		"article_id": a.ID,
		"author":     a.Agent,
	})

	// Stage 1: initial check, no backend call.
	if issues := e.initialCheck(a); len(issues) > 0 {
		return review.Result{
			Decision:     review.DecisionRejected,
			QualityScore: 0.0,
			Issues:       issues,
		}, nil
	}

	// Stage 2+3: deep review and fact check via structured tool outputs.
	resp, err := e.gen.Generate(ctx, generative.Request{
		Prompt:      e.reviewPrompt(a),
		Tools:       reviewTools(),
		Temperature: 0.3,
	})
	if err != nil {
		return review.Result{}, fmt.Errorf("agent: %s review %s: %w", e.name, a.ID, err)
	}

	result, err := e.foldToolOutputs(resp)
	if err != nil {
		return review.Result{}, err
	}

	// Stage 4: the local gate is authoritative over the backend's own
	// make_decision verdict.
	result.Decision = review.Decide(result.QualityScore, len(result.Issues), e.thresholds)
	return result, nil
}

// ProvideFeedback renders the review as a report for the author.
func (e *Editor) ProvideFeedback(r review.Result) string {
	return review.RenderFeedback(r)
}

func (e *Editor) initialCheck(a *article.Article) []review.Issue {
	var issues []review.Issue
	if strings.TrimSpace(a.Metadata.Title) == "" {
		issues = append(issues, review.Issue{
			Severity: review.SeverityHigh,
			Category: "frontmatter",
			Detail:   "missing title",
		})
	}
	if strings.TrimSpace(a.Metadata.Description) == "" {
		issues = append(issues, review.Issue{
			Severity: review.SeverityHigh,
			Category: "frontmatter",
			Detail:   "missing description",
		})
	}
	if length := a.Length(); length < minReviewLength {
		issues = append(issues, review.Issue{
			Severity: review.SeverityHigh,
			Category: "content_length",
			Detail:   fmt.Sprintf("content too short: %d < %d", length, minReviewLength),
		})
	}
	return issues
}

func (e *Editor) foldToolOutputs(resp generative.Response) (review.Result, error) {
	result := review.Result{}

	var frontmatter struct {
		Valid  bool     `json:"valid"`
		Issues []string `json:"issues"`
	}
	if ok, err := resp.Tool(toolValidateFrontmatter, &frontmatter); err != nil {
		return result, err
	} else if ok && !frontmatter.Valid {
		for _, issue := range frontmatter.Issues {
			result.Issues = append(result.Issues, review.Issue{
				Severity: review.SeverityMedium,
				Category: "frontmatter",
				Detail:   issue,
			})
		}
	}

	var structure struct {
		Complete        bool     `json:"complete"`
		MissingSections []string `json:"missing_sections"`
	}
	if ok, err := resp.Tool(toolCheckStructure, &structure); err != nil {
		return result, err
	} else if ok && !structure.Complete {
		for _, section := range structure.MissingSections {
			result.Issues = append(result.Issues, review.Issue{
				Severity: review.SeverityMedium,
				Category: "structure",
				Detail:   fmt.Sprintf("missing section: %s", section),
			})
		}
	}

	var quality struct {
		Score     float64  `json:"score"`
		Strengths []string `json:"strengths"`
	}
	if _, err := resp.Tool(toolAssessQuality, &quality); err != nil {
		return result, err
	}
	result.QualityScore = quality.Score
	result.Strengths = quality.Strengths

	var facts struct {
		Accurate bool `json:"accurate"`
		Issues   []struct {
			Location string `json:"location"`
			Issue    string `json:"issue"`
			Severity string `json:"severity"`
		} `json:"issues"`
	}
	if ok, err := resp.Tool(toolVerifyFacts, &facts); err != nil {
		return result, err
	} else if ok && !facts.Accurate {
		for _, issue := range facts.Issues {
			severity := review.Severity(issue.Severity)
			if severity == "" {
				severity = review.SeverityMedium
			}
			detail := issue.Issue
			if issue.Location != "" {
				detail = fmt.Sprintf("%s (%s)", issue.Issue, issue.Location)
			}
			result.Issues = append(result.Issues, review.Issue{
				Severity: severity,
				Category: "accuracy",
				Detail:   detail,
			})
		}
	}

	var decision struct {
		Decision        string   `json:"decision"`
		Reason          string   `json:"reason"`
		RequiredChanges []string `json:"required_changes"`
	}
	if _, err := resp.Tool(toolMakeDecision, &decision); err != nil {
		return result, err
	}
	// Only the required changes survive; the proposed decision itself is
	// recomputed by the caller.
	result.RequiredChanges = decision.RequiredChanges

	return result, nil
}

func (e *Editor) reviewPrompt(a *article.Article) string {
	var b strings.Builder
	b.WriteString("Review the following article submission against the editorial guidelines.\n\n")
	b.WriteString("### Metadata\n")
	fmt.Fprintf(&b, "Title: %s\nDescription: %s\nCategory: %s\nTags: %s\n\n",
		a.Metadata.Title, a.Metadata.Description, a.Metadata.Category,
		strings.Join(a.Metadata.Tags, ", "))
	b.WriteString("### Content\n```markdown\n")
	b.WriteString(a.Content)
	b.WriteString("\n```\n\n")
	if e.guidelines != "" {
		b.WriteString("### Guidelines\n")
		b.WriteString(e.guidelines)
		b.WriteString("\n\n")
	}
	b.WriteString("Record your findings with the provided tools.")
	return b.String()
}

func reviewTools() []generative.Tool {
	stringList := map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	return []generative.Tool{
		{
			Name:        toolValidateFrontmatter,
			Description: "Validate the article frontmatter against the schema",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"valid":  map[string]any{"type": "boolean"},
					"issues": stringList,
				},
				"required": []string{"valid", "issues"},
			},
		},
		{
			Name:        toolCheckStructure,
			Description: "Check the article structure for completeness",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"complete":         map[string]any{"type": "boolean"},
					"missing_sections": stringList,
				},
				"required": []string{"complete", "missing_sections"},
			},
		},
		{
			Name:        toolAssessQuality,
			Description: "Assess overall article quality",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"score":      map[string]any{"type": "number", "minimum": 0, "maximum": 10},
					"strengths":  stringList,
					"weaknesses": stringList,
				},
				"required": []string{"score", "strengths", "weaknesses"},
			},
		},
		{
			Name:        toolVerifyFacts,
			Description: "Verify factual accuracy of claims and figures",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"accurate": map[string]any{"type": "boolean"},
					"issues": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"location": map[string]any{"type": "string"},
								"issue":    map[string]any{"type": "string"},
								"severity": map[string]any{"type": "string"},
							},
						},
					},
				},
				"required": []string{"accurate", "issues"},
			},
		},
		{
			Name:        toolMakeDecision,
			Description: "Propose the final review decision",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"decision": map[string]any{
						"type": "string",
						"enum": []string{"approved", "revision_required", "rejected"},
					},
					"reason":           map[string]any{"type": "string"},
					"required_changes": stringList,
				},
				"required": []string{"decision", "reason"},
			},
		},
	}
}
