// Package agent implements the role-specific agents of the newsroom:
// reporters covering one category each, a research expert producing model
// evaluations, and the editor-in-chief reviewing submissions. Agents wrap
// the generative backend with role-specific pre- and post-processing and
// emit an audit event for every externally visible action.
package agent

import (
	"context"
	"fmt"

	"github.com/yourusername/newsroom/internal/article"
	"github.com/yourusername/newsroom/internal/review"
)

// TaskKind discriminates the task variants an agent can execute.
type TaskKind string

const (
	TaskDiscover TaskKind = "discover"
	TaskWrite    TaskKind = "write"
	TaskEvaluate TaskKind = "evaluate"
	TaskCompare  TaskKind = "compare"
	TaskReview   TaskKind = "review"
)

// TimeRange bounds a discovery window.
type TimeRange struct {
	Start string
	End   string
}

// Lead is a candidate news item surfaced by discovery, not yet an article.
type Lead struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	Category string `json:"category,omitempty"`
}

// Task is a tagged variant: exactly the fields for its kind are set.
type Task struct {
	Kind      TaskKind
	TimeRange TimeRange
	Lead      Lead
	Models    []string
	Article   *article.Article
}

// DiscoverTask builds a discovery task for the given window.
func DiscoverTask(tr TimeRange) Task {
	return Task{Kind: TaskDiscover, TimeRange: tr}
}

// WriteTask builds a writing task for one lead.
func WriteTask(lead Lead) Task {
	return Task{Kind: TaskWrite, Lead: lead}
}

// EvaluateTask builds a single-model evaluation task.
func EvaluateTask(model string) Task {
	return Task{Kind: TaskEvaluate, Models: []string{model}}
}

// CompareTask builds a multi-model comparison task.
func CompareTask(models []string) Task {
	return Task{Kind: TaskCompare, Models: append([]string{}, models...)}
}

// ReviewTask builds an editorial review task.
func ReviewTask(a *article.Article) Task {
	return Task{Kind: TaskReview, Article: a}
}

// SelfReview is the deterministic pre-submission check reporters run on
// their own drafts.
type SelfReview struct {
	Passed bool
	Issues []string
}

// Outcome is the result of executing a task. Fields are populated per the
// task kind that produced it.
type Outcome struct {
	Leads          []Lead
	Article        *article.Article
	SelfReview     *SelfReview
	ReadyForReview bool
	Review         *review.Result
	Feedback       string
}

// Agent is implemented by every newsroom role.
type Agent interface {
	Name() string
	Execute(ctx context.Context, task Task) (Outcome, error)
}

func unsupportedTask(agent string, kind TaskKind) error {
	return fmt.Errorf("agent: %s does not handle %s tasks", agent, kind)
}
