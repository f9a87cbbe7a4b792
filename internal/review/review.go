// Package review defines the editorial review outcome model and the
// deterministic decision gate applied to every reviewed article.
package review

import (
	"fmt"
	"strings"
)

// Decision enumerates review outcomes. A completed review always carries
// one of these; there is no pending state.
type Decision string

const (
	DecisionApproved         Decision = "approved"
	DecisionRevisionRequired Decision = "revision_required"
	DecisionRejected         Decision = "rejected"
)

// Severity grades how serious an issue is.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Issue is a single problem found during review.
type Issue struct {
	Severity Severity
	Category string
	Detail   string
}

// Result captures a completed review.
type Result struct {
	Decision        Decision
	QualityScore    float64
	Issues          []Issue
	Strengths       []string
	RequiredChanges []string
	FinalContent    string
}

// Thresholds configures the decision gate. The zero value is not usable;
// use DefaultThresholds or derive one from configuration.
type Thresholds struct {
	// Approve is the minimum quality score for approval.
	Approve float64
	// Revise is the minimum quality score for a revision request rather
	// than outright rejection.
	Revise float64
}

// DefaultThresholds matches the editorial policy: approve at 7.0 with a
// clean issue list, request revision down to 6.0, reject below.
func DefaultThresholds() Thresholds {
	return Thresholds{Approve: 7.0, Revise: 6.0}
}

// Decide applies the local decision gate over the quality score and the
// accumulated issue count. This gate is authoritative: whatever decision a
// generative reviewer proposed is recomputed here, never trusted as-is.
func Decide(score float64, issueCount int, t Thresholds) Decision {
	switch {
	case score >= t.Approve && issueCount == 0:
		return DecisionApproved
	case score >= t.Revise:
		return DecisionRevisionRequired
	default:
		return DecisionRejected
	}
}

// RenderFeedback formats a review result as a human-readable markdown
// report. Pure formatting, no side effects.
func RenderFeedback(r Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Review result: %s\n\n", r.Decision)
	fmt.Fprintf(&b, "Quality score: %.1f/10\n\n", r.QualityScore)
	if len(r.Issues) > 0 {
		b.WriteString("### Issues to address:\n\n")
		for _, issue := range r.Issues {
			fmt.Fprintf(&b, "- [%s] %s\n", issue.Severity, issue.Detail)
		}
	}
	if len(r.RequiredChanges) > 0 {
		b.WriteString("\n### Required changes:\n\n")
		for _, change := range r.RequiredChanges {
			fmt.Fprintf(&b, "- %s\n", change)
		}
	}
	return b.String()
}
