// Package article defines the content model shared by every agent:
// articles, their metadata, and the status graph an article moves
// through between drafting and publication.
package article

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Status enumerates the lifecycle states of an article.
type Status string

const (
	StatusDraft            Status = "draft"
	StatusSubmitted        Status = "submitted"
	StatusUnderReview      Status = "under_review"
	StatusRevisionRequired Status = "revision_required"
	StatusApproved         Status = "approved"
	StatusPublished        Status = "published"
	StatusRejected         Status = "rejected"
)

// transitions describes the allowed status graph. Transitions are monotone:
// there is no edge back toward draft, a revision round-trip is handled by
// creating a new draft.
var transitions = map[Status][]Status{
	StatusDraft:       {StatusSubmitted, StatusUnderReview},
	StatusSubmitted:   {StatusUnderReview},
	StatusUnderReview: {StatusApproved, StatusRevisionRequired, StatusRejected},
	StatusApproved:    {StatusPublished},
}

// CanTransition reports whether the status graph allows moving from one
// status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Category identifies the beat a reporter covers.
type Category string

const (
	CategoryGoogle    Category = "Google"
	CategoryClaude    Category = "Claude"
	CategoryChatGPT   Category = "ChatGPT"
	CategoryGrok      Category = "Grok"
	CategoryQianwen   Category = "Qianwen"
	CategoryModelEval Category = "ModelEval"
)

// Categories returns every known category in a stable order.
func Categories() []Category {
	return []Category{
		CategoryGoogle,
		CategoryClaude,
		CategoryChatGPT,
		CategoryGrok,
		CategoryQianwen,
		CategoryModelEval,
	}
}

// Metadata is the frontmatter block persisted with every article.
type Metadata struct {
	Title       string
	Description string
	Date        string
	Category    Category
	Image       string
	ReadingTime string
	Author      string
	Tags        []string
	Source      string
}

// Validate checks the fields an article needs before it may leave draft:
// a title, a description, and at least one tag.
func (m Metadata) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("article: metadata missing title")
	}
	if strings.TrimSpace(m.Description) == "" {
		return fmt.Errorf("article: metadata missing description")
	}
	if len(m.Tags) == 0 {
		return fmt.Errorf("article: metadata missing tags")
	}
	return nil
}

// ReviewNote records one editorial pass over the article.
type ReviewNote struct {
	Reviewer string
	Decision string
	Score    float64
	Note     string
	At       time.Time
}

// Article is the unit of content flowing through the newsroom queues.
type Article struct {
	ID          string
	Metadata    Metadata
	Content     string
	Status      Status
	Agent       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int
	ReviewNotes []ReviewNote
}

// SetStatus applies a status transition, enforcing the status graph.
func (a *Article) SetStatus(to Status, now time.Time) error {
	if !CanTransition(a.Status, to) {
		return fmt.Errorf("article: illegal status transition %s -> %s for %s", a.Status, to, a.ID)
	}
	a.Status = to
	a.UpdatedAt = now.UTC()
	return nil
}

// Length returns the content length in characters, the unit both the
// reporter self-review and the editor initial check measure against.
func (a Article) Length() int {
	return utf8.RuneCountInString(a.Content)
}

// Filename returns the markdown file name the article publishes under.
func (a Article) Filename() string {
	return a.ID + ".md"
}

// NewID derives the deterministic article identifier from category, topic
// slug, and year-month. Two articles sharing a slug within the same month
// collide; that ambiguity is inherited and not deduplicated here.
func NewID(category Category, slug string, now time.Time) string {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = "article"
	}
	return fmt.Sprintf("%s-%s-%s",
		strings.ToLower(string(category)),
		slug,
		now.UTC().Format("200601"),
	)
}
