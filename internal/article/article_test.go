package article

import (
	"strings"
	"testing"
	"time"
)

func TestNewIDDerivation(t *testing.T) {
	now := time.Date(2025, 12, 2, 8, 30, 0, 0, time.UTC)
	id := NewID(CategoryGoogle, "gemini-3-release", now)
	if id != "google-gemini-3-release-202512" {
		t.Fatalf("id = %q", id)
	}
	if got := NewID(CategoryClaude, "  ", now); got != "claude-article-202512" {
		t.Fatalf("blank slug id = %q", got)
	}
}

func TestNewIDCollidesWithinMonth(t *testing.T) {
	// Same slug in the same month yields the same id. This is a known,
	// documented gap in the derivation scheme, not something callers may
	// rely on being unique.
	now := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)
	if NewID(CategoryGrok, "launch", now) != NewID(CategoryGrok, "launch", later) {
		t.Fatal("expected identical ids within one month")
	}
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusDraft, StatusSubmitted, true},
		{StatusDraft, StatusUnderReview, true},
		{StatusSubmitted, StatusUnderReview, true},
		{StatusUnderReview, StatusApproved, true},
		{StatusUnderReview, StatusRevisionRequired, true},
		{StatusUnderReview, StatusRejected, true},
		{StatusApproved, StatusPublished, true},
		{StatusPublished, StatusDraft, false},
		{StatusRejected, StatusUnderReview, false},
		{StatusApproved, StatusDraft, false},
		{StatusDraft, StatusPublished, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.ok {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestSetStatusRejectsIllegalEdge(t *testing.T) {
	a := Article{ID: "google-x-202512", Status: StatusDraft}
	now := time.Date(2025, 12, 2, 0, 0, 0, 0, time.UTC)
	if err := a.SetStatus(StatusPublished, now); err == nil {
		t.Fatal("expected error for draft -> published")
	}
	if err := a.SetStatus(StatusSubmitted, now); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if a.Status != StatusSubmitted || !a.UpdatedAt.Equal(now) {
		t.Fatalf("article not updated: %+v", a)
	}
}

func TestMetadataValidate(t *testing.T) {
	valid := Metadata{Title: "t", Description: "d", Tags: []string{"ai"}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	for name, meta := range map[string]Metadata{
		"no title":       {Description: "d", Tags: []string{"ai"}},
		"no description": {Title: "t", Tags: []string{"ai"}},
		"no tags":        {Title: "t", Description: "d"},
	} {
		if err := meta.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestLengthCountsRunes(t *testing.T) {
	a := Article{Content: strings.Repeat("字", 800)}
	if a.Length() != 800 {
		t.Fatalf("Length = %d, want 800", a.Length())
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	a := Article{
		ID: "claude-sonnet-eval-202512",
		Metadata: Metadata{
			Title:       "Claude 新版本評測",
			Description: "A deep look at the latest release",
			Date:        "2025-12-02",
			Category:    CategoryClaude,
			Image:       "/images/claude-sonnet-eval-202512.jpg",
			ReadingTime: "5 分鐘閱讀",
			Author:      "AI News 編輯部",
			Tags:        []string{"Claude", "benchmark"},
			Source:      "https://www.anthropic.com/news",
		},
		Content: "# Heading\n\nBody text with **markdown**.\n",
	}
	doc, err := RenderDocument(a)
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	meta, body, err := ParseDocument(doc)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if meta.Title != a.Metadata.Title ||
		meta.Description != a.Metadata.Description ||
		meta.Date != a.Metadata.Date ||
		meta.Category != a.Metadata.Category ||
		meta.Image != a.Metadata.Image ||
		meta.ReadingTime != a.Metadata.ReadingTime ||
		meta.Author != a.Metadata.Author ||
		meta.Source != a.Metadata.Source {
		t.Fatalf("metadata mismatch: %+v", meta)
	}
	if len(meta.Tags) != 2 || meta.Tags[0] != "Claude" || meta.Tags[1] != "benchmark" {
		t.Fatalf("tags mismatch: %v", meta.Tags)
	}
	if body != a.Content {
		t.Fatalf("body mismatch: %q", body)
	}
}

func TestParseDocumentErrors(t *testing.T) {
	if _, _, err := ParseDocument(nil); err != ErrMissingFrontMatter {
		t.Fatalf("nil doc: %v", err)
	}
	if _, _, err := ParseDocument([]byte("no fences here")); err != ErrMissingFrontMatter {
		t.Fatalf("missing fence: %v", err)
	}
	if _, _, err := ParseDocument([]byte("---\ntitle: x")); err != ErrMalformedFrontMatter {
		t.Fatalf("unterminated fence: %v", err)
	}
}
