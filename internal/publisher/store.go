// Package publisher persists approved articles as markdown documents in
// the website content tree.
package publisher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yourusername/newsroom/internal/article"
)

// postsDir is the content tree location the site build reads from.
const postsDir = "src/content/posts"

// ContentStore writes article documents under a site root directory.
type ContentStore struct {
	root string
}

// NewContentStore builds a store rooted at the site checkout.
func NewContentStore(root string) (*ContentStore, error) {
	if root == "" {
		return nil, fmt.Errorf("publisher: content root is required")
	}
	return &ContentStore{root: root}, nil
}

// Dir returns the directory posts are written into.
func (s *ContentStore) Dir() string {
	return filepath.Join(s.root, filepath.FromSlash(postsDir))
}

// Persist renders the article with its frontmatter and writes it to
// src/content/posts/<id>.md. The returned location is relative to the
// site root, slash-separated, suitable for git staging.
func (s *ContentStore) Persist(a *article.Article) (string, error) {
	if a == nil {
		return "", fmt.Errorf("publisher: nil article")
	}
	document, err := article.RenderDocument(*a)
	if err != nil {
		return "", fmt.Errorf("publisher: render %s: %w", a.ID, err)
	}
	dir := s.Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("publisher: create %s: %w", dir, err)
	}
	path := filepath.Join(dir, a.Filename())
	if err := os.WriteFile(path, document, 0o644); err != nil {
		return "", fmt.Errorf("publisher: write %s: %w", a.ID, err)
	}
	return postsDir + "/" + a.Filename(), nil
}

// Load reads one persisted article back by id.
func (s *ContentStore) Load(id string) (*article.Article, error) {
	path := filepath.Join(s.Dir(), id+".md")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("publisher: article %s not found", id)
		}
		return nil, fmt.Errorf("publisher: read %s: %w", id, err)
	}
	meta, body, err := article.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("publisher: parse %s: %w", id, err)
	}
	return &article.Article{
		ID:       id,
		Metadata: meta,
		Content:  body,
		Status:   article.StatusPublished,
	}, nil
}

// List returns the ids of every persisted article, sorted.
func (s *ContentStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("publisher: list posts: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".md"))
	}
	sort.Strings(ids)
	return ids, nil
}
