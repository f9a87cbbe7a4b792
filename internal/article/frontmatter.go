package article

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingFrontMatter indicates the document did not start with a YAML fence.
	ErrMissingFrontMatter = errors.New("article: missing frontmatter")
	// ErrMalformedFrontMatter indicates the YAML block could not be parsed.
	ErrMalformedFrontMatter = errors.New("article: malformed frontmatter")
)

// frontmatter mirrors the Astro content-collection schema the site consumes.
type frontmatter struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Date        string   `yaml:"date"`
	Category    string   `yaml:"category"`
	Image       string   `yaml:"image"`
	ReadingTime string   `yaml:"readingTime"`
	Author      string   `yaml:"author"`
	Tags        []string `yaml:"tags"`
	Source      string   `yaml:"source,omitempty"`
}

// RenderDocument produces the publishable markdown document: YAML
// frontmatter between fences, a blank-line separator, then the raw body.
func RenderDocument(a Article) ([]byte, error) {
	fm := frontmatter{
		Title:       a.Metadata.Title,
		Description: a.Metadata.Description,
		Date:        a.Metadata.Date,
		Category:    string(a.Metadata.Category),
		Image:       a.Metadata.Image,
		ReadingTime: a.Metadata.ReadingTime,
		Author:      a.Metadata.Author,
		Tags:        append([]string{}, a.Metadata.Tags...),
		Source:      a.Metadata.Source,
	}
	data, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("article: encode frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(bytes.TrimRight(data, "\n"))
	buf.WriteString("\n---\n\n")
	buf.WriteString(a.Content)
	return buf.Bytes(), nil
}

// ParseDocument splits a rendered document back into metadata and body.
// RenderDocument then ParseDocument round-trips every metadata field.
func ParseDocument(content []byte) (Metadata, string, error) {
	if len(content) == 0 {
		return Metadata{}, "", ErrMissingFrontMatter
	}
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return Metadata{}, "", ErrMissingFrontMatter
	}
	rest := normalized[4:]
	parts := bytes.SplitN(rest, []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return Metadata{}, "", ErrMalformedFrontMatter
	}
	var fm frontmatter
	if err := yaml.Unmarshal(parts[0], &fm); err != nil {
		return Metadata{}, "", fmt.Errorf("article: parse frontmatter: %w", err)
	}
	body := bytes.TrimPrefix(parts[1], []byte("\n"))
	meta := Metadata{
		Title:       fm.Title,
		Description: fm.Description,
		Date:        fm.Date,
		Category:    Category(fm.Category),
		Image:       fm.Image,
		ReadingTime: fm.ReadingTime,
		Author:      fm.Author,
		Tags:        append([]string{}, fm.Tags...),
		Source:      fm.Source,
	}
	return meta, string(body), nil
}
