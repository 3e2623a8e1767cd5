// Package postfile serializes posts to Markdown files with a YAML
// frontmatter header and parses them back.
package postfile

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/PlebOne/blogster/internal/models"
)

// frontmatter mirrors the metadata block at the top of a post file.
type frontmatter struct {
	Title           string   `yaml:"title"`
	ID              string   `yaml:"id"`
	CreatedAt       string   `yaml:"created_at"`
	UpdatedAt       string   `yaml:"updated_at"`
	Status          string   `yaml:"status"`
	Summary         string   `yaml:"summary"`
	Tags            []string `yaml:"tags"`
	Image           string   `yaml:"image"`
	NostrEventID    string   `yaml:"nostr_event_id"`
	PublishedRelays []string `yaml:"published_relays"`
}

// Marshal renders a post as frontmatter followed by the raw Markdown body.
func Marshal(p *models.Post) []byte {
	var b strings.Builder

	b.WriteString("---\n")
	writeField(&b, "title", p.Title)
	writeField(&b, "id", p.ID.String())
	writeField(&b, "created_at", p.CreatedAt.Format(time.RFC3339))
	writeField(&b, "updated_at", p.UpdatedAt.Format(time.RFC3339))
	writeField(&b, "status", string(p.Status))
	if p.Summary != "" {
		writeField(&b, "summary", p.Summary)
	}
	if len(p.Tags) > 0 {
		b.WriteString("tags:\n")
		for _, t := range p.Tags {
			writeItem(&b, t)
		}
	}
	if p.ImageURL != "" {
		writeField(&b, "image", p.ImageURL)
	}
	if p.NostrEventID != "" {
		writeField(&b, "nostr_event_id", p.NostrEventID)
	}
	if len(p.PublishedRelays) > 0 {
		b.WriteString("published_relays:\n")
		for _, r := range p.PublishedRelays {
			writeItem(&b, r)
		}
	}
	b.WriteString("---\n\n")
	b.WriteString(p.Content)

	return []byte(b.String())
}

func writeField(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "%s: %q\n", key, value)
}

func writeItem(b *strings.Builder, value string) {
	fmt.Fprintf(b, "  - %q\n", value)
}

// Unmarshal parses a post file. A file without a leading --- block is
// treated as body-only, with the title inferred from the first H1 line.
// Malformed YAML likewise falls back to body-only.
func Unmarshal(data []byte, filePath string) (*models.Post, error) {
	post := models.NewPost()
	post.FilePath = filePath

	fm, body := splitFrontmatter(data)
	post.Content = body
	if fm == nil {
		post.Title = inferTitle(body)
		return post, nil
	}

	post.Title = fm.Title
	post.Summary = fm.Summary
	post.Tags = fm.Tags
	post.ImageURL = fm.Image
	post.NostrEventID = fm.NostrEventID
	post.PublishedRelays = fm.PublishedRelays
	post.Status = models.ParseStatus(fm.Status)

	if id, err := uuid.Parse(fm.ID); err == nil {
		post.ID = id
	}
	if ts, err := time.Parse(time.RFC3339, fm.CreatedAt); err == nil {
		post.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339, fm.UpdatedAt); err == nil {
		post.UpdatedAt = ts
	}

	return post, nil
}

// splitFrontmatter separates the metadata block (between leading ---
// delimiters) from the Markdown body. Returns a nil frontmatter when the
// block is absent or unparseable.
func splitFrontmatter(data []byte) (*frontmatter, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm frontmatter
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}

	return &fm, body
}

// inferTitle returns the first level-1 heading, or empty string.
func inferTitle(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
