// Package models defines the domain types for Blogster.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PostStatus tracks where a post is in its publication lifecycle.
type PostStatus string

const (
	StatusDraft     PostStatus = "Draft"
	StatusPublished PostStatus = "Published"
	StatusFailed    PostStatus = "Failed"
)

// ParseStatus maps a status string to a PostStatus. Matching is
// case-insensitive so hand-edited frontmatter and CLI filters both
// work; unknown values fall back to Draft.
func ParseStatus(s string) PostStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "published":
		return StatusPublished
	case "failed":
		return StatusFailed
	default:
		return StatusDraft
	}
}

// Post is a single blog post backed by a Markdown file.
type Post struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Content         string     `json:"content"` // Markdown body
	Summary         string     `json:"summary,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	ImageURL        string     `json:"image_url,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Status          PostStatus `json:"status"`
	NostrEventID    string     `json:"nostr_event_id,omitempty"`
	PublishedRelays []string   `json:"published_relays,omitempty"`
	FilePath        string     `json:"path,omitempty"` // backing .md file, empty for unsaved posts
}

// NewPost creates an empty draft with a fresh identity.
func NewPost() *Post {
	now := time.Now().UTC().Truncate(time.Second)
	return &Post{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
		Status:    StatusDraft,
	}
}

func (p *Post) touch() {
	p.UpdatedAt = time.Now().UTC().Truncate(time.Second)
}

// SetTitle replaces the title and bumps UpdatedAt.
func (p *Post) SetTitle(title string) {
	p.Title = title
	p.touch()
}

// SetContent replaces the Markdown body and bumps UpdatedAt.
func (p *Post) SetContent(content string) {
	p.Content = content
	p.touch()
}

// SetSummary replaces the summary and bumps UpdatedAt.
func (p *Post) SetSummary(summary string) {
	p.Summary = summary
	p.touch()
}

// AddTag appends a tag, keeping the list ordered and unique.
func (p *Post) AddTag(tag string) {
	for _, t := range p.Tags {
		if t == tag {
			return
		}
	}
	p.Tags = append(p.Tags, tag)
	p.touch()
}

// RemoveTag deletes a tag if present.
func (p *Post) RemoveTag(tag string) {
	out := p.Tags[:0]
	for _, t := range p.Tags {
		if t != tag {
			out = append(out, t)
		}
	}
	p.Tags = out
	p.touch()
}

// SetImage records the featured image URL.
func (p *Post) SetImage(url string) {
	p.ImageURL = url
	p.touch()
}

// SetPublished marks the post published, recording the event identity
// and the relays that accepted it.
func (p *Post) SetPublished(eventID string, relays []string) {
	p.Status = StatusPublished
	p.NostrEventID = eventID
	p.PublishedRelays = relays
	p.touch()
}

// SetFailed marks the last publish attempt as failed.
func (p *Post) SetFailed() {
	p.Status = StatusFailed
	p.touch()
}

// IsReadyToPublish reports whether title and body are both non-blank.
func (p *Post) IsReadyToPublish() bool {
	return strings.TrimSpace(p.Title) != "" && strings.TrimSpace(p.Content) != ""
}

// WordCount returns the number of whitespace-separated words in the body.
func (p *Post) WordCount() int {
	return len(strings.Fields(p.Content))
}

// ReadingTime estimates reading time in minutes at 200 wpm, minimum 1.
func (p *Post) ReadingTime() int {
	minutes := p.WordCount() / 200
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Filename returns a stable file name for the post: a slug of the title
// plus the UUID, so renames never collide and re-saves overwrite.
func (p *Post) Filename() string {
	var b strings.Builder
	for _, r := range strings.ToLower(p.Title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		default:
			b.WriteByte('_')
		}
	}
	slug := b.String()
	if slug == "" {
		return "post_" + p.ID.String() + ".md"
	}
	return slug + "_" + p.ID.String() + ".md"
}
