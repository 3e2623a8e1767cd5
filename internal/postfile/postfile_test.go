package postfile

import (
	"strings"
	"testing"
	"time"

	"github.com/PlebOne/blogster/internal/models"
)

func samplePost(t *testing.T) *models.Post {
	t.Helper()
	p := models.NewPost()
	p.Title = "Thinking in Relays"
	p.Content = "# Thinking in Relays\n\nBody text here.\n"
	p.Summary = "Notes on relay selection"
	p.Tags = []string{"nostr", "golang"}
	p.ImageURL = "https://blossom.band/abc.png"
	return p
}

func TestMarshalFormat(t *testing.T) {
	p := samplePost(t)
	out := string(Marshal(p))

	if !strings.HasPrefix(out, "---\n") {
		t.Fatalf("missing opening delimiter: %q", out[:20])
	}
	for _, want := range []string{
		`title: "Thinking in Relays"` + "\n",
		`id: "` + p.ID.String() + `"` + "\n",
		`status: "Draft"` + "\n",
		`summary: "Notes on relay selection"` + "\n",
		"tags:\n  - \"nostr\"\n  - \"golang\"\n",
		`image: "https://blossom.band/abc.png"` + "\n",
		"---\n\n# Thinking in Relays",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\nfull:\n%s", want, out)
		}
	}
	if strings.Contains(out, "nostr_event_id") {
		t.Error("empty event id should be omitted")
	}
	if strings.Contains(out, "published_relays") {
		t.Error("empty relay list should be omitted")
	}
}

func TestRoundTrip(t *testing.T) {
	p := samplePost(t)
	p.SetPublished("deadbeef", []string{"wss://relay.damus.io", "wss://nos.lol"})

	got, err := Unmarshal(Marshal(p), "thinking.md")
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("ID = %s, want %s", got.ID, p.ID)
	}
	if got.Title != p.Title {
		t.Errorf("Title = %q, want %q", got.Title, p.Title)
	}
	if got.Content != p.Content {
		t.Errorf("Content = %q, want %q", got.Content, p.Content)
	}
	if got.Status != models.StatusPublished {
		t.Errorf("Status = %q, want %q", got.Status, models.StatusPublished)
	}
	if got.NostrEventID != "deadbeef" {
		t.Errorf("NostrEventID = %q", got.NostrEventID)
	}
	if len(got.PublishedRelays) != 2 || got.PublishedRelays[0] != "wss://relay.damus.io" {
		t.Errorf("PublishedRelays = %v", got.PublishedRelays)
	}
	if len(got.Tags) != 2 || got.Tags[1] != "golang" {
		t.Errorf("Tags = %v", got.Tags)
	}
	if !got.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, p.CreatedAt)
	}
	if got.FilePath != "thinking.md" {
		t.Errorf("FilePath = %q", got.FilePath)
	}
}

func TestUnmarshalBodyOnly(t *testing.T) {
	body := "# Inferred Title\n\nJust some markdown.\n"
	p, err := Unmarshal([]byte(body), "plain.md")
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p.Title != "Inferred Title" {
		t.Errorf("Title = %q, want inferred H1", p.Title)
	}
	if p.Content != body {
		t.Errorf("Content = %q", p.Content)
	}
	if p.Status != models.StatusDraft {
		t.Errorf("Status = %q, want Draft", p.Status)
	}
	if p.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("expected a generated UUID")
	}
}

func TestUnmarshalNoHeading(t *testing.T) {
	p, err := Unmarshal([]byte("no heading here\n"), "")
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p.Title != "" {
		t.Errorf("Title = %q, want empty", p.Title)
	}
}

func TestUnmarshalMalformedYAMLFallsBack(t *testing.T) {
	raw := "---\ntitle: [unclosed\n---\n\n# Rescue Heading\n\nbody\n"
	p, err := Unmarshal([]byte(raw), "")
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p.Title != "Rescue Heading" {
		t.Errorf("Title = %q, want title inferred from body", p.Title)
	}
	if !strings.Contains(p.Content, "---") {
		t.Error("malformed frontmatter should be kept as body content")
	}
}

func TestUnmarshalUnclosedFrontmatter(t *testing.T) {
	raw := "---\ntitle: \"open\"\nno closing delimiter"
	p, err := Unmarshal([]byte(raw), "")
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p.Content != raw {
		t.Errorf("Content = %q, want raw input preserved", p.Content)
	}
}

func TestUnmarshalBadIDAndTimestampsKeepDefaults(t *testing.T) {
	raw := "---\ntitle: \"T\"\nid: \"not-a-uuid\"\ncreated_at: \"yesterday\"\n---\n\nbody\n"
	p, err := Unmarshal([]byte(raw), "")
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("bad id should be replaced with a fresh UUID, not zero")
	}
	if p.CreatedAt.IsZero() {
		t.Error("bad timestamp should keep the generated default")
	}
	if p.Title != "T" {
		t.Errorf("Title = %q", p.Title)
	}
}

func TestTimestampsRFC3339(t *testing.T) {
	p := samplePost(t)
	out := string(Marshal(p))
	want := `created_at: "` + p.CreatedAt.Format(time.RFC3339) + `"`
	if !strings.Contains(out, want) {
		t.Errorf("output missing %q", want)
	}
}
