package api

import "time"

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

// UpdatePostRequest is the request body for editing a post. Nil fields
// are left untouched.
type UpdatePostRequest struct {
	Title   *string   `json:"title,omitempty"`
	Content *string   `json:"content,omitempty"`
	Summary *string   `json:"summary,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
}

// PublishRequest names the post file to publish.
type PublishRequest struct {
	Path string `json:"path"`
}

// PublishResponse reports the publish outcome.
type PublishResponse struct {
	EventID string   `json:"event_id"`
	Relays  []string `json:"relays"`
	Status  string   `json:"status"`
}

// PostListItem is a lightweight item in a list response.
type PostListItem struct {
	Path      string    `json:"path"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Tags      []string  `json:"tags"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostListResponse wraps paginated post listings.
type PostListResponse struct {
	Posts []PostListItem `json:"posts"`
	Total int            `json:"total"`
}

// SearchResult is a single search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// UploadResponse is returned after a successful media upload.
type UploadResponse struct {
	URL string `json:"url"`
}

// StatusResponse summarizes the running instance.
type StatusResponse struct {
	PublicKey     string   `json:"public_key,omitempty"`
	SignerState   string   `json:"signer_state"` // "ready", "missing", "unknown"
	ActiveRelays  []string `json:"active_relays"`
	BlossomServer string   `json:"blossom_server"`
}
