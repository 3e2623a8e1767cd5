package nostr

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	gonostr "github.com/nbd-wtf/go-nostr"

	"github.com/PlebOne/blogster/internal/apperr"
	"github.com/PlebOne/blogster/internal/models"
)

// Event kinds used by Blogster.
const (
	// KindProfileMetadata is the standard kind-0 profile event.
	KindProfileMetadata = 0
	// KindUploadAuth is the Blossom upload authorization kind (BUD-02).
	KindUploadAuth = 24242
	// KindLongForm is parameterized-replaceable long-form content
	// (NIP-23 with a NIP-33 identifier tag).
	KindLongForm = 30023
)

// UploadAuthTTL bounds the validity of an upload authorization event.
const UploadAuthTTL = 600 * time.Second

// IdentifierPrefix namespaces the replaceable-event identifier so edits
// to one post always replace the same logical record on relays.
const IdentifierPrefix = "blogster-"

// BuildLongFormEvent turns a publish-ready post into an unsigned
// long-form content event draft. The identifier tag is deterministic
// given the post ID.
func BuildLongFormEvent(post *models.Post) (*gonostr.Event, error) {
	if !post.IsReadyToPublish() {
		return nil, apperr.ErrNotReady
	}

	tags := gonostr.Tags{
		gonostr.Tag{"title", post.Title},
	}
	if post.Summary != "" {
		tags = append(tags, gonostr.Tag{"summary", post.Summary})
	}
	for _, t := range post.Tags {
		tags = append(tags, gonostr.Tag{"t", t})
	}
	if post.ImageURL != "" {
		tags = append(tags, gonostr.Tag{"image", post.ImageURL})
	}
	tags = append(tags,
		gonostr.Tag{"published_at", strconv.FormatInt(post.CreatedAt.Unix(), 10)},
		gonostr.Tag{"d", IdentifierPrefix + post.ID.String()},
	)

	return &gonostr.Event{
		CreatedAt: gonostr.Now(),
		Kind:      KindLongForm,
		Tags:      tags,
		Content:   post.Content,
	}, nil
}

// BuildUploadAuth creates an unsigned BUD-02 upload authorization draft.
// sha256Hex must be the digest of the exact bytes that will be uploaded;
// the claim expires UploadAuthTTL after issue.
func BuildUploadAuth(sha256Hex, filename string) *gonostr.Event {
	expiration := time.Now().Add(UploadAuthTTL).Unix()
	return &gonostr.Event{
		CreatedAt: gonostr.Now(),
		Kind:      KindUploadAuth,
		Content:   "Upload " + filename,
		Tags: gonostr.Tags{
			gonostr.Tag{"t", "upload"},
			gonostr.Tag{"x", sha256Hex},
			gonostr.Tag{"expiration", strconv.FormatInt(expiration, 10)},
		},
	}
}

// profileMetadata is the kind-0 content payload.
type profileMetadata struct {
	DisplayName string `json:"display_name,omitempty"`
	About       string `json:"about,omitempty"`
	Picture     string `json:"picture,omitempty"`
	NIP05       string `json:"nip05,omitempty"`
}

// BuildProfileMetadata creates an unsigned kind-0 event carrying the
// profile fields of the credentials.
func BuildProfileMetadata(creds *models.Credentials) (*gonostr.Event, error) {
	content, err := json.Marshal(profileMetadata{
		DisplayName: creds.DisplayName,
		About:       creds.About,
		Picture:     creds.Picture,
		NIP05:       creds.NIP05,
	})
	if err != nil {
		return nil, fmt.Errorf("nostr: marshal profile metadata: %w", err)
	}
	return &gonostr.Event{
		CreatedAt: gonostr.Now(),
		Kind:      KindProfileMetadata,
		Tags:      gonostr.Tags{},
		Content:   string(content),
	}, nil
}
