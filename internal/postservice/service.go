// Package postservice coordinates post files, the index, and the
// publish/upload flows.
package postservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/PlebOne/blogster/internal/apperr"
	"github.com/PlebOne/blogster/internal/blossom"
	"github.com/PlebOne/blogster/internal/checksum"
	"github.com/PlebOne/blogster/internal/index"
	"github.com/PlebOne/blogster/internal/models"
	"github.com/PlebOne/blogster/internal/nostr"
	"github.com/PlebOne/blogster/internal/postfile"
	"github.com/PlebOne/blogster/internal/relays"
	"github.com/PlebOne/blogster/internal/storage"
)

// Service owns the post lifecycle: create, edit, publish, upload.
type Service struct {
	store     storage.Provider
	db        index.PostIndex
	signer    *nostr.Signer
	publisher *nostr.Publisher
	media     *blossom.Client
	logger    *slog.Logger

	// notify, when set, receives post change events ("created",
	// "updated", "deleted", "published") for the SSE stream.
	notify func(kind, path string)
}

// New creates a Service. publisher and media may be nil for callers that
// only read and write local posts.
func New(store storage.Provider, db index.PostIndex, signer *nostr.Signer, publisher *nostr.Publisher, media *blossom.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		db:        db,
		signer:    signer,
		publisher: publisher,
		media:     media,
		logger:    logger,
	}
}

// SetNotify registers the post change event sink.
func (s *Service) SetNotify(fn func(kind, path string)) {
	s.notify = fn
}

func (s *Service) emit(kind, path string) {
	if s.notify != nil {
		s.notify(kind, path)
	}
}

// CreatePost creates and saves a new draft.
func (s *Service) CreatePost(_ context.Context, title, content string, tags []string) (*models.Post, error) {
	post := models.NewPost()
	post.Title = title
	post.Content = content
	for _, t := range tags {
		post.AddTag(t)
	}
	if err := s.savePost(post); err != nil {
		return nil, err
	}
	s.emit("created", post.FilePath)
	return post, nil
}

// GetPost loads a post from its backing file.
func (s *Service) GetPost(_ context.Context, path string) (*models.Post, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return postfile.Unmarshal(data, path)
}

// UpdatePost applies an edit function to a loaded post and saves it.
func (s *Service) UpdatePost(ctx context.Context, path string, edit func(*models.Post)) (*models.Post, error) {
	post, err := s.GetPost(ctx, path)
	if err != nil {
		return nil, err
	}
	edit(post)
	if err := s.savePost(post); err != nil {
		return nil, err
	}
	s.emit("updated", post.FilePath)
	return post, nil
}

// DeletePost removes the backing file and the index entry.
func (s *Service) DeletePost(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	if err := s.db.DeletePost(path); err != nil {
		return err
	}
	s.emit("deleted", path)
	return nil
}

// ListPosts returns paginated index rows with optional filters. The
// status filter is normalized so "published" and "Published" match the
// same rows.
func (s *Service) ListPosts(_ context.Context, limit, offset int, status, tag, sort string) ([]index.PostRow, int, error) {
	if status != "" {
		status = string(models.ParseStatus(status))
	}
	return s.db.ListPosts(limit, offset, status, tag, sort)
}

// SearchPosts delegates full-text search to the index.
func (s *Service) SearchPosts(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// PublishPost builds, signs, and publishes the long-form event for the
// post at path, then persists the outcome. The post status is saved
// before any error is returned, so a failed publish is visible on disk.
func (s *Service) PublishPost(ctx context.Context, path string, settings *relays.Settings) (*models.Post, error) {
	post, err := s.GetPost(ctx, path)
	if err != nil {
		return nil, err
	}

	ev, err := nostr.BuildLongFormEvent(post)
	if err != nil {
		return nil, err
	}
	if err := s.signer.Sign(ev); err != nil {
		return nil, err
	}

	eventID, accepted, err := s.publisher.Publish(ctx, ev, settings.ActiveRelays())
	if err != nil {
		post.SetFailed()
		if saveErr := s.savePost(post); saveErr != nil {
			s.logger.Error("save after failed publish", slog.String("error", saveErr.Error()))
		}
		s.emit("updated", post.FilePath)
		return nil, err
	}

	post.SetPublished(eventID, accepted)
	if err := s.savePost(post); err != nil {
		return nil, err
	}
	s.logger.Info("post published",
		slog.String("title", post.Title),
		slog.String("event_id", eventID),
		slog.Int("relays", len(accepted)))
	s.emit("published", post.FilePath)
	return post, nil
}

// UploadImage uploads a local file to the Blossom server and records the
// returned URL as the post's featured image.
func (s *Service) UploadImage(ctx context.Context, path, imagePath string) (string, error) {
	url, err := s.media.Upload(ctx, imagePath)
	if err != nil {
		return "", err
	}
	if _, err := s.UpdatePost(ctx, path, func(p *models.Post) {
		p.SetImage(url)
	}); err != nil {
		return "", err
	}
	return url, nil
}

// UpdateProfile publishes a kind-0 metadata event for the active
// credentials.
func (s *Service) UpdateProfile(ctx context.Context, settings *relays.Settings) (string, error) {
	creds := s.signer.Credentials()
	if creds == nil {
		return "", apperr.ErrNoCredentials
	}
	ev, err := nostr.BuildProfileMetadata(creds)
	if err != nil {
		return "", err
	}
	if err := s.signer.Sign(ev); err != nil {
		return "", err
	}
	eventID, _, err := s.publisher.Publish(ctx, ev, settings.ActiveRelays())
	return eventID, err
}

// ImportPost copies an external Markdown file into the posts directory.
func (s *Service) ImportPost(_ context.Context, srcPath string) (*models.Post, error) {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("postservice: read import source: %w", err)
	}
	post, err := postfile.Unmarshal(data, "")
	if err != nil {
		return nil, err
	}
	if err := s.savePost(post); err != nil {
		return nil, err
	}
	s.emit("created", post.FilePath)
	return post, nil
}

// ExportPost writes a post, frontmatter included, to an external path.
func (s *Service) ExportPost(ctx context.Context, path, dstPath string) error {
	post, err := s.GetPost(ctx, path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dstPath, postfile.Marshal(post), 0o644); err != nil {
		return fmt.Errorf("postservice: export to %s: %w", dstPath, err)
	}
	return nil
}

// savePost writes the backing file and refreshes the index entry. The
// file path is assigned on first save.
func (s *Service) savePost(post *models.Post) error {
	if post.FilePath == "" {
		post.FilePath = post.Filename()
	}
	data := postfile.Marshal(post)
	if err := s.store.Write(post.FilePath, data); err != nil {
		return err
	}
	return s.db.UpsertPost(index.PostRow{
		Path:      post.FilePath,
		ID:        post.ID.String(),
		Title:     post.Title,
		Status:    string(post.Status),
		Checksum:  checksum.Sum(data),
		Tags:      post.Tags,
		UpdatedAt: post.UpdatedAt,
	}, post.Content)
}

// ResolvePath turns a post UUID or relative file path into the backing
// file path, letting CLI commands address posts either way.
func (s *Service) ResolvePath(ref string) (string, error) {
	if row, err := s.db.FindByID(ref); err == nil && row != nil {
		return row.Path, nil
	}
	if filepath.Ext(ref) == ".md" {
		return ref, nil
	}
	return "", apperr.ErrNotFound
}
