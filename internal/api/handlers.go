package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/PlebOne/blogster/internal/apperr"
	"github.com/PlebOne/blogster/internal/blossom"
	"github.com/PlebOne/blogster/internal/models"
	"github.com/PlebOne/blogster/internal/nostr"
	"github.com/PlebOne/blogster/internal/postservice"
	"github.com/PlebOne/blogster/internal/relays"
)

const maxUploadBytes = 50 << 20 // 50 MB

// Handler holds API route handlers.
type Handler struct {
	svc      *postservice.Service
	signer   *nostr.Signer
	media    *blossom.Client
	settings *relays.Settings
}

// NewHandler creates a new Handler.
func NewHandler(svc *postservice.Service, signer *nostr.Signer, media *blossom.Client, settings *relays.Settings) *Handler {
	return &Handler{svc: svc, signer: signer, media: media, settings: settings}
}

// postPath extracts the post path from the URL wildcard, decoding
// encoded slashes.
func postPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListPosts handles GET /posts.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	rows, total, err := h.svc.ListPosts(r.Context(), limit, offset, q.Get("status"), q.Get("tag"), q.Get("sort"))
	if err != nil {
		slog.Error("list posts failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	items := make([]PostListItem, len(rows))
	for i, row := range rows {
		tags := row.Tags
		if tags == nil {
			tags = []string{}
		}
		items[i] = PostListItem{
			Path:      row.Path,
			ID:        row.ID,
			Title:     row.Title,
			Status:    row.Status,
			Tags:      tags,
			UpdatedAt: row.UpdatedAt,
		}
	}
	writeJSON(w, http.StatusOK, PostListResponse{Posts: items, Total: total})
}

// CreatePost handles POST /posts.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	post, err := h.svc.CreatePost(r.Context(), req.Title, req.Content, req.Tags)
	if err != nil {
		slog.Error("create post failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// GetPost handles GET /posts/*.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	path := postPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	post, err := h.svc.GetPost(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get post failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// UpdatePost handles PUT /posts/*.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	path := postPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	post, err := h.svc.UpdatePost(r.Context(), path, func(p *models.Post) {
		if req.Title != nil {
			p.SetTitle(*req.Title)
		}
		if req.Content != nil {
			p.SetContent(*req.Content)
		}
		if req.Summary != nil {
			p.SetSummary(*req.Summary)
		}
		if req.Tags != nil {
			p.Tags = nil
			for _, t := range *req.Tags {
				p.AddTag(t)
			}
		}
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("update post failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// DeletePost handles DELETE /posts/*.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	path := postPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeletePost(r.Context(), path); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("delete post failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Publish handles POST /publish.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	var req PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}

	post, err := h.svc.PublishPost(r.Context(), req.Path, h.settings)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrNotReady):
			writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		case errors.Is(err, apperr.ErrNoCredentials):
			writeJSON(w, http.StatusPreconditionFailed, errorBody("no nostr credentials configured"))
		case errors.Is(err, apperr.ErrNoRelayAccepted):
			writeJSON(w, http.StatusBadGateway, errorBody("no relay accepted the event"))
		default:
			slog.Error("publish failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, PublishResponse{
		EventID: post.NostrEventID,
		Relays:  post.PublishedRelays,
		Status:  string(post.Status),
	})
}

// Upload handles POST /upload (multipart/form-data, field "file",
// optional field "path" to attach the result to a post).
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	// Stage the upload in a temp file so the Blossom client hashes the
	// exact bytes it sends.
	tmp, err := os.CreateTemp("", "blogster-upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to stage upload"))
		return
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to stage upload"))
		return
	}
	tmp.Close()

	var mediaURL string
	if postRef := r.FormValue("path"); postRef != "" {
		mediaURL, err = h.svc.UploadImage(r.Context(), postRef, tmpName)
	} else {
		mediaURL, err = h.media.Upload(r.Context(), tmpName)
	}
	if err != nil {
		var serverErr *blossom.ServerError
		switch {
		case errors.Is(err, apperr.ErrNoCredentials):
			writeJSON(w, http.StatusPreconditionFailed, errorBody("no nostr credentials configured"))
		case errors.As(err, &serverErr):
			writeJSON(w, http.StatusBadGateway, errorBody(serverErr.Error()))
		default:
			slog.Error("upload failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{URL: mediaURL})
}

// Search handles GET /search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	hits, err := h.svc.SearchPosts(r.Context(), query, limit)
	if err != nil {
		slog.Error("search failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{Path: hit.Path, Title: hit.Title, Snippet: hit.Snippet}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Status handles GET /status. The signer probe is non-blocking: when
// the signer is busy the state reads "unknown" rather than waiting.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		ActiveRelays:  h.settings.ActiveRelays(),
		BlossomServer: h.media.ServerURL(),
	}
	resp.PublicKey, resp.SignerState = h.signer.TryStatus()
	writeJSON(w, http.StatusOK, resp)
}
