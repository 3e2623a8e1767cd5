package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/PlebOne/blogster/internal/blossom"
	"github.com/PlebOne/blogster/internal/nostr"
	"github.com/PlebOne/blogster/internal/postservice"
	"github.com/PlebOne/blogster/internal/relays"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events inside the auth
// group.
func NewRouter(svc *postservice.Service, signer *nostr.Signer, media *blossom.Client, settings *relays.Settings, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, signer, media, settings)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Posts CRUD.
	r.Get("/posts", h.ListPosts)
	r.Post("/posts", h.CreatePost)
	r.Get("/posts/*", h.GetPost)
	r.Put("/posts/*", h.UpdatePost)
	r.Delete("/posts/*", h.DeletePost)

	// Publish and media upload.
	r.Post("/publish", h.Publish)
	r.Post("/upload", h.Upload)

	// Search, preview, status.
	r.Get("/search", h.Search)
	r.Get("/preview/*", h.Preview)
	r.Get("/status", h.Status)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
