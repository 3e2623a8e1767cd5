package api

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/PlebOne/blogster/internal/apperr"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

const previewShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { max-width: 46rem; margin: 2rem auto; padding: 0 1rem;
       font-family: Georgia, serif; line-height: 1.6; }
img { max-width: 100%%; }
pre { background: #f4f4f4; padding: 1rem; overflow-x: auto; }
</style>
</head>
<body>
<h1>%s</h1>
%s
%s
</body>
</html>
`

// Preview handles GET /preview/*, rendering a post's Markdown body as a
// standalone HTML page.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	path := postPath(r)
	if path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}

	post, err := h.svc.GetPost(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			http.NotFound(w, r)
		} else {
			slog.Error("preview failed", slog.String("path", path), slog.String("error", err.Error()))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	var body bytes.Buffer
	if err := markdown.Convert([]byte(post.Content), &body); err != nil {
		slog.Error("markdown render failed", slog.String("path", path), slog.String("error", err.Error()))
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}

	var image string
	if post.ImageURL != "" {
		image = fmt.Sprintf(`<img src="%s" alt="">`, html.EscapeString(post.ImageURL))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, previewShell,
		html.EscapeString(post.Title),
		html.EscapeString(post.Title),
		image,
		body.String())
}
