// Package blossom uploads media files to a Blossom server (BUD-02),
// proving authorization with a signed, time-boxed Nostr event carried in
// the Authorization header.
package blossom

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/PlebOne/blogster/internal/checksum"
	"github.com/PlebOne/blogster/internal/nostr"
)

// DefaultServer is used when no server is configured.
const DefaultServer = "https://blossom.band"

// ServerError reports a non-success HTTP status from the server.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("blossom: server rejected upload with status %d: %s", e.Status, e.Body)
}

// UploadResponse is the server's blob descriptor.
type UploadResponse struct {
	URL    string `json:"url"`
	SHA256 string `json:"sha256"`
	Type   string `json:"type"`
	Size   int64  `json:"size"`
}

// Client uploads files to one Blossom server.
type Client struct {
	serverURL string
	http      *http.Client
	signer    *nostr.Signer
	logger    *slog.Logger
}

// NewClient creates a Client for serverURL, signing authorizations with
// signer.
func NewClient(serverURL string, signer *nostr.Signer, logger *slog.Logger) *Client {
	if serverURL == "" {
		serverURL = DefaultServer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		http:      &http.Client{Timeout: 60 * time.Second},
		signer:    signer,
		logger:    logger,
	}
}

// ServerURL returns the configured server.
func (c *Client) ServerURL() string {
	return c.serverURL
}

// contentTypeFor maps a file extension to its MIME type.
func contentTypeFor(path string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}

// authHeader builds the signed BUD-02 authorization header for one
// upload: "Nostr " + base64 of the signed event JSON.
func (c *Client) authHeader(sha256Hex, filename string) (string, error) {
	ev := nostr.BuildUploadAuth(sha256Hex, filename)
	if err := c.signer.Sign(ev); err != nil {
		return "", err
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("blossom: marshal auth event: %w", err)
	}
	return "Nostr " + base64.StdEncoding.EncodeToString(raw), nil
}

// Upload sends the file at path to the server and returns the assigned
// content URL. Signing failures (including a missing key) short-circuit
// before any network call. A digest mismatch between the local file and
// the server's report is logged but not fatal, because the upload has
// already happened.
func (c *Client) Upload(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("blossom: read file %s: %w", path, err)
	}

	sha := checksum.Sum(data)
	filename := filepath.Base(path)

	auth, err := c.authHeader(sha, filename)
	if err != nil {
		return "", err
	}

	uploadURL := c.serverURL + "/upload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("blossom: build request: %w", err)
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("Content-Type", contentTypeFor(path))
	req.Header.Set("Content-Length", strconv.Itoa(len(data)))
	req.ContentLength = int64(len(data))

	c.logger.Info("uploading file",
		slog.String("server", uploadURL),
		slog.String("file", filename),
		slog.Int("size", len(data)))

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("blossom: upload: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ServerError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out UploadResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("blossom: parse upload response: %w", err)
	}

	if !checksum.Matches(out.SHA256, sha) {
		// Surfaced but non-fatal: the blob is already on the server.
		c.logger.Warn("server digest mismatch",
			slog.String("expected", sha),
			slog.String("got", out.SHA256))
	}

	c.logger.Info("file uploaded",
		slog.String("url", out.URL),
		slog.String("sha256", out.SHA256))
	return out.URL, nil
}
