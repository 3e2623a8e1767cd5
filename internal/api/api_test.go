package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PlebOne/blogster/internal/blossom"
	"github.com/PlebOne/blogster/internal/index"
	"github.com/PlebOne/blogster/internal/models"
	"github.com/PlebOne/blogster/internal/nostr"
	"github.com/PlebOne/blogster/internal/postservice"
	"github.com/PlebOne/blogster/internal/relays"
	"github.com/PlebOne/blogster/internal/storage"
)

type testEnv struct {
	server  *httptest.Server
	svc     *postservice.Service
	signer  *nostr.Signer
	blossom *httptest.Server
}

func newTestEnv(t *testing.T, authEnabled bool, token string) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	db, err := index.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	creds, err := nostr.GenerateCredentials()
	if err != nil {
		t.Fatal(err)
	}
	signer := nostr.NewSigner()
	if err := signer.SetCredentials(creds); err != nil {
		t.Fatal(err)
	}

	blossomSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(blossom.UploadResponse{URL: "https://blossom.test/blob.png"})
	}))
	t.Cleanup(blossomSrv.Close)

	media := blossom.NewClient(blossomSrv.URL, signer, logger)
	publisher := nostr.NewPublisher(logger)
	publisher.SettleDelay = 0
	svc := postservice.New(store, db, signer, publisher, media, logger)

	settings := relays.NewSettings()
	router := NewRouter(svc, signer, media, settings, authEnabled, token, nil)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{server: server, svc: svc, signer: signer, blossom: blossomSrv}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.server.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func createPost(t *testing.T, e *testEnv, title, content string) *models.Post {
	t.Helper()
	post, err := e.svc.CreatePost(context.Background(), title, content, nil)
	if err != nil {
		t.Fatal(err)
	}
	return post
}

func TestCreateAndGetPost(t *testing.T) {
	e := newTestEnv(t, false, "")

	resp := e.do(t, http.MethodPost, "/posts", CreatePostRequest{
		Title:   "Via API",
		Content: "api body",
		Tags:    []string{"api"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	created := decode[models.Post](t, resp)
	if created.Title != "Via API" {
		t.Errorf("Title = %q", created.Title)
	}

	resp = e.do(t, http.MethodGet, "/posts/"+created.FilePath, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	got := decode[models.Post](t, resp)
	if got.ID != created.ID || got.Content != "api body" {
		t.Errorf("got = %+v", got)
	}
}

func TestGetPostNotFound(t *testing.T) {
	e := newTestEnv(t, false, "")
	resp := e.do(t, http.MethodGet, "/posts/missing.md", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestUpdatePostPartial(t *testing.T) {
	e := newTestEnv(t, false, "")
	post := createPost(t, e, "Original", "body")

	newTitle := "Edited"
	resp := e.do(t, http.MethodPut, "/posts/"+post.FilePath, UpdatePostRequest{Title: &newTitle})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	updated := decode[models.Post](t, resp)
	if updated.Title != "Edited" {
		t.Errorf("Title = %q", updated.Title)
	}
	if updated.Content != "body" {
		t.Errorf("Content = %q, want untouched", updated.Content)
	}
}

func TestDeletePost(t *testing.T) {
	e := newTestEnv(t, false, "")
	post := createPost(t, e, "Doomed", "x")

	resp := e.do(t, http.MethodDelete, "/posts/"+post.FilePath, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}

	resp = e.do(t, http.MethodGet, "/posts/"+post.FilePath, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status after delete = %d, want 404", resp.StatusCode)
	}
}

func TestListPosts(t *testing.T) {
	e := newTestEnv(t, false, "")
	createPost(t, e, "One", "a")
	createPost(t, e, "Two", "b")

	resp := e.do(t, http.MethodGet, "/posts", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	list := decode[PostListResponse](t, resp)
	if list.Total != 2 || len(list.Posts) != 2 {
		t.Errorf("list = %+v", list)
	}
}

func TestPublishErrors(t *testing.T) {
	e := newTestEnv(t, false, "")

	// Unknown path.
	resp := e.do(t, http.MethodPost, "/publish", PublishRequest{Path: "ghost.md"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}

	// Post with an empty body is not publishable.
	post := createPost(t, e, "No Body", "")
	resp = e.do(t, http.MethodPost, "/publish", PublishRequest{Path: post.FilePath})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}

	// Missing path field.
	resp = e.do(t, http.MethodPost, "/publish", PublishRequest{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUploadMultipart(t *testing.T) {
	e := newTestEnv(t, false, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "photo.png")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write([]byte("png bytes"))
	_ = mw.Close()

	req, _ := http.NewRequest(http.MethodPost, e.server.URL+"/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	out := decode[UploadResponse](t, resp)
	if out.URL != "https://blossom.test/blob.png" {
		t.Errorf("URL = %q", out.URL)
	}
}

func TestUploadAttachesToPost(t *testing.T) {
	e := newTestEnv(t, false, "")
	post := createPost(t, e, "Illustrated", "text")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("path", post.FilePath)
	fw, _ := mw.CreateFormFile("file", "cover.png")
	_, _ = fw.Write([]byte("png"))
	_ = mw.Close()

	req, _ := http.NewRequest(http.MethodPost, e.server.URL+"/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	reloaded, err := e.svc.GetPost(context.Background(), post.FilePath)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.ImageURL != "https://blossom.test/blob.png" {
		t.Errorf("ImageURL = %q", reloaded.ImageURL)
	}
}

func TestUploadMissingFileField(t *testing.T) {
	e := newTestEnv(t, false, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("other", "x")
	_ = mw.Close()

	req, _ := http.NewRequest(http.MethodPost, e.server.URL+"/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSearch(t *testing.T) {
	e := newTestEnv(t, false, "")
	createPost(t, e, "Findable", "contains zanzibar somewhere")

	resp := e.do(t, http.MethodGet, "/search?q=zanzibar", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	out := decode[SearchResponse](t, resp)
	if len(out.Results) != 1 || out.Results[0].Title != "Findable" {
		t.Errorf("results = %+v", out.Results)
	}

	resp = e.do(t, http.MethodGet, "/search", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing q status = %d, want 400", resp.StatusCode)
	}
}

func TestStatus(t *testing.T) {
	e := newTestEnv(t, false, "")

	resp := e.do(t, http.MethodGet, "/status", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	out := decode[StatusResponse](t, resp)
	if out.SignerState != nostr.StatusReady {
		t.Errorf("SignerState = %q, want ready", out.SignerState)
	}
	if out.PublicKey == "" {
		t.Error("PublicKey empty with credentials loaded")
	}
	if len(out.ActiveRelays) != 5 {
		t.Errorf("ActiveRelays = %v", out.ActiveRelays)
	}
	if out.BlossomServer == "" {
		t.Error("BlossomServer empty")
	}
}

func TestAuthMiddleware(t *testing.T) {
	e := newTestEnv(t, true, "sekret")

	// No token.
	resp := e.do(t, http.MethodGet, "/posts", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}

	// Wrong token.
	req, _ := http.NewRequest(http.MethodGet, e.server.URL+"/posts", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong token status = %d, want 401", resp.StatusCode)
	}

	// Correct token.
	req, _ = http.NewRequest(http.MethodGet, e.server.URL+"/posts", nil)
	req.Header.Set("Authorization", "Bearer sekret")
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("correct token status = %d, want 200", resp.StatusCode)
	}
}

func TestPreviewRendersMarkdown(t *testing.T) {
	e := newTestEnv(t, false, "")
	post := createPost(t, e, "Previewed", "# Heading\n\nSome **bold** text.")

	resp := e.do(t, http.MethodGet, "/preview/"+post.FilePath, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	html := string(body)
	if !strings.Contains(html, "<strong>bold</strong>") {
		t.Errorf("markdown not rendered: %s", html)
	}
	if !strings.Contains(html, "Previewed") {
		t.Error("title missing from preview")
	}
}

func TestPreviewNotFound(t *testing.T) {
	e := newTestEnv(t, false, "")
	resp := e.do(t, http.MethodGet, "/preview/ghost.md", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListPostsRespectsSort(t *testing.T) {
	e := newTestEnv(t, false, "")
	createPost(t, e, "Bravo", "b")
	time.Sleep(10 * time.Millisecond)
	createPost(t, e, "Alpha", "a")

	resp := e.do(t, http.MethodGet, "/posts?sort=title", nil)
	list := decode[PostListResponse](t, resp)
	if len(list.Posts) != 2 || list.Posts[0].Title != "Alpha" {
		t.Errorf("title sort = %+v", list.Posts)
	}
}
