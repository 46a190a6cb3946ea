package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/config"
	"github.com/kozaktomas/photobook/internal/database/mock"
	"github.com/kozaktomas/photobook/internal/editor"
	"github.com/kozaktomas/photobook/internal/photobook"
	"github.com/kozaktomas/photobook/internal/web/handlers"
)

func newTestServer(t *testing.T) (*Server, *mock.MockBookWriter) {
	t.Helper()
	cfg := config.Load()
	cfg.Web.MediaDir = t.TempDir()
	cfg.Web.AllowedOrigins = []string{"https://books.example.com"}
	store := mock.NewMockBookWriter()
	return NewServer(cfg, photobook.New(cfg, nil), store), store
}

func serve(s *Server, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestServer_Routes(t *testing.T) {
	s, store := newTestServer(t)
	store.SaveBook(t.Context(), &book.Document{
		ID:    "stored",
		Title: "Stored",
		Pages: []*book.Page{{
			ID:       "page-1",
			LayoutID: "full",
			Prefills: []*book.Prefill{{ID: "p1", Geometry: book.Rect{Width: 100, Height: 100}}},
		}},
	})

	tests := []struct {
		name       string
		method     string
		target     string
		body       any
		wantStatus int
	}{
		{"health", http.MethodGet, "/api/v1/health", nil, http.StatusOK},
		{"config", http.MethodGet, "/api/v1/config", nil, http.StatusOK},
		{"layouts", http.MethodGet, "/api/v1/layouts?photos=3", nil, http.StatusOK},
		{"list books", http.MethodGet, "/api/v1/books", nil, http.StatusOK},
		{"book loaded from storage", http.MethodGet, "/api/v1/books/stored", nil, http.StatusOK},
		{"page", http.MethodGet, "/api/v1/books/stored/pages/page-1", nil, http.StatusOK},
		{"unknown book", http.MethodGet, "/api/v1/books/missing", nil, http.StatusNotFound},
		{"intent", http.MethodPost, "/api/v1/books/stored/intents", editor.Intent{Kind: editor.KindDrop, PageID: "page-1", PrefillID: "p1", Src: "/media/x.jpg"}, http.StatusOK},
		{"pointer down", http.MethodPost, "/api/v1/books/stored/gesture", handlers.PointerDownRequest{PageID: "page-1", ElementID: "nope", Mode: editor.ModeMove}, http.StatusOK},
		{"pointer up", http.MethodDelete, "/api/v1/books/stored/gesture?reason=leave", nil, http.StatusOK},
		{"undo", http.MethodPost, "/api/v1/books/stored/undo", nil, http.StatusOK},
		{"redo", http.MethodPost, "/api/v1/books/stored/redo", nil, http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", nil, http.StatusOK},
		{"media directory", http.MethodGet, "/media/", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, tt.method, tt.target, tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("%s %s: expected %d, got %d: %s", tt.method, tt.target, tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}

	rec := serve(s, http.MethodDelete, "/api/v1/books/stored", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec := serve(s, http.MethodGet, "/api/v1/books/stored", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected deleted book to be gone, got %d", rec.Code)
	}
}

func TestServer_DropPersistsAndUndoes(t *testing.T) {
	s, store := newTestServer(t)
	store.SaveBook(t.Context(), &book.Document{
		ID: "b",
		Pages: []*book.Page{{
			ID:       "p",
			LayoutID: "full",
			Prefills: []*book.Prefill{{ID: "f", Geometry: book.Rect{Width: 100, Height: 100}}},
		}},
	})
	saves := store.Saves()

	rec := serve(s, http.MethodPost, "/api/v1/books/b/intents", editor.Intent{Kind: editor.KindDrop, PageID: "p", PrefillID: "f", Src: "/media/a.jpg", PhotoID: "a"})
	var resp handlers.EditResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if !resp.Changed || !resp.CanUndo {
		t.Fatalf("unexpected drop response: %+v", resp)
	}
	if store.Saves() != saves+1 {
		t.Errorf("expected the edit to be saved, got %d saves", store.Saves()-saves)
	}

	serve(s, http.MethodPost, "/api/v1/books/b/undo", nil)
	doc, err := store.GetBook(t.Context(), "b")
	if err != nil || doc == nil {
		t.Fatalf("GetBook: %v", err)
	}
	if !doc.Pages[0].Prefills[0].IsEmpty() {
		t.Error("expected the stored book to reflect the undo")
	}
}

func TestServer_CORS(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/books", nil)
	req.Header.Set("Origin", "https://books.example.com")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://books.example.com" {
		t.Errorf("expected configured origin to be allowed, got %q", got)
	}
}

func TestServer_Media(t *testing.T) {
	s, _ := newTestServer(t)
	dir := filepath.Join(s.config.Web.MediaDir, "upload")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "0000-a.jpg"), []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := serve(s, http.MethodGet, "/media/upload/0000-a.jpg", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Cache-Control"), "immutable") {
		t.Errorf("expected immutable caching, got %q", rec.Header().Get("Cache-Control"))
	}
	if rec.Body.String() != "jpeg" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}
