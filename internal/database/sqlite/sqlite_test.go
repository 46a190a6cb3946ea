package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/database"
)

func testDocument(id, title string, updated time.Time) *book.Document {
	page := &book.Page{ID: "page-1", LayoutID: "full", Background: "#FFFFFF"}
	page.AddPhoto("el-1", "/media/a.jpg", "photo-1", book.Geometry{X: 5, Y: 5, Width: 90, Height: 90})
	page.AddText("el-2", "Hello", book.Geometry{X: 10, Y: 80, Width: 80, Height: 10}, book.Typography{FontSize: 12})
	return &book.Document{
		ID:         id,
		Title:      title,
		BookFormat: book.DefaultFormat,
		Photos:     []book.PhotoRef{{ID: "photo-1", Name: "a.jpg", Src: "/media/a.jpg"}},
		Pages:      []*book.Page{page},
		CreatedAt:  updated,
		UpdatedAt:  updated,
	}
}

func TestPath(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"sqlite://photobook.db", "photobook.db"},
		{"sqlite:///var/lib/photobook.db", "/var/lib/photobook.db"},
		{"sqlite::memory:", ":memory:"},
		{"books.db", "books.db"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := Path(tt.url); got != tt.want {
				t.Errorf("Path(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "books.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	got, err := s.GetBook(ctx, "missing")
	if err != nil || got != nil {
		t.Fatalf("expected nil for a missing book, got %+v, %v", got, err)
	}

	base := time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC)
	if err := s.SaveBook(ctx, testDocument("b1", "First", base)); err != nil {
		t.Fatalf("SaveBook: %v", err)
	}
	if err := s.SaveBook(ctx, testDocument("b2", "Second", base.Add(time.Hour))); err != nil {
		t.Fatalf("SaveBook: %v", err)
	}

	got, err = s.GetBook(ctx, "b1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got == nil || got.Title != "First" || len(got.Pages) != 1 {
		t.Fatalf("unexpected book: %+v", got)
	}
	if n := len(got.Pages[0].Elements()); n != 2 {
		t.Errorf("expected 2 elements after round trip, got %d", n)
	}

	// upsert moves b1 to the top of the list
	updated := testDocument("b1", "First, edited", base.Add(2*time.Hour))
	if err := s.SaveBook(ctx, updated); err != nil {
		t.Fatalf("SaveBook: %v", err)
	}

	books, err := s.ListBooks(ctx)
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("expected 2 books, got %d", len(books))
	}
	if books[0].ID != "b1" || books[0].Title != "First, edited" {
		t.Errorf("expected edited b1 first, got %+v", books[0])
	}
	if !books[0].CreatedAt.Equal(base) {
		t.Errorf("expected created_at to survive the upsert, got %v", books[0].CreatedAt)
	}
	if books[1].PageCount != 1 || books[1].PhotoCount != 1 {
		t.Errorf("unexpected counts: %+v", books[1])
	}

	if err := s.DeleteBook(ctx, "b1"); err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}
	if err := s.DeleteBook(ctx, "b1"); err != nil {
		t.Errorf("deleting twice should not fail: %v", err)
	}
	if got, _ := s.GetBook(ctx, "b1"); got != nil {
		t.Error("expected b1 to be gone")
	}
}

func TestStore_RejectsBookWithoutID(t *testing.T) {
	s, err := Open(context.Background(), "sqlite::memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.SaveBook(context.Background(), &book.Document{Title: "x"}); err == nil {
		t.Error("expected an error for a book without id")
	}
}

func TestInitialize_RegistersBackend(t *testing.T) {
	s, err := Initialize(context.Background(), "sqlite::memory:")
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer s.Close()

	if database.Backend() != database.SchemeSQLite {
		t.Errorf("expected sqlite backend, got %q", database.Backend())
	}
	w, err := database.GetBookWriter(context.Background())
	if err != nil {
		t.Fatalf("GetBookWriter: %v", err)
	}
	if err := w.SaveBook(context.Background(), testDocument("b9", "Registered", time.Now())); err != nil {
		t.Fatalf("SaveBook: %v", err)
	}
}
