package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/config"
	"github.com/kozaktomas/photobook/internal/constants"
	"github.com/kozaktomas/photobook/internal/database"
	"github.com/kozaktomas/photobook/internal/editor"
	"github.com/kozaktomas/photobook/internal/photo"
	"github.com/kozaktomas/photobook/internal/photobook"
)

// Builder composes a book from uploaded files.
type Builder interface {
	Build(ctx context.Context, files []photo.File, opts photobook.Options) (*photobook.Result, error)
}

// BooksHandler handles book creation and retrieval.
type BooksHandler struct {
	config   *config.Config
	builder  Builder
	registry *editor.Registry
	store    database.BookWriter
}

// NewBooksHandler creates a new books handler. store may be nil when books
// only live in memory.
func NewBooksHandler(cfg *config.Config, builder Builder, registry *editor.Registry, store database.BookWriter) *BooksHandler {
	return &BooksHandler{
		config:   cfg,
		builder:  builder,
		registry: registry,
		store:    store,
	}
}

// CreateBookResponse is returned after composing a new book.
type CreateBookResponse struct {
	editor.State
	Duplicates  int  `json:"duplicates"`
	Unreadable  int  `json:"unreadable"`
	Excluded    int  `json:"excluded"`
	Unsupported int  `json:"unsupported"`
	Enriched    bool `json:"enriched"`
}

// List returns summaries of the stored books.
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondJSON(w, http.StatusOK, []database.BookSummary{})
		return
	}
	books, err := h.store.ListBooks(r.Context())
	if err != nil {
		log.Printf("Warning: failed to list books: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list books")
		return
	}
	if books == nil {
		books = []database.BookSummary{}
	}
	respondJSON(w, http.StatusOK, books)
}

// Create composes a book from a multipart upload. Form fields: photos (files),
// lastModified (one epoch-millisecond value per file, optional), title,
// folder and includeAll.
func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := r.ParseMultipartForm(constants.MaxUploadMemory); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["photos"]
	if len(headers) == 0 {
		respondError(w, http.StatusBadRequest, "no photos provided")
		return
	}

	uploadID := book.NewID()
	dir := filepath.Join(h.config.Web.MediaDir, uploadID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("Warning: failed to create media directory: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to store photos")
		return
	}

	files, unsupported, err := saveUploads(headers, r.MultipartForm.Value["lastModified"], dir)
	if err != nil {
		log.Printf("Warning: failed to store upload: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to store photos")
		return
	}

	res, err := h.builder.Build(r.Context(), files, photobook.Options{
		Title:      r.FormValue("title"),
		TitleHint:  r.FormValue("folder"),
		IncludeAll: r.FormValue("includeAll") == "true",
		Src: func(f photo.File) string {
			return path.Join("/media", uploadID, filepath.Base(f.Path))
		},
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("Warning: failed to compose book: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to compose book")
		return
	}

	session := h.registry.Open(r.Context(), res.Document)
	log.Printf("Composed book %s: %d pages from %d photos", session.ID(), len(res.Document.Pages), len(res.Selected))

	respondJSON(w, http.StatusCreated, CreateBookResponse{
		State:       session.State(),
		Duplicates:  res.Duplicates,
		Unreadable:  res.Unreadable,
		Excluded:    len(res.Excluded),
		Unsupported: unsupported,
		Enriched:    res.Enriched,
	})
}

// saveUploads writes every supported upload into dir. Files keep their
// original name for de-duplication; the stored name is prefixed with the
// upload position so equal names never overwrite each other.
func saveUploads(headers []*multipart.FileHeader, modTimes []string, dir string) ([]photo.File, int, error) {
	var files []photo.File
	unsupported := 0
	for i, fh := range headers {
		if !photo.IsSupported(fh.Filename) {
			unsupported++
			continue
		}

		var modTime time.Time
		if i < len(modTimes) {
			if ms, err := strconv.ParseInt(modTimes[i], 10, 64); err == nil {
				modTime = time.UnixMilli(ms)
			}
		}

		f, err := photo.SaveUpload(fh, modTime, filepath.Join(dir, fmt.Sprintf("%04d-%s", i, filepath.Base(fh.Filename))))
		if err != nil {
			return nil, 0, err
		}
		files = append(files, f)
	}
	return files, unsupported, nil
}

// session resolves the {id} URL parameter. It answers 404 for unknown books.
func session(w http.ResponseWriter, r *http.Request, registry *editor.Registry) *editor.Session {
	id := chi.URLParam(r, "id")
	s, err := registry.Get(r.Context(), id)
	if err != nil {
		log.Printf("Warning: failed to open book %s: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to load book")
		return nil
	}
	if s == nil {
		respondError(w, http.StatusNotFound, "book not found")
		return nil
	}
	return s
}

// Get returns the current state of a book.
func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := session(w, r, h.registry)
	if s == nil {
		return
	}
	respondJSON(w, http.StatusOK, s.State())
}

// Delete removes a book from storage and closes its session.
func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.registry.Close(id)
	if h.store != nil {
		if err := h.store.DeleteBook(r.Context(), id); err != nil {
			log.Printf("Warning: failed to delete book %s: %v", sanitizeForLog(id), err)
			respondError(w, http.StatusInternalServerError, "failed to delete book")
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
