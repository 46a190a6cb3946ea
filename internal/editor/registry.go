package editor

import (
	"context"
	"fmt"
	"sync"

	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/config"
)

// Loader reads a stored book. It returns nil without error when the book does not exist.
type Loader interface {
	GetBook(ctx context.Context, id string) (*book.Document, error)
}

// Registry keeps one session per open book.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	cfg      *config.Config
	loader   Loader
	saver    Saver
}

// NewRegistry creates a registry. loader and saver may be nil for purely
// in-memory editing.
func NewRegistry(cfg *config.Config, loader Loader, saver Saver) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		loader:   loader,
		saver:    saver,
	}
}

// Open starts a session for a freshly composed book and persists it.
func (r *Registry) Open(ctx context.Context, doc *book.Document) *Session {
	s := New(doc, r.cfg, r.saver)
	s.mu.Lock()
	s.persist(ctx)
	s.mu.Unlock()

	r.mu.Lock()
	r.sessions[doc.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session for a book, loading the book from storage when it
// is not open yet. It returns nil without error for unknown books.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		return s, nil
	}
	if r.loader == nil {
		return nil, nil
	}

	doc, err := r.loader.GetBook(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load book %s: %w", id, err)
	}
	if doc == nil {
		return nil, nil
	}
	s := New(doc, r.cfg, r.saver)
	r.sessions[id] = s
	return s, nil
}

// Close forgets the session of a book.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
