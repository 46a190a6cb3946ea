// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"slices"
	"sync"

	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/database"
)

// MockBookWriter is an in-memory database.BookWriter. Books are stored as
// encoded documents so callers never share state with the store.
type MockBookWriter struct {
	mu    sync.RWMutex
	books map[string][]byte
	saves int

	// Error injection
	GetError    error
	ListError   error
	SaveError   error
	DeleteError error
}

// NewMockBookWriter creates a new mock book writer
func NewMockBookWriter() *MockBookWriter {
	return &MockBookWriter{books: make(map[string][]byte)}
}

func (m *MockBookWriter) GetBook(ctx context.Context, id string) (*book.Document, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	data, ok := m.books[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return database.DecodeDocument(data)
}

func (m *MockBookWriter) ListBooks(ctx context.Context) ([]database.BookSummary, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]database.BookSummary, 0, len(m.books))
	for _, data := range m.books {
		doc, err := database.DecodeDocument(data)
		if err != nil {
			return nil, err
		}
		out = append(out, database.Summarize(doc))
	}
	slices.SortFunc(out, func(a, b database.BookSummary) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out, nil
}

func (m *MockBookWriter) SaveBook(ctx context.Context, doc *book.Document) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	data, err := database.EncodeDocument(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books[doc.ID] = data
	m.saves++
	return nil
}

func (m *MockBookWriter) DeleteBook(ctx context.Context, id string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.books, id)
	return nil
}

// Saves returns the number of successful SaveBook calls.
func (m *MockBookWriter) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
