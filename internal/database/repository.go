package database

import (
	"context"

	"github.com/kozaktomas/photobook/internal/book"
)

// BookReader provides read-only access to stored books
type BookReader interface {
	// GetBook retrieves a book by id, returns nil if not found
	GetBook(ctx context.Context, id string) (*book.Document, error)
	// ListBooks returns summaries of all books, most recently updated first
	ListBooks(ctx context.Context) ([]BookSummary, error)
}

// BookWriter extends BookReader with write operations
type BookWriter interface {
	BookReader
	// SaveBook inserts the book or replaces the stored version
	SaveBook(ctx context.Context, doc *book.Document) error
	// DeleteBook removes a book, deleting an unknown id is not an error
	DeleteBook(ctx context.Context, id string) error
}
