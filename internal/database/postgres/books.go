package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/database"
)

// BookRepository provides PostgreSQL-backed photobook storage
type BookRepository struct {
	pool *Pool
}

// NewBookRepository creates a new BookRepository
func NewBookRepository(pool *Pool) *BookRepository {
	return &BookRepository{pool: pool}
}

func (r *BookRepository) GetBook(ctx context.Context, id string) (*book.Document, error) {
	var data []byte
	err := r.pool.db.QueryRowContext(ctx, `SELECT document FROM books WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return database.DecodeDocument(data)
}

func (r *BookRepository) ListBooks(ctx context.Context) ([]database.BookSummary, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		`SELECT id, title, book_format, page_count, photo_count, created_at, updated_at
		 FROM books ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []database.BookSummary
	for rows.Next() {
		var b database.BookSummary
		if err := rows.Scan(&b.ID, &b.Title, &b.BookFormat, &b.PageCount, &b.PhotoCount, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

// SaveBook upserts the whole document.
func (r *BookRepository) SaveBook(ctx context.Context, doc *book.Document) error {
	data, err := database.EncodeDocument(doc)
	if err != nil {
		return err
	}
	s := database.Summarize(doc)
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}

	_, err = r.pool.db.ExecContext(ctx, `
		INSERT INTO books (id, title, book_format, page_count, photo_count, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			book_format = EXCLUDED.book_format,
			page_count = EXCLUDED.page_count,
			photo_count = EXCLUDED.photo_count,
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at`,
		s.ID, s.Title, s.BookFormat, s.PageCount, s.PhotoCount, string(data), s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save book: %w", err)
	}
	return nil
}

func (r *BookRepository) DeleteBook(ctx context.Context, id string) error {
	if _, err := r.pool.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}
