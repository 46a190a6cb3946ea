package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/database"
)

// BookRepository provides MariaDB-backed photobook storage
type BookRepository struct {
	pool *Pool
}

func NewBookRepository(pool *Pool) *BookRepository {
	return &BookRepository{pool: pool}
}

func (r *BookRepository) GetBook(ctx context.Context, id string) (*book.Document, error) {
	var data string
	err := r.pool.db.QueryRowContext(ctx, `SELECT document FROM books WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return database.DecodeDocument([]byte(data))
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			title = VALUES(title),
			book_format = VALUES(book_format),
			page_count = VALUES(page_count),
			photo_count = VALUES(photo_count),
			document = VALUES(document),
			updated_at = VALUES(updated_at)`,
		s.ID, s.Title, s.BookFormat, s.PageCount, s.PhotoCount, string(data), s.CreatedAt.UTC(), s.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("save book: %w", err)
	}
	return nil
}

func (r *BookRepository) DeleteBook(ctx context.Context, id string) error {
	if _, err := r.pool.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}
