package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/database"
)

func (s *Store) GetBook(ctx context.Context, id string) (*book.Document, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM books WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return database.DecodeDocument([]byte(data))
}

func (s *Store) ListBooks(ctx context.Context) ([]database.BookSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, book_format, page_count, photo_count, created_at, updated_at
		 FROM books ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []database.BookSummary
	for rows.Next() {
		var b database.BookSummary
		var created, updated int64
		if err := rows.Scan(&b.ID, &b.Title, &b.BookFormat, &b.PageCount, &b.PhotoCount, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		b.CreatedAt = time.UnixMilli(created)
		b.UpdatedAt = time.UnixMilli(updated)
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

func (s *Store) SaveBook(ctx context.Context, doc *book.Document) error {
	data, err := database.EncodeDocument(doc)
	if err != nil {
		return err
	}
	sum := database.Summarize(doc)
	if sum.CreatedAt.IsZero() {
		sum.CreatedAt = time.Now()
	}
	if sum.UpdatedAt.IsZero() {
		sum.UpdatedAt = sum.CreatedAt
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO books (id, title, book_format, page_count, photo_count, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			book_format = excluded.book_format,
			page_count = excluded.page_count,
			photo_count = excluded.photo_count,
			document = excluded.document,
			updated_at = excluded.updated_at`,
		sum.ID, sum.Title, sum.BookFormat, sum.PageCount, sum.PhotoCount, string(data),
		sum.CreatedAt.UnixMilli(), sum.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("save book: %w", err)
	}
	return nil
}

func (s *Store) DeleteBook(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}
