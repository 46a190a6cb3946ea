package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/photobook/internal/book"
)

// BookSummary is the list view of a stored book
type BookSummary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	BookFormat string    `json:"bookFormat"`
	PageCount  int       `json:"pageCount"`
	PhotoCount int       `json:"photoCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Summarize builds the summary columns stored next to a document.
func Summarize(doc *book.Document) BookSummary {
	return BookSummary{
		ID:         doc.ID,
		Title:      doc.Title,
		BookFormat: doc.BookFormat,
		PageCount:  len(doc.Pages),
		PhotoCount: len(doc.Photos),
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
}

// EncodeDocument serializes a book for storage. Books without an id are rejected.
func EncodeDocument(doc *book.Document) ([]byte, error) {
	if doc == nil || doc.ID == "" {
		return nil, errors.New("book id is required")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode book %s: %w", doc.ID, err)
	}
	return data, nil
}

// DecodeDocument parses a stored book.
func DecodeDocument(data []byte) (*book.Document, error) {
	var doc book.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode book: %w", err)
	}
	return &doc, nil
}
