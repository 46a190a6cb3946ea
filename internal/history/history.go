// Package history keeps a bounded undo/redo stack of page array snapshots.
//
// Snapshots share page pointers with each other and with the caller. A page that
// has been handed to Save must never be mutated afterwards; edit a Clone instead
// and put the clone into the next snapshot.
package history

import (
	"time"

	"github.com/kozaktomas/photobook/internal/book"
)

type Entry struct {
	Pages []*book.Page
	At    time.Time
}

type Store struct {
	entries  []Entry
	cursor   int
	capacity int
}

func New(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{cursor: -1, capacity: capacity}
}

func snapshot(pages []*book.Page) []*book.Page {
	out := make([]*book.Page, len(pages))
	copy(out, pages)
	return out
}

// Save records a new snapshot after the cursor, dropping any redo branch and the
// oldest entries beyond capacity.
func (s *Store) Save(pages []*book.Page) {
	s.entries = append(s.entries[:s.cursor+1], Entry{Pages: snapshot(pages), At: time.Now()})
	if over := len(s.entries) - s.capacity; over > 0 {
		s.entries = append(s.entries[:0:0], s.entries[over:]...)
	}
	s.cursor = len(s.entries) - 1
}

// Undo moves one entry back and returns its pages. At the oldest entry it returns false.
func (s *Store) Undo() ([]*book.Page, bool) {
	if !s.CanUndo() {
		return nil, false
	}
	s.cursor--
	return snapshot(s.entries[s.cursor].Pages), true
}

// Redo moves one entry forward and returns its pages. At the newest entry it returns false.
func (s *Store) Redo() ([]*book.Page, bool) {
	if !s.CanRedo() {
		return nil, false
	}
	s.cursor++
	return snapshot(s.entries[s.cursor].Pages), true
}

func (s *Store) CanUndo() bool { return s.cursor > 0 }

func (s *Store) CanRedo() bool { return s.cursor >= 0 && s.cursor < len(s.entries)-1 }

// Len returns the number of stored entries.
func (s *Store) Len() int { return len(s.entries) }
