// Package editor applies interactive edits to a composed book. Every change
// goes through Session.Update, which keeps pages copy-on-write, records undo
// history and persists the book.
package editor

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/config"
	"github.com/kozaktomas/photobook/internal/history"
	"github.com/kozaktomas/photobook/internal/metrics"
	"github.com/kozaktomas/photobook/internal/snap"
)

// Saver persists a book. Failures are logged by the session and never
// interrupt editing.
type Saver interface {
	SaveBook(ctx context.Context, doc *book.Document) error
}

// Session is the editing state of one book.
type Session struct {
	mu sync.Mutex

	doc       *book.Document
	history   *history.Store
	snap      *snap.Engine
	saver     Saver
	textStyle book.Typography
	newID     func() string

	restoring bool
	gesture   *gesture
}

// New opens an editing session on doc. The current pages become the first
// history entry. saver may be nil.
func New(doc *book.Document, cfg *config.Config, saver Saver) *Session {
	style := cfg.Defaults.Typography["caption"]
	s := &Session{
		doc:     doc,
		history: history.New(cfg.Editor.HistoryCapacity),
		snap:    snap.New(cfg.Editor.SnapThreshold),
		saver:   saver,
		textStyle: book.Typography{
			FontFamily: style.FontFamily,
			FontSize:   style.FontSize,
			Color:      style.Color,
			Align:      style.Align,
			Weight:     style.Weight,
		},
		newID: book.NewID,
	}
	s.history.Save(doc.Pages)
	return s
}

// ID returns the book id.
func (s *Session) ID() string {
	return s.doc.ID
}

// State is a read-only view of the session.
type State struct {
	Book    *book.Document `json:"book"`
	CanUndo bool           `json:"canUndo"`
	CanRedo bool           `json:"canRedo"`
	Editing string         `json:"activeElementId,omitempty"`
}

// State returns a snapshot that stays valid while editing continues; placed
// pages are never mutated.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := *s.doc
	doc.Pages = append([]*book.Page(nil), s.doc.Pages...)
	st := State{Book: &doc, CanUndo: s.history.CanUndo(), CanRedo: s.history.CanRedo()}
	if s.gesture != nil {
		st.Editing = s.gesture.elementID
	}
	return st
}

// Update is the single mutation path. mutate receives a clone of the page and
// reports whether it changed anything; only then is the clone placed, recorded
// in history (outside of gestures and restores) and persisted.
func (s *Session) Update(ctx context.Context, pageIndex int, mutate func(p *book.Page) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(ctx, pageIndex, mutate)
}

func (s *Session) update(ctx context.Context, pageIndex int, mutate func(p *book.Page) bool) bool {
	if pageIndex < 0 || pageIndex >= len(s.doc.Pages) {
		return false
	}
	page := s.doc.Pages[pageIndex].Clone()
	if !mutate(page) {
		return false
	}
	s.doc.Pages[pageIndex] = page

	if s.gesture != nil {
		s.gesture.changed = true
		return true
	}
	s.commit(ctx)
	return true
}

// commit records the current pages and persists them.
func (s *Session) commit(ctx context.Context) {
	if !s.restoring {
		s.history.Save(s.doc.Pages)
	}
	s.persist(ctx)
}

func (s *Session) persist(ctx context.Context) {
	if s.saver == nil {
		return
	}
	s.doc.UpdatedAt = time.Now()
	if err := s.saver.SaveBook(ctx, s.doc); err != nil {
		metrics.RecordPersistError()
		log.Printf("Warning: failed to save book %s: %v", s.doc.ID, err)
	}
}

// Undo restores the previous history entry. It ends any active gesture first.
func (s *Session) Undo(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endGesture(ctx)
	pages, ok := s.history.Undo()
	if ok {
		s.restore(ctx, pages)
	}
	metrics.RecordEditIntent("undo", ok)
	return ok
}

// Redo re-applies the next history entry.
func (s *Session) Redo(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endGesture(ctx)
	pages, ok := s.history.Redo()
	if ok {
		s.restore(ctx, pages)
	}
	metrics.RecordEditIntent("redo", ok)
	return ok
}

func (s *Session) restore(ctx context.Context, pages []*book.Page) {
	s.restoring = true
	defer func() { s.restoring = false }()
	s.doc.Pages = pages
	s.commit(ctx)
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// HistoryLen returns the number of stored history entries.
func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Len()
}
