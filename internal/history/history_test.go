package history

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/kozaktomas/photobook/internal/book"
)

func page(id, bg string) *book.Page {
	return &book.Page{ID: id, Background: bg}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestUndoRedo_RoundTrip(t *testing.T) {
	s := New(50)
	v1 := []*book.Page{page("a", "#fff"), page("b", "#fff")}
	s.Save(v1)

	// copy-on-write edit of page b
	b := v1[1].Clone()
	b.AddText("t1", "hello", book.Geometry{X: 1, Y: 1, Width: 10, Height: 5}, book.Typography{})
	v2 := []*book.Page{v1[0], b}
	s.Save(v2)
	want := mustJSON(t, v2)

	if _, ok := s.Undo(); !ok {
		t.Fatal("undo should succeed")
	}
	redone, ok := s.Redo()
	if !ok {
		t.Fatal("redo should succeed")
	}
	if got := mustJSON(t, redone); got != want {
		t.Errorf("redo did not restore pages:\n got %s\nwant %s", got, want)
	}
}

func TestUndo_RestoresPreviousState(t *testing.T) {
	s := New(50)
	v1 := []*book.Page{page("a", "#fff")}
	s.Save(v1)
	want := mustJSON(t, v1)

	a := v1[0].Clone()
	a.Background = "#000"
	s.Save([]*book.Page{a})

	got, ok := s.Undo()
	if !ok {
		t.Fatal("undo should succeed")
	}
	if mustJSON(t, got) != want {
		t.Errorf("undo returned %s, want %s", mustJSON(t, got), want)
	}
}

func TestUndoRedo_NoOpsAtEnds(t *testing.T) {
	s := New(50)
	if _, ok := s.Undo(); ok {
		t.Error("undo on empty store should be a no-op")
	}
	if _, ok := s.Redo(); ok {
		t.Error("redo on empty store should be a no-op")
	}

	s.Save([]*book.Page{page("a", "#fff")})
	if _, ok := s.Undo(); ok {
		t.Error("undo at the oldest entry should be a no-op")
	}
	if _, ok := s.Redo(); ok {
		t.Error("redo at the newest entry should be a no-op")
	}
}

func TestSave_TruncatesFuture(t *testing.T) {
	s := New(50)
	s.Save([]*book.Page{page("a", "1")})
	s.Save([]*book.Page{page("a", "2")})
	s.Save([]*book.Page{page("a", "3")})

	s.Undo()
	s.Undo()
	s.Save([]*book.Page{page("a", "4")})

	if s.CanRedo() {
		t.Error("redo branch should be dropped after a new save")
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", s.Len())
	}
	got, _ := s.Undo()
	if got[0].Background != "1" {
		t.Errorf("expected to land on first state, got %s", got[0].Background)
	}
}

func TestSave_Capacity(t *testing.T) {
	s := New(50)
	for i := range 120 {
		s.Save([]*book.Page{page("a", fmt.Sprint(i))})
		if s.Len() > 50 {
			t.Fatalf("store grew to %d entries", s.Len())
		}
	}

	steps := 0
	var oldest []*book.Page
	for {
		pages, ok := s.Undo()
		if !ok {
			break
		}
		oldest = pages
		steps++
	}
	if steps != 49 {
		t.Errorf("expected 49 undo steps, got %d", steps)
	}
	if oldest[0].Background != "70" {
		t.Errorf("oldest surviving entry should be 70, got %s", oldest[0].Background)
	}
}

func TestSnapshots_ShareUntouchedPages(t *testing.T) {
	s := New(50)
	a, b := page("a", "#fff"), page("b", "#fff")
	s.Save([]*book.Page{a, b})

	b2 := b.Clone()
	b2.Background = "#eee"
	s.Save([]*book.Page{a, b2})

	prev, _ := s.Undo()
	if prev[0] != a {
		t.Error("unchanged page should be shared between snapshots")
	}
	if prev[1] != b {
		t.Error("undo should return the original page b")
	}
}

func TestSnapshot_IndependentSlice(t *testing.T) {
	s := New(50)
	pages := []*book.Page{page("a", "#fff")}
	s.Save(pages)
	pages[0] = page("z", "#000")
	s.Save([]*book.Page{page("b", "#fff")})

	prev, _ := s.Undo()
	if prev[0].ID != "a" {
		t.Error("replacing a slot in the caller slice must not affect the snapshot")
	}
}
