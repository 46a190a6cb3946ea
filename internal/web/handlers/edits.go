package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/editor"
	"github.com/kozaktomas/photobook/internal/snap"
)

// EditHandler applies edit intents and pointer gestures to open books.
type EditHandler struct {
	registry *editor.Registry
}

// NewEditHandler creates a new edit handler
func NewEditHandler(registry *editor.Registry) *EditHandler {
	return &EditHandler{registry: registry}
}

// EditResponse reports the effect of an edit and the resulting history state.
type EditResponse struct {
	Changed   bool   `json:"changed"`
	ElementID string `json:"elementId,omitempty"`
	CanUndo   bool   `json:"canUndo"`
	CanRedo   bool   `json:"canRedo"`
}

func editResponse(s *editor.Session, changed bool, elementID string) EditResponse {
	return EditResponse{Changed: changed, ElementID: elementID, CanUndo: s.CanUndo(), CanRedo: s.CanRedo()}
}

// Page returns a single page of a book.
func (h *EditHandler) Page(w http.ResponseWriter, r *http.Request) {
	s := session(w, r, h.registry)
	if s == nil {
		return
	}
	st := s.State()
	index := s.PageIndex(chi.URLParam(r, "pageId"))
	if index < 0 || index >= len(st.Book.Pages) {
		respondError(w, http.StatusNotFound, "page not found")
		return
	}
	respondJSON(w, http.StatusOK, st.Book.Pages[index])
}

// Intent applies one edit intent. Intents that refer to unknown pages or
// elements answer 200 with changed=false.
func (h *EditHandler) Intent(w http.ResponseWriter, r *http.Request) {
	s := session(w, r, h.registry)
	if s == nil {
		return
	}
	var in editor.Intent
	if !decodeJSON(w, r, &in) {
		return
	}

	out, err := s.Apply(r.Context(), in)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, editResponse(s, out.Changed, out.ElementID))
}

// PointerDownRequest starts a gesture on an element.
type PointerDownRequest struct {
	PageID    string      `json:"pageId"`
	ElementID string      `json:"elementId"`
	Mode      editor.Mode `json:"mode"`
	Handle    snap.Handle `json:"handle,omitempty"`
}

// PointerMoveRequest carries the total pointer delta since pointer down, in page percent.
type PointerMoveRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// GestureResponse describes the active gesture after a pointer event.
type GestureResponse struct {
	Active   bool           `json:"active"`
	Geometry *book.Geometry `json:"geometry,omitempty"`
	Guides   []snap.Guide   `json:"guides,omitempty"`
}

// PointerDown starts moving or resizing an element.
func (h *EditHandler) PointerDown(w http.ResponseWriter, r *http.Request) {
	s := session(w, r, h.registry)
	if s == nil {
		return
	}
	var req PointerDownRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	active := s.PointerDown(r.Context(), s.PageIndex(req.PageID), req.ElementID, req.Mode, req.Handle)
	respondJSON(w, http.StatusOK, GestureResponse{Active: active})
}

// PointerMove updates the active gesture and returns the snapped geometry and guides.
func (h *EditHandler) PointerMove(w http.ResponseWriter, r *http.Request) {
	s := session(w, r, h.registry)
	if s == nil {
		return
	}
	var req PointerMoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, active := s.PointerMove(r.Context(), req.DX, req.DY)
	if !active {
		respondJSON(w, http.StatusOK, GestureResponse{})
		return
	}
	respondJSON(w, http.StatusOK, GestureResponse{Active: true, Geometry: &res.Geometry, Guides: res.Guides})
}

// PointerUp ends the active gesture. ?reason=leave ends it because the
// pointer left the page.
func (h *EditHandler) PointerUp(w http.ResponseWriter, r *http.Request) {
	s := session(w, r, h.registry)
	if s == nil {
		return
	}

	var changed bool
	if r.URL.Query().Get("reason") == "leave" {
		changed = s.PointerLeave(r.Context())
	} else {
		changed = s.PointerUp(r.Context())
	}
	respondJSON(w, http.StatusOK, editResponse(s, changed, ""))
}

// Undo restores the previous history entry.
func (h *EditHandler) Undo(w http.ResponseWriter, r *http.Request) {
	s := session(w, r, h.registry)
	if s == nil {
		return
	}
	changed := s.Undo(r.Context())
	respondJSON(w, http.StatusOK, editResponse(s, changed, ""))
}

// Redo re-applies the next history entry.
func (h *EditHandler) Redo(w http.ResponseWriter, r *http.Request) {
	s := session(w, r, h.registry)
	if s == nil {
		return
	}
	changed := s.Redo(r.Context())
	respondJSON(w, http.StatusOK, editResponse(s, changed, ""))
}
