package handlers

import (
	"net/http"
	"strconv"

	"github.com/kozaktomas/photobook/internal/layout"
)

// ListLayouts returns every layout template. With ?photos=N (and optionally
// ?role=) only the candidates for that photo count are returned.
func ListLayouts(w http.ResponseWriter, r *http.Request) {
	all := layout.All()

	q := r.URL.Query().Get("photos")
	if q == "" {
		respondJSON(w, http.StatusOK, all)
		return
	}
	n, err := strconv.Atoi(q)
	if err != nil || n < 0 {
		respondError(w, http.StatusBadRequest, "photos must be a non-negative number")
		return
	}

	role := layout.Role(r.URL.Query().Get("role"))
	if role == "" {
		role = layout.RoleContent
	}
	candidates := make(map[string]bool)
	for _, id := range layout.Candidates(n, role) {
		candidates[id] = true
	}

	out := make([]layout.Template, 0, len(candidates))
	for _, t := range all {
		if candidates[t.ID] {
			out = append(out, t)
		}
	}
	respondJSON(w, http.StatusOK, out)
}
