package layout

import (
	"math/rand/v2"
	"strings"
	"time"
)

// Role is the narrative position of a page in the book.
type Role string

const (
	RoleCover   Role = "cover"
	RoleOpening Role = "opening"
	RoleContent Role = "content"
	RoleClosing Role = "closing"
)

var byCount = map[int][]string{
	1: {"full", "classic-top", "classic-bottom"},
	2: {"split-v", "split-h", "diagonal"},
	3: {"focus-left", "focus-right", "three-col", "three-row"},
}

var (
	closingSingle = []string{"classic-top", "classic-bottom"}
	closingDouble = []string{"split-v", "split-h"}
)

// Assigner picks layouts for pages. It is not safe for concurrent use.
type Assigner struct {
	rng *rand.Rand
}

// NewAssigner creates an assigner whose random tie-breaks are driven by seed.
// A zero seed uses the current time.
func NewAssigner(seed uint64) *Assigner {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Assigner{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Candidates returns the layouts eligible for a page before the no-repeat and
// hero preferences are applied.
func Candidates(photoCount int, role Role) []string {
	switch role {
	case RoleCover, RoleOpening:
		return []string{DefaultID}
	case RoleClosing:
		if photoCount >= 2 {
			return closingDouble
		}
		return closingSingle
	}
	n := min(max(photoCount, 1), 3)
	return byCount[n]
}

// Select returns a layout id for a page holding photoCount photos.
func (a *Assigner) Select(photoCount int, role Role, previousID string, hasHero bool) string {
	candidates := Candidates(photoCount, role)

	fresh := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if id != previousID {
			fresh = append(fresh, id)
		}
	}
	if len(fresh) > 0 {
		candidates = fresh
	}

	if hasHero && photoCount >= 2 {
		var focus []string
		for _, id := range candidates {
			if strings.Contains(id, "focus") {
				focus = append(focus, id)
			}
		}
		if len(focus) > 0 {
			candidates = focus
		}
	}

	if len(candidates) == 1 {
		return candidates[0]
	}
	return candidates[a.rng.IntN(len(candidates))]
}
