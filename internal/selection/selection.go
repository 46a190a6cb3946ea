// Package selection turns quality scores into placement tiers. Tiers only
// decide placement priority; exclusion is reserved for clearly unusable photos.
package selection

import (
	"fmt"
	"slices"

	"github.com/kozaktomas/photobook/internal/constants"
	"github.com/kozaktomas/photobook/internal/photo"
	"github.com/kozaktomas/photobook/internal/quality"
)

type Tier string

const (
	TierHero       Tier = "hero"
	TierFeatured   Tier = "featured"
	TierStandard   Tier = "standard"
	TierSupporting Tier = "supporting"
)

// Rank orders tiers for sorting, hero first.
func (t Tier) Rank() int {
	switch t {
	case TierHero:
		return 0
	case TierFeatured:
		return 1
	case TierStandard:
		return 2
	default:
		return 3
	}
}

// TierFor classifies an overall score.
func TierFor(overall float64) Tier {
	switch {
	case overall >= constants.HeroThreshold:
		return TierHero
	case overall >= constants.FeaturedThreshold:
		return TierFeatured
	case overall >= constants.StandardThreshold:
		return TierStandard
	default:
		return TierSupporting
	}
}

// Scored pairs a photo with its analysis result.
type Scored struct {
	Record photo.Record
	Score  quality.Score
}

// SelectedPhoto is a photo chosen for the book. It is not modified after selection.
type SelectedPhoto struct {
	Record    photo.Record
	Score     quality.Score
	Tier      Tier
	Rationale string
}

type Options struct {
	IncludeAll bool // keep every photo, even clearly unusable ones
}

type Result struct {
	Selected []SelectedPhoto
	Excluded []photo.Record
}

// shouldExclude reports whether a photo is unusable and why.
func shouldExclude(s quality.Score) (bool, string) {
	if s.Overall < constants.ExcludeOverallBelow {
		return true, fmt.Sprintf("overall score %.0f is below %.0f", s.Overall, constants.ExcludeOverallBelow)
	}
	if s.Sharpness < constants.ExcludeSharpnessBelow && s.Lighting < constants.ExcludeLightingBelow {
		return true, fmt.Sprintf("both blurry (%.0f) and badly lit (%.0f)", s.Sharpness, s.Lighting)
	}
	return false, ""
}

func rationale(s quality.Score, tier Tier) string {
	if s.Fallback {
		return "could not be analyzed, placed with a neutral score"
	}
	var reason string
	switch tier {
	case TierHero:
		reason = "standout photo"
	case TierFeatured:
		reason = "strong photo"
	case TierStandard:
		reason = "solid photo"
	default:
		reason = "kept to tell the full story"
	}

	strongest, value := "sharpness", s.Sharpness
	if s.Lighting > value {
		strongest, value = "lighting", s.Lighting
	}
	if s.Composition > value {
		strongest, value = "composition", s.Composition
	}
	return fmt.Sprintf("%s (overall %.0f, best at %s %.0f)", reason, s.Overall, strongest, value)
}

// Select tiers every photo and drops only clearly unusable ones. Selected is
// sorted hero first; photos of the same tier keep their input order.
func Select(scored []Scored, opts Options) Result {
	var res Result
	for _, sc := range scored {
		if !opts.IncludeAll {
			if excluded, _ := shouldExclude(sc.Score); excluded {
				res.Excluded = append(res.Excluded, sc.Record)
				continue
			}
		}
		tier := TierFor(sc.Score.Overall)
		res.Selected = append(res.Selected, SelectedPhoto{
			Record:    sc.Record,
			Score:     sc.Score,
			Tier:      tier,
			Rationale: rationale(sc.Score, tier),
		})
	}

	slices.SortStableFunc(res.Selected, func(a, b SelectedPhoto) int {
		return a.Tier.Rank() - b.Tier.Rank()
	})
	return res
}

// ExclusionReason explains why a score would be excluded, or "" when it is kept.
func ExclusionReason(s quality.Score) string {
	_, reason := shouldExclude(s)
	return reason
}
