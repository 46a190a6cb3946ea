// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Analysis constants
const (
	// AnalysisMaxEdge is the maximum long-edge size (px) an image is downscaled to before scoring
	AnalysisMaxEdge = 400

	// AnalysisChunkSize is the number of photos analyzed before yielding
	AnalysisChunkSize = 8

	// NeutralScore is used for every sub-score when a photo cannot be decoded or analyzed
	NeutralScore = 70.0

	// HighResolutionWidth is the minimum original width (px) that earns the resolution bonus
	HighResolutionWidth = 1200

	// ResolutionBonus is added to the overall score of high resolution photos
	ResolutionBonus = 10.0

	// DominantColorCount is the maximum number of dominant colors extracted per photo
	DominantColorCount = 5
)

// Overall score weights
const (
	SharpnessWeight   = 0.35
	LightingWeight    = 0.30
	CompositionWeight = 0.25
)

// Tier thresholds (inclusive lower bounds on the overall score)
const (
	HeroThreshold     = 80.0
	FeaturedThreshold = 60.0
	StandardThreshold = 40.0
)

// Exclusion constants
const (
	// ExcludeOverallBelow excludes a photo whose overall score is below this value
	ExcludeOverallBelow = 15.0

	// ExcludeSharpnessBelow and ExcludeLightingBelow exclude a photo only when both hold
	ExcludeSharpnessBelow = 10.0
	ExcludeLightingBelow  = 10.0
)

// Composition constants
const (
	// MaxPages caps the generated page count
	MaxPages = 60

	// MinPages is the generous minimum for thin books
	MinPages = 6

	// ClosingPhotoThreshold marks pages as closing once this many photos (or fewer) remain
	ClosingPhotoThreshold = 3

	// HeroPositionInterval is the positional hero fallback used without AI enrichment
	HeroPositionInterval = 5

	// MinBackgroundLightness is the CIE L a photo colour needs to serve as a page background
	MinBackgroundLightness = 0.75
)

// Editing constants
const (
	// HistoryCapacity is the maximum number of undo snapshots kept per session
	HistoryCapacity = 50

	// SnapThreshold is the distance (page percent) within which an edge snaps to a target
	SnapThreshold = 0.8
)

// Enrichment constants
const (
	// DefaultSampleSize bounds the number of thumbnails sent to the AI provider
	DefaultSampleSize = 12

	// ThumbnailMaxSize is the long edge (px) of thumbnails sent to the AI provider
	ThumbnailMaxSize = 512
)
