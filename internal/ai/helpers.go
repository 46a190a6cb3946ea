package ai

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kozaktomas/photobook/internal/book"
)

//go:embed prompts/narrative.txt
var narrativePrompt string

const maxRetries = 3

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// buildNarrativeContent builds the user message for narrative analysis.
// This is shared across all AI providers.
func buildNarrativeContent(req NarrativeRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The collection has %d photos in total.\n", req.TotalPhotos)
	fmt.Fprintf(&b, "You receive %d thumbnails, indexed 0 to %d.\n", len(req.Thumbnails), len(req.Thumbnails)-1)
	if req.TitleHint != "" {
		fmt.Fprintf(&b, "The photos were uploaded from a folder named %q.\n", req.TitleHint)
	}
	return b.String()
}

// parseNarrative decodes a model answer and drops anything the composer cannot use:
// malformed colours and photo indices outside the sample.
func parseNarrative(content string, sampleSize int) (*book.Narrative, error) {
	var n book.Narrative
	if err := json.Unmarshal([]byte(extractJSON(content)), &n); err != nil {
		return nil, err
	}

	palette := n.ColorPalette[:0]
	for _, c := range n.ColorPalette {
		c = strings.TrimSpace(c)
		if hexColor.MatchString(c) {
			palette = append(palette, strings.ToUpper(c))
		}
	}
	n.ColorPalette = palette

	if n.PhotoAnalysis != nil {
		n.PhotoAnalysis.HeroImages = validIndices(n.PhotoAnalysis.HeroImages, sampleSize)
		n.PhotoAnalysis.SupportingImages = validIndices(n.PhotoAnalysis.SupportingImages, sampleSize)
		n.PhotoAnalysis.DetailImages = validIndices(n.PhotoAnalysis.DetailImages, sampleSize)
	}
	if n.SuggestedPages < 0 {
		n.SuggestedPages = 0
	}
	n.Title = strings.TrimSpace(n.Title)

	return &n, nil
}

func validIndices(in []int, size int) []int {
	out := make([]int, 0, len(in))
	seen := map[int]bool{}
	for _, i := range in {
		if i >= 0 && i < size && !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	return out
}

func retryMessage(err error) string {
	return fmt.Sprintf("JSON parse error: %v. Please fix the JSON and try again. Remember to escape quotes inside strings with backslash. Output ONLY valid JSON, no other text.", err)
}

// extractJSON attempts to extract JSON from a response that may contain extra text
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	if start == -1 {
		return content
	}

	depth := 0
	for i := start; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start : i+1]
			}
		}
	}

	return content[start:]
}
