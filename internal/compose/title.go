package compose

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// DefaultTitle is used when neither enrichment nor the source name gives a title.
const DefaultTitle = "My Photobook"

// TitleFromFolder derives a book title from a directory or upload name
// (e.g., "summer_trip-2024" -> "Summer Trip 2024").
func TitleFromFolder(path string) string {
	name := filepath.Base(filepath.Clean(path))
	if name == "." || name == string(filepath.Separator) {
		return DefaultTitle
	}

	name = norm.NFC.String(name)
	name = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(name)
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return DefaultTitle
	}
	return cases.Title(language.Und).String(name)
}
