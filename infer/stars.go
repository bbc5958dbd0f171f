package infer

import (
	"regexp"
	"strings"
)

// MaxStars is the highest Michelin rating
const MaxStars = 3

var (
	starImagePattern = regexp.MustCompile(`michelin[_-]?star`)
	svgPattern       = regexp.MustCompile(`<svg`)
)

const starGlyph = "★"

// Stars infers a 1-3 star rating from a table row's HTML. Three signals are
// counted independently: Michelin star image names, inline svg icons and the
// ★ glyph. The largest count wins and is capped at MaxStars. No signal at
// all yields nil, never zero.
func Stars(rowMarkup string) *int {
	html := strings.ToLower(rowMarkup)

	images := len(starImagePattern.FindAllStringIndex(html, -1))
	icons := len(svgPattern.FindAllStringIndex(html, -1))
	glyphs := strings.Count(html, starGlyph)

	count := max(images, icons, glyphs)
	if count == 0 {
		return nil
	}
	count = min(count, MaxStars)
	return &count
}
