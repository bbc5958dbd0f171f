// Package normalize canonicalizes table headers and cell text.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/kennygrant/sanitize"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Header maps a raw column header to a lowercase ASCII token such as
// "first_awarded". Any value is accepted and formatted with fmt.Sprint first.
func Header(raw interface{}) string {
	s := ASCII(fmt.Sprint(raw))
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnum.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// ASCII transliterates accented and ligature characters to their closest
// ASCII equivalents. Characters with no equivalent are left in place.
func ASCII(s string) string {
	s = sanitize.Accents(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Text collapses every run of unicode whitespace (including non-breaking
// spaces) into a single space and trims the ends.
func Text(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
