package filter

import (
	"strings"
)

// Filter keeps links that mention an allowed country or city
type Filter struct {
	keys []string
}

// NewFilter creates a Filter from country and city allow-lists
func NewFilter(countries, cities []string) *Filter {
	var keys []string
	for _, name := range append(append([]string(nil), countries...), cities...) {
		if k := Key(name); k != "" {
			keys = append(keys, k)
		}
	}
	return &Filter{keys: keys}
}

// Key lowercases s and turns spaces and hyphens into underscores, so
// "United Kingdom" and "/wiki/..._United-Kingdom" compare equal.
func Key(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

// ApplyFilters returns the links that match, in input order
func (f *Filter) ApplyFilters(links []string) []string {
	var filtered []string

	for _, link := range links {
		if f.Matches(link) {
			filtered = append(filtered, link)
		}
	}

	return filtered
}

// Matches reports whether link contains any allow-list entry as a substring
func (f *Filter) Matches(link string) bool {
	normalized := Key(link)
	for _, k := range f.keys {
		if strings.Contains(normalized, k) {
			return true
		}
	}
	return false
}
