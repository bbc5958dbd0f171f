// Package infer derives missing record fields from noisy cell text and row markup.
package infer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
)

var yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

// maxFuzzyWindow bounds the number of consecutive tokens tried as a date
const maxFuzzyWindow = 4

// minYear rejects parses that only recovered a time of day or a partial date
const minYear = 1000

// Year extracts a year from raw. The first 19xx/20xx substring wins; otherwise
// the text is searched for anything that parses as a date. Nil is returned
// when raw is nil or nothing matches.
func Year(raw *string) *int {
	if raw == nil {
		return nil
	}
	return yearFromText(*raw)
}

// YearOf is Year for arbitrary cell values. Nil values yield nil.
func YearOf(v interface{}) *int {
	if v == nil {
		return nil
	}
	if s, ok := v.(*string); ok {
		return Year(s)
	}
	return yearFromText(fmt.Sprint(v))
}

func yearFromText(s string) *int {
	if m := yearPattern.FindString(s); m != "" {
		year, _ := strconv.Atoi(m)
		return &year
	}
	return fuzzyYear(s)
}

// fuzzyYear tries the whole string first and then every window of up to
// maxFuzzyWindow tokens, longest windows first.
func fuzzyYear(s string) (year *int) {
	defer func() {
		if r := recover(); r != nil {
			year = nil
		}
	}()

	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if y, ok := parseDateYear(s); ok {
		return &y
	}

	tokens := strings.Fields(s)
	for size := min(maxFuzzyWindow, len(tokens)); size > 0; size-- {
		for start := 0; start+size <= len(tokens); start++ {
			candidate := strings.Trim(strings.Join(tokens[start:start+size], " "), ",;:()[]")
			if y, ok := parseDateYear(candidate); ok {
				return &y
			}
		}
	}
	return nil
}

func parseDateYear(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	t, err := dateparse.ParseAny(s)
	if err != nil || t.Year() < minYear {
		return 0, false
	}
	return t.Year(), true
}
