package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestYear(t *testing.T) {
	tests := []struct {
		name     string
		input    *string
		expected *int
	}{
		{"nil input", nil, nil},
		{"awarded in", strPtr("Awarded in 2015"), intPtr(2015)},
		{"since", strPtr("since 2001"), intPtr(2001)},
		{"first match wins", strPtr("1998, lost 2004, regained 2010"), intPtr(1998)},
		{"year embedded in word", strPtr("ref2019b"), intPtr(2019)},
		{"unknown text", strPtr("unknown"), nil},
		{"empty", strPtr(""), nil},
		{"whitespace", strPtr("   "), nil},
		{"nineteenth century date", strPtr("March 5, 1885"), intPtr(1885)},
		{"short number", strPtr("3"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Year(tt.input)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.expected, *got)
		})
	}
}

func TestYearOf(t *testing.T) {
	assert.Nil(t, YearOf(nil))
	assert.Nil(t, YearOf((*string)(nil)))

	got := YearOf(2007)
	require.NotNil(t, got)
	assert.Equal(t, 2007, *got)
}

func TestStars(t *testing.T) {
	tests := []struct {
		name     string
		markup   string
		expected *int
	}{
		{"no signal", `<tr><td>Le Cinq</td><td>Paris</td></tr>`, nil},
		{"empty", "", nil},
		{"two glyphs", `<tr><td>Le Cinq</td><td>★★</td></tr>`, intPtr(2)},
		{"one svg icon", `<tr><td>X</td><td><SVG viewBox="0 0 10 10"></svg></td></tr>`, intPtr(1)},
		{"star image class", `<tr><td><img class="Michelin-Star"/><img class="michelin_star"/></td></tr>`, intPtr(2)},
		{"image without separator", `<tr><td><img src="/MichelinStar.png"/></td></tr>`, intPtr(1)},
		{"max of signals", `<tr><td>★</td><td><svg></svg><svg></svg></td></tr>`, intPtr(2)},
		{"clamped", `<tr><td>★★★★★</td></tr>`, intPtr(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Stars(tt.markup)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.expected, *got)
		})
	}
}

func intPtr(n int) *int {
	return &n
}
