package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeader(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{"simple", "Restaurant", "restaurant"},
		{"spaces", "  First awarded  ", "first_awarded"},
		{"punctuation run", "Year (first) -- awarded", "year_first_awarded"},
		{"accents", "Cuisine é", "cuisine_e"},
		{"accented word", "Città", "citta"},
		{"leading and trailing symbols", "**Notes**", "notes"},
		{"integer header", 0, "0"},
		{"nil header", nil, "nil"},
		{"empty", "", ""},
		{"only symbols", "!!!", ""},
		{"already normalized", "first_awarded", "first_awarded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Header(tt.input))
		})
	}
}

func TestHeaderIdempotent(t *testing.T) {
	inputs := []string{
		"Restaurant",
		"First awarded",
		"Città / Town",
		"  __Year__  ",
		"Ørsted's Kök",
		"Michelin ★★",
		"",
		"a--b__c  d",
	}

	for _, in := range inputs {
		once := Header(in)
		assert.Equal(t, once, Header(once), "input %q", in)
		assert.Regexp(t, `^([a-z0-9]+(_[a-z0-9]+)*)?$`, once)
	}
}

func TestASCII(t *testing.T) {
	assert.Equal(t, "Cafe", ASCII("Café"))
	assert.Equal(t, "Zurich", ASCII("Zürich"))
	assert.Equal(t, "Malmo", ASCII("Malmö"))
}

func TestText(t *testing.T) {
	assert.Equal(t, "Le Bernardin", Text("  Le Bernardin\n"))
	assert.Equal(t, "", Text(" \t "))
}
