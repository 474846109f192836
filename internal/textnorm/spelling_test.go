package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testCorrections = []Correction{
	{Misspelling: "hoat dong", Correction: "hoạt động"},
	{Misspelling: "hoạt đông", Correction: "hoạt động"},
	{Misspelling: "su kien", Correction: "sự kiện"},
	{Misspelling: "tinh nguyen", Correction: "tình nguyện"},
	{Misspelling: "clb", Correction: "câu lạc bộ"},
}

func TestCorrectSpelling(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"unaccented", "cho toi biet cac hoat dong sap toi", "cho toi biet cac hoạt động sap toi"},
		{"misspelled", "các hoạt đông sắp tới", "các hoạt động sắp tới"},
		{"case insensitive", "Hoat Dong mới", "hoạt động mới"},
		{"keeps original case elsewhere", "chi tiết hoạt động Mùa hè xanh", "chi tiết hoạt động Mùa hè xanh"},
		{"whole words only", "clbx và xclb", "clbx và xclb"},
		{"abbreviation", "ds hđ của CLB tin học", "ds hđ của câu lạc bộ tin học"},
		{"several occurrences", "su kien, su kien", "sự kiện, sự kiện"},
		{"accented neighbour blocks", "ếclb", "ếclb"},
		{"no match", "xin chào", "xin chào"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CorrectSpelling(tt.input, testCorrections))
		})
	}
}

func TestCorrectSpelling_FirstListedWins(t *testing.T) {
	pairs := []Correction{
		{Misspelling: "hoat dong", Correction: "hoạt động"},
		{Misspelling: "dong sap", Correction: "WRONG"},
	}

	assert.Equal(t, "hoạt động sap toi", CorrectSpelling("hoat dong sap toi", pairs))
}

func TestCorrectSpelling_OverlappingCandidate(t *testing.T) {
	pairs := []Correction{{Misspelling: "aa", Correction: "b"}}

	// The first "aa" sits inside a word; the later one stands alone.
	assert.Equal(t, "aaa b", CorrectSpelling("aaa aa", pairs))
}

func TestNewCorrector_SkipsEmpty(t *testing.T) {
	c := NewCorrector([]Correction{{Misspelling: "  ", Correction: "x"}})
	assert.Equal(t, "unchanged", c.Correct("unchanged"))
}
