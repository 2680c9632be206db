package text

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSplitOnWordBoundary(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		max      int
		expected []string
	}{
		{"wordBoundary", "aaaa bbbb cccc", 9, []string{"aaaa bbbb", "cccc"}},
		{"hardSplit", "xxxxxxxxxx", 4, []string{"xxxx", "xxxx", "xx"}},
		{"fitsCompletely", "hello world", 11, []string{"hello world"}},
		{"collapsesWhitespace", "  hello \n\t world  ", 100, []string{"hello world"}},
		{"empty", "", 10, nil},
		{"onlyWhitespace", " \n ", 10, nil},
		{"longWordInTheMiddle", "ab cdefghij kl", 4, []string{"ab", "cdef", "ghij", "kl"}},
		{"remainderJoinsNextWord", "abcdef g", 4, []string{"abcd", "ef g"}},
		{"exactMultiple", "abcdefgh", 4, []string{"abcd", "efgh"}},
		{"countsRunes", "äöü äöü", 7, []string{"äöü äöü"}},
		{"hardSplitRunes", "üüüüü", 2, []string{"üü", "üü", "ü"}},
		{"invalidMax", "a b", 0, []string{"a", "b"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual := SplitOnWordBoundary(c.text, c.max)
			assert.Equal(t, c.expected, actual)
		})
	}
}

func TestSplitOnWordBoundary_neverExceedsMax(t *testing.T) {
	input := strings.Repeat("Das ist ein etwas längerer Satz mit Donaudampfschifffahrtsgesellschaftskapitän. ", 40)

	for _, max := range []int{1, 5, 12, 80, 500} {
		blocks := SplitOnWordBoundary(input, max)
		for _, block := range blocks {
			assert.LessOrEqual(t, utf8.RuneCountInString(block), max)
			assert.NotEmpty(t, block)
		}
		assert.Equal(t, strings.Join(strings.Fields(input), ""), strings.ReplaceAll(strings.Join(blocks, ""), " ", ""))
	}
}
