package text

import (
	"strings"
	"unicode/utf8"
)

// SplitOnWordBoundary splits text into blocks of at most max characters
// (runes). Blocks are only cut between words, except a single word longer
// than max which is cut hard into max sized pieces.
func SplitOnWordBoundary(text string, max int) []string {
	words := strings.Fields(text)
	if max < 1 {
		return words
	}

	var blocks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			blocks = append(blocks, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, word := range words {
		wordLen := utf8.RuneCountInString(word)

		if currentLen > 0 {
			if currentLen+1+wordLen <= max {
				current.WriteByte(' ')
				current.WriteString(word)
				currentLen += 1 + wordLen
				continue
			}
			flush()
		}

		for wordLen > max {
			head, tail := splitAtRune(word, max)
			blocks = append(blocks, head)
			word = tail
			wordLen -= max
		}
		current.WriteString(word)
		currentLen = wordLen
	}
	flush()

	return blocks
}

func splitAtRune(s string, n int) (string, string) {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], s[pos:]
		}
		i++
	}
	return s, ""
}
