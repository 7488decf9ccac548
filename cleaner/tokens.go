package cleaner

import (
	"strings"
	"unicode/utf8"
)

// CharCount counts Unicode code points. Every length threshold in the
// extraction pipeline is expressed in characters, not bytes.
func CharCount(text string) int {
	return utf8.RuneCountInString(text)
}

// WordCount counts whitespace-separated tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Window returns the text from before characters ahead of the byte offset
// at up to after characters past it, clamped to the text.
func Window(text string, at, before, after int) string {
	if at < 0 || at > len(text) {
		return ""
	}
	start := at
	for n := 0; n < before && start > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(text[:start])
		start -= size
	}
	end := at
	for n := 0; n < after && end < len(text); n++ {
		_, size := utf8.DecodeRuneInString(text[end:])
		end += size
	}
	return text[start:end]
}
