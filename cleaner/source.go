package cleaner

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// sourceBoilerplate strips navigation and social furniture that article
// extractors leave in Italian news and cinema sites.
var sourceBoilerplate = []*regexp.Regexp{
	regexp.MustCompile(`\[.*?\]`),
	regexp.MustCompile(`(?im)^(?:Home|Menu|Cerca|Accedi|Login|Cookie|Privacy|Pubblicità).*$`),
	regexp.MustCompile(`(?m)^\s*\d+\s*/\s*\d+\s*$`),
	regexp.MustCompile(`(?im)^\s*(?:Condividi|Commenta|Like).*$`),
}

var (
	filmVocabulary = regexp.MustCompile(`(?i)film|cinema|regist|attore|trama|storia|critica`)
	blankRuns      = regexp.MustCompile(`\n{3,}`)
)

// minProseLine is the length above which a line is kept without a
// vocabulary match.
const minProseLine = 60

// CleanSourceText cleans article text collected from an outlet other than
// the review site. A line survives when its trimmed text is longer than
// minProseLine or talks about cinema.
func CleanSourceText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, re := range sourceBoilerplate {
		text = re.ReplaceAllString(text, "")
	}

	// Blank lines never qualify, so paragraphs end up on adjacent lines.
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if utf8.RuneCountInString(trimmed) > minProseLine || filmVocabulary.MatchString(trimmed) {
			kept = append(kept, line)
		}
	}

	text = strings.Join(kept, "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
