package multisource

import (
	"regexp"
	"strings"

	"github.com/use-agent/filmreview/cleaner"
)

const minCandidateChars = 200

var (
	filmVocabulary  = regexp.MustCompile(`(?i)film|cinema|regist|attore|protagonista|trama|storia|regia`)
	sentenceBreaker = regexp.MustCompile(`[.!?]`)
)

// scoringTerms each add 0.1 to a candidate's confidence when present.
var scoringTerms = []string{"regista", "attore", "protagonista", "trama", "regia", "recitazione"}

// IsValidCandidate reports whether text looks like a review rather than a
// teaser, listing or navigation page.
func IsValidCandidate(text string) bool {
	if cleaner.CharCount(text) < minCandidateChars {
		return false
	}
	if !filmVocabulary.MatchString(text) {
		return false
	}
	return len(sentenceBreaker.Split(text, -1)) > 8
}

// Score returns the confidence in [0, 1] that text is a genuine review.
func Score(text string) float64 {
	var score float64
	switch n := cleaner.CharCount(text); {
	case n >= 2000:
		score = 0.4
	case n >= 1000:
		score = 0.3
	case n >= 500:
		score = 0.2
	}

	lower := strings.ToLower(text)
	for _, term := range scoringTerms {
		if strings.Contains(lower, term) {
			score += 0.1
		}
	}
	if score > 1 {
		score = 1
	}
	return score
}
