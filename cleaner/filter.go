package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelectors are page regions that never hold review text.
var noiseSelectors = []string{
	"script", "style", "noscript", "iframe", "form",
	"nav", "header", "footer", "aside",
	"[class*=cookie]", "[id*=cookie]", "[class*=consent]",
	"[class*=share]", "[class*=social]", "[class*=newsletter]",
	"[class*=related]", "#comments", ".comments-area", ".comment-list",
	"[class*=banner]", "[class*=advert]", "[id*=adv]",
}

// StripNoise removes navigation, social and advertising regions from raw
// HTML. It returns the input unchanged if it cannot be parsed.
func StripNoise(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	doc.Find(strings.Join(noiseSelectors, ", ")).Remove()

	result, err := doc.Html()
	if err != nil {
		return rawHTML
	}
	return result
}
