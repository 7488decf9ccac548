package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultBaseURL is the review site origin.
const DefaultBaseURL = "https://www.mymovies.it"

// foldDiacritics maps the accented letters the site drops from its slugs.
// Letters outside this table are removed by slugStrip.
var foldDiacritics = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ã", "a", "ä", "a", "å", "a",
	"è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i",
	"ò", "o", "ó", "o", "ô", "o", "õ", "o", "ö", "o", "ø", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u",
	"ý", "y", "ÿ", "y",
	"ñ", "n",
	"ç", "c",
)

var (
	slugStrip = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugJoin  = regexp.MustCompile(`[\s-]+`)
	lower     = cases.Lower(language.Und)
)

// NormalizeTitle turns a film title into the site's URL slug: lowercase,
// accents folded, punctuation dropped, runs of whitespace and hyphens joined
// by a single hyphen. The result matches ^[a-z0-9-]*$, never starts or ends
// with a hyphen, and is its own slug.
func NormalizeTitle(title string) string {
	s := lower.String(title)
	s = foldDiacritics.Replace(s)
	s = slugStrip.ReplaceAllString(s, "")
	s = slugJoin.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// BuildReviewURL returns the review anchor URL for a film. An empty slug
// still produces a well-formed URL.
func BuildReviewURL(baseURL, title string, year int) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return fmt.Sprintf("%s/film/%d/%s/#recensione", strings.TrimRight(baseURL, "/"), year, NormalizeTitle(title))
}
