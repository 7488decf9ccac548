package cleaner

import (
	"regexp"
	"strings"
)

var (
	scriptBlock  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	styleBlock   = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`)
	anyTag       = regexp.MustCompile(`<[^>]*>`)
	namedEntity  = regexp.MustCompile(`(?i)&[a-z]+;`)
	decimalRef   = regexp.MustCompile(`&#\d+;`)
	whitespace   = regexp.MustCompile(`\s+`)
	reviewPrefix = `(?i)(?:Recensione di\s+)?`
)

// reviewBoilerplate is applied in order after markup and metadata removal.
// Patterns anchored with $ drop everything that follows them: comment
// forms, third-party overviews and truncated markup only ever trail the
// review body.
var reviewBoilerplate = []*regexp.Regexp{
	// Leading remnants of a tag cut by the capture window.
	regexp.MustCompile(`(?i)^(?:[a-z_]+"?>\s*)+`),
	regexp.MustCompile(`^(?:[^<>]{0,120}?["']\s*/?>\s*)+`),

	regexp.MustCompile(`(?i)&#x[0-9A-F]+;`),

	// Comment submission confirmation.
	regexp.MustCompile(`Il tuo commento è stato registrato\.[\s\S]*$`),
	regexp.MustCompile(`Convalida adesso il tuo inserimento\.[\s\S]*$`),

	// Another critic's overview appended after the review.
	regexp.MustCompile(`Overview di [^.]+\s+(?:lunedì|martedì|mercoledì|giovedì|venerdì|sabato|domenica)[\s\S]*$`),

	// Trailing form fields and markup truncated by the capture window.
	regexp.MustCompile(`<input[^>]*>[\s\S]*$`),
	regexp.MustCompile(`\s*<[^>]*>[\s\S]*$`),
	regexp.MustCompile(`\s*<[^>]*$`),

	// Branding.
	regexp.MustCompile(`(?i)MYmovies\.it`),
	regexp.MustCompile(`(?i)Film \(\d{4}\)`),

	// Separator rules.
	regexp.MustCompile(`(?m)^={10,}$`),
	regexp.MustCompile(`(?m)^-{10,}$`),
}

// CleanReview turns a raw block of review page HTML into plain review text.
// Author and date found in meta are removed from the body. Applying it to
// its own output returns the output unchanged.
func CleanReview(raw string, meta Metadata) string {
	s := scriptBlock.ReplaceAllString(raw, "")
	s = styleBlock.ReplaceAllString(s, "")
	s = anyTag.ReplaceAllString(s, " ")
	s = namedEntity.ReplaceAllString(s, " ")
	s = decimalRef.ReplaceAllString(s, " ")
	s = collapse(s)

	if meta.Author != nil && strings.TrimSpace(*meta.Author) != "" {
		re := regexp.MustCompile(reviewPrefix + regexp.QuoteMeta(strings.TrimSpace(*meta.Author)))
		s = re.ReplaceAllString(s, "")
	}
	if meta.Date != nil && strings.TrimSpace(*meta.Date) != "" {
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(strings.TrimSpace(*meta.Date)))
		s = re.ReplaceAllString(s, "")
	}

	s = strings.TrimSpace(s)
	for _, re := range reviewBoilerplate {
		s = re.ReplaceAllString(s, "")
	}
	return collapse(s)
}

func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
