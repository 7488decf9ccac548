package cleaner

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Metadata is what the review page says about the review itself. Nil
// fields were not found.
type Metadata struct {
	Author *string
	Date   *string
	Title  *string
}

// word matches letters in any script so Italian weekday and month names
// such as "lunedì" are captured whole.
const word = `[\p{L}\p{N}_]+`

// Patterns are tried in order; structured markup comes before loose text.
var (
	authorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Recensione di\s+([^<\n]+)`),
		regexp.MustCompile(`(?i)class="autore"[^>]*>([^<]+)`),
		regexp.MustCompile(`(?i)by\s+([A-Z][a-z]+\s+[A-Z][a-z]+)`),
	}

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(` + word + `\s+\d{1,2}\s+` + word + `\s+\d{4})`),
		regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4})`),
		regexp.MustCompile(`(\d{1,2}-\d{1,2}-\d{4})`),
		regexp.MustCompile(`(` + word + `\s+\d{4})`),
	}

	titlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<title>([^<]+)\s*-\s*Film`),
		regexp.MustCompile(`(?i)<h1[^>]*>([^<]+)</h1>`),
		regexp.MustCompile(`(?i)name="title"[^>]*content="([^"]+)"`),
	}

	titleSiteSuffix = regexp.MustCompile(`\s*-\s*MYmovies\.it.*`)
	hasYear         = regexp.MustCompile(`\d{4}`)
)

// Date candidates containing any of these are page furniture, not the
// review date. "2025-" filters machine timestamps of the crawl year.
var dateRejects = []string{"Copyright", "2025-"}

// ExtractMetadata reads author, date and title from raw review page HTML.
func ExtractMetadata(html string) Metadata {
	var m Metadata
	if author := firstSubmatch(html, authorPatterns); author != "" {
		m.Author = &author
	}
	if date := firstDate(html); date != "" {
		m.Date = &date
	}
	if title := firstSubmatch(html, titlePatterns); title != "" {
		title = strings.TrimSpace(titleSiteSuffix.ReplaceAllString(title, ""))
		if title != "" {
			m.Title = &title
		}
	}
	return m
}

func firstSubmatch(html string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if sm := re.FindStringSubmatch(html); sm != nil {
			if v := strings.TrimSpace(sm[1]); v != "" {
				return v
			}
		}
	}
	return ""
}

func firstDate(html string) string {
	for _, re := range datePatterns {
		for _, sm := range re.FindAllStringSubmatch(html, -1) {
			if c := strings.TrimSpace(sm[1]); plausibleDate(c) {
				return c
			}
		}
	}
	return ""
}

func plausibleDate(c string) bool {
	if utf8.RuneCountInString(c) <= 8 || !hasYear.MatchString(c) {
		return false
	}
	for _, r := range dateRejects {
		if strings.Contains(c, r) {
			return false
		}
	}
	return true
}
