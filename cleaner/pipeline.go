package cleaner

import (
	"log/slog"
	nurl "net/url"
)

// SourceDocument turns the HTML of an article on any outlet into cleaned
// review text:
//
//  1. Narrow to the outlet's review body when a selector is registered.
//  2. Drop navigation, social and advertising regions.
//  3. Extract the main text with readability and trafilatura.
//  4. Remove the remaining line-level boilerplate.
func SourceDocument(rawHTML, sourceURL string) Article {
	doc := rawHTML

	if u, err := nurl.Parse(sourceURL); err == nil {
		if sel := SelectorForHost(u.Hostname()); sel != "" {
			narrowed, err := ApplyCSSSelector(doc, sel)
			if err != nil {
				slog.Warn("selector: invalid host selector", "host", u.Hostname(), "error", err)
			} else {
				doc = narrowed
			}
		}
	}

	doc = StripNoise(doc)

	article := ExtractArticle(doc, sourceURL)
	article.Text = CleanSourceText(article.Text)
	return article
}
