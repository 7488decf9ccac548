package cleaner

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
)

// minArticleChars is the TextContent length below which an extractor is
// considered to have missed the article body.
const minArticleChars = 200

// Article is the main text of a fetched page.
type Article struct {
	Title string
	Text  string

	// Extractor names the algorithm that produced Text.
	Extractor string
}

// ExtractArticle runs go-readability and go-trafilatura over rawHTML and
// keeps the longer body. Either may fail on a given layout; the caller only
// gets an empty Article when both did.
func ExtractArticle(rawHTML, sourceURL string) Article {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("article: invalid source URL", "url", sourceURL, "error", err)
		parsedURL = nil
	}

	best := fromReadability(rawHTML, parsedURL)
	if alt := fromTrafilatura(rawHTML, parsedURL); CharCount(alt.Text) > CharCount(best.Text) {
		if alt.Title == "" {
			alt.Title = best.Title
		}
		best = alt
	}

	if CharCount(best.Text) < minArticleChars {
		slog.Debug("article: extracted body too short",
			"url", sourceURL, "length", CharCount(best.Text), "extractor", best.Extractor)
	}
	return best
}

func fromReadability(rawHTML string, u *nurl.URL) Article {
	if u == nil {
		return Article{}
	}
	article, err := readability.FromReader(strings.NewReader(rawHTML), u)
	if err != nil {
		slog.Debug("readability: extraction failed", "url", u.String(), "error", err)
		return Article{}
	}
	return Article{
		Title:     strings.TrimSpace(article.Title),
		Text:      strings.TrimSpace(article.TextContent),
		Extractor: "readability",
	}
}

func fromTrafilatura(rawHTML string, u *nurl.URL) Article {
	opts := trafilatura.Options{
		EnableFallback: true,
		OriginalURL:    u,
	}
	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil || result == nil {
		slog.Debug("trafilatura: extraction failed", "error", err)
		return Article{}
	}
	return Article{
		Title:     strings.TrimSpace(result.Metadata.Title),
		Text:      strings.TrimSpace(result.ContentText),
		Extractor: "trafilatura",
	}
}
