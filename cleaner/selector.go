package cleaner

import (
	"bytes"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// hostSelectors narrows known outlets to their review body before the
// generic extractors run. Keys are hostnames without "www.".
var hostSelectors = map[string]string{
	"mymovies.it":         "#recensione p.corpo, #recensione .corpo",
	"ilpost.it":           "article .entry-content, #singleBody",
	"sentieriselvaggi.it": "article .entry-content",
	"quinlan.it":          "article .entry-content",
	"cinematographe.it":   "article .entry-content",
	"taxidrivers.it":      "article .entry-content",
	"movieplayer.it":      "article .article-body, .article__body",
	"comingsoon.it":       ".contenuto-articolo, article",
	"badtaste.it":         "article .entry-content, .single-content",
}

// SelectorForHost returns the content selector registered for host, or "".
func SelectorForHost(host string) string {
	return hostSelectors[strings.TrimPrefix(strings.ToLower(host), "www.")]
}

// ApplyCSSSelector parses rawHTML, matches elements against the given CSS
// selector, and returns the concatenated outer HTML of all matched elements
// wrapped in a minimal document.
//
// If no elements match, the original rawHTML is returned unchanged so that
// downstream processing still has something to work with.
func ApplyCSSSelector(rawHTML string, selector string) (string, error) {
	sel, err := cascadia.Parse(selector)
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}

	matches := cascadia.QueryAll(doc, sel)
	if len(matches) == 0 {
		return rawHTML, nil
	}

	var buf bytes.Buffer
	buf.WriteString("<html><body><article>")
	for _, node := range matches {
		if err := html.Render(&buf, node); err != nil {
			return "", err
		}
	}
	buf.WriteString("</article></body></html>")

	return buf.String(), nil
}
