package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/filmreview/models"
)

var (
	filmPath  = regexp.MustCompile(`/film/(\d{4})/`)
	spaceRuns = regexp.MustCompile(`\s+`)
)

// SearchURL returns the review site's search page for query.
func SearchURL(baseURL, query string) string {
	return strings.TrimRight(baseURL, "/") + "/ricerca/?" + url.Values{"q": {strings.TrimSpace(query)}}.Encode()
}

// SearchFilms looks query up on the review site and returns up to
// models.MaxFilmHits films, each usable as an extraction request. Errors
// are *models.ExtractError.
func (e *Extractor) SearchFilms(ctx context.Context, query string) ([]models.FilmHit, error) {
	req := models.FilmSearchRequest{Query: query}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	searchURL := SearchURL(e.cfg.BaseURL, query)
	log := slog.With("query", strings.TrimSpace(query), "url", searchURL)

	inst, err := e.pool.Acquire(ctx)
	if err != nil {
		log.Warn("search: acquire failed", "error", err)
		return nil, categorizeError(err)
	}
	defer func() {
		if err := e.pool.Release(inst); err != nil {
			log.Warn("search: release failed", "instance", inst.ID, "error", err)
		}
	}()

	page, err := inst.Instance.NewPage(ctx)
	if err != nil {
		return nil, models.NewExtractError(models.ErrCodeNavigation, "failed to open page", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Debug("search: page close failed", "error", err)
		}
	}()
	if err := page.SetUserAgent(e.userAgent); err != nil {
		log.Debug("search: set user agent failed", "error", err)
	}

	if err := e.navigate(ctx, page, searchURL); err != nil {
		if errors.Is(err, errNavigationTimeout) {
			return nil, models.NewExtractError(models.ErrCodeTimeout, "navigation timed out", err)
		}
		if ctx.Err() != nil {
			return nil, categorizeError(ctx.Err())
		}
		return nil, models.NewExtractError(models.ErrCodeSearchFailed, "search page failed to load", err)
	}
	if err := sleepCtx(ctx, e.cfg.SettleDelay); err != nil {
		return nil, categorizeError(err)
	}

	html, err := page.HTML(ctx)
	if err != nil {
		return nil, models.NewExtractError(models.ErrCodeSearchFailed, "failed to read search page", err)
	}
	hits := parseFilmHits(html, searchURL)
	log.Info("search: done", "results", len(hits))
	return hits, nil
}

// parseFilmHits collects links to film pages in document order. Links
// without a year in the path or with a title of two characters or fewer are
// skipped; a title and year seen before is skipped too.
func parseFilmHits(html, pageURL string) []models.FilmHit {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return []models.FilmHit{}
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return []models.FilmHit{}
	}

	hits := []models.FilmHit{}
	seen := make(map[string]bool)
	doc.Find(`a[href*="/film/"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return true
		}
		link := base.ResolveReference(ref)
		m := filmPath.FindStringSubmatch(link.Path)
		if m == nil {
			return true
		}
		year, _ := strconv.Atoi(m[1])

		title := strings.TrimSpace(spaceRuns.ReplaceAllString(a.Text(), " "))
		if title == "" {
			title = titleFromPath(link.Path)
		}
		if len([]rune(title)) <= 2 {
			return true
		}

		key := title + "\x00" + m[1]
		if seen[key] {
			return true
		}
		seen[key] = true
		hits = append(hits, models.FilmHit{Title: title, Year: year, URL: link.String()})
		return len(hits) < models.MaxFilmHits
	})
	return hits
}

// titleFromPath turns the slug after /film/<year>/ back into words.
func titleFromPath(p string) string {
	_, rest, ok := strings.Cut(p, "/film/")
	if !ok {
		return ""
	}
	segments := strings.Split(strings.Trim(rest, "/"), "/")
	if len(segments) < 2 {
		return ""
	}
	return strings.ReplaceAll(segments[1], "-", " ")
}
