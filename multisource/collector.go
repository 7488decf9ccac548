package multisource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/use-agent/filmreview/cleaner"
	"github.com/use-agent/filmreview/config"
	"github.com/use-agent/filmreview/engine"
	"github.com/use-agent/filmreview/models"
	"github.com/use-agent/filmreview/search"
	"github.com/use-agent/filmreview/simhash"
)

// maxHitsPerHost bounds how many search results are fetched for one host.
const maxHitsPerHost = 2

// nearDuplicateBits is the SimHash distance under which two candidates are
// logged as syndicated copies.
const nearDuplicateBits = 3

// Fetcher retrieves the HTML of an article. *engine.Dispatcher satisfies it.
type Fetcher interface {
	Dispatch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error)
}

// Searcher resolves bare hosts to article URLs. *search.Client satisfies it.
type Searcher interface {
	Reviews(ctx context.Context, title string, year int, hosts []string) ([]search.Hit, error)
}

// Collector gathers review candidates for one film from several outlets.
type Collector struct {
	fetcher     Fetcher
	searcher    Searcher
	sites       []string
	concurrency int
	timeout     time.Duration
	limiter     *hostLimiter
}

// NewCollector creates a Collector. searcher may be nil, in which case
// bare hosts are reported as failures.
func NewCollector(cfg config.MultiSourceConfig, fetcher Fetcher, searcher Searcher) *Collector {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Collector{
		fetcher:     fetcher,
		searcher:    searcher,
		sites:       cfg.Sites,
		concurrency: concurrency,
		timeout:     cfg.HTTPTimeout,
		limiter:     newHostLimiter(cfg.HostRPS),
	}
}

// target is one article to fetch.
type target struct {
	source string
	url    string
	host   string
	title  string
}

// ExtractMultiSource collects, validates, scores and ranks reviews of the
// film from sources. Each source is an absolute article URL or a bare host;
// an empty list means the configured sites. A source that yields nothing
// is reported in Failures and never fails the whole call.
func (c *Collector) ExtractMultiSource(ctx context.Context, title string, year int, sources []string) (*models.MultiSourceResponse, error) {
	req := models.MultiSourceRequest{Title: title, Year: year, Sources: sources}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	title = strings.TrimSpace(title)

	if len(sources) == 0 {
		sources = c.sites
	}

	resp := &models.MultiSourceResponse{
		Title:      title,
		Year:       year,
		Candidates: []models.ReviewCandidate{},
	}

	targets, failures := c.resolve(ctx, title, year, sources)
	resp.Failures = append(resp.Failures, failures...)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Debug("multisource: fetching", "title", title, "year", year, "targets", len(targets))

	found := make([]*models.ReviewCandidate, len(targets))
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for i, t := range targets {
		g.Go(func() error {
			cand, err := c.collect(ctx, t)
			if err != nil {
				slog.Debug("multisource: source rejected", "url", t.url, "error", err)
				mu.Lock()
				resp.Failures = append(resp.Failures, models.SourceFailure{Source: t.url, Reason: err.Error()})
				mu.Unlock()
				return nil
			}
			found[i] = cand
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cands []models.ReviewCandidate
	for _, cand := range found {
		if cand != nil {
			cands = append(cands, *cand)
		}
	}
	resp.Candidates = Deduplicate(cands)
	logNearDuplicates(resp.Candidates)

	resp.TimingMs = time.Since(start).Milliseconds()
	slog.Info("multisource: done",
		"title", title, "year", year,
		"candidates", len(resp.Candidates),
		"failures", len(resp.Failures),
		"timing_ms", resp.TimingMs,
	)
	return resp, nil
}

// resolve splits sources into direct URLs and bare hosts, and turns the
// hosts into article URLs through search.
func (c *Collector) resolve(ctx context.Context, title string, year int, sources []string) ([]target, []models.SourceFailure) {
	var targets []target
	var failures []models.SourceFailure
	var hosts []string

	for _, src := range sources {
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}
		if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
			u, err := url.Parse(src)
			if err != nil || u.Hostname() == "" {
				failures = append(failures, models.SourceFailure{Source: src, Reason: "invalid URL"})
				continue
			}
			targets = append(targets, target{source: src, url: src, host: strings.ToLower(u.Hostname())})
			continue
		}
		hosts = append(hosts, strings.ToLower(strings.TrimPrefix(src, "www.")))
	}

	if len(hosts) == 0 {
		return targets, failures
	}
	if c.searcher == nil {
		for _, h := range hosts {
			failures = append(failures, models.SourceFailure{Source: h, Reason: "search is not configured"})
		}
		return targets, failures
	}

	hits, err := c.searcher.Reviews(ctx, title, year, hosts)
	if err != nil {
		slog.Warn("multisource: search failed", "title", title, "error", err)
		for _, h := range hosts {
			failures = append(failures, models.SourceFailure{Source: h, Reason: fmt.Sprintf("search failed: %v", err)})
		}
		return targets, failures
	}

	perHost := make(map[string]int, len(hosts))
	for _, hit := range hits {
		u, err := url.Parse(hit.URL)
		if err != nil {
			continue
		}
		host := matchHost(strings.ToLower(u.Hostname()), hosts)
		if host == "" || perHost[host] >= maxHitsPerHost {
			continue
		}
		perHost[host]++
		targets = append(targets, target{source: host, url: hit.URL, host: strings.ToLower(u.Hostname()), title: hit.Title})
	}
	for _, h := range hosts {
		if perHost[h] == 0 {
			failures = append(failures, models.SourceFailure{Source: h, Reason: "no search results"})
		}
	}
	return targets, failures
}

// collect fetches one article and turns it into a scored candidate.
func (c *Collector) collect(ctx context.Context, t target) (*models.ReviewCandidate, error) {
	if err := c.limiter.Wait(ctx, t.host); err != nil {
		return nil, err
	}

	res, err := c.fetcher.Dispatch(ctx, &engine.FetchRequest{URL: t.url, Timeout: c.timeout})
	if err != nil {
		return nil, models.NewExtractError(models.ErrCodeSourceFailed, "fetch failed", err)
	}

	finalURL := res.FinalURL
	if finalURL == "" {
		finalURL = t.url
	}
	article := cleaner.SourceDocument(res.HTML, finalURL)
	if !IsValidCandidate(article.Text) {
		return nil, errors.New("document does not look like a review")
	}

	candTitle := firstNonEmpty(article.Title, t.title, res.Title)
	return &models.ReviewCandidate{
		SourceHost:  t.host,
		URL:         t.url,
		Title:       candTitle,
		Content:     article.Text,
		Confidence:  Score(article.Text),
		Fingerprint: simhash.Hex(simhash.Fingerprint(article.Text)),
		Engine:      res.EngineName,
	}, nil
}

// AcceptDocument rejects fetched pages whose article text is too short to
// be a review, so the dispatcher escalates to the rendering engine.
func AcceptDocument(res *engine.FetchResult) error {
	article := cleaner.SourceDocument(res.HTML, res.FinalURL)
	if n := cleaner.CharCount(article.Text); n < minCandidateChars {
		return fmt.Errorf("article text too short (%d chars)", n)
	}
	return nil
}

// matchHost returns the requested host that host belongs to.
func matchHost(host string, hosts []string) string {
	host = strings.TrimPrefix(host, "www.")
	for _, h := range hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return h
		}
	}
	return ""
}

func logNearDuplicates(cands []models.ReviewCandidate) {
	fps := make([]uint64, len(cands))
	for i, c := range cands {
		fps[i] = simhash.Fingerprint(c.Content)
	}
	for i := range cands {
		for j := i + 1; j < len(cands); j++ {
			if simhash.Similar(fps[i], fps[j], nearDuplicateBits) {
				slog.Debug("multisource: near-duplicate candidates",
					"url", cands[i].URL, "other", cands[j].URL,
					"distance", simhash.Distance(fps[i], fps[j]))
			}
		}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
