package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/use-agent/filmreview/cleaner"
	"github.com/use-agent/filmreview/config"
	"github.com/use-agent/filmreview/engine"
	"github.com/use-agent/filmreview/models"
)

// Thresholds are in characters.
const (
	minReviewChars   = 50
	minCaptureChars  = 200
	minDOMBlockChars = 100
	windowBefore     = 200
	windowAfter      = 8000
)

// reviewMarkers locate the review body in the captured document, most
// specific first.
var reviewMarkers = []string{`<p class="corpo">`, `class="corpo"`}

// reviewSection and reviewSelectors drive the in-page query.
const reviewSection = "#recensione"

var reviewSelectors = []string{"p.corpo", ".corpo", "p"}

// Pool hands out browser instances. *engine.BrowserPool satisfies it.
type Pool interface {
	Acquire(ctx context.Context) (*engine.PooledInstance, error)
	Release(inst *engine.PooledInstance) error
}

// ReviewStore persists successful extractions and returns where the
// review was written.
type ReviewStore interface {
	Save(title string, year int, result *models.ExtractionResult) (string, error)
}

// Extractor runs the single-review pipeline against the review site.
type Extractor struct {
	pool      Pool
	cfg       config.ExtractorConfig
	userAgent string
	store     ReviewStore
	match     string
}

// NewExtractor creates an Extractor. store may be nil to disable
// persistence.
func NewExtractor(pool Pool, cfg config.ExtractorConfig, userAgent string, store ReviewStore) *Extractor {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 20 * time.Second
	}
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}
	return &Extractor{
		pool:      pool,
		cfg:       cfg,
		userAgent: userAgent,
		store:     store,
		match:     captureMatch(cfg.BaseURL),
	}
}

// capturedReview is the outcome of the capture tiers.
type capturedReview struct {
	text   string
	method models.ExtractionMethod
	meta   cleaner.Metadata
}

// Extract fetches and cleans the review of one film. It never returns a
// nil result; failures are reported through Success, Error and ErrorCode.
func (e *Extractor) Extract(ctx context.Context, req *models.ExtractionRequest) (result *models.ExtractionResult) {
	start := time.Now()
	result = &models.ExtractionResult{}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("extract: panic", "title", req.Title, "panic", r)
			result.Review = models.Review{}
			result.Fail(models.ErrCodeInternal, fmt.Sprintf("internal error: %v", r))
		}
		result.Metadata.ProcessingTimeMs = time.Since(start).Milliseconds()
	}()

	if err := req.Validate(); err != nil {
		failWith(result, err)
		return result
	}
	if req.Options.Headless != nil {
		slog.Debug("extract: headless option ignored, pooled browsers keep their launch mode",
			"headless", *req.Options.Headless)
	}

	title := strings.TrimSpace(req.Title)
	slug := NormalizeTitle(title)
	result.URL = BuildReviewURL(e.cfg.BaseURL, title, req.Year)
	log := slog.With("title", title, "year", req.Year, "url", result.URL)

	inst, err := e.pool.Acquire(ctx)
	if err != nil {
		log.Warn("extract: acquire failed", "error", err)
		failWith(result, categorizeError(err))
		return result
	}
	defer func() {
		if err := e.pool.Release(inst); err != nil {
			log.Warn("extract: release failed", "instance", inst.ID, "error", err)
		}
	}()
	log.Debug("extract: browser acquired", "instance", inst.ID)

	captured, err := e.capture(ctx, inst.Instance, result.URL, slug, log)
	if err != nil {
		log.Info("extract: failed", "error", err)
		failWith(result, err)
		return result
	}

	log.Debug("extract: cleaning", "method", captured.method, "length", cleaner.CharCount(captured.text))
	if cleaner.CharCount(captured.text) <= minReviewChars {
		result.Fail(models.ErrCodeNotFound, models.MsgReviewNotFound)
		log.Info("extract: review not found")
		return result
	}

	reviewTitle := captured.meta.Title
	if reviewTitle == nil {
		reviewTitle = &title
	}
	result.Success = true
	result.Review = models.Review{
		Content: captured.text,
		Author:  captured.meta.Author,
		Date:    captured.meta.Date,
		Title:   reviewTitle,
	}
	result.Metadata.ExtractionMethod = captured.method
	result.Metadata.ContentLength = cleaner.CharCount(captured.text)
	result.Metadata.WordCount = cleaner.WordCount(captured.text)
	log.Info("extract: done",
		"method", captured.method,
		"content_length", result.Metadata.ContentLength,
	)

	if e.store != nil && !req.Options.SkipPersist {
		path, err := e.store.Save(title, req.Year, result)
		if err != nil {
			log.Warn("extract: persist failed", "error", err)
		} else {
			result.SavedPath = path
		}
	}
	return result
}

// capture loads the review page and runs both tiers.
func (e *Extractor) capture(ctx context.Context, inst engine.Instance, pageURL, slug string, log *slog.Logger) (*capturedReview, error) {
	page, err := inst.NewPage(ctx)
	if err != nil {
		return nil, models.NewExtractError(models.ErrCodeNavigation, "failed to open page", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Debug("extract: page close failed", "error", err)
		}
	}()

	if err := page.SetUserAgent(e.userAgent); err != nil {
		log.Debug("extract: set user agent failed", "error", err)
	}

	rc := newResponseCapture(e.match)
	stop := page.OnResponse(rc.handle)
	defer stop()

	log.Debug("extract: page loading")
	if err := e.navigate(ctx, page, pageURL); err != nil {
		return nil, navigationError(err, slug)
	}

	log.Debug("extract: settling", "delay", e.cfg.SettleDelay)
	if err := sleepCtx(ctx, e.cfg.SettleDelay); err != nil {
		return nil, categorizeError(err)
	}

	log.Debug("extract: extracting")
	out := &capturedReview{}
	resp, ok := rc.Response()
	if ok {
		out.meta = cleaner.ExtractMetadata(resp.Body)
		if text := fromDocument(resp.Body, out.meta); text != "" {
			out.text = text
			out.method = models.MethodResponseCapture
		}
	} else {
		log.Debug("extract: no document response captured")
		if html, err := page.HTML(ctx); err == nil {
			out.meta = cleaner.ExtractMetadata(html)
		}
	}

	if cleaner.CharCount(out.text) < minCaptureChars {
		raw, err := page.QueryText(ctx, reviewSection, reviewSelectors, minDOMBlockChars)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, categorizeError(ctxErr)
			}
			log.Debug("extract: in-page query failed", "error", err)
		} else if text := cleaner.CleanReview(raw, out.meta); cleaner.CharCount(text) > cleaner.CharCount(out.text) {
			out.text = text
			out.method = models.MethodDOMFallback
		}
	}
	return out, nil
}

// navigate bounds navigation alone by the navigation timeout.
func (e *Extractor) navigate(ctx context.Context, page engine.Page, pageURL string) error {
	navCtx, cancel := context.WithTimeout(ctx, e.cfg.NavigationTimeout)
	defer cancel()

	err := page.Navigate(navCtx, pageURL)
	if err == nil {
		return nil
	}
	if errors.Is(navCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w: %w", errNavigationTimeout, err)
	}
	return err
}

var errNavigationTimeout = errors.New("navigation timed out")

// fromDocument scans the captured document for the review markers and
// returns the first cleaned window longer than minCaptureChars.
func fromDocument(html string, meta cleaner.Metadata) string {
	best := ""
	for _, marker := range reviewMarkers {
		i := strings.Index(html, marker)
		if i < 0 {
			continue
		}
		text := cleaner.CleanReview(cleaner.Window(html, i, windowBefore, windowAfter), meta)
		if n := cleaner.CharCount(text); n > cleaner.CharCount(best) && n > minCaptureChars {
			best = text
			break
		}
	}
	return best
}

// navigationError classifies a failed navigation. A title that normalizes
// to nothing cannot have a review page, so it is reported as not found.
func navigationError(err error, slug string) *models.ExtractError {
	switch {
	case errors.Is(err, errNavigationTimeout):
		return models.NewExtractError(models.ErrCodeTimeout, "navigation timed out", err)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return categorizeError(err)
	case slug == "":
		return models.NewExtractError(models.ErrCodeNotFound, models.MsgReviewNotFound, err)
	default:
		return models.NewExtractError(models.ErrCodeNavigation, "navigation failed", err)
	}
}

// categorizeError maps pool and context errors to an ExtractError.
func categorizeError(err error) *models.ExtractError {
	var xe *models.ExtractError
	switch {
	case errors.As(err, &xe):
		return xe
	case errors.Is(err, engine.ErrPoolClosed):
		return models.NewExtractError(models.ErrCodePoolShutdown, "browser pool is shut down", err)
	case errors.Is(err, engine.ErrLaunchFailed):
		return models.NewExtractError(models.ErrCodeBrowserLaunch, "failed to launch browser", err)
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewExtractError(models.ErrCodeTimeout, "request deadline exceeded", err)
	case errors.Is(err, context.Canceled):
		return models.NewExtractError(models.ErrCodeNavigation, "request cancelled", err)
	default:
		return models.NewExtractError(models.ErrCodeInternal, "unexpected error", err)
	}
}

// failWith records err on result. The message of a not-found error is kept
// verbatim so callers can match on it.
func failWith(result *models.ExtractionResult, err error) {
	xe := categorizeError(err)
	msg := xe.Message
	if xe.Err != nil && xe.Code != models.ErrCodeNotFound {
		msg = fmt.Sprintf("%s: %v", xe.Message, xe.Err)
	}
	result.Fail(xe.Code, msg)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
