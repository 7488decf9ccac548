package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/filmreview/engine"
)

// Renderer loads arbitrary article URLs in pooled browsers. Its Render
// method is the engine.RenderFunc behind the dispatcher's rod engine.
type Renderer struct {
	pool      Pool
	userAgent string
	settle    time.Duration
}

// NewRenderer creates a Renderer sharing pool with the Extractor.
func NewRenderer(pool Pool, userAgent string, settle time.Duration) *Renderer {
	return &Renderer{pool: pool, userAgent: userAgent, settle: settle}
}

var _ engine.RenderFunc = (*Renderer)(nil).Render

// Render navigates to req.URL, waits for late scripts and returns the
// rendered document.
func (r *Renderer) Render(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	inst, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := r.pool.Release(inst); err != nil {
			slog.Warn("render: release failed", "instance", inst.ID, "error", err)
		}
	}()

	page, err := inst.Instance.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if r.userAgent != "" {
		if err := page.SetUserAgent(r.userAgent); err != nil {
			slog.Debug("render: set user agent failed", "url", req.URL, "error", err)
		}
	}
	rc := newResponseCapture("")
	stop := page.OnResponse(rc.handle)
	defer stop()

	if err := page.Navigate(ctx, req.URL); err != nil {
		return nil, fmt.Errorf("navigating: %w", err)
	}
	if err := sleepCtx(ctx, r.settle); err != nil {
		return nil, err
	}

	html, err := page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	status := 200
	finalURL := req.URL
	if resp, ok := rc.Response(); ok {
		if resp.Status != 0 {
			status = resp.Status
		}
		finalURL = resp.URL
	}
	if status >= 400 {
		return nil, fmt.Errorf("HTTP %d", status)
	}
	return &engine.FetchResult{HTML: html, StatusCode: status, FinalURL: finalURL}, nil
}
