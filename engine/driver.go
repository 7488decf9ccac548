package engine

import "context"

// Launcher starts headless browser instances for the pool.
type Launcher interface {
	Launch(ctx context.Context) (Instance, error)
}

// Instance is one running browser process.
type Instance interface {
	// NewPage opens a fresh tab.
	NewPage(ctx context.Context) (Page, error)

	// Close terminates the browser process.
	Close() error
}

// Page is the subset of page operations the extraction pipeline needs.
type Page interface {
	// SetUserAgent overrides the user agent for every request the page makes.
	SetUserAgent(ua string) error

	// OnResponse registers handler for document responses received by the
	// page. It must be called before Navigate. The returned func stops
	// delivery.
	OnResponse(handler func(Response)) (stop func())

	// Navigate loads url and returns once DOMContentLoaded fired or ctx is done.
	Navigate(ctx context.Context, url string) error

	// QueryText evaluates in the page: inside the element matched by scope,
	// it tries each selector in order and returns the longest rendered text
	// longer than minLen. When no element qualifies it returns the whole
	// scope's rendered text, or "" when scope is missing.
	QueryText(ctx context.Context, scope string, selectors []string, minLen int) (string, error)

	// HTML returns the current serialized document.
	HTML(ctx context.Context) (string, error)

	Close() error
}

// Response is a network response observed by a Page.
type Response struct {
	URL         string
	ContentType string
	Status      int
	Body        string
}
