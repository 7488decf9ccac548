// Package engine holds the fetch side of the pipeline: the browser pool
// and the staged engines that fetch review articles from other outlets.
package engine

import (
	"context"
	"time"
)

// Engine fetches one article document. Engines are ordered from cheapest
// to heaviest and raced by a Dispatcher.
type Engine interface {
	Name() string
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest names the article to fetch.
type FetchRequest struct {
	URL string

	// Timeout bounds a single engine attempt; zero leaves it to ctx.
	Timeout time.Duration

	// Headers override the engine's browser-like defaults.
	Headers map[string]string
}

// FetchResult is a fetched article document.
type FetchResult struct {
	HTML       string
	Title      string // from <title>, may be empty
	StatusCode int
	FinalURL   string // after redirects
	EngineName string
}

// AcceptFunc decides whether a fetched document is usable. A rejected
// result counts as an engine failure so a heavier engine gets its turn.
type AcceptFunc func(*FetchResult) error
