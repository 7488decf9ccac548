package engine

import (
	"context"
	"fmt"
)

// RenderFunc loads a URL in a pooled browser and returns the rendered page.
// The app package injects it so engine never imports scraper.
type RenderFunc func(ctx context.Context, req *FetchRequest) (*FetchResult, error)

// RodEngine fetches articles that need JavaScript through the browser pool.
type RodEngine struct {
	render RenderFunc
}

// NewRodEngine creates a RodEngine backed by render.
func NewRodEngine(render RenderFunc) *RodEngine {
	return &RodEngine{render: render}
}

func (e *RodEngine) Name() string { return "rod" }

func (e *RodEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if e.render == nil {
		return nil, fmt.Errorf("rod: render func not configured")
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	result, err := e.render(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("rod: %w", err)
	}
	result.EngineName = e.Name()
	return result, nil
}
