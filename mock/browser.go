package mock

import (
	"context"

	"github.com/use-agent/filmreview/engine"
)

var (
	_ engine.Launcher = (*Launcher)(nil)
	_ engine.Instance = (*Instance)(nil)
	_ engine.Page     = (*Page)(nil)
)

// Launcher is a mock implementation of engine.Launcher.
type Launcher struct {
	LaunchFn func(ctx context.Context) (engine.Instance, error)
}

func (l *Launcher) Launch(ctx context.Context) (engine.Instance, error) {
	return l.LaunchFn(ctx)
}

// Instance is a mock implementation of engine.Instance.
type Instance struct {
	NewPageFn func(ctx context.Context) (engine.Page, error)
	CloseFn   func() error
}

func (i *Instance) NewPage(ctx context.Context) (engine.Page, error) {
	return i.NewPageFn(ctx)
}

func (i *Instance) Close() error {
	if i.CloseFn == nil {
		return nil
	}
	return i.CloseFn()
}

// Page is a mock implementation of engine.Page.
type Page struct {
	SetUserAgentFn func(ua string) error
	OnResponseFn   func(handler func(engine.Response)) func()
	NavigateFn     func(ctx context.Context, url string) error
	QueryTextFn    func(ctx context.Context, scope string, selectors []string, minLen int) (string, error)
	HTMLFn         func(ctx context.Context) (string, error)
	CloseFn        func() error
}

func (p *Page) SetUserAgent(ua string) error {
	if p.SetUserAgentFn == nil {
		return nil
	}
	return p.SetUserAgentFn(ua)
}

func (p *Page) OnResponse(handler func(engine.Response)) func() {
	if p.OnResponseFn == nil {
		return func() {}
	}
	return p.OnResponseFn(handler)
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	return p.NavigateFn(ctx, url)
}

func (p *Page) QueryText(ctx context.Context, scope string, selectors []string, minLen int) (string, error) {
	if p.QueryTextFn == nil {
		return "", nil
	}
	return p.QueryTextFn(ctx, scope, selectors, minLen)
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	if p.HTMLFn == nil {
		return "", nil
	}
	return p.HTMLFn(ctx)
}

func (p *Page) Close() error {
	if p.CloseFn == nil {
		return nil
	}
	return p.CloseFn()
}
