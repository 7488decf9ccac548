package scraper

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/filmreview/engine"
	"github.com/ysmood/gson"
)

var _ engine.Page = (*rodPage)(nil)

// queryTextJS returns the longest rendered text longer than minLen among the
// elements matched by selectors inside scope, or the whole scope's text.
const queryTextJS = `(scope, selectors, minLen) => {
	const root = document.querySelector(scope);
	if (!root) return "";
	let best = "";
	for (const sel of selectors) {
		for (const el of root.querySelectorAll(sel)) {
			const text = el.innerText || "";
			if (text.length > best.length && text.length > minLen) best = text;
		}
	}
	return best || root.innerText || "";
}`

// rodPage adapts a rod tab to engine.Page.
type rodPage struct {
	page    *rod.Page
	client  *http.Client
	blocked []string

	mu       sync.Mutex
	handlers map[int]func(engine.Response)
	nextID   int
	router   *rod.HijackRouter
}

func newRodPage(page *rod.Page, client *http.Client, blocked []string) *rodPage {
	return &rodPage{
		page:     page,
		client:   client,
		blocked:  blocked,
		handlers: make(map[int]func(engine.Response)),
	}
}

func (p *rodPage) SetUserAgent(ua string) error {
	return p.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      ua,
		AcceptLanguage: "it-IT",
	})
}

// OnResponse installs the request router on first use. Handlers run on the
// router goroutine.
func (p *rodPage) OnResponse(handler func(engine.Response)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.handlers[id] = handler
	if p.router == nil {
		p.router = setupHijack(p.page, p.blocked, p.client, p.dispatch)
	}

	return func() {
		p.mu.Lock()
		delete(p.handlers, id)
		p.mu.Unlock()
	}
}

func (p *rodPage) dispatch(resp engine.Response) {
	p.mu.Lock()
	handlers := make([]func(engine.Response), 0, len(p.handlers))
	for _, h := range p.handlers {
		handlers = append(handlers, h)
	}
	p.mu.Unlock()

	for _, h := range handlers {
		h(resp)
	}
}

// Navigate returns after DOMContentLoaded. The wait listener is registered
// before navigation so a fast load is not missed.
func (p *rodPage) Navigate(ctx context.Context, url string) error {
	pg := p.page.Context(ctx)
	wait := pg.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := pg.Navigate(url); err != nil {
		return err
	}
	wait()
	return ctx.Err()
}

func (p *rodPage) QueryText(ctx context.Context, scope string, selectors []string, minLen int) (string, error) {
	sels := make([]any, len(selectors))
	for i, s := range selectors {
		sels[i] = s
	}
	res, err := p.page.Context(ctx).Eval(queryTextJS, scope, sels, minLen)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (p *rodPage) HTML(ctx context.Context) (string, error) {
	return p.page.Context(ctx).HTML()
}

// Close stops the router and closes the tab. It uses the page without any
// request context so cleanup succeeds after a deadline.
func (p *rodPage) Close() error {
	p.mu.Lock()
	router := p.router
	p.router = nil
	p.mu.Unlock()

	if router != nil {
		if err := router.Stop(); err != nil {
			slog.Debug("hijack router stop failed", "error", err)
		}
	}
	return p.page.Close()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
