package scraper

import (
	"net/url"
	"strings"
	"sync"

	"github.com/use-agent/filmreview/engine"
)

// responseCapture keeps the first HTML document response whose URL contains
// match. Later responses on the same page are ignored.
type responseCapture struct {
	match string
	once  sync.Once
	done  chan struct{}
	resp  engine.Response
}

func newResponseCapture(match string) *responseCapture {
	return &responseCapture{match: match, done: make(chan struct{})}
}

// handle is registered with Page.OnResponse.
func (c *responseCapture) handle(r engine.Response) {
	if !strings.Contains(r.URL, c.match) || !strings.Contains(r.ContentType, "text/html") {
		return
	}
	c.once.Do(func() {
		c.resp = r
		close(c.done)
	})
}

// Response returns the captured response without waiting.
func (c *responseCapture) Response() (engine.Response, bool) {
	select {
	case <-c.done:
		return c.resp, true
	default:
		return engine.Response{}, false
	}
}

// captureMatch derives the URL fragment identifying film pages on the
// review site, e.g. "mymovies.it/film".
func captureMatch(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return "mymovies.it/film"
	}
	return strings.TrimPrefix(u.Host, "www.") + "/film"
}
