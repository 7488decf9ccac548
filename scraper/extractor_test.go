package scraper

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/filmreview/cleaner"
	"github.com/use-agent/filmreview/config"
	"github.com/use-agent/filmreview/engine"
	"github.com/use-agent/filmreview/mock"
	"github.com/use-agent/filmreview/models"
)

const oppenheimerSentence = "Christopher Nolan racconta l'uomo che ha cambiato il Novecento con una regia che alterna colore e bianco e nero. "

var oppenheimerReview = strings.TrimSpace(strings.Repeat(oppenheimerSentence, 6))

// oppenheimerPage mimics a review page: metadata above the corpo block,
// a comment confirmation below it.
var oppenheimerPage = reviewPage(strings.Repeat(oppenheimerSentence, 6))

func reviewPage(corpo string) string {
	return `<html><head><title>Oppenheimer - Film (2023) - MYmovies.it</title></head><body>` +
		strings.Repeat(" ", 400) +
		`<section id="recensione">
<div class="autore">Recensione di Marianna Cappi</div>
<div class="data">mercoledì 23 agosto 2023</div>
<p class="corpo">` + corpo + `</p>
</section>
<div class="commenti">Il tuo commento è stato registrato. Grazie per la partecipazione.</div>
</body></html>`
}

const emptyPage = `<html><head><title>Pagina non trovata</title></head><body><p>La pagina richiesta non esiste.</p></body></html>`

// fakePool counts acquisitions and releases.
type fakePool struct {
	inst       engine.Instance
	acquireErr error
	releaseErr error
	acquired   atomic.Int32
	released   atomic.Int32
}

func (p *fakePool) Acquire(ctx context.Context) (*engine.PooledInstance, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.acquired.Add(1)
	return &engine.PooledInstance{ID: 1, Instance: p.inst}, nil
}

func (p *fakePool) Release(inst *engine.PooledInstance) error {
	p.released.Add(1)
	return p.releaseErr
}

type fakeStore struct {
	saved []string
	err   error
}

func (s *fakeStore) Save(title string, year int, result *models.ExtractionResult) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, title)
	return "reviews/" + NormalizeTitle(title) + "_review.txt", nil
}

// pageServing returns a page whose navigation delivers body as the
// document response.
func pageServing(body string, navigated *[]string) *mock.Page {
	var handler func(engine.Response)
	return &mock.Page{
		OnResponseFn: func(h func(engine.Response)) func() {
			handler = h
			return func() {}
		},
		NavigateFn: func(ctx context.Context, url string) error {
			if navigated != nil {
				*navigated = append(*navigated, url)
			}
			if handler != nil {
				handler(engine.Response{
					URL:         strings.TrimSuffix(url, "#recensione"),
					ContentType: "text/html; charset=utf-8",
					Status:      200,
					Body:        body,
				})
			}
			return nil
		},
		HTMLFn: func(ctx context.Context) (string, error) { return body, nil },
	}
}

func poolWith(page engine.Page) *fakePool {
	return &fakePool{inst: &mock.Instance{
		NewPageFn: func(ctx context.Context) (engine.Page, error) { return page, nil },
	}}
}

func newTestExtractor(pool Pool, store ReviewStore) *Extractor {
	return NewExtractor(pool, config.ExtractorConfig{BaseURL: DefaultBaseURL}, "", store)
}

func TestExtractor_ResponseCapture(t *testing.T) {
	t.Parallel()
	var navigated []string
	page := pageServing(oppenheimerPage, &navigated)
	page.QueryTextFn = func(ctx context.Context, scope string, selectors []string, minLen int) (string, error) {
		t.Error("in-page query must not run when the captured document has the review")
		return "", nil
	}
	pool := poolWith(page)
	store := &fakeStore{}

	res := newTestExtractor(pool, store).Extract(context.Background(), &models.ExtractionRequest{Title: "Oppenheimer", Year: 2023})

	require.True(t, res.Success, "error: %v", res.Error)
	assert.Nil(t, res.Error)
	assert.Equal(t, []string{"https://www.mymovies.it/film/2023/oppenheimer/#recensione"}, navigated)
	assert.Equal(t, "https://www.mymovies.it/film/2023/oppenheimer/#recensione", res.URL)
	assert.Equal(t, oppenheimerReview, res.Review.Content)
	require.NotNil(t, res.Review.Author)
	assert.Equal(t, "Marianna Cappi", *res.Review.Author)
	require.NotNil(t, res.Review.Date)
	assert.Equal(t, "mercoledì 23 agosto 2023", *res.Review.Date)
	require.NotNil(t, res.Review.Title)
	assert.Equal(t, "Oppenheimer", *res.Review.Title)

	assert.Equal(t, models.MethodResponseCapture, res.Metadata.ExtractionMethod)
	assert.Equal(t, len([]rune(oppenheimerReview)), res.Metadata.ContentLength)
	assert.Equal(t, len(strings.Fields(oppenheimerReview)), res.Metadata.WordCount)
	assert.GreaterOrEqual(t, res.Metadata.ProcessingTimeMs, int64(0))

	assert.Equal(t, []string{"Oppenheimer"}, store.saved)
	assert.Equal(t, "reviews/oppenheimer_review.txt", res.SavedPath)
	assert.Equal(t, int32(1), pool.released.Load())
}

func TestExtractor_LongReviewCapture(t *testing.T) {
	t.Parallel()
	corpo := strings.TrimSpace(strings.Repeat(oppenheimerSentence, 57)[:6400])
	page := pageServing(reviewPage(corpo), nil)
	page.QueryTextFn = func(ctx context.Context, scope string, selectors []string, minLen int) (string, error) {
		t.Error("in-page query must not run when the captured document has the review")
		return "", nil
	}

	res := newTestExtractor(poolWith(page), nil).Extract(context.Background(), &models.ExtractionRequest{Title: "Oppenheimer", Year: 2023})

	require.True(t, res.Success, "error: %v", res.Error)
	assert.Equal(t, models.MethodResponseCapture, res.Metadata.ExtractionMethod)
	assert.InDelta(t, 6400, res.Metadata.ContentLength, 64)
	assert.Equal(t, corpo, res.Review.Content)
	assert.NotContains(t, res.Review.Content, "Il tuo commento")
}

func TestExtractor_DOMFallback(t *testing.T) {
	t.Parallel()
	page := pageServing(emptyPage, nil)
	var gotScope string
	var gotSelectors []string
	page.QueryTextFn = func(ctx context.Context, scope string, selectors []string, minLen int) (string, error) {
		gotScope, gotSelectors = scope, selectors
		assert.Equal(t, 100, minLen)
		return "  " + oppenheimerReview + "\n\nMYmovies.it  ", nil
	}
	pool := poolWith(page)

	res := newTestExtractor(pool, nil).Extract(context.Background(), &models.ExtractionRequest{Title: "Oppenheimer", Year: 2023})

	require.True(t, res.Success, "error: %v", res.Error)
	assert.Equal(t, models.MethodDOMFallback, res.Metadata.ExtractionMethod)
	assert.Equal(t, oppenheimerReview, res.Review.Content)
	assert.Equal(t, "#recensione", gotScope)
	assert.Equal(t, []string{"p.corpo", ".corpo", "p"}, gotSelectors)
	require.NotNil(t, res.Review.Title)
	assert.Equal(t, "Oppenheimer", *res.Review.Title, "title falls back to the request")
	assert.Nil(t, res.Review.Author)
	assert.Empty(t, res.SavedPath)
	assert.Equal(t, int32(1), pool.released.Load())
}

func TestExtractor_ReviewNotFound(t *testing.T) {
	t.Parallel()
	pool := poolWith(pageServing(emptyPage, nil))
	store := &fakeStore{}

	res := newTestExtractor(pool, store).Extract(context.Background(), &models.ExtractionRequest{Title: "NoSuchFilmXYZ", Year: 2023})

	assert.False(t, res.Success)
	require.NotNil(t, res.Error)
	assert.Equal(t, "review not found", *res.Error)
	assert.Equal(t, models.ErrCodeNotFound, res.ErrorCode)
	assert.Empty(t, res.Metadata.ExtractionMethod)
	assert.Empty(t, store.saved)
	assert.Equal(t, int32(1), pool.released.Load())
}

func TestExtractor_SkipPersist(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	res := newTestExtractor(poolWith(pageServing(oppenheimerPage, nil)), store).Extract(context.Background(),
		&models.ExtractionRequest{Title: "Oppenheimer", Year: 2023, Options: models.ExtractionOptions{SkipPersist: true}})

	require.True(t, res.Success)
	assert.Empty(t, store.saved)
	assert.Empty(t, res.SavedPath)
}

func TestExtractor_PersistFailureIsNotFatal(t *testing.T) {
	t.Parallel()
	store := &fakeStore{err: errors.New("disk full")}
	res := newTestExtractor(poolWith(pageServing(oppenheimerPage, nil)), store).Extract(context.Background(),
		&models.ExtractionRequest{Title: "Oppenheimer", Year: 2023})

	assert.True(t, res.Success)
	assert.Empty(t, res.SavedPath)
}

func TestExtractor_InvalidInputSkipsNavigation(t *testing.T) {
	t.Parallel()
	var navigated []string
	pool := poolWith(pageServing(oppenheimerPage, &navigated))

	for _, req := range []*models.ExtractionRequest{
		{Title: "Oppenheimer", Year: 1850},
		{Title: "Oppenheimer", Year: 2031},
		{Title: "   ", Year: 2023},
	} {
		res := newTestExtractor(pool, nil).Extract(context.Background(), req)
		assert.False(t, res.Success)
		assert.Equal(t, models.ErrCodeInvalidInput, res.ErrorCode)
	}
	assert.Empty(t, navigated)
	assert.Equal(t, int32(0), pool.acquired.Load())
}

func TestExtractor_EmptySlugNavigationFailure(t *testing.T) {
	t.Parallel()
	var navigated string
	page := &mock.Page{
		NavigateFn: func(ctx context.Context, url string) error {
			navigated = url
			return errors.New("net::ERR_ABORTED")
		},
	}
	pool := poolWith(page)

	res := newTestExtractor(pool, nil).Extract(context.Background(), &models.ExtractionRequest{Title: "!!!", Year: 2025})

	assert.Equal(t, "https://www.mymovies.it/film/2025//#recensione", navigated)
	assert.False(t, res.Success)
	assert.Equal(t, models.ErrCodeNotFound, res.ErrorCode)
	assert.Equal(t, "review not found", *res.Error)
	assert.Equal(t, int32(1), pool.released.Load())
}

func TestExtractor_NavigationFailure(t *testing.T) {
	t.Parallel()
	page := &mock.Page{
		NavigateFn: func(ctx context.Context, url string) error { return errors.New("net::ERR_NAME_NOT_RESOLVED") },
	}

	res := newTestExtractor(poolWith(page), nil).Extract(context.Background(), &models.ExtractionRequest{Title: "Oppenheimer", Year: 2023})

	assert.Equal(t, models.ErrCodeNavigation, res.ErrorCode)
	assert.Contains(t, *res.Error, "ERR_NAME_NOT_RESOLVED")
}

func TestExtractor_NavigationTimeout(t *testing.T) {
	t.Parallel()
	page := &mock.Page{
		NavigateFn: func(ctx context.Context, url string) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}
	pool := poolWith(page)
	ex := NewExtractor(pool, config.ExtractorConfig{NavigationTimeout: 20 * time.Millisecond}, "", nil)

	res := ex.Extract(context.Background(), &models.ExtractionRequest{Title: "Oppenheimer", Year: 2023})

	assert.False(t, res.Success)
	assert.Equal(t, models.ErrCodeTimeout, res.ErrorCode)
	assert.Equal(t, int32(1), pool.released.Load())
}

func TestExtractor_PoolErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"shutdown", engine.ErrPoolClosed, models.ErrCodePoolShutdown},
		{"launch", errors.Join(engine.ErrLaunchFailed, errors.New("no chromium")), models.ErrCodeBrowserLaunch},
		{"deadline", context.DeadlineExceeded, models.ErrCodeTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := &fakePool{acquireErr: tt.err}
			res := newTestExtractor(pool, nil).Extract(context.Background(), &models.ExtractionRequest{Title: "Oppenheimer", Year: 2023})
			assert.False(t, res.Success)
			assert.Equal(t, tt.code, res.ErrorCode)
			assert.Equal(t, int32(0), pool.released.Load())
		})
	}
}

func TestExtractor_RecoversPanic(t *testing.T) {
	t.Parallel()
	page := &mock.Page{
		NavigateFn: func(ctx context.Context, url string) error { panic("driver crashed") },
	}
	pool := poolWith(page)

	res := newTestExtractor(pool, nil).Extract(context.Background(), &models.ExtractionRequest{Title: "Oppenheimer", Year: 2023})

	assert.False(t, res.Success)
	assert.Equal(t, models.ErrCodeInternal, res.ErrorCode)
	assert.Equal(t, int32(1), pool.released.Load())
}

func TestExtractor_WithBrowserPool(t *testing.T) {
	t.Parallel()
	launcher := &mock.Launcher{
		LaunchFn: func(ctx context.Context) (engine.Instance, error) {
			return &mock.Instance{
				NewPageFn: func(ctx context.Context) (engine.Page, error) {
					return pageServing(oppenheimerPage, nil), nil
				},
			}, nil
		},
	}
	pool := engine.NewBrowserPool(engine.PoolConfig{Max: 2, Min: 1, IdleTimeout: time.Minute}, launcher)
	t.Cleanup(func() { _ = pool.Shutdown() })

	ex := newTestExtractor(pool, nil)
	for i := 0; i < 3; i++ {
		res := ex.Extract(context.Background(), &models.ExtractionRequest{Title: "Oppenheimer", Year: 2023})
		require.True(t, res.Success)
	}

	stats := pool.Stats()
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 0, stats.InUse)
}

func TestFromDocument(t *testing.T) {
	t.Parallel()
	assert.Equal(t, oppenheimerReview, fromDocument(oppenheimerPage, cleanerMeta("Marianna Cappi", "mercoledì 23 agosto 2023")))
	assert.Empty(t, fromDocument(emptyPage, cleanerMeta("", "")))
	assert.Empty(t, fromDocument(`<p class="corpo">Troppo breve.</p>`, cleanerMeta("", "")), "blocks under 200 characters are rejected")
}

func TestFromDocument_WindowBound(t *testing.T) {
	t.Parallel()
	doc := reviewPage(strings.Repeat(oppenheimerSentence, 80))
	require.Greater(t, len([]rune(doc)), 8200)

	got := fromDocument(doc, cleanerMeta("Marianna Cappi", "mercoledì 23 agosto 2023"))

	n := cleaner.CharCount(got)
	assert.Greater(t, n, 200)
	assert.LessOrEqual(t, n, 8000)
	assert.True(t, strings.HasPrefix(got, "Christopher Nolan racconta"), "got %.60q", got)
	assert.NotContains(t, got, "MYmovies.it")
	assert.NotContains(t, got, "Il tuo commento")
	assert.NotContains(t, got, "<")
}

func cleanerMeta(author, date string) cleaner.Metadata {
	var m cleaner.Metadata
	if author != "" {
		m.Author = &author
	}
	if date != "" {
		m.Date = &date
	}
	return m
}
