package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/filmreview/engine"
)

func TestResponseCapture_FirstMatchWins(t *testing.T) {
	t.Parallel()
	rc := newResponseCapture("mymovies.it/film")

	_, ok := rc.Response()
	assert.False(t, ok)

	rc.handle(engine.Response{URL: "https://www.mymovies.it/film/2023/oppenheimer/", ContentType: "application/json", Body: "json"})
	rc.handle(engine.Response{URL: "https://www.mymovies.it/cinema/", ContentType: "text/html", Body: "listing"})
	rc.handle(engine.Response{URL: "https://www.mymovies.it/film/2023/oppenheimer/", ContentType: "text/html; charset=utf-8", Body: "first"})
	rc.handle(engine.Response{URL: "https://www.mymovies.it/film/2023/oppenheimer/cast/", ContentType: "text/html", Body: "second"})

	resp, ok := rc.Response()
	require.True(t, ok)
	assert.Equal(t, "first", resp.Body)
}

func TestCaptureMatch(t *testing.T) {
	assert.Equal(t, "mymovies.it/film", captureMatch("https://www.mymovies.it"))
	assert.Equal(t, "127.0.0.1:8080/film", captureMatch("http://127.0.0.1:8080"))
	assert.Equal(t, "mymovies.it/film", captureMatch("::bogus"))
}

func TestIsAdDomain(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"doubleclick.net", true},
		{"pagead2.googlesyndication.com", true},
		{"STATS.Hotjar.com", true},
		{"www.mymovies.it", false},
		{"notdoubleclick.net", false},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, isAdDomain(tt.host))
		})
	}
}
