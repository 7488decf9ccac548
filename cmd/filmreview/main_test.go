package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/filmreview/config"
	"github.com/use-agent/filmreview/models"
)

func ptr(s string) *string { return &s }

// fakeServices records the requests the commands make.
type fakeServices struct {
	extractReq *models.ExtractionRequest
	result     *models.ExtractionResult

	multiTitle   string
	multiYear    int
	multiSources []string
	multi        *models.MultiSourceResponse

	searchQuery string
	hits        []models.FilmHit

	closed bool
}

func (f *fakeServices) build(*config.Config) *services {
	return &services{
		Extract: func(ctx context.Context, req *models.ExtractionRequest) *models.ExtractionResult {
			f.extractReq = req
			return f.result
		},
		Multi: func(ctx context.Context, title string, year int, sources []string) (*models.MultiSourceResponse, error) {
			f.multiTitle, f.multiYear, f.multiSources = title, year, sources
			return f.multi, nil
		},
		Search: func(ctx context.Context, query string) ([]models.FilmHit, error) {
			f.searchQuery = query
			return f.hits, nil
		},
		Close: func() error {
			f.closed = true
			return nil
		},
	}
}

func runCLI(t *testing.T, f *fakeServices, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(f.build)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func successResult() *models.ExtractionResult {
	return &models.ExtractionResult{
		Success: true,
		URL:     "https://www.mymovies.it/film/2023/oppenheimer/",
		Review: models.Review{
			Content: "Un film monumentale.",
			Author:  ptr("Marianna Cappi"),
			Title:   ptr("Oppenheimer"),
		},
		Metadata: models.ExtractionMetadata{
			ExtractionMethod: models.MethodResponseCapture,
			ContentLength:    20,
			WordCount:        3,
		},
		SavedPath: "reviews/oppenheimer_2023_review.txt",
	}
}

func TestExtract_PrintsReview(t *testing.T) {
	f := &fakeServices{result: successResult()}

	out, err := runCLI(t, f, "extract", "Oppenheimer", "2023")
	require.NoError(t, err)

	require.NotNil(t, f.extractReq)
	assert.Equal(t, "Oppenheimer", f.extractReq.Title)
	assert.Equal(t, 2023, f.extractReq.Year)
	assert.False(t, f.extractReq.Options.SkipPersist)
	assert.True(t, f.closed)

	assert.Contains(t, out, "Autore: Marianna Cappi")
	assert.Contains(t, out, "Data: N/A")
	assert.Contains(t, out, "Salvata in: reviews/oppenheimer_2023_review.txt")
	assert.Contains(t, out, "Un film monumentale.")
}

func TestExtract_JSONAndNoSave(t *testing.T) {
	f := &fakeServices{result: successResult()}

	out, err := runCLI(t, f, "extract", "Oppenheimer", "2023", "--json", "--no-save")
	require.NoError(t, err)
	assert.True(t, f.extractReq.Options.SkipPersist)

	var decoded models.ExtractionResult
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.True(t, decoded.Success)
	assert.Equal(t, "Un film monumentale.", decoded.Review.Content)
}

func TestExtract_FailureReturnsError(t *testing.T) {
	f := &fakeServices{result: &models.ExtractionResult{
		Error:     ptr("review not found"),
		ErrorCode: models.ErrCodeNotFound,
	}}

	out, err := runCLI(t, f, "extract", "Film Inesistente", "1900")
	require.Error(t, err)
	assert.Contains(t, err.Error(), models.ErrCodeNotFound)
	assert.Contains(t, out, "review not found")
}

func TestExtract_InvalidYear(t *testing.T) {
	f := &fakeServices{}

	_, err := runCLI(t, f, "extract", "Oppenheimer", "duemila")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid year")
	assert.Nil(t, f.extractReq, "no extraction for unparsable input")
}

func TestExtract_RequiresTwoArgs(t *testing.T) {
	_, err := runCLI(t, &fakeServices{}, "extract", "Oppenheimer")
	assert.Error(t, err)
}

func TestMulti_PassesSources(t *testing.T) {
	f := &fakeServices{multi: &models.MultiSourceResponse{
		Title: "Oppenheimer",
		Year:  2023,
		Candidates: []models.ReviewCandidate{
			{SourceHost: "ilpost.it", URL: "https://www.ilpost.it/oppenheimer", Title: "Oppenheimer", Confidence: 0.8},
		},
		Failures: []models.SourceFailure{{Source: "quinlan.it", Reason: "no search results"}},
	}}

	out, err := runCLI(t, f, "multi", "Oppenheimer", "2023", "ilpost.it", "quinlan.it")
	require.NoError(t, err)

	assert.Equal(t, "Oppenheimer", f.multiTitle)
	assert.Equal(t, 2023, f.multiYear)
	assert.Equal(t, []string{"ilpost.it", "quinlan.it"}, f.multiSources)
	assert.Contains(t, out, "1 recensioni, 1 fonti fallite")
	assert.Contains(t, out, "[0.80] ilpost.it")
	assert.Contains(t, out, "- quinlan.it: no search results")
}

func TestSearch_JoinsArgs(t *testing.T) {
	f := &fakeServices{hits: []models.FilmHit{
		{Title: "La Grazia", Year: 2025, URL: "https://www.mymovies.it/film/2025/la-grazia/"},
	}}

	out, err := runCLI(t, f, "search", "la", "grazia")

	require.NoError(t, err)
	assert.Equal(t, "la grazia", f.searchQuery)
	assert.Contains(t, out, "1. La Grazia (2025)")
	assert.Contains(t, out, "https://www.mymovies.it/film/2025/la-grazia/")
	assert.True(t, f.closed)
}

func TestSearch_JSONAndEmpty(t *testing.T) {
	f := &fakeServices{hits: []models.FilmHit{}}

	out, err := runCLI(t, f, "search", "--json", "zzz")
	require.NoError(t, err)
	var resp models.FilmSearchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	assert.True(t, resp.Success)
	assert.Equal(t, "zzz", resp.Query)
	assert.Empty(t, resp.Results)

	out, err = runCLI(t, &fakeServices{}, "search", "zzz")
	require.NoError(t, err)
	assert.Contains(t, out, "Nessun film trovato")
}
