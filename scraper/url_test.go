package scraper

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		want  string
	}{
		{"Oppenheimer", "oppenheimer"},
		{"La Grazia", "la-grazia"},
		{"L'ora legale", "lora-legale"},
		{"Perfect Days", "perfect-days"},
		{"Così è (se vi pare)", "cosi-e-se-vi-pare"},
		{"Niño   Pérez", "nino-perez"},
		{"  -- Dune: Parte Due --  ", "dune-parte-due"},
		{"ÀÉÌÒÙ", "aeiou"},
		{"2001: Odissea nello spazio", "2001-odissea-nello-spazio"},
		{"Spider-Man: No Way Home", "spider-man-no-way-home"},
		{"la-grazia", "la-grazia"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tc := range tests {
		t.Run(tc.title, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, NormalizeTitle(tc.title))
		})
	}
}

func TestNormalizeTitle_SlugShape(t *testing.T) {
	t.Parallel()

	shape := regexp.MustCompile(`^[a-z0-9-]*$`)
	inputs := []string{
		"Oppenheimer", "  spazi  multipli  ", "---", "Ça va? Ñandú!", "Über-Film 2",
		"東京物語", "a - b", "Zoë & Æon", "\tTab\nNewline",
		"La Grazia", "a b c", "C'è ancora domani",
	}
	for _, in := range inputs {
		slug := NormalizeTitle(in)
		assert.Regexp(t, shape, slug, "input %q", in)
		if slug != "" {
			assert.NotEqual(t, '-', rune(slug[0]), "input %q", in)
			assert.NotEqual(t, '-', rune(slug[len(slug)-1]), "input %q", in)
		}
		assert.NotContains(t, slug, "--", "input %q", in)
		assert.Equal(t, slug, NormalizeTitle(slug), "slug of %q is not stable", in)
	}
}

func TestBuildReviewURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"https://www.mymovies.it/film/2023/oppenheimer/#recensione",
		BuildReviewURL("", "Oppenheimer", 2023))
	assert.Equal(t,
		"http://127.0.0.1:9999/film/2025/la-grazia/#recensione",
		BuildReviewURL("http://127.0.0.1:9999/", "La grazia", 2025))
	assert.Equal(t,
		"https://www.mymovies.it/film/2025//#recensione",
		BuildReviewURL("", "???", 2025))
}
