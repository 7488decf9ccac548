package multisource

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/use-agent/filmreview/models"
)

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"HTTPS://WWW.Quinlan.IT:443/rec/oppenheimer/#top", "https://www.quinlan.it/rec/oppenheimer"},
		{"https://ilpost.it/a/?utm_source=x&id=3", "https://ilpost.it/a?id=3"},
		{"https://x.it/?utm_campaign=a", "https://x.it"},
		{"http://x.it:8080/p/", "http://x.it:8080/p"},
		{"http://x.it:80/p", "http://x.it/p"},
		{"  not a url ", "not a url"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalURL(tt.in))
		})
	}
}

func TestDeduplicate(t *testing.T) {
	cands := []models.ReviewCandidate{
		{URL: "https://a.it/review", Confidence: 0.3, Title: "first"},
		{URL: "https://A.it/review/#commenti", Confidence: 0.9, Title: "duplicate"},
		{URL: "https://b.it/review", Confidence: 0.5},
		{URL: "https://c.it/review", Confidence: 0.3},
	}

	got := Deduplicate(cands)

	urls := make([]string, len(got))
	for i, c := range got {
		urls[i] = c.URL
	}
	assert.Equal(t, []string{"https://b.it/review", "https://a.it/review", "https://c.it/review"}, urls)
	assert.Equal(t, "first", got[1].Title, "first occurrence wins")
}

func TestDeduplicate_Empty(t *testing.T) {
	assert.Empty(t, Deduplicate(nil))
}
