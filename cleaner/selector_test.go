package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectorForHost(t *testing.T) {
	t.Parallel()
	assert.NotEmpty(t, SelectorForHost("www.ilpost.it"))
	assert.NotEmpty(t, SelectorForHost("Quinlan.it"))
	assert.Empty(t, SelectorForHost("example.com"))
}

func TestApplyCSSSelector(t *testing.T) {
	t.Parallel()

	html := `<html><body><nav>menu</nav><article><div class="entry-content"><p>testo</p></div></article></body></html>`

	got, err := ApplyCSSSelector(html, "article .entry-content")
	require.NoError(t, err)
	assert.Contains(t, got, `<div class="entry-content"><p>testo</p></div>`)
	assert.NotContains(t, got, "menu")

	got, err = ApplyCSSSelector(html, ".missing")
	require.NoError(t, err)
	assert.Equal(t, html, got)

	_, err = ApplyCSSSelector(html, "[[[")
	assert.Error(t, err)
}

func TestStripNoise(t *testing.T) {
	t.Parallel()

	html := `<html><body class="single comments-open"><header>Testata</header>
<div class="share-bar">Condividi</div><article><p>Il film di Sorrentino.</p></article>
<div id="comments">Commenti dei lettori</div><footer>Footer</footer></body></html>`

	got := StripNoise(html)

	assert.Contains(t, got, "Il film di Sorrentino.")
	assert.NotContains(t, got, "Testata")
	assert.NotContains(t, got, "Condividi")
	assert.NotContains(t, got, "Commenti dei lettori")
	assert.NotContains(t, got, "Footer")
}
