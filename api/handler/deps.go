package handler

import (
	"context"

	"github.com/use-agent/filmreview/engine"
	"github.com/use-agent/filmreview/models"
)

// Extractor runs single-review extractions. *scraper.Extractor satisfies it.
type Extractor interface {
	Extract(ctx context.Context, req *models.ExtractionRequest) *models.ExtractionResult
}

// FilmSearcher finds films on the review site. *scraper.Extractor
// satisfies it.
type FilmSearcher interface {
	SearchFilms(ctx context.Context, query string) ([]models.FilmHit, error)
}

// MultiSourcer collects reviews from several outlets.
// *multisource.Collector satisfies it.
type MultiSourcer interface {
	ExtractMultiSource(ctx context.Context, title string, year int, sources []string) (*models.MultiSourceResponse, error)
}

// PoolStatser reports browser pool occupancy. *engine.BrowserPool
// satisfies it.
type PoolStatser interface {
	Stats() engine.PoolStats
}

// ReviewLister reads persisted reviews. *store.Store satisfies it.
type ReviewLister interface {
	List() ([]models.StoredReview, error)
	Get(filename string) (*models.StoredReview, error)
	Count() int
}

func poolStats(p PoolStatser) models.PoolStats {
	s := p.Stats()
	return models.PoolStats{
		Total:     s.Total,
		Available: s.Available,
		InUse:     s.InUse,
		Pending:   s.Pending,
		Max:       s.Max,
		Min:       s.Min,
	}
}
