package models

// ExtractionMethod records which tier produced the review text.
type ExtractionMethod string

const (
	// MethodResponseCapture is the tier that reads the intercepted HTML document.
	MethodResponseCapture ExtractionMethod = "RESPONSE_CAPTURE"

	// MethodDOMFallback is the tier that queries the rendered page.
	MethodDOMFallback ExtractionMethod = "DOM_FALLBACK"
)

// ExtractionResult is the outcome of one review extraction. It is returned
// for both successes and failures.
type ExtractionResult struct {
	// Success is true only when the review content is longer than 50 characters.
	Success bool `json:"success"`

	// URL is the review page that was loaded.
	URL string `json:"url"`

	Review   Review             `json:"review"`
	Metadata ExtractionMetadata `json:"metadata"`

	// Error is populated only when Success is false.
	Error *string `json:"error"`

	// ErrorCode classifies Error; see the ErrCode constants.
	ErrorCode string `json:"error_code,omitempty"`

	// SavedPath is where the review was persisted, when it was.
	SavedPath string `json:"saved_path,omitempty"`

	// CacheStatus is "hit" or "miss" when served through the API cache.
	CacheStatus string `json:"cache_status,omitempty"`
}

// Review is the cleaned review and its metadata.
type Review struct {
	Content string  `json:"content"`
	Author  *string `json:"author"`
	Date    *string `json:"date"`
	Title   *string `json:"title"`
}

// ExtractionMetadata describes how the review was obtained.
type ExtractionMetadata struct {
	ExtractionMethod ExtractionMethod `json:"extraction_method,omitempty"`

	// ContentLength counts Unicode code points of Review.Content.
	ContentLength int `json:"content_length"`

	// WordCount counts whitespace-separated tokens of Review.Content.
	WordCount int `json:"word_count"`

	// ProcessingTimeMs is stamped on every exit path.
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

// Fail marks the result as failed with the given code and message.
func (r *ExtractionResult) Fail(code, message string) {
	r.Success = false
	r.ErrorCode = code
	r.Error = &message
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string    `json:"status"` // "healthy" or "degraded"
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool_stats"`
	Version   string    `json:"version"`
}

// PoolStats reports the state of the browser instance pool.
type PoolStats struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	InUse     int `json:"in_use"`
	Pending   int `json:"pending"`
	Max       int `json:"max"`
	Min       int `json:"min"`
}

// StatsResponse is the response for GET /api/v1/stats.
type StatsResponse struct {
	Pool         PoolStats `json:"pool"`
	StoredCount  int       `json:"stored_reviews"`
	CacheEntries int       `json:"cache_entries"`
	Uptime       string    `json:"uptime"`
}

// StoredReview describes a persisted review file.
type StoredReview struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
	Content  string `json:"content,omitempty"`
}
