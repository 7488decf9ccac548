package models

// ReviewCandidate is one validated review collected in multi-source mode.
type ReviewCandidate struct {
	SourceHost string  `json:"source_host"`
	URL        string  `json:"url"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Confidence float64 `json:"confidence"`

	// Fingerprint is the hex SimHash of Content.
	Fingerprint string `json:"fingerprint"`

	// Engine is the fetch engine that produced the document.
	Engine string `json:"engine,omitempty"`
}

// SourceFailure records a source that yielded no candidate.
type SourceFailure struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// MultiSourceResponse is the response for POST /api/v1/extract/multi.
type MultiSourceResponse struct {
	Title      string            `json:"title"`
	Year       int               `json:"year"`
	Candidates []ReviewCandidate `json:"candidates"`
	Failures   []SourceFailure   `json:"failures,omitempty"`
	TimingMs   int64             `json:"timing_ms"`
}
