package models

import (
	"fmt"
	"strings"
)

// Release years accepted by the review site.
const (
	MinYear = 1900
	MaxYear = 2030
)

// ExtractionRequest is the payload for POST /api/v1/extract.
type ExtractionRequest struct {
	// Title is the film title as the user knows it. Required.
	Title string `json:"title" binding:"required"`

	// Year is the release year; it is part of the review URL. Required.
	Year int `json:"year" binding:"required"`

	// Options tweaks how the extraction runs.
	Options ExtractionOptions `json:"options"`
}

// ExtractionOptions are per-request extraction settings.
type ExtractionOptions struct {
	// Headless is accepted for compatibility; the browser mode is fixed
	// when the pool launches its instances.
	Headless *bool `json:"headless,omitempty"`

	// SkipPersist disables writing the review to the store.
	SkipPersist bool `json:"skip_persist,omitempty"`
}

// Validate reports an INVALID_INPUT error for an empty title or a year
// outside the accepted range.
func (r *ExtractionRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return NewExtractError(ErrCodeInvalidInput, "title is required", nil)
	}
	if r.Year < MinYear || r.Year > MaxYear {
		return NewExtractError(ErrCodeInvalidInput,
			fmt.Sprintf("year must be between %d and %d, got %d", MinYear, MaxYear, r.Year), nil)
	}
	return nil
}

// MultiSourceRequest is the payload for POST /api/v1/extract/multi.
type MultiSourceRequest struct {
	Title string `json:"title" binding:"required"`
	Year  int    `json:"year" binding:"required"`

	// Sources are absolute article URLs or bare hosts. Bare hosts are
	// resolved to article URLs by search. Empty means the configured sites.
	Sources []string `json:"sources,omitempty" binding:"omitempty,max=30"`
}

// Validate applies the same title and year rules as a single extraction.
func (r *MultiSourceRequest) Validate() error {
	single := ExtractionRequest{Title: r.Title, Year: r.Year}
	return single.Validate()
}
