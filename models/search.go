package models

import "strings"

// MaxFilmHits caps the results of a film search.
const MaxFilmHits = 10

// FilmSearchRequest is the payload for POST /api/v1/search. GET takes the
// query from the q parameter.
type FilmSearchRequest struct {
	Query string `json:"query" form:"q"`
}

// Validate rejects blank queries.
func (r *FilmSearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return NewExtractError(ErrCodeInvalidInput, "query is required", nil)
	}
	return nil
}

// FilmHit is one film found on the review site. Title and Year feed
// straight into an extraction request.
type FilmHit struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
	URL   string `json:"url"`
}

// FilmSearchResponse is the body of a successful film search.
type FilmSearchResponse struct {
	Success bool      `json:"success"`
	Query   string    `json:"query"`
	Results []FilmHit `json:"results"`
}
