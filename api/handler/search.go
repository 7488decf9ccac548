package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/filmreview/models"
)

// SearchFilms returns a handler for GET and POST /api/v1/search. GET reads
// the query from ?q=, POST from a JSON body.
func SearchFilms(s FilmSearcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.FilmSearchRequest
		var err error
		if c.Request.Method == http.MethodGet {
			err = c.ShouldBindQuery(&req)
		} else {
			err = c.ShouldBindJSON(&req)
		}
		if err != nil {
			invalidInput(c, err.Error())
			return
		}
		if err := req.Validate(); err != nil {
			respondError(c, err)
			return
		}

		hits, err := s.SearchFilms(c.Request.Context(), req.Query)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.FilmSearchResponse{
			Success: true,
			Query:   strings.TrimSpace(req.Query),
			Results: hits,
		})
	}
}
