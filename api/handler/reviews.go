package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/filmreview/models"
	"github.com/use-agent/filmreview/store"
)

// ListReviews returns a handler for GET /api/v1/reviews.
func ListReviews(rs ReviewLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := rs.List()
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reviews": list, "count": len(list)})
	}
}

// GetReview returns a handler for GET /api/v1/reviews/:filename.
func GetReview(rs ReviewLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		review, err := rs.Get(c.Param("filename"))
		switch {
		case errors.Is(err, store.ErrInvalidFilename):
			respondError(c, models.NewExtractError(models.ErrCodeInvalidInput, err.Error(), err))
		case errors.Is(err, store.ErrNotFound):
			respondError(c, models.NewExtractError(models.ErrCodeReviewNotStored, err.Error(), err))
		case err != nil:
			respondError(c, err)
		default:
			c.JSON(http.StatusOK, review)
		}
	}
}
