package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/filmreview/cache"
	"github.com/use-agent/filmreview/models"
)

// Extract returns a handler for POST /api/v1/extract.
//
// The extraction result is the response body for successes and failures
// alike; the HTTP status follows its error code. Successful results are
// cached per film when cc is non-nil.
func Extract(ex Extractor, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ExtractionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err.Error())
			return
		}
		if err := req.Validate(); err != nil {
			respondError(c, err)
			return
		}

		key := cache.Key(req.Title, req.Year)
		if cc != nil {
			if cached, hit := cc.Get(key); hit {
				cached.CacheStatus = "hit"
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		result := ex.Extract(c.Request.Context(), &req)
		if cc != nil && result.Success {
			cc.Set(key, result)
			result.CacheStatus = "miss"
		}

		c.JSON(mapErrorToStatus(result.ErrorCode), result)
	}
}
