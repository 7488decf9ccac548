package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/filmreview/models"
)

// MultiSource returns a handler for POST /api/v1/extract/multi.
func MultiSource(ms MultiSourcer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.MultiSourceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err.Error())
			return
		}

		resp, err := ms.ExtractMultiSource(c.Request.Context(), req.Title, req.Year, req.Sources)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
