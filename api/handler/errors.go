package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/filmreview/models"
)

// respondError writes a structured JSON error for err.
func respondError(c *gin.Context, err error) {
	var xe *models.ExtractError
	if !errors.As(err, &xe) {
		xe = models.NewExtractError(models.ErrCodeInternal, err.Error(), err)
	}
	c.JSON(mapErrorToStatus(xe.Code), models.ErrorResponse{Error: xe.ToDetail()})
}

// invalidInput answers a request that failed binding or validation.
func invalidInput(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: &models.ErrorDetail{Code: models.ErrCodeInvalidInput, Message: msg},
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(code string) int {
	switch code {
	case "":
		return http.StatusOK
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeNotFound, models.ErrCodeReviewNotStored:
		return http.StatusNotFound // 404
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeNavigation, models.ErrCodeSourceFailed, models.ErrCodeSearchFailed:
		return http.StatusBadGateway // 502
	case models.ErrCodePoolShutdown, models.ErrCodeBrowserLaunch:
		return http.StatusServiceUnavailable // 503
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	default:
		return http.StatusInternalServerError // 500
	}
}
