package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/filmreview/cache"
	"github.com/use-agent/filmreview/models"
)

// Version is reported by the health endpoint.
var Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
//
// Status is "degraded" when every instance is checked out and callers are
// queueing for one.
func Health(pool PoolStatser, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := poolStats(pool)

		status := "healthy"
		if stats.Pending > 0 {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:    status,
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			PoolStats: stats,
			Version:   Version,
		})
	}
}

// Stats returns a handler for GET /api/v1/stats.
func Stats(pool PoolStatser, rs ReviewLister, cc *cache.Cache, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := models.StatsResponse{
			Pool:   poolStats(pool),
			Uptime: time.Since(startTime).Round(time.Second).String(),
		}
		if rs != nil {
			resp.StoredCount = rs.Count()
		}
		if cc != nil {
			resp.CacheEntries = cc.Len()
		}
		c.JSON(http.StatusOK, resp)
	}
}
