package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/use-agent/filmreview/config"
	"github.com/use-agent/filmreview/models"
	"github.com/use-agent/filmreview/webhook"
)

// Batch returns a handler for POST /api/v1/extract/batch.
//
// Films are extracted one after another with cfg.Delay between them, so a
// batch never holds more than one browser. When a webhook URL is given,
// a signed batch.completed event carrying the response is sent afterwards.
func Batch(ex Extractor, cfg config.BatchConfig, sender *webhook.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err.Error())
			return
		}
		if cfg.MaxItems > 0 && len(req.Films) > cfg.MaxItems {
			invalidInput(c, "too many films in batch")
			return
		}
		for i := range req.Films {
			if err := req.Films[i].Validate(); err != nil {
				respondError(c, err)
				return
			}
		}

		resp := runBatch(c.Request.Context(), ex, cfg.Delay, req.Films)

		if req.WebhookURL != "" && sender != nil {
			sender.DeliverAsync(req.WebhookURL, req.WebhookSecret, &webhook.Event{
				Type:      webhook.EventBatchCompleted,
				BatchID:   resp.ID,
				Timestamp: time.Now().Unix(),
				Data:      resp,
			})
		}

		c.JSON(http.StatusOK, resp)
	}
}

func runBatch(ctx context.Context, ex Extractor, delay time.Duration, films []models.ExtractionRequest) *models.BatchResponse {
	resp := &models.BatchResponse{
		ID:      "batch-" + uuid.NewString(),
		Total:   len(films),
		Results: make([]models.BatchItem, 0, len(films)),
	}

	for i := range films {
		if i > 0 && delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
		}

		var result *models.ExtractionResult
		if err := ctx.Err(); err != nil {
			result = &models.ExtractionResult{}
			result.Fail(models.ErrCodeNavigation, "batch cancelled")
		} else {
			result = ex.Extract(ctx, &films[i])
		}

		if result.Success {
			resp.Successful++
		} else {
			resp.Failed++
		}
		resp.Results = append(resp.Results, models.BatchItem{
			Title:  films[i].Title,
			Year:   films[i].Year,
			Result: result,
		})
	}

	slog.Info("batch finished",
		"id", resp.ID,
		"total", resp.Total,
		"successful", resp.Successful,
		"failed", resp.Failed,
	)
	return resp
}
