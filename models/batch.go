package models

// BatchRequest is the payload for POST /api/v1/extract/batch.
type BatchRequest struct {
	// Films is the list of titles to extract, in order. Required.
	Films []ExtractionRequest `json:"films" binding:"required,min=1,dive"`

	// WebhookURL receives a signed batch.completed event when set.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`

	// WebhookSecret signs the webhook payload with HMAC-SHA256.
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// BatchItem is the outcome of one film in a batch.
type BatchItem struct {
	Title  string            `json:"title"`
	Year   int               `json:"year"`
	Result *ExtractionResult `json:"result"`
}

// BatchResponse is the response for POST /api/v1/extract/batch.
type BatchResponse struct {
	ID         string      `json:"id"`
	Total      int         `json:"total"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Results    []BatchItem `json:"results"`
}
