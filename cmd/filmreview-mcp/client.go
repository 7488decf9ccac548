package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/use-agent/filmreview/models"
)

// apiClient calls the filmreview HTTP API.
type apiClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func (a *apiClient) httpClient() *http.Client {
	if a.client != nil {
		return a.client
	}
	return http.DefaultClient
}

// post sends payload as JSON and decodes the response into out. Error
// envelopes are returned as errors carrying the API's code and message.
func (a *apiClient) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, out)
}

func (a *apiClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return a.do(req, out)
}

func (a *apiClient) do(req *http.Request, out any) error {
	req.Header.Set("X-API-Key", a.apiKey)

	resp, err := a.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	// Extraction results carry their own error fields with any status, so
	// only the generic envelope is treated as an error here.
	if resp.StatusCode >= 400 {
		var envelope models.ErrorResponse
		if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil {
			return fmt.Errorf("[%s] %s", envelope.Error.Code, envelope.Error.Message)
		}
		if _, isResult := out.(*models.ExtractionResult); !isResult {
			return fmt.Errorf("API returned status %d", resp.StatusCode)
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
