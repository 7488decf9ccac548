package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
)

// requestTimeout covers a queued extraction on a busy server: pool wait,
// navigation and the settle delay.
const requestTimeout = 180 * time.Second

func main() {
	apiURL := os.Getenv("FILMREVIEW_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("FILMREVIEW_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "FILMREVIEW_API_KEY is required")
		os.Exit(1)
	}

	s := newServer(&apiClient{
		baseURL: apiURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: requestTimeout},
	})
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
