package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/filmreview/models"
)

func newServer(api *apiClient) *server.MCPServer {
	s := server.NewMCPServer(
		"filmreview",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	extractTool := mcp.NewTool("extract_movie_review",
		mcp.WithDescription("Extract the Italian review of a film from MYmovies.it. Returns the review text with author and publication date."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Film title, e.g. 'Oppenheimer' or 'La grande bellezza'"),
		),
		mcp.WithNumber("year",
			mcp.Required(),
			mcp.Description("Release year, between 1900 and 2030"),
		),
		mcp.WithBoolean("skip_persist",
			mcp.Description("Do not save the review file on the server (default: false)"),
		),
	)
	s.AddTool(extractTool, handleExtract(api))

	searchTool := mcp.NewTool("search_films",
		mcp.WithDescription("Search MYmovies.it for films by title. Returns up to 10 films with their release year, ready for extract_movie_review."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Title or part of it, e.g. 'la grazia'"),
		),
	)
	s.AddTool(searchTool, handleSearch(api))

	multiTool := mcp.NewTool("extract_multi_source",
		mcp.WithDescription("Collect reviews of a film from several Italian outlets. Sources may be article URLs or review hosts; without sources the server's default outlets are searched."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Film title"),
		),
		mcp.WithNumber("year",
			mcp.Required(),
			mcp.Description("Release year"),
		),
		mcp.WithArray("sources",
			mcp.Description("Article URLs or hosts such as 'ilpost.it'"),
		),
	)
	s.AddTool(multiTool, handleMulti(api))

	listTool := mcp.NewTool("list_reviews",
		mcp.WithDescription("List the reviews saved on the server, newest first."),
	)
	s.AddTool(listTool, handleListReviews(api))

	infoTool := mcp.NewTool("get_api_info",
		mcp.WithDescription("Report the extraction service version, uptime and browser pool occupancy."),
	)
	s.AddTool(infoTool, handleAPIInfo(api))

	return s
}

func handleExtract(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := request.RequireString("title")
		if err != nil {
			return mcp.NewToolResultError("title is required"), nil
		}
		year, err := request.RequireInt("year")
		if err != nil {
			return mcp.NewToolResultError("year is required"), nil
		}

		payload := models.ExtractionRequest{
			Title:   title,
			Year:    year,
			Options: models.ExtractionOptions{SkipPersist: request.GetBool("skip_persist", false)},
		}

		var result models.ExtractionResult
		if err := api.post(ctx, "/api/v1/extract", payload, &result); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("extract request failed: %v", err)), nil
		}

		if !result.Success {
			msg := "extraction failed"
			if result.Error != nil {
				msg = *result.Error
			}
			return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", result.ErrorCode, msg)), nil
		}

		return mcp.NewToolResultText(formatReview(&result)), nil
	}
}

func formatReview(r *models.ExtractionResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n", orNA(r.Review.Title))
	fmt.Fprintf(&sb, "Author: %s\n", orNA(r.Review.Author))
	fmt.Fprintf(&sb, "Date: %s\n", orNA(r.Review.Date))
	fmt.Fprintf(&sb, "Source: %s\n\n", r.URL)
	sb.WriteString(r.Review.Content)
	fmt.Fprintf(&sb, "\n\n---\n%d characters, %d words (%s)",
		r.Metadata.ContentLength, r.Metadata.WordCount, r.Metadata.ExtractionMethod)
	return sb.String()
}

func handleSearch(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || strings.TrimSpace(query) == "" {
			return mcp.NewToolResultError("query is required"), nil
		}

		var resp models.FilmSearchResponse
		if err := api.post(ctx, "/api/v1/search", models.FilmSearchRequest{Query: query}, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search request failed: %v", err)), nil
		}
		if len(resp.Results) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No films found for %q", resp.Query)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "%d films for %q:\n\n", len(resp.Results), resp.Query)
		for i, h := range resp.Results {
			fmt.Fprintf(&sb, "%d. %s (%d)\n   %s\n", i+1, h.Title, h.Year, h.URL)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleMulti(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := request.RequireString("title")
		if err != nil {
			return mcp.NewToolResultError("title is required"), nil
		}
		year, err := request.RequireInt("year")
		if err != nil {
			return mcp.NewToolResultError("year is required"), nil
		}

		payload := models.MultiSourceRequest{
			Title:   title,
			Year:    year,
			Sources: request.GetStringSlice("sources", nil),
		}

		var resp models.MultiSourceResponse
		if err := api.post(ctx, "/api/v1/extract/multi", payload, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("multi-source request failed: %v", err)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "%s (%d): %d reviews in %dms\n\n", resp.Title, resp.Year, len(resp.Candidates), resp.TimingMs)
		for i, c := range resp.Candidates {
			fmt.Fprintf(&sb, "--- [%d] %s (%s, confidence %.2f) ---\n%s\n%s\n\n",
				i+1, c.Title, c.SourceHost, c.Confidence, c.URL, c.Content)
		}
		for _, f := range resp.Failures {
			fmt.Fprintf(&sb, "FAILED %s: %s\n", f.Source, f.Reason)
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleListReviews(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var resp struct {
			Reviews []models.StoredReview `json:"reviews"`
			Count   int                   `json:"count"`
		}
		if err := api.get(ctx, "/api/v1/reviews", &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list request failed: %v", err)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "%d saved reviews:\n\n", resp.Count)
		for _, r := range resp.Reviews {
			fmt.Fprintf(&sb, "%s (%d bytes, %s)\n", r.Filename, r.Size, r.Modified)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleAPIInfo(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var health models.HealthResponse
		if err := api.get(ctx, "/api/v1/health", &health); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("health request failed: %v", err)), nil
		}

		p := health.PoolStats
		text := fmt.Sprintf("filmreview %s: %s, up %s\nbrowsers: %d/%d in use, %d idle, %d waiting",
			health.Version, health.Status, health.Uptime, p.InUse, p.Max, p.Available, p.Pending)
		return mcp.NewToolResultText(text), nil
	}
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}
