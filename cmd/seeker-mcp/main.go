package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// searchRequest mirrors the Seeker API request model.
type searchRequest struct {
	Engine        string `json:"engine"`
	Query         string `json:"query"`
	IncludeImages bool   `json:"include_images,omitempty"`
	MaxLinks      int    `json:"max_links,omitempty"`
}

// searchResponse mirrors the Seeker API response model.
type searchResponse struct {
	Results string   `json:"results"`
	Links   []string `json:"links"`
	Images  []string `json:"images"`
}

func main() {
	apiURL := os.Getenv("SEEKER_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	// Optional: only needed when the API runs with auth keys configured.
	apiKey := os.Getenv("SEEKER_API_KEY")

	s := server.NewMCPServer(
		"seeker",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	webSearchTool := mcp.NewTool("web_search",
		mcp.WithDescription("Search the web through a real browser session and return answer text, result links, and optionally image URLs. Renders the engine's results page, so it works where plain HTTP scraping gets blocked."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The search query"),
		),
		mcp.WithString("engine",
			mcp.Description("Search engine to use: 'google' (default) or 'duckduckgo'"),
			mcp.Enum("google", "duckduckgo"),
		),
		mcp.WithBoolean("include_images",
			mcp.Description("Also run an image search for the query and include image URLs (default: false)"),
		),
		mcp.WithNumber("max_links",
			mcp.Description("Maximum number of result links to return (default: 10, max: 50)"),
		),
	)
	s.AddTool(webSearchTool, handleWebSearch(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleWebSearch(apiURL, apiKey string) server.ToolHandlerFunc {
	// A search holds a full browser launch plus up to five scroll probes,
	// so the client budget is generous.
	client := &http.Client{Timeout: 180 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}

		reqBody := searchRequest{
			Engine: request.GetString("engine", "google"),
			Query:  query,
		}

		args := request.GetArguments()
		if v, ok := args["include_images"].(bool); ok {
			reqBody.IncludeImages = v
		}
		if v, ok := args["max_links"].(float64); ok {
			reqBody.MaxLinks = int(v)
		}

		body, err := json.Marshal(reqBody)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal request: %v", err)), nil
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/search", bytes.NewReader(body))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if apiKey != "" {
			httpReq.Header.Set("X-API-Key", apiKey)
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}

		// Error bodies are plain text; pass them through verbatim.
		if resp.StatusCode != http.StatusOK {
			return mcp.NewToolResultError(fmt.Sprintf("search API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))), nil
		}

		var searchResp searchResponse
		if err := json.Unmarshal(respBody, &searchResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		return mcp.NewToolResultText(formatSearchResult(query, reqBody.Engine, &searchResp)), nil
	}
}

// formatSearchResult renders the API document as readable text.
func formatSearchResult(query, engine string, res *searchResponse) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Results for %q on %s:\n\n", query, engine))

	if res.Results != "" {
		sb.WriteString(res.Results)
		sb.WriteString("\n\n")
	}
	if len(res.Links) > 0 {
		sb.WriteString("Links:\n")
		for _, l := range res.Links {
			sb.WriteString(l + "\n")
		}
	}
	if len(res.Images) > 0 {
		sb.WriteString("\nImages:\n")
		for _, img := range res.Images {
			sb.WriteString(img + "\n")
		}
	}
	if res.Results == "" && len(res.Links) == 0 && len(res.Images) == 0 {
		sb.WriteString("No results extracted.\n")
	}
	return sb.String()
}
