package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// scrapeResponse mirrors the scrape API response model.
type scrapeResponse struct {
	Headers []string          `json:"headers"`
	Values  []any             `json:"values"`
	Raw     map[string]string `json:"raw"`
}

// describeResponse mirrors the describe API response model.
type describeResponse struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
	Source   string `json:"source"`
}

// errorResponse mirrors the API error body.
type errorResponse struct {
	Error string `json:"error"`
}

func main() {
	apiURL := os.Getenv("SCRAPER_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}

	s := server.NewMCPServer(
		"price-scraper",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	scrapeProductTool := mcp.NewTool("scrape_product",
		mcp.WithDescription("Scrape a product page and return structured fields such as price, title and rating. JavaScript-heavy storefronts are rendered in a headless browser."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the product page"),
		),
		mcp.WithString("fields",
			mcp.Description("Comma-separated fields to extract (default: 'price,title')"),
		),
	)
	s.AddTool(scrapeProductTool, handleScrapeProduct(apiURL))

	describeProductTool := mcp.NewTool("describe_product",
		mcp.WithDescription("Fetch a product page and return its main content as a Markdown description."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the product page"),
		),
	)
	s.AddTool(describeProductTool, handleDescribeProduct(apiURL))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiGet sends a GET request to the scraper API and returns the status code
// and response body.
func apiGet(ctx context.Context, client *http.Client, apiURL, path string, params url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// apiError digs the message out of an error body, falling back to the
// status code when the body is not the expected JSON.
func apiError(status int, body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return er.Error
	}
	return fmt.Sprintf("API returned status %d", status)
}

func handleScrapeProduct(apiURL string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pageURL, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		fields := request.GetString("fields", "price,title")

		params := url.Values{}
		params.Set("url", pageURL)
		params.Set("fields", fields)

		status, body, err := apiGet(ctx, client, apiURL, "/api/scrape", params)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("scrape request failed: %v", err)), nil
		}
		if status != http.StatusOK {
			return mcp.NewToolResultError(fmt.Sprintf("scrape failed: %s", apiError(status, body))), nil
		}

		var sr scrapeResponse
		if err := json.Unmarshal(body, &sr); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Fields for %s\n\n", pageURL))
		for i, h := range sr.Headers {
			var value any
			if i < len(sr.Values) {
				value = sr.Values[i]
			}
			rendered := fmt.Sprintf("%v", value)
			if rendered == "" {
				sb.WriteString(fmt.Sprintf("%s: (not found)\n", h))
				continue
			}
			sb.WriteString(fmt.Sprintf("%s: %s", h, rendered))
			if raw := sr.Raw[h]; raw != "" && raw != rendered {
				sb.WriteString(fmt.Sprintf(" (raw: %s)", raw))
			}
			sb.WriteString("\n")
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleDescribeProduct(apiURL string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pageURL, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		params := url.Values{}
		params.Set("url", pageURL)

		status, body, err := apiGet(ctx, client, apiURL, "/api/describe", params)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("describe request failed: %v", err)), nil
		}
		if status != http.StatusOK {
			return mcp.NewToolResultError(fmt.Sprintf("describe failed: %s", apiError(status, body))), nil
		}

		var dr describeResponse
		if err := json.Unmarshal(body, &dr); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		result := fmt.Sprintf("Title: %s\nSource: %s\nFetched via: %s\n\n%s",
			dr.Title, dr.URL, dr.Source, dr.Markdown)
		return mcp.NewToolResultText(result), nil
	}
}
