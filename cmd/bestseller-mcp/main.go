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

// extractRequest mirrors the bestseller API request model.
type extractRequest struct {
	URL               string `json:"url,omitempty"`
	ContainerSelector string `json:"container_selector,omitempty"`
	ListSelector      string `json:"list_selector,omitempty"`
	ItemSelector      string `json:"item_selector,omitempty"`
	FetchMode         string `json:"fetch_mode,omitempty"`
	OutputFormat      string `json:"output_format,omitempty"`
}

// extractResponse mirrors the bestseller API response model. Page markup
// is left out: it is too large to hand to a model.
type extractResponse struct {
	Success    bool   `json:"success"`
	FinalURL   string `json:"final_url"`
	EngineUsed string `json:"engine_used"`
	Content    string `json:"content"`
	Result     *struct {
		Items    []string `json:"items"`
		Warnings []string `json:"warnings"`
	} `json:"result"`
	Links []struct {
		Href string `json:"href"`
		Text string `json:"text"`
	} `json:"links"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	apiURL := os.Getenv("BESTSELLER_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	// Optional: a server with auth disabled needs no key.
	apiKey := os.Getenv("BESTSELLER_API_KEY")

	s := server.NewMCPServer(
		"bestseller",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	extractTool := mcp.NewTool("extract_best_sellers",
		mcp.WithDescription("Extract the PChome 24h best-seller list. Returns one line per product in page order, plus any warnings for parts of the page that could not be read."),
		mcp.WithString("url",
			mcp.Description("Page to extract from (default: https://24h.pchome.com.tw/)"),
		),
		mcp.WithString("container_selector",
			mcp.Description("CSS selector of the best-seller section (default: '#bestSellers')"),
		),
		mcp.WithString("list_selector",
			mcp.Description("CSS selector of the product list inside the section (default: 'ul.c-listInfoGrid__list')"),
		),
		mcp.WithString("item_selector",
			mcp.Description("CSS selector of one product inside the list (default: 'li')"),
		),
		mcp.WithString("fetch_mode",
			mcp.Description("'browser' (headless Chrome), 'http' (static HTML only) or 'auto' (static first, browser when the section is missing)"),
			mcp.Enum("browser", "http", "auto"),
		),
	)
	s.AddTool(extractTool, handleExtract(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the bestseller API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func handleExtract(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 200 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		payload := extractRequest{
			URL:               request.GetString("url", ""),
			ContainerSelector: request.GetString("container_selector", ""),
			ListSelector:      request.GetString("list_selector", ""),
			ItemSelector:      request.GetString("item_selector", ""),
			FetchMode:         request.GetString("fetch_mode", ""),
			OutputFormat:      "text",
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/extract", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("extract request failed: %v", err)), nil
		}

		var extResp extractResponse
		if err := json.Unmarshal(respBody, &extResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse extract response: %v", err)), nil
		}

		text, ok := formatResult(&extResp)
		if !ok {
			return mcp.NewToolResultError(text), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

// formatResult renders a response for the model. ok is false when the
// response reports a failure; text then holds the error message.
func formatResult(r *extractResponse) (text string, ok bool) {
	if !r.Success {
		if r.Error != nil {
			return fmt.Sprintf("[%s] %s", r.Error.Code, r.Error.Message), false
		}
		return "extraction failed", false
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Source: %s\nEngine: %s\n\n", r.FinalURL, r.EngineUsed)

	if r.Content != "" {
		sb.WriteString(r.Content)
	} else {
		sb.WriteString("No best sellers found.\n")
	}

	if len(r.Links) > 0 {
		sb.WriteString("\nLinks:\n")
		for _, l := range r.Links {
			sb.WriteString(l.Href + "\n")
		}
	}

	if r.Result != nil && len(r.Result.Warnings) > 0 {
		sb.WriteString("\n---\nWarnings:\n")
		for _, w := range r.Result.Warnings {
			sb.WriteString("- " + w + "\n")
		}
	}

	return sb.String(), true
}
