package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"wanderly/models"

	"github.com/go-resty/resty/v2"
)

var ErrMissingAPIKey = errors.New("TAVILY_API_KEY is not set")

// TavilyClient searches travel guides through the Tavily search API.
type TavilyClient struct {
	client *resty.Client
	url    string
	apiKey string
}

func NewTavilyClient(url, apiKey string, timeout time.Duration) *TavilyClient {
	return &TavilyClient{
		client: resty.New().SetTimeout(timeout),
		url:    url,
		apiKey: apiKey,
	}
}

type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
	MaxResults    int    `json:"max_results"`
}

func (t *TavilyClient) SearchGuides(ctx context.Context, query string) (*models.GuideResult, error) {
	if t.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	var out models.GuideResult
	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(t.apiKey).
		SetBody(tavilyRequest{
			APIKey:        t.apiKey,
			Query:         query,
			SearchDepth:   "basic",
			IncludeAnswer: true,
			MaxResults:    3,
		}).
		SetResult(&out).
		Post(t.url)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("tavily API error (%d): %s", resp.StatusCode(), resp.String())
	}
	return &out, nil
}

// FormatGuide renders a search result as prompt context.
func FormatGuide(r *models.GuideResult) string {
	if r == nil {
		return ""
	}
	var parts []string
	if r.Answer != "" {
		parts = append(parts, "Summary: "+r.Answer)
	}
	for _, h := range r.Results {
		title := h.Title
		if title == "" {
			title = "No Title"
		}
		parts = append(parts, fmt.Sprintf("Source: %s\nURL: %s\nContent: %s\n", title, h.URL, h.Content))
	}
	return strings.Join(parts, "\n---\n")
}
