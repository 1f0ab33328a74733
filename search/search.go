package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Result struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Provider is the web-search contract used by the bot core.
type Provider interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Client queries the Custom Search JSON API with an API key and engine id.
type Client struct {
	BaseURL  string
	APIKey   string
	EngineID string
	HTTP     *http.Client
}

func New(baseURL, apiKey, engineID string) *Client {
	if baseURL == "" {
		baseURL = "https://www.googleapis.com"
	}
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		APIKey:   apiKey,
		EngineID: engineID,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
	}
}

type searchResponse struct {
	Items []Result `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("key", c.APIKey)
	q.Set("cx", c.EngineID)

	endpoint := c.BaseURL + "/customsearch/v1?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	var out searchResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("search: invalid response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Error != nil && out.Error.Message != "" {
			return nil, fmt.Errorf("search http %d: %s", resp.StatusCode, out.Error.Message)
		}
		return nil, fmt.Errorf("search http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return out.Items, nil
}
