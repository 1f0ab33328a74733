package translate

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

// Translator is the language provider contract used by the bot core.
type Translator interface {
	Detect(ctx context.Context, text string) (string, error)
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Client talks to the public translate_a/single endpoint (client=gtx),
// which answers both detection and translation in one response shape.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://translate.googleapis.com"
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Detect(ctx context.Context, text string) (string, error) {
	_, detected, err := c.single(ctx, text, "auto", "en")
	if err != nil {
		return "", err
	}
	if detected == "" {
		return "", fmt.Errorf("translate: no detected language in response")
	}
	return detected, nil
}

func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	if strings.TrimSpace(source) == "" {
		source = "auto"
	}
	if strings.TrimSpace(target) == "" {
		return "", fmt.Errorf("translate: missing target language")
	}
	translated, _, err := c.single(ctx, text, source, target)
	if err != nil {
		return "", err
	}
	return translated, nil
}

func (c *Client) single(ctx context.Context, text, source, target string) (string, string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", source)
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", text)

	endpoint := c.BaseURL + "/translate_a/single?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", "", err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", "", err
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("translate http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return parseSingleResponse(raw)
}

// parseSingleResponse unpacks the endpoint's nested-array payload:
// index 0 holds [translated, original, ...] segment pairs, index 2 holds the
// detected source language code.
func parseSingleResponse(raw []byte) (string, string, error) {
	var payload []any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", "", fmt.Errorf("translate: invalid response: %w", err)
	}
	if len(payload) == 0 {
		return "", "", fmt.Errorf("translate: empty response")
	}

	var translated strings.Builder
	if segments, ok := payload[0].([]any); ok {
		for _, seg := range segments {
			pair, ok := seg.([]any)
			if !ok || len(pair) == 0 {
				continue
			}
			if s, ok := pair[0].(string); ok {
				translated.WriteString(s)
			}
		}
	}

	detected := ""
	if len(payload) > 2 {
		if s, ok := payload[2].(string); ok {
			detected = strings.TrimSpace(s)
		}
	}

	return translated.String(), detected, nil
}
