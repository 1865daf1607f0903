package recommend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Generator produces the raw text answer for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client calls the recommendation service's generate endpoint.
type Client struct {
	BaseURL string
	Client  *http.Client
}

// NewClient creates a client with optional proxy support.
func NewClient(baseURL string, timeout time.Duration, proxyURL string) *Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout, Transport: transport},
	}
}

// Generate posts {"prompt": ...} and returns the response text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return "", fmt.Errorf("marshal prompt: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("generate read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generate: status %d, body: %s", resp.StatusCode, string(raw))
	}
	return ExtractContent(raw), nil
}

// ExtractContent unwraps the service response. It may be a JSON string, an
// object carrying the text under "content" or "message" (string or
// {"content": ...}), or plain text.
func ExtractContent(raw []byte) string {
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return strings.TrimSpace(string(raw))
	}
	switch v := decoded.(type) {
	case string:
		return v
	case map[string]interface{}:
		if _, ok := v["allocation"]; ok {
			return string(raw)
		}
		if s, ok := v["content"].(string); ok {
			return s
		}
		switch m := v["message"].(type) {
		case string:
			return m
		case map[string]interface{}:
			if s, ok := m["content"].(string); ok {
				return s
			}
		}
	}
	return string(raw)
}
