package payment

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

// CheckoutProvider produces the URL of the hosted checkout surface.
type CheckoutProvider interface {
	CheckoutURL(ctx context.Context, successURL, cancelURL string) (string, error)
}

// HostedCheckout is a precomputed hosted-checkout link that accepts a redirect_url.
type HostedCheckout struct {
	BaseURL string
}

func (h HostedCheckout) CheckoutURL(_ context.Context, successURL, _ string) (string, error) {
	if h.BaseURL == "" {
		return "", fmt.Errorf("hosted checkout url is empty")
	}
	sep := "?"
	if strings.Contains(h.BaseURL, "?") {
		sep = "&"
	}
	return h.BaseURL + sep + "redirect_url=" + url.QueryEscape(successURL), nil
}

// SessionCheckout creates a checkout session for a price through the payment service.
type SessionCheckout struct {
	BaseURL string
	PriceID string
	Client  *http.Client
}

// NewSessionCheckout creates a session-based provider.
func NewSessionCheckout(baseURL, priceID string) *SessionCheckout {
	return &SessionCheckout{
		BaseURL: strings.TrimRight(baseURL, "/"),
		PriceID: priceID,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *SessionCheckout) CheckoutURL(ctx context.Context, successURL, cancelURL string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"priceId":    s.PriceID,
		"successUrl": successURL,
		"cancelUrl":  cancelURL,
	})
	if err != nil {
		return "", fmt.Errorf("marshal session request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/create-checkout-session", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("create checkout session: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode checkout session: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("create checkout session: empty url")
	}
	return out.URL, nil
}
