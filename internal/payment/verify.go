package payment

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Verifier asks the payment service whether a return token reflects a real payment.
type Verifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// HTTPVerifier posts the token to the verification endpoint.
type HTTPVerifier struct {
	URL    string
	Client *http.Client
}

func NewHTTPVerifier(endpoint string) *HTTPVerifier {
	return &HTTPVerifier{URL: endpoint, Client: &http.Client{Timeout: 15 * time.Second}}
}

// Verify sends {"sessionId": token} for checkout session ids and
// {"paymentStatus": token} otherwise.
func (v *HTTPVerifier) Verify(ctx context.Context, token string) (bool, error) {
	payload := map[string]string{"paymentStatus": token}
	if strings.HasPrefix(token, "cs_") {
		payload = map[string]string{"sessionId": token}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return false, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.URL, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := v.Client.Do(req)
	if err != nil {
		return false, fmt.Errorf("verify payment: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("verify payment: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	var out struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("decode verification: %w", err)
	}
	return out.Success, nil
}
