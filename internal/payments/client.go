package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// IntentClient talks to the external payment-intent service. The marketplace
// only needs one call: create an intent, get back the client secret the
// payment UI consumes.
type IntentClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewIntentClient(baseURL string) *IntentClient {
	return &IntentClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type intentRequest struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

type intentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// CreateIntent requests a payment intent for amountCents and returns the
// intent id and opaque client secret.
func (c *IntentClient) CreateIntent(ctx context.Context, amountCents int64, currency, description string) (id, clientSecret string, err error) {
	body, err := json.Marshal(intentRequest{Amount: amountCents, Currency: currency, Description: description})
	if err != nil {
		return "", "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payment_intents", bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("payment intent request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("payment intent service returned status %d", resp.StatusCode)
	}
	var out intentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", fmt.Errorf("payment intent response: %w", err)
	}
	return out.ID, out.ClientSecret, nil
}
