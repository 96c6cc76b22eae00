package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Client is a minimal PayPal Orders v2 API client. Only the calls the
// subscription flow needs are implemented.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
}

func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

// OrderResult is the provider's echo of a created order.
type OrderResult struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	ApproveURL string `json:"approve_url"`
}

// CaptureResult summarizes a capture attempt.
type CaptureResult struct {
	OrderID    string
	CaptureID  string
	Status     string
	PayerID    string
	PayerEmail string
	Amount     string
	Currency   string
}

const StatusCompleted = "COMPLETED"

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("paypal token error: %s", string(body))
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", err
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn-60) * time.Second)
	return c.accessToken, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paypal %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("paypal api error (%d): %s", resp.StatusCode, string(data))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
	Payer struct {
		PayerID string `json:"payer_id"`
		Email   string `json:"email_address"`
	} `json:"payer"`
	PurchaseUnits []struct {
		Amount struct {
			Value        string `json:"value"`
			CurrencyCode string `json:"currency_code"`
		} `json:"amount"`
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

// CreateOrder creates a provider order for the given amount and returns its
// ID plus the buyer-approval URL.
func (c *Client) CreateOrder(ctx context.Context, amount, currency, returnURL, cancelURL string) (*OrderResult, error) {
	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{
			{"amount": map[string]string{"currency_code": currency, "value": amount}},
		},
		"application_context": map[string]string{
			"return_url": returnURL,
			"cancel_url": cancelURL,
		},
	}

	var resp orderResponse
	if err := c.do(ctx, http.MethodPost, "/v2/checkout/orders", body, &resp); err != nil {
		return nil, err
	}

	result := &OrderResult{ID: resp.ID, Status: resp.Status}
	for _, link := range resp.Links {
		if link.Rel == "approve" {
			result.ApproveURL = link.Href
		}
	}
	return result, nil
}

// CaptureOrder captures an approved order.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error) {
	var resp orderResponse
	err := c.do(ctx, http.MethodPost, "/v2/checkout/orders/"+orderID+"/capture", struct{}{}, &resp)
	if err != nil {
		return nil, err
	}
	return captureFromOrder(&resp), nil
}

// GetOrder fetches the current provider-side state of an order. Used by the
// reconciliation pass.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*CaptureResult, error) {
	var resp orderResponse
	if err := c.do(ctx, http.MethodGet, "/v2/checkout/orders/"+orderID, nil, &resp); err != nil {
		return nil, err
	}
	return captureFromOrder(&resp), nil
}

func captureFromOrder(resp *orderResponse) *CaptureResult {
	result := &CaptureResult{
		OrderID:    resp.ID,
		Status:     resp.Status,
		PayerID:    resp.Payer.PayerID,
		PayerEmail: resp.Payer.Email,
	}
	if len(resp.PurchaseUnits) > 0 {
		unit := resp.PurchaseUnits[0]
		result.Amount = unit.Amount.Value
		result.Currency = unit.Amount.CurrencyCode
		if len(unit.Payments.Captures) > 0 {
			result.CaptureID = unit.Payments.Captures[0].ID
		}
	}
	return result
}
