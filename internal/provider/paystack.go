package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/playcv/cartd/internal/domain"
)

// Customer is the payer metadata handed to the provider. Only Email is
// required; the provider accepts empty strings for the rest.
type Customer struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

type InitRequest struct {
	AmountMinor int64
	Currency    string
	Reference   string
	Customer    Customer
}

// Authorization is the provider's handoff target: the user completes the
// payment at AuthorizationURL, then the provider reports back by reference.
type Authorization struct {
	Reference        string
	AccessCode       string
	AuthorizationURL string
}

// Client initializes transactions with the external payment provider and
// verifies their outcome by reference.
type Client interface {
	Initialize(ctx context.Context, req InitRequest) (*Authorization, error)
	Verify(ctx context.Context, reference string) (*domain.ProviderResult, error)
}

type paystackClient struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

func NewPaystackClient(baseURL, secretKey string, timeout time.Duration) Client {
	return &paystackClient{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:   baseURL,
		secretKey: secretKey,
	}
}

// MinorUnits converts a decimal amount into the provider's integer minor
// currency units (kobo for NGN).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func (c *paystackClient) Initialize(ctx context.Context, init InitRequest) (*Authorization, error) {
	payload := map[string]interface{}{
		"amount":    init.AmountMinor,
		"currency":  init.Currency,
		"email":     init.Customer.Email,
		"reference": init.Reference,
		"metadata": map[string]string{
			"first_name": init.Customer.FirstName,
			"last_name":  init.Customer.LastName,
			"phone":      init.Customer.Phone,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal init payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/transaction/initialize", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider initialize: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("provider error %d: %s", resp.StatusCode, string(b))
	}

	var result struct {
		Status bool   `json:"status"`
		Msg    string `json:"message"`
		Data   struct {
			AuthorizationURL string `json:"authorization_url"`
			AccessCode       string `json:"access_code"`
			Reference        string `json:"reference"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}
	if !result.Status {
		return nil, fmt.Errorf("provider refused transaction: %s", result.Msg)
	}

	return &Authorization{
		Reference:        result.Data.Reference,
		AccessCode:       result.Data.AccessCode,
		AuthorizationURL: result.Data.AuthorizationURL,
	}, nil
}

func (c *paystackClient) Verify(ctx context.Context, reference string) (*domain.ProviderResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider verify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("provider error %d: %s", resp.StatusCode, string(b))
	}

	var result struct {
		Data struct {
			Status    string `json:"status"`
			Reference string `json:"reference"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}

	// Translate the raw status at the boundary; downstream only ever sees
	// the closed variant.
	return &domain.ProviderResult{
		Status:    domain.ProviderStatusFrom(result.Data.Status),
		Reference: result.Data.Reference,
	}, nil
}
