package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var ErrConfirmationRejected = errors.New("payment resource rejected the confirmation")

type ConfirmationItem struct {
	LineItemID string          `json:"cartItemId"`
	ProductRef string          `json:"videoCvRef"`
	Title      string          `json:"title"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// ConfirmationRequest is the payment record posted to the marketplace after
// the provider reports an outcome. StatusCode is the single-letter tag:
// s for success, f for failed, a for anything else.
type ConfirmationRequest struct {
	UserID      string             `json:"userId"`
	Currency    string             `json:"currency"`
	Total       decimal.Decimal    `json:"total"`
	Reference   string             `json:"reference"`
	StatusCode  string             `json:"status"`
	PaymentType string             `json:"paymentType"`
	Items       []ConfirmationItem `json:"details"`
}

type confirmationResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PaymentClient posts payment confirmations to the remote payment resource.
type PaymentClient interface {
	Confirm(ctx context.Context, req *ConfirmationRequest) error
}

type httpPaymentClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewPaymentClient(baseURL string, timeout time.Duration) PaymentClient {
	return &httpPaymentClient{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: baseURL,
	}
}

func (c *httpPaymentClient) Confirm(ctx context.Context, confirmation *ConfirmationRequest) error {
	token, err := credentialFrom(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(confirmation)
	if err != nil {
		return fmt.Errorf("marshal confirmation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post confirmation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status=%d body=%s", ErrConfirmationRejected, resp.StatusCode, string(b))
	}

	var result confirmationResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode confirmation response: %w", err)
	}
	if result.Code != "00" {
		return fmt.Errorf("%w: code=%s message=%s", ErrConfirmationRejected, result.Code, result.Message)
	}
	return nil
}
