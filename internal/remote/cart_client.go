package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// CartRecord is one entry of the marketplace's "my cart" resource.
type CartRecord struct {
	ID            string          `json:"id"`
	ProductRef    string          `json:"videoCvRef"`
	Title         string          `json:"title"`
	ThumbnailURL  string          `json:"thumbnailUrl"`
	UploaderLabel string          `json:"uploaderName"`
	Description   string          `json:"description"`
	UnitPrice     decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
}

// CartClient talks to the remote cart resource. Consumers define this
// interface, not the HTTP implementation.
type CartClient interface {
	List(ctx context.Context) ([]CartRecord, error)
	Remove(ctx context.Context, recordID string) error
}

type httpCartClient struct {
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker[[]CartRecord]
}

func NewCartClient(baseURL string, timeout time.Duration) CartClient {
	breaker := gobreaker.NewCircuitBreaker[[]CartRecord](gobreaker.Settings{
		Name:    "remote-cart",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &httpCartClient{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: baseURL,
		breaker: breaker,
	}
}

func (c *httpCartClient) List(ctx context.Context) ([]CartRecord, error) {
	token, err := credentialFrom(ctx)
	if err != nil {
		return nil, err
	}

	return c.breaker.Execute(func() ([]CartRecord, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/cart", nil)
		if err != nil {
			return nil, fmt.Errorf("http new request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch cart: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, ErrUnauthorized
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			b, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("cart resource error %d: %s", resp.StatusCode, string(b))
		}

		var records []CartRecord
		if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
			return nil, fmt.Errorf("decode cart response: %w", err)
		}
		return records, nil
	})
}

func (c *httpCartClient) Remove(ctx context.Context, recordID string) error {
	token, err := credentialFrom(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/cart/"+recordID, nil)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remove cart record: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("cart resource error %d: %s", resp.StatusCode, string(b))
	}
	return nil
}
