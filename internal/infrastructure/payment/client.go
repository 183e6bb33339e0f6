package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	domain "github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 1 << 20
)

// apiClient performs JSON requests against a gateway base URL
type apiClient struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

func newAPIClient(name, baseURL string, timeout time.Duration) *apiClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &apiClient{
		name:       name,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// apiResponse is the raw result of a gateway call
type apiResponse struct {
	StatusCode int
	Body       []byte
}

// do sends body (nil for none) with headers and returns the raw response.
// Transport failures wrap ErrGatewayUnavailable; 5xx responses wrap
// ErrGatewayRequestFailed. 4xx responses are returned to the caller, which
// knows how the provider reports business errors.
func (c *apiClient) do(ctx context.Context, method, path string, body []byte, headers map[string]string) (*apiResponse, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrGatewayUnavailable, c.name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", c.name, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: %s: HTTP %d", domain.ErrGatewayRequestFailed, c.name, resp.StatusCode)
	}
	return &apiResponse{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// decode unmarshals a gateway response body into v
func (c *apiClient) decode(resp *apiResponse, v any) error {
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrGatewayInvalidResponse, c.name, err)
	}
	return nil
}
