package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	domain "github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
)

const (
	paystackInitializePath = "/transaction/initialize"
	paystackVerifyPath     = "/transaction/verify/%s"
	paystackSignatureHdr   = "X-Paystack-Signature"
)

// PaystackAdapter implements Gateway for Paystack-style APIs
type PaystackAdapter struct {
	config *PaystackConfig
	client *apiClient
}

// NewPaystackAdapter creates a new Paystack adapter
func NewPaystackAdapter(config *PaystackConfig) (*PaystackAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &PaystackAdapter{
		config: config,
		client: newAPIClient("paystack", config.BaseURL, config.Timeout),
	}, nil
}

// Provider returns the gateway identifier
func (a *PaystackAdapter) Provider() domain.ProviderName {
	return domain.ProviderPaystack
}

// InitializePayment opens a hosted checkout page
func (a *PaystackAdapter) InitializePayment(ctx context.Context, req *domain.InitializeRequest) (*domain.InitializeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(paystackInitializeRequest{
		Email:       req.PayerEmail,
		Amount:      req.AmountMinor,
		Currency:    req.Currency,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("paystack: failed to marshal request: %w", err)
	}

	resp, err := a.client.do(ctx, http.MethodPost, paystackInitializePath, body, a.authHeaders())
	if err != nil {
		return nil, err
	}

	var env paystackEnvelope[paystackInitializeData]
	if err := a.client.decode(resp, &env); err != nil {
		return nil, err
	}
	if !env.Status || resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: paystack: %s", domain.ErrGatewayRequestFailed, env.Message)
	}
	if env.Data.AuthorizationURL == "" {
		return nil, fmt.Errorf("%w: paystack: missing authorization_url", domain.ErrGatewayInvalidResponse)
	}

	return &domain.InitializeResponse{
		PaymentURL:        env.Data.AuthorizationURL,
		ProviderReference: env.Data.Reference,
		AccessToken:       env.Data.AccessCode,
		Raw:               string(resp.Body),
	}, nil
}

// VerifyPayment queries the transaction by our reference
func (a *PaystackAdapter) VerifyPayment(ctx context.Context, reference string) (*domain.VerifyResponse, error) {
	if reference == "" {
		return nil, domain.ErrInvalidReference
	}

	path := fmt.Sprintf(paystackVerifyPath, url.PathEscape(reference))
	resp, err := a.client.do(ctx, http.MethodGet, path, nil, a.authHeaders())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: paystack: %s", domain.ErrTransactionNotFound, reference)
	}

	var env paystackEnvelope[paystackVerifyData]
	if err := a.client.decode(resp, &env); err != nil {
		return nil, err
	}
	if !env.Status || resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: paystack: %s", domain.ErrGatewayRequestFailed, env.Message)
	}

	status := domain.NormalizeVerifyStatus(env.Data.Status)
	out := &domain.VerifyResponse{
		Reference:             env.Data.Reference,
		Status:                status,
		AmountMinor:           int64(env.Data.Amount),
		Currency:              env.Data.Currency,
		ProviderTransactionID: string(env.Data.ID),
		FeeMinor:              int64(env.Data.Fees),
		Raw:                   string(resp.Body),
	}
	if status == domain.VerifyStatusFailed {
		out.FailureReason = env.Data.GatewayResponse
	}
	return out, nil
}

// ValidateWebhookSignature checks the hex HMAC-SHA512 of the raw body
func (a *PaystackAdapter) ValidateWebhookSignature(rawBody []byte, signature, secret string) bool {
	return validHMACSHA512(rawBody, signature, secret)
}

// WebhookSecret returns the configured webhook secret
func (a *PaystackAdapter) WebhookSecret() string {
	return a.config.WebhookSecret
}

// SignatureHeader returns the header Paystack signs deliveries with
func (a *PaystackAdapter) SignatureHeader() string {
	return paystackSignatureHdr
}

func (a *PaystackAdapter) authHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + a.config.SecretKey}
}

// Ensure PaystackAdapter implements Gateway
var _ domain.Gateway = (*PaystackAdapter)(nil)
