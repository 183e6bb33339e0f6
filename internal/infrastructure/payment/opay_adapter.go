package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	domain "github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
)

const (
	opayCreatePath   = "/api/v1/international/cashier/create"
	opayStatusPath   = "/api/v1/international/cashier/status"
	opaySignatureHdr = "Authorization"
	// cashier sessions expire after this many minutes
	opayExpireMinutes = 30
)

// opayNotFoundCodes are the codes OPay uses for an unknown reference
var opayNotFoundCodes = map[string]bool{"02000": true, "02006": true}

// OPayAdapter implements Gateway for OPay-style cashier APIs
type OPayAdapter struct {
	config *OPayConfig
	client *apiClient
}

// NewOPayAdapter creates a new OPay adapter
func NewOPayAdapter(config *OPayConfig) (*OPayAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &OPayAdapter{
		config: config,
		client: newAPIClient("opay", config.BaseURL, config.Timeout),
	}, nil
}

// Provider returns the gateway identifier
func (a *OPayAdapter) Provider() domain.ProviderName {
	return domain.ProviderOPay
}

// InitializePayment creates a cashier session
func (a *OPayAdapter) InitializePayment(ctx context.Context, req *domain.InitializeRequest) (*domain.InitializeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(opayCreateRequest{
		Country:     a.config.Country,
		Reference:   req.Reference,
		Amount:      opayAmount{Total: domain.MinorAmount(req.AmountMinor), Currency: req.Currency},
		ReturnURL:   req.CallbackURL,
		CallbackURL: req.CallbackURL,
		CancelURL:   req.CallbackURL,
		ExpireAt:    opayExpireMinutes,
		UserInfo: opayUserInfo{
			UserEmail:  req.PayerEmail,
			UserName:   req.PayerName,
			UserMobile: req.PayerPhone,
		},
		Product: opayProduct{Name: "Order " + req.Reference, Description: req.Metadata["description"]},
	})
	if err != nil {
		return nil, fmt.Errorf("opay: failed to marshal request: %w", err)
	}

	resp, err := a.client.do(ctx, http.MethodPost, opayCreatePath, body, map[string]string{
		"Authorization": "Bearer " + a.config.PublicKey,
		"MerchantId":    a.config.MerchantID,
	})
	if err != nil {
		return nil, err
	}

	var env opayEnvelope[opayCreateData]
	if err := a.client.decode(resp, &env); err != nil {
		return nil, err
	}
	if env.Code != opaySuccessCode || env.Data == nil {
		return nil, fmt.Errorf("%w: opay: %s %s", domain.ErrGatewayRequestFailed, env.Code, env.Message)
	}
	if env.Data.CashierURL == "" {
		return nil, fmt.Errorf("%w: opay: missing cashierUrl", domain.ErrGatewayInvalidResponse)
	}

	return &domain.InitializeResponse{
		PaymentURL:        env.Data.CashierURL,
		ProviderReference: env.Data.OrderNo,
		Raw:               string(resp.Body),
	}, nil
}

// VerifyPayment queries the cashier status. The body is signed with the secret key.
func (a *OPayAdapter) VerifyPayment(ctx context.Context, reference string) (*domain.VerifyResponse, error) {
	if reference == "" {
		return nil, domain.ErrInvalidReference
	}

	body, err := json.Marshal(opayStatusRequest{Country: a.config.Country, Reference: reference})
	if err != nil {
		return nil, fmt.Errorf("opay: failed to marshal request: %w", err)
	}

	resp, err := a.client.do(ctx, http.MethodPost, opayStatusPath, body, map[string]string{
		"Authorization": "Bearer " + signHMACSHA512(body, a.config.SecretKey),
		"MerchantId":    a.config.MerchantID,
	})
	if err != nil {
		return nil, err
	}

	var env opayEnvelope[opayStatusData]
	if err := a.client.decode(resp, &env); err != nil {
		return nil, err
	}
	if opayNotFoundCodes[env.Code] {
		return nil, fmt.Errorf("%w: opay: %s", domain.ErrTransactionNotFound, reference)
	}
	if env.Code != opaySuccessCode || env.Data == nil {
		return nil, fmt.Errorf("%w: opay: %s %s", domain.ErrGatewayRequestFailed, env.Code, env.Message)
	}

	status := domain.NormalizeVerifyStatus(env.Data.Status)
	out := &domain.VerifyResponse{
		Reference:             env.Data.Reference,
		Status:                status,
		AmountMinor:           int64(env.Data.Amount.Total),
		Currency:              env.Data.Amount.Currency,
		ProviderTransactionID: env.Data.OrderNo,
		FeeMinor:              int64(env.Data.Fee.Total),
		Raw:                   string(resp.Body),
	}
	if status == domain.VerifyStatusFailed {
		out.FailureReason = env.Data.FailureReason
	}
	return out, nil
}

// ValidateWebhookSignature checks the hex HMAC-SHA512 of the raw body.
// The signature may carry a "Bearer " prefix.
func (a *OPayAdapter) ValidateWebhookSignature(rawBody []byte, signature, secret string) bool {
	signature = strings.TrimSpace(signature)
	if len(signature) > 7 && strings.EqualFold(signature[:7], "bearer ") {
		signature = signature[7:]
	}
	return validHMACSHA512(rawBody, signature, secret)
}

// WebhookSecret returns the configured webhook secret
func (a *OPayAdapter) WebhookSecret() string {
	return a.config.WebhookSecret
}

// SignatureHeader returns the header OPay signs deliveries with
func (a *OPayAdapter) SignatureHeader() string {
	return opaySignatureHdr
}

// Ensure OPayAdapter implements Gateway
var _ domain.Gateway = (*OPayAdapter)(nil)
