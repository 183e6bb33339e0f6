package payment

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// ---------------------------------------------------------------------------
// Payment Gateway Errors
// ---------------------------------------------------------------------------

var (
	// Request errors
	ErrInvalidReference   = errors.New("payment: reference is required")
	ErrInvalidAmount      = errors.New("payment: amount must be positive")
	ErrInvalidCurrency    = errors.New("payment: currency is required")
	ErrInvalidPayerEmail  = errors.New("payment: payer email is required")
	ErrInvalidCallbackURL = errors.New("payment: invalid callback URL")

	// Gateway errors
	ErrGatewayNotConfigured   = errors.New("payment: gateway not configured")
	ErrGatewayUnavailable     = errors.New("payment: gateway temporarily unavailable")
	ErrGatewayRequestFailed   = errors.New("payment: gateway request failed")
	ErrGatewayInvalidResponse = errors.New("payment: invalid gateway response")
	ErrTransactionNotFound    = errors.New("payment: transaction not found at gateway")

	// Webhook errors
	ErrWebhookSecretMissing = errors.New("payment: webhook secret not configured")
	ErrInvalidSignature     = errors.New("payment: invalid webhook signature")
	ErrMalformedWebhook     = errors.New("payment: malformed webhook payload")
	ErrUnknownWebhookStatus = errors.New("payment: unknown webhook status")
)

// ProviderName identifies a payment gateway
type ProviderName string

const (
	// ProviderPaystack is the Paystack-style gateway
	ProviderPaystack ProviderName = "paystack"
	// ProviderOPay is the OPay-style gateway
	ProviderOPay ProviderName = "opay"
)

// IsValid returns true if the provider is supported
func (p ProviderName) IsValid() bool {
	switch p {
	case ProviderPaystack, ProviderOPay:
		return true
	default:
		return false
	}
}

// String returns the string representation of ProviderName
func (p ProviderName) String() string {
	return string(p)
}

// ParseProviderName normalizes a provider name from a URL or request body
func ParseProviderName(s string) (ProviderName, bool) {
	p := ProviderName(strings.ToLower(strings.TrimSpace(s)))
	return p, p.IsValid()
}

// VerifyStatus is the outcome reported by a gateway verify call
type VerifyStatus string

const (
	VerifyStatusSuccess VerifyStatus = "success"
	VerifyStatusFailed  VerifyStatus = "failed"
	VerifyStatusPending VerifyStatus = "pending"
)

// InitializeRequest opens a hosted payment session
type InitializeRequest struct {
	Reference   string
	AmountMinor int64
	Currency    string
	PayerEmail  string
	PayerName   string
	PayerPhone  string
	CallbackURL string
	Metadata    map[string]string
}

// Validate validates the initialize request
func (r *InitializeRequest) Validate() error {
	if strings.TrimSpace(r.Reference) == "" {
		return ErrInvalidReference
	}
	if r.AmountMinor <= 0 {
		return ErrInvalidAmount
	}
	if r.Currency == "" {
		return ErrInvalidCurrency
	}
	if strings.TrimSpace(r.PayerEmail) == "" {
		return ErrInvalidPayerEmail
	}
	if r.CallbackURL != "" {
		u, err := url.Parse(r.CallbackURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return ErrInvalidCallbackURL
		}
	}
	return nil
}

// InitializeResponse is the gateway's answer to InitializePayment
type InitializeResponse struct {
	PaymentURL        string
	ProviderReference string
	AccessToken       string
	// Raw is the decoded provider response, kept for the ledger payload
	Raw string
}

// VerifyResponse is the gateway's answer to VerifyPayment
type VerifyResponse struct {
	Reference             string
	Status                VerifyStatus
	AmountMinor           int64
	Currency              string
	ProviderTransactionID string
	FailureReason         string
	FeeMinor              int64
	Raw                   string
}

// Gateway is implemented once per payment provider. Implementations are
// constructed with their configuration and hold no global state.
type Gateway interface {
	// Provider returns the gateway identifier
	Provider() ProviderName

	// InitializePayment opens a hosted payment session
	InitializePayment(ctx context.Context, req *InitializeRequest) (*InitializeResponse, error)

	// VerifyPayment queries the status of a payment by our reference
	VerifyPayment(ctx context.Context, reference string) (*VerifyResponse, error)

	// ValidateWebhookSignature checks an HMAC signature of the raw body
	ValidateWebhookSignature(rawBody []byte, signature, secret string) bool

	// WebhookSecret returns the configured webhook secret, empty when unset
	WebhookSecret() string

	// SignatureHeader is the HTTP header carrying the webhook signature
	SignatureHeader() string
}

// GatewayRegistry resolves a configured gateway by provider name.
// Unknown or disabled providers return ErrGatewayNotConfigured.
type GatewayRegistry interface {
	Get(name ProviderName) (Gateway, error)
}
