package payment

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/config"
)

const paystackAPIBaseURL = "https://api.paystack.co"

// PaystackConfig contains the credentials of a Paystack-style gateway
type PaystackConfig struct {
	// BaseURL is the API root, e.g. https://api.paystack.co
	BaseURL string
	// SecretKey authenticates API calls as a bearer token
	SecretKey string
	// WebhookSecret signs webhooks. Paystack uses the secret key.
	WebhookSecret string
	// Timeout bounds a single HTTP call
	Timeout time.Duration
}

// Errors for configuration validation
var (
	ErrPaystackMissingSecretKey = errors.New("paystack: missing secret key")
	ErrPaystackInvalidBaseURL   = errors.New("paystack: invalid base URL")
)

// NewPaystackConfig builds the adapter config from application settings
func NewPaystackConfig(cfg config.PaystackConfig) *PaystackConfig {
	c := &PaystackConfig{
		BaseURL:       cfg.BaseURL,
		SecretKey:     cfg.SecretKey,
		WebhookSecret: cfg.WebhookSecret,
		Timeout:       cfg.Timeout,
	}
	if c.BaseURL == "" {
		c.BaseURL = paystackAPIBaseURL
	}
	if c.WebhookSecret == "" {
		c.WebhookSecret = c.SecretKey
	}
	return c
}

// Validate validates the configuration
func (c *PaystackConfig) Validate() error {
	if c.SecretKey == "" {
		return ErrPaystackMissingSecretKey
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrPaystackInvalidBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return nil
}
