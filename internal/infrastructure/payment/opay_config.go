package payment

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/config"
)

const (
	opayAPIBaseURL     = "https://liveapi.opaycheckout.com"
	opayDefaultCountry = "NG"
)

// OPayConfig contains the credentials of an OPay-style cashier gateway
type OPayConfig struct {
	BaseURL    string
	MerchantID string
	// PublicKey authenticates cashier creation
	PublicKey string
	// SecretKey signs status queries
	SecretKey     string
	WebhookSecret string
	Country       string
	Timeout       time.Duration
}

// Errors for configuration validation
var (
	ErrOPayMissingMerchantID = errors.New("opay: missing merchant ID")
	ErrOPayMissingPublicKey  = errors.New("opay: missing public key")
	ErrOPayMissingSecretKey  = errors.New("opay: missing secret key")
	ErrOPayInvalidBaseURL    = errors.New("opay: invalid base URL")
)

// NewOPayConfig builds the adapter config from application settings
func NewOPayConfig(cfg config.OPayConfig) *OPayConfig {
	c := &OPayConfig{
		BaseURL:       cfg.BaseURL,
		MerchantID:    cfg.MerchantID,
		PublicKey:     cfg.PublicKey,
		SecretKey:     cfg.SecretKey,
		WebhookSecret: cfg.WebhookSecret,
		Country:       cfg.Country,
		Timeout:       cfg.Timeout,
	}
	if c.BaseURL == "" {
		c.BaseURL = opayAPIBaseURL
	}
	if c.Country == "" {
		c.Country = opayDefaultCountry
	}
	return c
}

// Validate validates the configuration
func (c *OPayConfig) Validate() error {
	if c.MerchantID == "" {
		return ErrOPayMissingMerchantID
	}
	if c.PublicKey == "" {
		return ErrOPayMissingPublicKey
	}
	if c.SecretKey == "" {
		return ErrOPayMissingSecretKey
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrOPayInvalidBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return nil
}
