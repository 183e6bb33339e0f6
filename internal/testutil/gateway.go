package testutil

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
)

// FakeGateway is an in-process payment.Gateway. It signs webhooks with
// HMAC-SHA512 like the real adapters and records every initialize call.
type FakeGateway struct {
	mu sync.Mutex

	Name   payment.ProviderName
	Secret string

	// InitErr makes the next InitializePayment calls fail
	InitErr error
	// Verify answers VerifyPayment by reference; missing references are not found
	Verify map[string]*payment.VerifyResponse

	Initialized []payment.InitializeRequest
}

// NewFakeGateway creates a fake gateway for name with a webhook secret
func NewFakeGateway(name payment.ProviderName, secret string) *FakeGateway {
	return &FakeGateway{Name: name, Secret: secret, Verify: map[string]*payment.VerifyResponse{}}
}

func (g *FakeGateway) Provider() payment.ProviderName { return g.Name }

func (g *FakeGateway) InitializePayment(_ context.Context, req *payment.InitializeRequest) (*payment.InitializeResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if g.InitErr != nil {
		return nil, g.InitErr
	}
	g.Initialized = append(g.Initialized, *req)
	return &payment.InitializeResponse{
		PaymentURL:  fmt.Sprintf("https://pay.example.test/%s/%s", g.Name, req.Reference),
		AccessToken: "acc_" + req.Reference,
		Raw:         `{"status":true}`,
	}, nil
}

func (g *FakeGateway) VerifyPayment(_ context.Context, reference string) (*payment.VerifyResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	resp, ok := g.Verify[reference]
	if !ok {
		return nil, payment.ErrTransactionNotFound
	}
	return resp, nil
}

func (g *FakeGateway) ValidateWebhookSignature(rawBody []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(SignHMACSHA512(rawBody, secret)), []byte(signature))
}

func (g *FakeGateway) WebhookSecret() string { return g.Secret }

func (g *FakeGateway) SignatureHeader() string { return "X-Test-Signature" }

// InitCount returns the number of successful initialize calls
func (g *FakeGateway) InitCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Initialized)
}

// SetInitErr sets or clears the initialize failure
func (g *FakeGateway) SetInitErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.InitErr = err
}

// SignHMACSHA512 returns the lowercase hex HMAC-SHA512 of body
func SignHMACSHA512(body []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// FakeRegistry resolves fake gateways by name
type FakeRegistry map[payment.ProviderName]payment.Gateway

// NewFakeRegistry builds a registry from gateways
func NewFakeRegistry(gateways ...payment.Gateway) FakeRegistry {
	r := FakeRegistry{}
	for _, gw := range gateways {
		r[gw.Provider()] = gw
	}
	return r
}

func (r FakeRegistry) Get(name payment.ProviderName) (payment.Gateway, error) {
	gw, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", payment.ErrGatewayNotConfigured, name)
	}
	return gw, nil
}

var (
	_ payment.Gateway         = (*FakeGateway)(nil)
	_ payment.GatewayRegistry = FakeRegistry(nil)
)
