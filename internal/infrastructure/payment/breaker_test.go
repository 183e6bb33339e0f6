package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/config"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockGateway is a testify mock of domain.Gateway
type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Provider() domain.ProviderName { return domain.ProviderPaystack }

func (m *mockGateway) InitializePayment(ctx context.Context, req *domain.InitializeRequest) (*domain.InitializeResponse, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*domain.InitializeResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) VerifyPayment(ctx context.Context, reference string) (*domain.VerifyResponse, error) {
	args := m.Called(ctx, reference)
	if r := args.Get(0); r != nil {
		return r.(*domain.VerifyResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) ValidateWebhookSignature(rawBody []byte, signature, secret string) bool {
	return m.Called(rawBody, signature, secret).Bool(0)
}

func (m *mockGateway) WebhookSecret() string   { return "secret" }
func (m *mockGateway) SignatureHeader() string { return "X-Test-Signature" }

var testBreakerConfig = config.BreakerConfig{
	MaxRequests:         1,
	Interval:            time.Minute,
	Timeout:             time.Hour,
	ConsecutiveFailures: 2,
}

func TestBreakerGateway_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &mockGateway{}
	inner.On("InitializePayment", mock.Anything, mock.Anything).
		Return(nil, domain.ErrGatewayRequestFailed).Times(2)

	gw := NewBreakerGateway(inner, testBreakerConfig, nil)
	req := validInitializeRequest()

	for i := 0; i < 2; i++ {
		_, err := gw.InitializePayment(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrGatewayRequestFailed)
	}
	assert.Equal(t, gobreaker.StateOpen, gw.State())

	_, err := gw.InitializePayment(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
	inner.AssertNumberOfCalls(t, "InitializePayment", 2)
}

func TestBreakerGateway_CallerErrorsDoNotTrip(t *testing.T) {
	inner := &mockGateway{}
	inner.On("VerifyPayment", mock.Anything, "ghost").Return(nil, domain.ErrTransactionNotFound)

	gw := NewBreakerGateway(inner, testBreakerConfig, nil)
	for i := 0; i < 5; i++ {
		_, err := gw.VerifyPayment(context.Background(), "ghost")
		assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, gw.State())
}

func TestBreakerGateway_PassesThrough(t *testing.T) {
	inner := &mockGateway{}
	inner.On("VerifyPayment", mock.Anything, "REF").
		Return(&domain.VerifyResponse{Reference: "REF", Status: domain.VerifyStatusSuccess}, nil)
	inner.On("ValidateWebhookSignature", []byte("b"), "sig", "secret").Return(true)

	gw := NewBreakerGateway(inner, testBreakerConfig, nil)
	resp, err := gw.VerifyPayment(context.Background(), "REF")
	require.NoError(t, err)
	assert.Equal(t, domain.VerifyStatusSuccess, resp.Status)
	assert.True(t, gw.ValidateWebhookSignature([]byte("b"), "sig", "secret"))
	assert.Equal(t, "X-Test-Signature", gw.SignatureHeader())
	assert.Equal(t, domain.ProviderPaystack, gw.Provider())
}

func TestTranslateBreakerError(t *testing.T) {
	assert.ErrorIs(t, translateBreakerError(gobreaker.ErrOpenState), domain.ErrGatewayUnavailable)
	other := errors.New("x")
	assert.Equal(t, other, translateBreakerError(other))
}
