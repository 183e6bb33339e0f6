package payment

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	domain "github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaystackTestAdapter(t *testing.T, handler http.HandlerFunc) *PaystackAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter, err := NewPaystackAdapter(NewPaystackConfig(config.PaystackConfig{
		BaseURL:   server.URL,
		SecretKey: "sk_test_123",
	}))
	require.NoError(t, err)
	return adapter
}

func validInitializeRequest() *domain.InitializeRequest {
	return &domain.InitializeRequest{
		Reference:   "CHK-REF-1",
		AmountMinor: 630000,
		Currency:    "NGN",
		PayerEmail:  "ada@example.com",
		PayerName:   "Ada Obi",
		CallbackURL: "https://shop.example.com/checkout/callback",
		Metadata:    map[string]string{"order_id": "o-1"},
	}
}

func TestPaystackConfig_Validate(t *testing.T) {
	cfg := NewPaystackConfig(config.PaystackConfig{SecretKey: "sk"})
	require.NoError(t, cfg.Validate())
	assert.Equal(t, paystackAPIBaseURL, cfg.BaseURL)
	assert.Equal(t, "sk", cfg.WebhookSecret, "webhook secret defaults to the secret key")

	assert.ErrorIs(t, NewPaystackConfig(config.PaystackConfig{}).Validate(), ErrPaystackMissingSecretKey)
	assert.ErrorIs(t, (&PaystackConfig{SecretKey: "sk", BaseURL: "::bad"}).Validate(), ErrPaystackInvalidBaseURL)
}

func TestPaystackAdapter_InitializePayment(t *testing.T) {
	var got paystackInitializeRequest
	adapter := newPaystackTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, paystackInitializePath, r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc","reference":"CHK-REF-1"}}`))
	})

	resp, err := adapter.InitializePayment(context.Background(), validInitializeRequest())
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/abc", resp.PaymentURL)
	assert.Equal(t, "abc", resp.AccessToken)
	assert.Equal(t, "CHK-REF-1", resp.ProviderReference)
	assert.Equal(t, int64(630000), got.Amount)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "o-1", got.Metadata["order_id"])
}

func TestPaystackAdapter_InitializePaymentErrors(t *testing.T) {
	t.Run("rejected by provider", func(t *testing.T) {
		adapter := newPaystackTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
		})
		_, err := adapter.InitializePayment(context.Background(), validInitializeRequest())
		assert.ErrorIs(t, err, domain.ErrGatewayRequestFailed)
		assert.Contains(t, err.Error(), "Invalid key")
	})

	t.Run("server error", func(t *testing.T) {
		adapter := newPaystackTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, err := adapter.InitializePayment(context.Background(), validInitializeRequest())
		assert.ErrorIs(t, err, domain.ErrGatewayRequestFailed)
	})

	t.Run("garbage body", func(t *testing.T) {
		adapter := newPaystackTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>`))
		})
		_, err := adapter.InitializePayment(context.Background(), validInitializeRequest())
		assert.ErrorIs(t, err, domain.ErrGatewayInvalidResponse)
	})

	t.Run("invalid request never leaves the process", func(t *testing.T) {
		called := false
		adapter := newPaystackTestAdapter(t, func(w http.ResponseWriter, r *http.Request) { called = true })
		req := validInitializeRequest()
		req.AmountMinor = 0
		_, err := adapter.InitializePayment(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
		assert.False(t, called)
	})
}

func TestPaystackAdapter_VerifyPayment(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus domain.VerifyStatus
		wantReason string
	}{
		{
			name:       "success",
			body:       `{"status":true,"message":"ok","data":{"id":4099260516,"status":"success","reference":"WAL-1","amount":50000,"currency":"NGN","gateway_response":"Successful","fees":750}}`,
			wantStatus: domain.VerifyStatusSuccess,
		},
		{
			name:       "failed",
			body:       `{"status":true,"message":"ok","data":{"id":"1","status":"failed","reference":"WAL-1","amount":"50000","currency":"NGN","gateway_response":"Declined"}}`,
			wantStatus: domain.VerifyStatusFailed,
			wantReason: "Declined",
		},
		{
			name:       "abandoned counts as failed",
			body:       `{"status":true,"message":"ok","data":{"id":1,"status":"abandoned","reference":"WAL-1","amount":50000,"currency":"NGN","gateway_response":"The transaction was not completed"}}`,
			wantStatus: domain.VerifyStatusFailed,
			wantReason: "The transaction was not completed",
		},
		{
			name:       "ongoing is pending",
			body:       `{"status":true,"message":"ok","data":{"id":1,"status":"ongoing","reference":"WAL-1","amount":50000,"currency":"NGN"}}`,
			wantStatus: domain.VerifyStatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := newPaystackTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/transaction/verify/WAL-1", r.URL.Path)
				w.Write([]byte(tt.body))
			})
			resp, err := adapter.VerifyPayment(context.Background(), "WAL-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantReason, resp.FailureReason)
			assert.Equal(t, int64(50000), resp.AmountMinor)
		})
	}

	t.Run("fee and id are captured", func(t *testing.T) {
		adapter := newPaystackTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(tests[0].body))
		})
		resp, err := adapter.VerifyPayment(context.Background(), "WAL-1")
		require.NoError(t, err)
		assert.Equal(t, "4099260516", resp.ProviderTransactionID)
		assert.Equal(t, int64(750), resp.FeeMinor)
	})

	t.Run("unknown reference", func(t *testing.T) {
		adapter := newPaystackTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status":false,"message":"Transaction reference not found"}`))
		})
		_, err := adapter.VerifyPayment(context.Background(), "nope")
		assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
	})
}

func TestPaystackAdapter_Webhook(t *testing.T) {
	adapter := newPaystackTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {})
	body := []byte(`{"event":"charge.success","data":{"reference":"CHK-1"}}`)
	sig := signHMACSHA512(body, "sk_test_123")

	assert.Equal(t, "X-Paystack-Signature", adapter.SignatureHeader())
	assert.Equal(t, "sk_test_123", adapter.WebhookSecret())
	assert.True(t, adapter.ValidateWebhookSignature(body, sig, "sk_test_123"))
	assert.False(t, adapter.ValidateWebhookSignature(body, sig, "other"))
	assert.False(t, adapter.ValidateWebhookSignature([]byte(`{"tampered":true}`), sig, "sk_test_123"))
	assert.False(t, adapter.ValidateWebhookSignature(body, "", "sk_test_123"))
	assert.False(t, adapter.ValidateWebhookSignature(body, sig, ""))
}
