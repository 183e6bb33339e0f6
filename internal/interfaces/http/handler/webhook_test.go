package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pendingReference checks out a guest cart and returns its payment reference
func (f *apiFixture) pendingReference(t *testing.T, guestID string) string {
	t.Helper()
	f.addToCart(t, shared.GuestOwner(guestID), "Beans", "5000", 2)
	w := f.do(t, http.MethodPost, "/api/v1/checkout", checkoutBody(), guest(guestID))
	testutil.RequireStatus(t, w, http.StatusCreated)
	return data(t, w)["reference"].(string)
}

func TestWebhookHandler_ChargeSuccess(t *testing.T) {
	f := newAPIFixture(t)
	reference := f.pendingReference(t, "guest-hook")
	body := chargeSuccess(reference)

	w := f.do(t, http.MethodPost, "/api/v1/webhooks/paystack", body, signed(body))

	testutil.RequireStatus(t, w, http.StatusOK)
	assert.Empty(t, w.Body.String())

	o, err := f.repos.Orders().FindByReference(context.Background(), reference)
	require.NoError(t, err)
	assert.True(t, o.IsPaid())

	t.Run("redelivery is acknowledged", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/webhooks/paystack", body, signed(body))

		testutil.RequireStatus(t, w, http.StatusOK)
		var count int64
		require.NoError(t, f.db.Table("transactions").Where("reference = ?", reference).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestWebhookHandler_Rejections(t *testing.T) {
	f := newAPIFixture(t)
	reference := f.pendingReference(t, "guest-hook-reject")
	body := chargeSuccess(reference)
	unknown := chargeSuccess("CHK-NOBODY")
	malformed := []byte(`{"event":"charge.success","data":`)

	tests := []struct {
		name    string
		method  string
		path    string
		body    []byte
		headers map[string]string
		status  int
	}{
		{"bad signature", http.MethodPost, "/api/v1/webhooks/paystack", body, map[string]string{"X-Test-Signature": "deadbeef"}, http.StatusUnauthorized},
		{"missing signature", http.MethodPost, "/api/v1/webhooks/paystack", body, nil, http.StatusUnauthorized},
		{"malformed payload", http.MethodPost, "/api/v1/webhooks/paystack", malformed, signed(malformed), http.StatusBadRequest},
		{"unknown reference", http.MethodPost, "/api/v1/webhooks/paystack", unknown, signed(unknown), http.StatusNotFound},
		{"unsupported provider", http.MethodPost, "/api/v1/webhooks/bitpay", body, signed(body), http.StatusNotFound},
		{"provider not configured", http.MethodPost, "/api/v1/webhooks/opay", body, signed(body), http.StatusNotFound},
		{"wrong method", http.MethodGet, "/api/v1/webhooks/paystack", nil, nil, http.StatusMethodNotAllowed},
		{"body over limit", http.MethodPost, "/api/v1/webhooks/paystack", []byte(`{"pad":"` + strings.Repeat("x", 8<<10) + `"}`), nil, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reqBody any
			if tt.body != nil {
				reqBody = tt.body
			}
			w := f.do(t, tt.method, tt.path, reqBody, tt.headers)

			testutil.RequireStatus(t, w, tt.status)
		})
	}

	t.Run("allow header on wrong method", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/webhooks/paystack", nil, nil)
		assert.Equal(t, http.MethodPost, w.Header().Get("Allow"))
	})

	o, err := f.repos.Orders().FindByReference(context.Background(), reference)
	require.NoError(t, err)
	assert.False(t, o.IsPaid(), "rejected deliveries change nothing")
}

func TestWebhookHandler_MissingSecret(t *testing.T) {
	f := newAPIFixture(t)
	reference := f.pendingReference(t, "guest-hook-nosecret")
	f.gateway.Secret = ""
	body := chargeSuccess(reference)

	w := f.do(t, http.MethodPost, "/api/v1/webhooks/paystack", body, signed(body))

	testutil.RequireStatus(t, w, http.StatusInternalServerError)
}
