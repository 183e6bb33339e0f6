package handler

import (
	"net/http"
	"testing"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutHandler_Checkout(t *testing.T) {
	f := newAPIFixture(t)
	f.addToCart(t, shared.GuestOwner("guest-checkout"), "Beans", "5000", 2)

	w := f.do(t, http.MethodPost, "/api/v1/checkout", checkoutBody(), guest("guest-checkout"))

	testutil.RequireStatus(t, w, http.StatusCreated)
	first := data(t, w)
	assert.Equal(t, false, first["is_retry"])
	assert.NotEmpty(t, first["reference"])
	assert.Contains(t, first["payment_url"], "https://pay.example.test/paystack/")

	o := first["order"].(map[string]any)
	assert.Equal(t, "PENDING", o["status"])
	assert.Equal(t, first["reference"], o["reference"])
	total := decimal.RequireFromString(o["amounts"].(map[string]any)["total"].(string))
	assert.True(t, total.Equal(decimal.NewFromInt(10000)), "total %s", total)
	assert.Equal(t, "Lagos", o["billing_address"].(map[string]any)["city"], "billing defaults to shipping")
	require.NotNil(t, first["invoice"])
	require.NotNil(t, first["transaction"])

	t.Run("second attempt retries the active order", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/checkout", checkoutBody(), guest("guest-checkout"))

		testutil.RequireStatus(t, w, http.StatusOK)
		second := data(t, w)
		assert.Equal(t, true, second["is_retry"])
		assert.Equal(t, o["id"], second["order"].(map[string]any)["id"])
		assert.NotEqual(t, first["reference"], second["reference"])
	})
}

func TestCheckoutHandler_Checkout_Rejections(t *testing.T) {
	f := newAPIFixture(t)
	f.addToCart(t, shared.GuestOwner("guest-reject"), "Yam", "1200", 1)

	noAddress := checkoutBody()
	delete(noAddress, "shipping_address")

	badEmail := checkoutBody()
	badEmail["email"] = "not-an-email"

	badGateway := checkoutBody()
	badGateway["gateway"] = "bitpay"

	tests := []struct {
		name    string
		guestID string
		body    any
		status  int
		code    string
	}{
		{"missing shipping address", "guest-reject", noAddress, http.StatusBadRequest, "ERR_VALIDATION"},
		{"invalid email", "guest-reject", badEmail, http.StatusBadRequest, ""},
		{"unsupported gateway", "guest-reject", badGateway, http.StatusBadRequest, "ERR_BAD_REQUEST"},
		{"malformed json", "guest-reject", []byte(`{"email":`), http.StatusBadRequest, ""},
		{"empty cart", "guest-nothing", checkoutBody(), http.StatusBadRequest, "ERR_VALIDATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/api/v1/checkout", tt.body, guest(tt.guestID))

			testutil.RequireStatus(t, w, tt.status)
			if tt.code != "" {
				assert.Equal(t, tt.code, errorCode(t, w))
			}
		})
	}

	t.Run("gateway failure is a bad gateway", func(t *testing.T) {
		f.gateway.SetInitErr(payment.ErrGatewayUnavailable)
		defer f.gateway.SetInitErr(nil)

		w := f.do(t, http.MethodPost, "/api/v1/checkout", checkoutBody(), guest("guest-reject"))

		testutil.RequireStatus(t, w, http.StatusBadGateway)
		assert.Equal(t, "ERR_GATEWAY", errorCode(t, w))
	})
}

func TestCheckoutHandler_GetOrder(t *testing.T) {
	f := newAPIFixture(t)
	user := testutil.NewTestUUID("order-owner")
	f.addToCart(t, shared.UserOwner(user), "Garri", "800", 3)

	w := f.do(t, http.MethodPost, "/api/v1/checkout", checkoutBody(), f.bearer(t, user))
	testutil.RequireStatus(t, w, http.StatusCreated)
	orderID := data(t, w)["order"].(map[string]any)["id"].(string)

	t.Run("owner", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/orders/"+orderID, nil, f.bearer(t, user))

		testutil.RequireStatus(t, w, http.StatusOK)
		d := data(t, w)
		assert.Equal(t, orderID, d["order"].(map[string]any)["id"])
		assert.NotNil(t, d["invoice"])
		assert.Len(t, d["transactions"], 1)
	})

	t.Run("another user", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/orders/"+orderID, nil, f.bearer(t, testutil.NewTestUUID("stranger")))

		testutil.RequireStatus(t, w, http.StatusNotFound)
		assert.Equal(t, "ERR_NOT_FOUND", errorCode(t, w))
	})

	t.Run("invalid id", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/orders/not-a-uuid", nil, f.bearer(t, user))

		testutil.RequireStatus(t, w, http.StatusBadRequest)
	})
}

func TestCheckoutHandler_VerifyPayment(t *testing.T) {
	f := newAPIFixture(t)
	f.addToCart(t, shared.GuestOwner("guest-verify"), "Beans", "5000", 2)

	w := f.do(t, http.MethodPost, "/api/v1/checkout", checkoutBody(), guest("guest-verify"))
	testutil.RequireStatus(t, w, http.StatusCreated)
	reference := data(t, w)["reference"].(string)

	t.Run("unknown at gateway", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/checkout/verify/"+reference, nil, guest("guest-verify"))

		testutil.RequireStatus(t, w, http.StatusNotFound)
	})

	t.Run("unknown reference", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/checkout/verify/CHK-MISSING", nil, nil)

		testutil.RequireStatus(t, w, http.StatusNotFound)
	})

	t.Run("success settles the order", func(t *testing.T) {
		f.gateway.Verify[reference] = &payment.VerifyResponse{
			Reference:             reference,
			Status:                payment.VerifyStatusSuccess,
			AmountMinor:           1000000,
			Currency:              "NGN",
			ProviderTransactionID: "7781",
		}

		w := f.do(t, http.MethodGet, "/api/v1/checkout/verify/"+reference, nil, nil)

		testutil.RequireStatus(t, w, http.StatusOK)
		d := data(t, w)
		assert.Equal(t, "success", d["status"])
		assert.Equal(t, "PAID", d["order"].(map[string]any)["payment_status"])
	})
}
