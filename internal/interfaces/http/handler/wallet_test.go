package handler

import (
	"net/http"
	"testing"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balanceOf(t *testing.T, d map[string]any) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(d["balance"].(string))
}

// fundWallet deposits amount for user and settles it through verification
func (f *apiFixture) fundWallet(t *testing.T, user uuid.UUID, amount string, minor int64) string {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/v1/wallet/deposits", map[string]any{
		"amount": amount,
		"email":  "ada@example.com",
	}, f.bearer(t, user))
	testutil.RequireStatus(t, w, http.StatusCreated)
	reference := data(t, w)["reference"].(string)

	f.gateway.Verify[reference] = &payment.VerifyResponse{
		Reference:             reference,
		Status:                payment.VerifyStatusSuccess,
		AmountMinor:           minor,
		Currency:              "NGN",
		ProviderTransactionID: "dep-" + reference,
	}
	return reference
}

func TestWalletHandler_GetWallet(t *testing.T) {
	f := newAPIFixture(t)
	user := testutil.NewTestUUID("wallet-get")

	w := f.do(t, http.MethodGet, "/api/v1/wallet", nil, f.bearer(t, user))

	testutil.RequireStatus(t, w, http.StatusOK)
	d := data(t, w)
	assert.True(t, balanceOf(t, d).IsZero())
	assert.Equal(t, "NGN", d["currency"])

	t.Run("requires authentication", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/wallet", nil, guest("guest-wallet"))

		testutil.RequireStatus(t, w, http.StatusUnauthorized)
	})
}

func TestWalletHandler_DepositAndVerify(t *testing.T) {
	f := newAPIFixture(t)
	user := testutil.NewTestUUID("wallet-deposit")

	w := f.do(t, http.MethodPost, "/api/v1/wallet/deposits", map[string]any{
		"amount": "5000.00",
		"email":  "ada@example.com",
	}, f.bearer(t, user))

	testutil.RequireStatus(t, w, http.StatusCreated)
	d := data(t, w)
	reference := d["reference"].(string)
	assert.NotEmpty(t, d["payment_url"])
	assert.Equal(t, "PENDING", d["transaction"].(map[string]any)["status"])

	path := "/api/v1/wallet/deposits/" + reference + "/verify"

	t.Run("pending at gateway", func(t *testing.T) {
		f.gateway.Verify[reference] = &payment.VerifyResponse{Reference: reference, Status: payment.VerifyStatusPending}

		w := f.do(t, http.MethodGet, path, nil, f.bearer(t, user))

		testutil.RequireStatus(t, w, http.StatusOK)
		assert.Equal(t, "pending", data(t, w)["outcome"])
	})

	t.Run("other users cannot verify", func(t *testing.T) {
		w := f.do(t, http.MethodGet, path, nil, f.bearer(t, testutil.NewTestUUID("wallet-snoop")))

		testutil.RequireStatus(t, w, http.StatusNotFound)
	})

	t.Run("success credits the wallet once", func(t *testing.T) {
		f.gateway.Verify[reference] = &payment.VerifyResponse{
			Reference:             reference,
			Status:                payment.VerifyStatusSuccess,
			AmountMinor:           500000,
			Currency:              "NGN",
			ProviderTransactionID: "88123",
		}

		w := f.do(t, http.MethodGet, path, nil, f.bearer(t, user))
		testutil.RequireStatus(t, w, http.StatusOK)
		d := data(t, w)
		assert.Equal(t, "verified", d["outcome"])
		assert.True(t, balanceOf(t, d["wallet"].(map[string]any)).Equal(decimal.NewFromInt(5000)))

		w = f.do(t, http.MethodGet, path, nil, f.bearer(t, user))
		testutil.RequireStatus(t, w, http.StatusOK)
		assert.Equal(t, "already_verified", data(t, w)["outcome"])

		w = f.do(t, http.MethodGet, "/api/v1/wallet", nil, f.bearer(t, user))
		testutil.RequireStatus(t, w, http.StatusOK)
		assert.True(t, balanceOf(t, data(t, w)).Equal(decimal.NewFromInt(5000)))
	})

	t.Run("invalid amounts", func(t *testing.T) {
		for _, amount := range []string{"-5", "0", "10.505"} {
			w := f.do(t, http.MethodPost, "/api/v1/wallet/deposits", map[string]any{
				"amount": amount,
				"email":  "ada@example.com",
			}, f.bearer(t, user))
			testutil.RequireStatus(t, w, http.StatusBadRequest)
		}
	})

	t.Run("below minimum", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/wallet/deposits", map[string]any{
			"amount": "50",
			"email":  "ada@example.com",
		}, f.bearer(t, user))

		testutil.RequireStatus(t, w, http.StatusBadRequest)
		assert.Equal(t, "ERR_VALIDATION", errorCode(t, w))
	})
}

func TestWalletHandler_Transfer(t *testing.T) {
	f := newAPIFixture(t)
	sender := testutil.NewTestUUID("wallet-sender")
	recipient := testutil.NewTestUUID("wallet-recipient")

	reference := f.fundWallet(t, sender, "5000", 500000)
	w := f.do(t, http.MethodGet, "/api/v1/wallet/deposits/"+reference+"/verify", nil, f.bearer(t, sender))
	testutil.RequireStatus(t, w, http.StatusOK)

	t.Run("moves funds", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/wallet/transfers", map[string]any{
			"recipient_id": recipient.String(),
			"amount":       "1500",
			"description":  "Rent share",
		}, f.bearer(t, sender))

		testutil.RequireStatus(t, w, http.StatusCreated)
		d := data(t, w)
		assert.NotEmpty(t, d["reference"])
		assert.Equal(t, "TRANSFER_OUT", d["debit"].(map[string]any)["type"])

		w = f.do(t, http.MethodGet, "/api/v1/wallet", nil, f.bearer(t, recipient))
		testutil.RequireStatus(t, w, http.StatusOK)
		assert.True(t, balanceOf(t, data(t, w)).Equal(decimal.NewFromInt(1500)))
	})

	t.Run("insufficient balance", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/wallet/transfers", map[string]any{
			"recipient_id": recipient.String(),
			"amount":       "9000",
		}, f.bearer(t, sender))

		testutil.RequireStatus(t, w, http.StatusUnprocessableEntity)
		assert.Equal(t, "ERR_INSUFFICIENT_BALANCE", errorCode(t, w))
	})

	t.Run("system sink is not a recipient", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/wallet/transfers", map[string]any{
			"recipient_id": uuid.Nil.String(),
			"amount":       "10",
		}, f.bearer(t, sender))

		testutil.RequireStatus(t, w, http.StatusBadRequest)
	})

	t.Run("lists entries newest first", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/wallet/transactions?page=1&page_size=10", nil, f.bearer(t, sender))

		testutil.RequireStatus(t, w, http.StatusOK)
		resp := testutil.DecodeResponse(t, w)
		items := resp["data"].([]any)
		require.Len(t, items, 2)
		assert.Equal(t, "TRANSFER_OUT", items[0].(map[string]any)["type"])
		assert.Equal(t, "WALLET_TOPUP", items[1].(map[string]any)["type"])

		meta := resp["meta"].(map[string]any)
		assert.Equal(t, float64(2), meta["total"])
		assert.Equal(t, float64(1), meta["total_pages"])
	})
}
