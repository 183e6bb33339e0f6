package payment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNotification_ChargeEvent(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"id":302961,"reference":"CHK-abc","status":"success","amount":422500,"currency":"NGN","gateway_response":"Approved"}}`)

	n, err := ParseNotification(body)
	require.NoError(t, err)
	assert.Equal(t, "CHK-abc", n.Reference)
	assert.Equal(t, NotificationSuccess, n.Status)
	assert.Equal(t, "302961", n.TransactionID)
	assert.Equal(t, int64(422500), n.AmountMinor)
	assert.Equal(t, "NGN", n.Currency)
	assert.False(t, n.HasFee, "flat shape never carries a fee")
	assert.Empty(t, n.FailureReason)
}

func TestParseNotification_ChargeFailedEvent(t *testing.T) {
	body := []byte(`{"event":"charge.failed","data":{"id":"9","reference":"CHK-x","status":"failed","amount":"100","currency":"NGN","gateway_response":"Declined"}}`)

	n, err := ParseNotification(body)
	require.NoError(t, err)
	assert.Equal(t, NotificationFailed, n.Status)
	assert.Equal(t, "Declined", n.FailureReason)
	assert.Equal(t, int64(100), n.AmountMinor)
}

func TestParseNotification_TransactionData(t *testing.T) {
	body := []byte(`{"data":{"transaction":{"reference":"CHK-def","status":"SUCCESS","transactionId":"OP-778","amount":"422500","currency":"NGN","fee":6338}}}`)

	n, err := ParseNotification(body)
	require.NoError(t, err)
	assert.Equal(t, PayloadKindTransactionData, mustDecode(t, body).Kind)
	assert.Equal(t, "CHK-def", n.Reference)
	assert.Equal(t, NotificationSuccess, n.Status)
	assert.Equal(t, "OP-778", n.TransactionID)
	assert.True(t, n.HasFee)
	assert.Equal(t, int64(6338), n.FeeMinor)
}

func TestParseNotification_Statuses(t *testing.T) {
	tests := []struct {
		status string
		want   NotificationStatus
	}{
		{"PENDING", NotificationPending},
		{"INITIAL", NotificationPending},
		{"FAILED", NotificationFailed},
		{"CLOSE", NotificationFailed},
		{"paid", NotificationSuccess},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			body := []byte(`{"data":{"transaction":{"reference":"r","status":"` + tt.status + `"}}}`)
			n, err := ParseNotification(body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.Status)
		})
	}
}

func TestParseNotification_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"not json", `{not json`, ErrMalformedWebhook},
		{"no data", `{"event":"charge.success"}`, ErrMalformedWebhook},
		{"no event flat", `{"data":{"reference":"r","status":"success"}}`, ErrMalformedWebhook},
		{"missing reference", `{"event":"charge.success","data":{"status":"success"}}`, ErrMalformedWebhook},
		{"bad amount", `{"event":"charge.success","data":{"reference":"r","amount":"12x"}}`, ErrMalformedWebhook},
		{"unknown status", `{"data":{"transaction":{"reference":"r","status":"weird"}}}`, ErrUnknownWebhookStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNotification([]byte(tt.body))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNormalizeVerifyStatus(t *testing.T) {
	assert.Equal(t, VerifyStatusSuccess, NormalizeVerifyStatus("success"))
	assert.Equal(t, VerifyStatusFailed, NormalizeVerifyStatus("abandoned"))
	assert.Equal(t, VerifyStatusPending, NormalizeVerifyStatus("ongoing"))
	assert.Equal(t, VerifyStatusPending, NormalizeVerifyStatus("???"))
}

func TestInitializeRequest_Validate(t *testing.T) {
	valid := InitializeRequest{Reference: "r", AmountMinor: 100, Currency: "NGN", PayerEmail: "a@b.c", CallbackURL: "https://shop.test/cb"}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *InitializeRequest)
		want   error
	}{
		{"reference", func(r *InitializeRequest) { r.Reference = " " }, ErrInvalidReference},
		{"amount", func(r *InitializeRequest) { r.AmountMinor = 0 }, ErrInvalidAmount},
		{"currency", func(r *InitializeRequest) { r.Currency = "" }, ErrInvalidCurrency},
		{"email", func(r *InitializeRequest) { r.PayerEmail = "" }, ErrInvalidPayerEmail},
		{"callback", func(r *InitializeRequest) { r.CallbackURL = "not a url" }, ErrInvalidCallbackURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			assert.ErrorIs(t, r.Validate(), tt.want)
		})
	}
}

func TestParseProviderName(t *testing.T) {
	p, ok := ParseProviderName(" PayStack ")
	assert.True(t, ok)
	assert.Equal(t, ProviderPaystack, p)

	_, ok = ParseProviderName("stripe")
	assert.False(t, ok)
}

func mustDecode(t *testing.T, body []byte) *WebhookPayload {
	t.Helper()
	p, err := DecodeWebhook(body)
	require.NoError(t, err)
	return p
}

func TestNewReference(t *testing.T) {
	a := NewReference(ReferencePrefixCheckout)
	b := NewReference(ReferencePrefixCheckout)
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "CHK-"))
	assert.Len(t, a, len("CHK-")+14+1+12)
}
