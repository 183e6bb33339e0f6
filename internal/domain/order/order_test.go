package order

import (
	"testing"
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCheckout() *Checkout {
	items := []LineItem{
		NewLineItem(uuid.New(), "Garri 2kg", nil, "", decimal.RequireFromString("1500"), 2),
	}
	amounts := NewAmounts(decimal.RequireFromString("3000"), decimal.RequireFromString("225"), decimal.RequireFromString("1000"), decimal.Zero)
	addr := valueobject.Address{Line1: "1 Allen Ave", City: "Ikeja", Country: "NG"}
	return NewCheckout(shared.UserOwner(uuid.New()), items, amounts, "NGN", addr, addr, 24*time.Hour)
}

func TestIsActive(t *testing.T) {
	tests := []struct {
		status  OrderStatus
		payment PaymentStatus
		want    bool
	}{
		{OrderStatusPending, PaymentStatusPending, true},
		{OrderStatusPending, PaymentStatusUnpaid, true},
		{OrderStatusFailed, PaymentStatusFailed, true},
		{OrderStatusPending, PaymentStatusPaid, false},
		{OrderStatusConfirmed, PaymentStatusPaid, false},
		{OrderStatusCancelled, PaymentStatusCancelled, false},
		{OrderStatusCancelled, PaymentStatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status)+"/"+string(tt.payment), func(t *testing.T) {
			assert.Equal(t, tt.want, IsActive(tt.status, tt.payment))
		})
	}
}

func TestNewAmounts(t *testing.T) {
	a := NewAmounts(decimal.RequireFromString("100"), decimal.RequireFromString("7.5"), decimal.RequireFromString("10"), decimal.RequireFromString("5"))
	assert.True(t, a.Total.Equal(decimal.RequireFromString("112.5")))
}

func TestNewOrder_FromCheckout(t *testing.T) {
	c := newTestCheckout()
	o := NewOrder(c, "paystack")

	assert.Equal(t, OrderStatusPending, o.Status)
	assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
	assert.True(t, o.IsActive())
	assert.Equal(t, c.Amounts, o.Amounts)
	require.Len(t, o.Items, 1)
	assert.True(t, o.Items[0].LineTotal.Equal(decimal.RequireFromString("3000")))
	assert.Contains(t, o.OrderNumber, "ORD-")

	c.Items[0].Quantity = 99
	assert.Equal(t, 2, o.Items[0].Quantity, "order items are a copy")
}

func TestOrder_Lifecycle(t *testing.T) {
	o := NewOrder(newTestCheckout(), "paystack")

	o.AttachPayment("paystack", "ref-1", "")
	assert.Equal(t, "ref-1", o.PaymentID)
	assert.Equal(t, "ref-1", o.TransactionID)

	o.AttachPayment("opay", "ref-2", "opay-order-9")
	assert.Equal(t, "ref-2", o.PaymentID)
	assert.Equal(t, "opay-order-9", o.TransactionID)

	o.Fail("gateway down")
	assert.Equal(t, OrderStatusFailed, o.Status)
	assert.True(t, o.IsActive(), "failed orders stay retryable")

	now := time.Now()
	o.Confirm("gw-123", now)
	assert.Equal(t, OrderStatusConfirmed, o.Status)
	assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
	assert.Equal(t, "gw-123", o.GatewayTransactionID)
	assert.Empty(t, o.FailureReason)
	assert.False(t, o.IsActive())

	o.Cancel()
	assert.Equal(t, PaymentStatusCancelled, o.PaymentStatus)
}

func TestOrder_IsExpired(t *testing.T) {
	o := NewOrder(newTestCheckout(), "paystack")
	o.CreatedAt = time.Now().Add(-25 * time.Hour)

	assert.True(t, o.IsExpired(time.Now(), 24*time.Hour))
	assert.False(t, o.IsExpired(time.Now(), 48*time.Hour))
}

func TestInvoice_Lifecycle(t *testing.T) {
	o := NewOrder(newTestCheckout(), "paystack")
	inv := NewInvoice(o, o.Items, 7*24*time.Hour)

	assert.Equal(t, InvoiceStatusSent, inv.Status)
	assert.Equal(t, PaymentStatusPending, inv.PaymentStatus)
	assert.True(t, inv.BalanceAmount.Equal(o.Amounts.Total))
	assert.WithinDuration(t, inv.CreatedAt.Add(7*24*time.Hour), inv.DueDate, time.Second)

	inv.MarkPaid(time.Now())
	assert.True(t, inv.IsPaid())
	assert.True(t, inv.BalanceAmount.IsZero())
	assert.NotNil(t, inv.PaidAt)

	inv.Cancel(PaymentStatusFailed)
	assert.Equal(t, InvoiceStatusCancelled, inv.Status)
	assert.Equal(t, PaymentStatusFailed, inv.PaymentStatus)
}

func TestTransaction_MarkSucceeded(t *testing.T) {
	_, err := NewTransaction(uuid.New(), uuid.New(), "", decimal.NewFromInt(10), "NGN")
	assert.ErrorIs(t, err, ErrReferenceRequired)

	txn, err := NewTransaction(uuid.New(), uuid.New(), "ref-1", decimal.RequireFromString("4225"), "NGN")
	require.NoError(t, err)
	assert.True(t, txn.Status.IsOpen())

	txn.MarkSucceeded("gw-1", decimal.RequireFromString("63.38"), time.Now())
	assert.True(t, txn.Status.IsTerminal())
	assert.True(t, txn.NetAmount.Equal(decimal.RequireFromString("4161.62")))
}

func TestCheckout_Transitions(t *testing.T) {
	c := newTestCheckout()
	assert.Equal(t, CheckoutStatusPending, c.Status)
	assert.Equal(t, PaymentStatusUnpaid, c.PaymentStatus)
	assert.True(t, c.IsOrphan())
	assert.WithinDuration(t, c.CreatedAt.Add(24*time.Hour), c.ExpiresAt, time.Second)

	o := NewOrder(c, "paystack")
	c.LinkOrder(o.ID)
	assert.False(t, c.IsOrphan())

	c.MarkProcessing()
	assert.Equal(t, CheckoutStatusProcessing, c.Status)

	c.MarkPaid()
	assert.True(t, c.IsCompleted())

	rebuilt := NewCheckoutFromOrder(o, time.Hour)
	assert.Equal(t, o.ID, *rebuilt.OrderID)
	assert.Len(t, rebuilt.Items, 1)
}

func TestNewPaymentProvider(t *testing.T) {
	p := NewPaymentProvider("OPay")
	assert.Equal(t, "opay", p.Name)
	assert.Equal(t, "OPay", p.DisplayName)
	assert.True(t, p.IsActive)
}
