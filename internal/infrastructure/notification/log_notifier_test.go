package notification

import (
	"context"
	"testing"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/order"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func paidOrder() *order.Order {
	kg := uuid.New()
	return &order.Order{
		BaseEntity:  shared.NewBaseEntity(),
		Owner:       shared.GuestOwner("guest-42"),
		OrderNumber: "ORD-20260309-0001",
		Currency:    "NGN",
		Amounts:     order.NewAmounts(decimal.NewFromInt(9000), decimal.NewFromInt(675), decimal.NewFromInt(1500), decimal.Zero),
		Items: []order.LineItem{
			order.NewLineItem(uuid.New(), "Rice 5kg", nil, "", decimal.NewFromInt(4500), 2),
			order.NewLineItem(uuid.New(), "Garri", &kg, "kg", decimal.NewFromInt(0), 1),
		},
	}
}

func TestRenderOrderConfirmed(t *testing.T) {
	msg, err := RenderOrderConfirmed(paidOrder())
	require.NoError(t, err)

	assert.Equal(t, "Order ORD-20260309-0001 confirmed", msg.Subject)
	assert.Equal(t, "guest:guest-42", msg.Recipient)
	assert.Contains(t, msg.Body, "- Rice 5kg x2: 9000.00")
	assert.Contains(t, msg.Body, "- Garri (kg) x1")
	assert.Contains(t, msg.Body, "Total paid: NGN 11175.00")
}

func TestLogNotifier_OrderConfirmed(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	require.NoError(t, n.OrderConfirmed(context.Background(), paidOrder()))

	entries := logs.FilterMessage("Order confirmation").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Order ORD-20260309-0001 confirmed", entries[0].ContextMap()["subject"])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.OrderConfirmed(ctx, paidOrder()), context.Canceled)
}
