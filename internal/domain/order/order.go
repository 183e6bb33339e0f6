package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Order is the durable record of what was sold.
// Items are captured once at creation and never recomputed.
type Order struct {
	shared.BaseEntity
	Owner                shared.Owner
	OrderNumber          string
	Status               OrderStatus
	PaymentStatus        PaymentStatus
	ProviderName         string
	PaymentID            string
	TransactionID        string
	GatewayTransactionID string
	Amounts              Amounts
	Currency             string
	ShippingAddress      valueobject.Address
	BillingAddress       valueobject.Address
	FailureReason        string
	ProcessedAt          *time.Time
	Items                []LineItem
}

// NewOrder creates a pending order from a checkout snapshot
func NewOrder(c *Checkout, providerName string) *Order {
	base := shared.NewBaseEntity()
	return &Order{
		BaseEntity:      base,
		Owner:           c.Owner,
		OrderNumber:     generateOrderNumber(base.ID, base.CreatedAt),
		Status:          OrderStatusPending,
		PaymentStatus:   PaymentStatusPending,
		ProviderName:    providerName,
		Amounts:         c.Amounts,
		Currency:        c.Currency,
		ShippingAddress: c.ShippingAddress,
		BillingAddress:  c.BillingAddress,
		Items:           CloneItems(c.Items),
	}
}

func generateOrderNumber(id uuid.UUID, at time.Time) string {
	return fmt.Sprintf("ORD-%s-%s", at.UTC().Format("20060102"), strings.ToUpper(id.String()[:8]))
}

// IsActive reports whether the order still blocks a new checkout for its owner
func (o *Order) IsActive() bool {
	return IsActive(o.Status, o.PaymentStatus)
}

// IsExpired reports whether the order is older than window at now
func (o *Order) IsExpired(now time.Time, window time.Duration) bool {
	return now.Sub(o.CreatedAt) > window
}

// IsPaid reports whether the order has been settled
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// AttachPayment records a fresh payment reference and reopens the payment.
// providerReference is the gateway's own session id, when it returns one.
func (o *Order) AttachPayment(providerName, reference, providerReference string) {
	o.ProviderName = providerName
	o.PaymentID = reference
	o.TransactionID = reference
	if providerReference != "" {
		o.TransactionID = providerReference
	}
	o.PaymentStatus = PaymentStatusPending
	o.Status = OrderStatusPending
	o.FailureReason = ""
	o.Touch()
}

// Cancel closes an expired or abandoned order
func (o *Order) Cancel() {
	o.Status = OrderStatusCancelled
	o.PaymentStatus = PaymentStatusCancelled
	o.Touch()
}

// Fail marks both status and payment as failed
func (o *Order) Fail(reason string) {
	o.Status = OrderStatusFailed
	o.PaymentStatus = PaymentStatusFailed
	o.FailureReason = reason
	o.Touch()
}

// MarkPaymentFailed records a failed payment notification.
// The order stays retryable.
func (o *Order) MarkPaymentFailed(reason string) {
	o.PaymentStatus = PaymentStatusFailed
	o.FailureReason = reason
	o.Touch()
}

// MarkPaymentPending records a pending notification
func (o *Order) MarkPaymentPending() {
	o.Status = OrderStatusPending
	o.PaymentStatus = PaymentStatusPending
	o.Touch()
}

// Confirm settles the order after a successful payment
func (o *Order) Confirm(gatewayTransactionID string, at time.Time) {
	o.Status = OrderStatusConfirmed
	o.PaymentStatus = PaymentStatusPaid
	o.ProcessedAt = &at
	if gatewayTransactionID != "" {
		o.TransactionID = gatewayTransactionID
		o.GatewayTransactionID = gatewayTransactionID
	}
	o.FailureReason = ""
	o.Touch()
}
