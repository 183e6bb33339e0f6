package order

import (
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Checkout is one in-progress purchase attempt. Once linked it maps 1:1 to an Order.
type Checkout struct {
	shared.BaseEntity
	Owner           shared.Owner
	Status          CheckoutStatus
	PaymentStatus   PaymentStatus
	Amounts         Amounts
	Currency        string
	ShippingAddress valueobject.Address
	BillingAddress  valueobject.Address
	OrderID         *uuid.UUID
	ExpiresAt       time.Time
	Items           []LineItem
}

// NewCheckout opens a checkout that expires after ttl
func NewCheckout(owner shared.Owner, items []LineItem, amounts Amounts, currency string, shipping, billing valueobject.Address, ttl time.Duration) *Checkout {
	base := shared.NewBaseEntity()
	return &Checkout{
		BaseEntity:      base,
		Owner:           owner,
		Status:          CheckoutStatusPending,
		PaymentStatus:   PaymentStatusUnpaid,
		Amounts:         amounts,
		Currency:        currency,
		ShippingAddress: shipping,
		BillingAddress:  billing,
		ExpiresAt:       base.CreatedAt.Add(ttl),
		Items:           CloneItems(items),
	}
}

// NewCheckoutFromOrder rebuilds a checkout for a retried order from its line items
func NewCheckoutFromOrder(o *Order, ttl time.Duration) *Checkout {
	c := NewCheckout(o.Owner, o.Items, o.Amounts, o.Currency, o.ShippingAddress, o.BillingAddress, ttl)
	c.LinkOrder(o.ID)
	return c
}

// LinkOrder links the checkout to its order
func (c *Checkout) LinkOrder(orderID uuid.UUID) {
	c.OrderID = &orderID
	c.Touch()
}

// IsOrphan reports whether the checkout was never linked to an order
func (c *Checkout) IsOrphan() bool {
	return c.OrderID == nil
}

// MarkProcessing records that a gateway session was opened
func (c *Checkout) MarkProcessing() {
	c.Status = CheckoutStatusProcessing
	c.PaymentStatus = PaymentStatusPending
	c.Touch()
}

// MarkFailed records a failed payment attempt
func (c *Checkout) MarkFailed() {
	c.Status = CheckoutStatusFailed
	c.PaymentStatus = PaymentStatusFailed
	c.Touch()
}

// MarkPaid completes the checkout
func (c *Checkout) MarkPaid() {
	c.Status = CheckoutStatusCompleted
	c.PaymentStatus = PaymentStatusPaid
	c.Touch()
}

// MarkPaymentPending keeps the checkout waiting on the gateway
func (c *Checkout) MarkPaymentPending() {
	c.PaymentStatus = PaymentStatusPending
	c.Touch()
}

// IsCompleted reports whether the checkout has been paid
func (c *Checkout) IsCompleted() bool {
	return c.Status == CheckoutStatusCompleted
}
