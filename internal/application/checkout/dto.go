package checkout

import (
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/order"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PricedCart is the snapshot a checkout is charged from. Line totals are
// fixed here and never recomputed from live catalog prices.
type PricedCart struct {
	Owner       shared.Owner
	Items       []order.LineItem
	Amounts     order.Amounts
	Currency    string
	ItemCount   int
	TotalWeight decimal.Decimal
}

// IsEmpty reports whether the snapshot has no lines
func (p *PricedCart) IsEmpty() bool {
	return p == nil || len(p.Items) == 0
}

// Payer identifies the customer to the gateway
type Payer struct {
	Email string
	Name  string
	Phone string
}

// CheckoutRequest starts or retries a purchase
type CheckoutRequest struct {
	Owner           shared.Owner
	Cart            *PricedCart
	ShippingAddress valueobject.Address
	BillingAddress  valueobject.Address
	// Gateway defaults to the configured gateway when empty
	Gateway     payment.ProviderName
	Payer       Payer
	CallbackURL string
}

// CheckoutResult is returned once a gateway session is open
type CheckoutResult struct {
	PaymentURL  string
	Reference   string
	AccessToken string
	Order       *order.Order
	Invoice     *order.Invoice
	Transaction *order.Transaction
	IsRetry     bool
}

// OrderDetail is an order with its billing documents
type OrderDetail struct {
	Order        *order.Order
	Invoice      *order.Invoice
	Transactions []order.Transaction
}

// VerifyPaymentResult is the state of an order after querying its gateway
type VerifyPaymentResult struct {
	Order  *order.Order
	Status payment.VerifyStatus
}
