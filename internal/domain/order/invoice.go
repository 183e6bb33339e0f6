package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is the billing document of an order, keyed 1:1 by order ID
type Invoice struct {
	shared.BaseEntity
	OrderID       uuid.UUID
	Owner         shared.Owner
	InvoiceNumber string
	Status        InvoiceStatus
	PaymentStatus PaymentStatus
	Amounts       Amounts
	AmountPaid    decimal.Decimal
	BalanceAmount decimal.Decimal
	Currency      string
	DueDate       time.Time
	PaidAt        *time.Time
	Items         []LineItem
}

// NewInvoice issues a SENT invoice for the order, due after dueIn.
// Items are copied from the given snapshot, not from live prices.
func NewInvoice(o *Order, items []LineItem, dueIn time.Duration) *Invoice {
	base := shared.NewBaseEntity()
	return &Invoice{
		BaseEntity:    base,
		OrderID:       o.ID,
		Owner:         o.Owner,
		InvoiceNumber: fmt.Sprintf("INV-%s-%s", base.CreatedAt.UTC().Format("20060102"), strings.ToUpper(base.ID.String()[:8])),
		Status:        InvoiceStatusSent,
		PaymentStatus: PaymentStatusPending,
		Amounts:       o.Amounts,
		AmountPaid:    decimal.Zero,
		BalanceAmount: o.Amounts.Total,
		Currency:      o.Currency,
		DueDate:       base.CreatedAt.Add(dueIn),
		Items:         CloneItems(items),
	}
}

// Reissue reopens the invoice for a new payment attempt
func (i *Invoice) Reissue() {
	i.Status = InvoiceStatusSent
	i.PaymentStatus = PaymentStatusPending
	i.Touch()
}

// Cancel voids the invoice. paymentStatus is FAILED after a gateway error
// and CANCELLED when the order expired.
func (i *Invoice) Cancel(payment PaymentStatus) {
	i.Status = InvoiceStatusCancelled
	i.PaymentStatus = payment
	i.Touch()
}

// MarkPaid settles the invoice in full
func (i *Invoice) MarkPaid(at time.Time) {
	i.Status = InvoiceStatusPaid
	i.PaymentStatus = PaymentStatusPaid
	i.AmountPaid = i.Amounts.Total
	i.BalanceAmount = decimal.Zero
	i.PaidAt = &at
	i.Touch()
}

// MarkOverdue records a failed payment against the invoice
func (i *Invoice) MarkOverdue() {
	i.Status = InvoiceStatusOverdue
	i.PaymentStatus = PaymentStatusFailed
	i.Touch()
}

// IsPaid reports whether the invoice is settled
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}
