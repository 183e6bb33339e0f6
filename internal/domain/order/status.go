package order

// CheckoutStatus is the lifecycle state of a purchase attempt
type CheckoutStatus string

const (
	CheckoutStatusPending    CheckoutStatus = "PENDING"
	CheckoutStatusProcessing CheckoutStatus = "PROCESSING"
	CheckoutStatusCompleted  CheckoutStatus = "COMPLETED"
	CheckoutStatusAbandoned  CheckoutStatus = "ABANDONED"
	CheckoutStatusExpired    CheckoutStatus = "EXPIRED"
	CheckoutStatusFailed     CheckoutStatus = "FAILED"
)

// OrderStatus is the fulfilment state of an order, independent of checkout
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
	OrderStatusFailed     OrderStatus = "FAILED"
)

// PaymentStatus is shared by checkouts, orders and invoices
type PaymentStatus string

const (
	PaymentStatusUnpaid    PaymentStatus = "UNPAID"
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// InvoiceStatus is the billing document state
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusSent      InvoiceStatus = "SENT"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// TransactionStatus is the state of one gateway payment attempt
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "PENDING"
	TransactionStatusProcessing TransactionStatus = "PROCESSING"
	TransactionStatusSuccess    TransactionStatus = "SUCCESS"
	TransactionStatusFailed     TransactionStatus = "FAILED"
	TransactionStatusCancelled  TransactionStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is expected
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusSuccess || s == TransactionStatusFailed || s == TransactionStatusCancelled
}

// IsOpen reports whether the attempt is still awaiting the gateway
func (s TransactionStatus) IsOpen() bool {
	return s == TransactionStatusPending || s == TransactionStatusProcessing
}

// ActiveOrderStatuses are the order statuses that count towards the
// one-active-order-per-owner rule.
var ActiveOrderStatuses = []OrderStatus{OrderStatusPending, OrderStatusFailed}

// ActivePaymentStatuses are the payment statuses that count towards the
// one-active-order-per-owner rule.
var ActivePaymentStatuses = []PaymentStatus{PaymentStatusPending, PaymentStatusFailed, PaymentStatusUnpaid}

// IsActive reports whether the pair is unresolved
func IsActive(status OrderStatus, payment PaymentStatus) bool {
	statusActive := false
	for _, s := range ActiveOrderStatuses {
		if s == status {
			statusActive = true
			break
		}
	}
	if !statusActive {
		return false
	}
	for _, p := range ActivePaymentStatuses {
		if p == payment {
			return true
		}
	}
	return false
}
