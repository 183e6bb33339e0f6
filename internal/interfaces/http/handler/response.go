package handler

import (
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/order"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared/valueobject"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// APIResponse represents a generic API response for OpenAPI documentation
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse represents an error API response for OpenAPI documentation
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// AmountsResponse is the money breakdown of an order or invoice
type AmountsResponse struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

func toAmountsResponse(a order.Amounts) AmountsResponse {
	return AmountsResponse{
		Subtotal: a.Subtotal,
		Tax:      a.Tax,
		Shipping: a.Shipping,
		Discount: a.Discount,
		Total:    a.Total,
	}
}

// LineItemResponse is one captured order line
type LineItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitID      *uuid.UUID      `json:"unit_id,omitempty"`
	UnitName    string          `json:"unit_name,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

func toLineItemResponses(items []order.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, len(items))
	for i, item := range items {
		out[i] = LineItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitID:      item.UnitID,
			UnitName:    item.UnitName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal,
		}
	}
	return out
}

// OrderResponse is the public view of an order
type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"payment_status"`
	Provider        string              `json:"provider,omitempty"`
	Reference       string              `json:"reference,omitempty"`
	Amounts         AmountsResponse     `json:"amounts"`
	Currency        string              `json:"currency"`
	ShippingAddress valueobject.Address `json:"shipping_address"`
	BillingAddress  valueobject.Address `json:"billing_address"`
	FailureReason   string              `json:"failure_reason,omitempty"`
	ProcessedAt     *time.Time          `json:"processed_at,omitempty"`
	Items           []LineItemResponse  `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func toOrderResponse(o *order.Order) *OrderResponse {
	if o == nil {
		return nil
	}
	return &OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		Provider:        o.ProviderName,
		Reference:       o.PaymentID,
		Amounts:         toAmountsResponse(o.Amounts),
		Currency:        o.Currency,
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		FailureReason:   o.FailureReason,
		ProcessedAt:     o.ProcessedAt,
		Items:           toLineItemResponses(o.Items),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// InvoiceResponse is the public view of an invoice
type InvoiceResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	Amounts       AmountsResponse `json:"amounts"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	Currency      string          `json:"currency"`
	DueDate       time.Time       `json:"due_date"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
}

func toInvoiceResponse(inv *order.Invoice) *InvoiceResponse {
	if inv == nil {
		return nil
	}
	return &InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		Status:        string(inv.Status),
		PaymentStatus: string(inv.PaymentStatus),
		Amounts:       toAmountsResponse(inv.Amounts),
		AmountPaid:    inv.AmountPaid,
		BalanceAmount: inv.BalanceAmount,
		Currency:      inv.Currency,
		DueDate:       inv.DueDate,
		PaidAt:        inv.PaidAt,
	}
}

// PaymentTransactionResponse is one gateway attempt for an order
type PaymentTransactionResponse struct {
	ID            uuid.UUID       `json:"id"`
	Reference     string          `json:"reference"`
	Amount        decimal.Decimal `json:"amount"`
	ProcessingFee decimal.Decimal `json:"processing_fee"`
	NetAmount     decimal.Decimal `json:"net_amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	FailureReason string          `json:"failure_reason,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toPaymentTransactionResponse(txn *order.Transaction) *PaymentTransactionResponse {
	if txn == nil {
		return nil
	}
	return &PaymentTransactionResponse{
		ID:            txn.ID,
		Reference:     txn.Reference,
		Amount:        txn.Amount,
		ProcessingFee: txn.ProcessingFee,
		NetAmount:     txn.NetAmount,
		Currency:      txn.Currency,
		Status:        string(txn.Status),
		FailureReason: txn.FailureReason,
		CompletedAt:   txn.CompletedAt,
		CreatedAt:     txn.CreatedAt,
	}
}
