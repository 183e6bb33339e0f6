package handler

import (
	"strings"

	checkoutapp "github.com/chidoskyi/ecommerce-app-sub001/internal/application/checkout"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
)

// CheckoutHandler handles checkout and order endpoints
type CheckoutHandler struct {
	BaseHandler
	checkoutService *checkoutapp.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *checkoutapp.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// AddressInput is a shipping or billing address in a request body
type AddressInput struct {
	FullName   string `json:"full_name" binding:"max=200"`
	Phone      string `json:"phone" binding:"max=40"`
	Line1      string `json:"line1" binding:"max=255"`
	Line2      string `json:"line2" binding:"max=255"`
	City       string `json:"city" binding:"max=100"`
	State      string `json:"state" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	Country    string `json:"country" binding:"max=100"`
}

func (a *AddressInput) toValueObject() valueobject.Address {
	if a == nil {
		return valueobject.Address{}
	}
	return valueobject.Address{
		FullName:   strings.TrimSpace(a.FullName),
		Phone:      strings.TrimSpace(a.Phone),
		Line1:      strings.TrimSpace(a.Line1),
		Line2:      strings.TrimSpace(a.Line2),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
}

// CheckoutRequest represents a request to pay for the current cart
// @Description Request body for starting or retrying a checkout
type CheckoutRequest struct {
	ShippingAddress AddressInput  `json:"shipping_address"`
	BillingAddress  *AddressInput `json:"billing_address"`
	Gateway         string        `json:"gateway" binding:"omitempty,max=20" example:"paystack"`
	Email           string        `json:"email" binding:"required,email,max=254" example:"ada@example.com"`
	Name            string        `json:"name" binding:"max=200"`
	Phone           string        `json:"phone" binding:"max=40"`
	CallbackURL     string        `json:"callback_url" binding:"omitempty,url,max=500"`
}

// CheckoutResponse carries the hosted payment page for the order
type CheckoutResponse struct {
	PaymentURL  string                      `json:"payment_url"`
	Reference   string                      `json:"reference"`
	AccessToken string                      `json:"access_token,omitempty"`
	IsRetry     bool                        `json:"is_retry"`
	Order       *OrderResponse              `json:"order"`
	Invoice     *InvoiceResponse            `json:"invoice"`
	Transaction *PaymentTransactionResponse `json:"transaction"`
}

// OrderDetailResponse is an order with its billing documents
type OrderDetailResponse struct {
	Order        *OrderResponse               `json:"order"`
	Invoice      *InvoiceResponse             `json:"invoice,omitempty"`
	Transactions []PaymentTransactionResponse `json:"transactions"`
}

// VerifyPaymentResponse is the state of an order after a gateway query
type VerifyPaymentResponse struct {
	Status string         `json:"status"`
	Order  *OrderResponse `json:"order"`
}

// Checkout godoc
// @ID           checkout
// @Summary      Check out the current cart
// @Description  Creates an order from the cart, or retries the owner's active order, and opens a gateway session
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body CheckoutRequest true "Checkout request"
// @Success      201 {object} APIResponse[CheckoutResponse]
// @Success      200 {object} APIResponse[CheckoutResponse] "retry of an active order"
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	owner, ok := h.RequireOwner(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	var gateway payment.ProviderName
	if req.Gateway != "" {
		p, valid := payment.ParseProviderName(req.Gateway)
		if !valid {
			h.BadRequest(c, "Unsupported payment gateway")
			return
		}
		gateway = p
	}

	ctx := c.Request.Context()
	priced, err := h.checkoutService.PriceCart(ctx, owner)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.checkoutService.Checkout(ctx, checkoutapp.CheckoutRequest{
		Owner:           owner,
		Cart:            priced,
		ShippingAddress: req.ShippingAddress.toValueObject(),
		BillingAddress:  req.BillingAddress.toValueObject(),
		Gateway:         gateway,
		Payer: checkoutapp.Payer{
			Email: strings.TrimSpace(req.Email),
			Name:  strings.TrimSpace(req.Name),
			Phone: strings.TrimSpace(req.Phone),
		},
		CallbackURL: req.CallbackURL,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := CheckoutResponse{
		PaymentURL:  result.PaymentURL,
		Reference:   result.Reference,
		AccessToken: result.AccessToken,
		IsRetry:     result.IsRetry,
		Order:       toOrderResponse(result.Order),
		Invoice:     toInvoiceResponse(result.Invoice),
		Transaction: toPaymentTransactionResponse(result.Transaction),
	}
	if result.IsRetry {
		h.Success(c, resp)
		return
	}
	h.Created(c, resp)
}

// GetOrder godoc
// @ID           getOrder
// @Summary      Get an order
// @Description  Returns one of the caller's orders with its invoice and payment attempts
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[OrderDetailResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /orders/{id} [get]
func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	owner, ok := h.RequireOwner(c)
	if !ok {
		return
	}
	orderID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.checkoutService.GetOrder(c.Request.Context(), owner, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderDetailResponse(detail))
}

// VerifyPayment godoc
// @ID           verifyPayment
// @Summary      Verify an order payment
// @Description  Queries the gateway for the payment reference and applies the answer to the order
// @Tags         checkout
// @Produce      json
// @Param        reference path string true "Payment reference"
// @Success      200 {object} APIResponse[VerifyPaymentResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /checkout/verify/{reference} [get]
func (h *CheckoutHandler) VerifyPayment(c *gin.Context) {
	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		h.BadRequest(c, "Payment reference is required")
		return
	}

	result, err := h.checkoutService.VerifyOrderPayment(c.Request.Context(), reference)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, VerifyPaymentResponse{
		Status: string(result.Status),
		Order:  toOrderResponse(result.Order),
	})
}

func toOrderDetailResponse(d *checkoutapp.OrderDetail) OrderDetailResponse {
	resp := OrderDetailResponse{
		Order:        toOrderResponse(d.Order),
		Invoice:      toInvoiceResponse(d.Invoice),
		Transactions: make([]PaymentTransactionResponse, 0, len(d.Transactions)),
	}
	for i := range d.Transactions {
		resp.Transactions = append(resp.Transactions, *toPaymentTransactionResponse(&d.Transactions[i]))
	}
	return resp
}
