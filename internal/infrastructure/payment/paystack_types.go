package payment

import domain "github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"

// paystackInitializeRequest is the body of POST /transaction/initialize
type paystackInitializeRequest struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Reference   string            `json:"reference"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// paystackEnvelope wraps every Paystack response
type paystackEnvelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// paystackInitializeData is the data of a successful initialize call
type paystackInitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// paystackVerifyData is the data of GET /transaction/verify/:reference
type paystackVerifyData struct {
	ID              domain.FlexibleID  `json:"id"`
	Status          string             `json:"status"`
	Reference       string             `json:"reference"`
	Amount          domain.MinorAmount `json:"amount"`
	Currency        string             `json:"currency"`
	GatewayResponse string             `json:"gateway_response"`
	Fees            domain.MinorAmount `json:"fees"`
}
