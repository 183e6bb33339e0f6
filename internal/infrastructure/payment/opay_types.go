package payment

import domain "github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"

// opaySuccessCode is returned in "code" for accepted requests
const opaySuccessCode = "00000"

// opayAmount is an amount in minor units
type opayAmount struct {
	Total    domain.MinorAmount `json:"total"`
	Currency string             `json:"currency"`
}

type opayUserInfo struct {
	UserEmail  string `json:"userEmail"`
	UserName   string `json:"userName,omitempty"`
	UserMobile string `json:"userMobile,omitempty"`
}

type opayProduct struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// opayCreateRequest is the body of the cashier create call
type opayCreateRequest struct {
	Country     string       `json:"country"`
	Reference   string       `json:"reference"`
	Amount      opayAmount   `json:"amount"`
	ReturnURL   string       `json:"returnUrl,omitempty"`
	CallbackURL string       `json:"callbackUrl,omitempty"`
	CancelURL   string       `json:"cancelUrl,omitempty"`
	ExpireAt    int          `json:"expireAt"`
	UserInfo    opayUserInfo `json:"userInfo"`
	Product     opayProduct  `json:"product"`
}

// opayStatusRequest is the body of the cashier status call
type opayStatusRequest struct {
	Country   string `json:"country"`
	Reference string `json:"reference"`
}

// opayEnvelope wraps every OPay response
type opayEnvelope[T any] struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}

type opayCreateData struct {
	Reference  string     `json:"reference"`
	OrderNo    string     `json:"orderNo"`
	CashierURL string     `json:"cashierUrl"`
	Status     string     `json:"status"`
	Amount     opayAmount `json:"amount"`
}

type opayStatusData struct {
	Reference     string     `json:"reference"`
	OrderNo       string     `json:"orderNo"`
	Status        string     `json:"status"`
	Amount        opayAmount `json:"amount"`
	Fee           opayAmount `json:"fee"`
	FailureReason string     `json:"failureReason"`
}
