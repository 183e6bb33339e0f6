package handler

import (
	"strings"
	"time"

	walletapp "github.com/chidoskyi/ecommerce-app-sub001/internal/application/wallet"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/wallet"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletHandler handles wallet endpoints. Every route requires a signed-in user.
type WalletHandler struct {
	BaseHandler
	walletService *walletapp.WalletService
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(walletService *walletapp.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// DepositRequest represents a request to fund the wallet through a gateway
// @Description Request body for a wallet top-up
type DepositRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required,money" swaggertype:"string" example:"5000.00"`
	Email       string          `json:"email" binding:"required,email,max=254" example:"ada@example.com"`
	Name        string          `json:"name" binding:"max=200"`
	Phone       string          `json:"phone" binding:"max=40"`
	CallbackURL string          `json:"callback_url" binding:"omitempty,url,max=500"`
}

// TransferRequest represents a wallet-to-wallet transfer
// @Description Request body for sending funds to another user
type TransferRequest struct {
	RecipientID string          `json:"recipient_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Amount      decimal.Decimal `json:"amount" binding:"required,money" swaggertype:"string" example:"1500.00"`
	Description string          `json:"description" binding:"max=255"`
}

// WalletResponse is the public view of a wallet
type WalletResponse struct {
	ID             uuid.UUID       `json:"id"`
	Balance        decimal.Decimal `json:"balance"`
	Currency       string          `json:"currency"`
	IsActive       bool            `json:"is_active"`
	LastActivityAt *time.Time      `json:"last_activity_at,omitempty"`
}

// WalletTransactionResponse is one ledger entry
type WalletTransactionResponse struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Reference     string          `json:"reference"`
	Description   string          `json:"description,omitempty"`
	Provider      string          `json:"provider,omitempty"`
	Counterparty  *uuid.UUID      `json:"counterparty_wallet_id,omitempty"`
	FailureReason string          `json:"failure_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// DepositResponse carries the hosted payment page of a deposit
type DepositResponse struct {
	Reference   string                     `json:"reference"`
	PaymentURL  string                     `json:"payment_url"`
	AccessToken string                     `json:"access_token,omitempty"`
	Transaction *WalletTransactionResponse `json:"transaction"`
}

// VerifyDepositResponse is the state of a deposit after verification
type VerifyDepositResponse struct {
	Outcome     string                     `json:"outcome"`
	Transaction *WalletTransactionResponse `json:"transaction"`
	Wallet      *WalletResponse            `json:"wallet,omitempty"`
}

// TransferResponse holds the entries a transfer wrote
type TransferResponse struct {
	Reference string                     `json:"reference"`
	Debit     *WalletTransactionResponse `json:"debit"`
}

func toWalletResponse(w *wallet.Wallet) *WalletResponse {
	if w == nil {
		return nil
	}
	return &WalletResponse{
		ID:             w.ID,
		Balance:        w.Balance,
		Currency:       w.Currency,
		IsActive:       w.IsActive,
		LastActivityAt: w.LastActivityAt,
	}
}

func toWalletTransactionResponse(t *wallet.Transaction) *WalletTransactionResponse {
	if t == nil {
		return nil
	}
	return &WalletTransactionResponse{
		ID:            t.ID,
		Type:          string(t.Type),
		Amount:        t.Amount,
		Status:        string(t.Status),
		BalanceBefore: t.BalanceBefore,
		BalanceAfter:  t.BalanceAfter,
		Reference:     t.Reference,
		Description:   t.Description,
		Provider:      t.Provider,
		Counterparty:  t.CounterpartyWalletID,
		FailureReason: t.FailureReason,
		CreatedAt:     t.CreatedAt,
		CompletedAt:   t.CompletedAt,
	}
}

// GetWallet godoc
// @ID           getWallet
// @Summary      Get the caller's wallet
// @Description  Returns the wallet of the signed-in user, creating an empty one on first access
// @Tags         wallet
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[WalletResponse]
// @Failure      401 {object} ErrorResponse
// @Router       /wallet [get]
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}

	w, err := h.walletService.GetOrCreateWallet(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toWalletResponse(w))
}

// InitializeDeposit godoc
// @ID           initializeWalletDeposit
// @Summary      Start a wallet deposit
// @Description  Records a pending top-up and opens a gateway session for it
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body DepositRequest true "Deposit request"
// @Success      201 {object} APIResponse[DepositResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /wallet/deposits [post]
func (h *WalletHandler) InitializeDeposit(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}
	var req DepositRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.walletService.InitializeDeposit(c.Request.Context(), walletapp.DepositRequest{
		UserID:      userID,
		Amount:      req.Amount,
		CallbackURL: req.CallbackURL,
		Payer: walletapp.Payer{
			Email: strings.TrimSpace(req.Email),
			Name:  strings.TrimSpace(req.Name),
			Phone: strings.TrimSpace(req.Phone),
		},
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, DepositResponse{
		Reference:   result.Reference,
		PaymentURL:  result.PaymentURL,
		AccessToken: result.AccessToken,
		Transaction: toWalletTransactionResponse(result.Transaction),
	})
}

// VerifyDeposit godoc
// @ID           verifyWalletDeposit
// @Summary      Verify a wallet deposit
// @Description  Asks the gateway for the deposit state and credits the wallet once
// @Tags         wallet
// @Produce      json
// @Security     BearerAuth
// @Param        reference path string true "Deposit reference"
// @Success      200 {object} APIResponse[VerifyDepositResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /wallet/deposits/{reference}/verify [get]
func (h *WalletHandler) VerifyDeposit(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}
	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		h.BadRequest(c, "Deposit reference is required")
		return
	}

	result, err := h.walletService.VerifyUserDeposit(c.Request.Context(), userID, reference)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, VerifyDepositResponse{
		Outcome:     string(result.Outcome),
		Transaction: toWalletTransactionResponse(result.Transaction),
		Wallet:      toWalletResponse(result.Wallet),
	})
}

// Transfer godoc
// @ID           transferWalletFunds
// @Summary      Send funds to another user
// @Description  Debits the caller and credits the recipient in one transaction
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body TransferRequest true "Transfer request"
// @Success      201 {object} APIResponse[TransferResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "insufficient balance"
// @Router       /wallet/transfers [post]
func (h *WalletHandler) Transfer(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}
	var req TransferRequest
	if !h.BindJSON(c, &req) {
		return
	}
	recipient, err := uuid.Parse(req.RecipientID)
	if err != nil || recipient == wallet.SystemSink {
		h.BadRequest(c, "Invalid recipient")
		return
	}

	result, err := h.walletService.Transfer(c.Request.Context(), walletapp.TransferRequest{
		From:        userID,
		To:          recipient,
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
		Type:        wallet.TransactionTypeTransferOut,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, TransferResponse{
		Reference: result.Reference,
		Debit:     toWalletTransactionResponse(result.Debit),
	})
}

// ListTransactions godoc
// @ID           listWalletTransactions
// @Summary      List wallet transactions
// @Description  Returns the caller's ledger entries, newest first
// @Tags         wallet
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]WalletTransactionResponse]
// @Router       /wallet/transactions [get]
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}
	req := dto.DefaultListRequest()
	if !h.BindQuery(c, &req) {
		return
	}

	page, err := h.walletService.ListTransactions(c.Request.Context(), userID, shared.Filter{Page: req.Page, PageSize: req.PageSize})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	items := make([]WalletTransactionResponse, len(page.Items))
	for i := range page.Items {
		items[i] = *toWalletTransactionResponse(&page.Items[i])
	}
	h.SuccessWithMeta(c, items, page.Total, page.Page, page.PageSize)
}
