package handler

import (
	cartapp "github.com/chidoskyi/ecommerce-app-sub001/internal/application/cart"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/cart"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	BaseHandler
	cartService *cartapp.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *cartapp.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// CartLineResponse is one priced cart line
type CartLineResponse struct {
	ItemID      uuid.UUID       `json:"item_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitID      *uuid.UUID      `json:"unit_id,omitempty"`
	UnitName    string          `json:"unit_name,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
	LineWeight  decimal.Decimal `json:"line_weight"`
}

// CartResponse is the computed view of a cart
type CartResponse struct {
	Items       []CartLineResponse `json:"items"`
	Subtotal    decimal.Decimal    `json:"subtotal"`
	ItemCount   int                `json:"item_count"`
	TotalWeight decimal.Decimal    `json:"total_weight"`
}

// MergeCartResponse reports a guest-to-user merge
type MergeCartResponse struct {
	Cart       *CartResponse `json:"cart"`
	Reassigned int64         `json:"reassigned"`
	Summed     int           `json:"summed"`
	Created    int           `json:"created"`
	Dropped    int           `json:"dropped"`
}

func toCartResponse(s *cart.Summary) *CartResponse {
	if s == nil {
		return &CartResponse{Items: []CartLineResponse{}}
	}
	lines := make([]CartLineResponse, len(s.Items))
	for i, l := range s.Items {
		lines[i] = CartLineResponse{
			ItemID:      l.ItemID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			UnitID:      l.UnitID,
			UnitName:    l.UnitName,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			LineTotal:   l.LineTotal,
			LineWeight:  l.LineWeight,
		}
	}
	return &CartResponse{
		Items:       lines,
		Subtotal:    s.Subtotal,
		ItemCount:   s.ItemCount,
		TotalWeight: s.TotalWeight,
	}
}

// GetCart godoc
// @ID           getCart
// @Summary      Get the current cart
// @Description  Returns the cart of the signed-in user, or of the guest session in X-Guest-ID
// @Tags         cart
// @Produce      json
// @Success      200 {object} APIResponse[CartResponse]
// @Failure      401 {object} ErrorResponse
// @Router       /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	owner, ok := h.RequireOwner(c)
	if !ok {
		return
	}

	summary, err := h.cartService.GetCart(c.Request.Context(), owner)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCartResponse(summary))
}

// MergeCart godoc
// @ID           mergeCart
// @Summary      Merge the guest cart into the user cart
// @Description  Moves every item of the guest session in X-Guest-ID into the signed-in user's cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[MergeCartResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /cart/merge [post]
func (h *CartHandler) MergeCart(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}
	guestID := middleware.GetGuestID(c)
	if guestID == "" {
		h.BadRequest(c, "Guest session header "+middleware.GuestIDHeader+" is required")
		return
	}

	result, err := h.cartService.MergeCarts(c.Request.Context(), shared.UserOwner(userID), shared.GuestOwner(guestID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MergeCartResponse{
		Cart:       toCartResponse(result.Cart),
		Reassigned: result.Reassigned,
		Summed:     result.Summed,
		Created:    result.Created,
		Dropped:    result.Dropped,
	})
}
