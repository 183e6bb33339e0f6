package router

import (
	"net/http"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/interfaces/http/handler"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers are the HTTP handlers served by the API
type Handlers struct {
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Wallet   *handler.WalletHandler
	Webhook  *handler.WebhookHandler
	System   *handler.SystemHandler
}

// Guards are the per-group middleware of the API
type Guards struct {
	// RequireUser rejects requests without a valid bearer token
	RequireUser gin.HandlerFunc
	// IdentifyUser accepts anonymous requests but rejects bad tokens
	IdentifyUser gin.HandlerFunc
	// RateLimit applies to customer-facing routes; nil disables it
	RateLimit gin.HandlerFunc
	// MaxBodySize bounds customer request bodies
	MaxBodySize int64
	// MaxWebhookBodySize bounds gateway notification bodies
	MaxWebhookBodySize int64
}

// Routes builds the domain groups of the checkout API
func Routes(h Handlers, g Guards) []RouteRegistrar {
	customer := []gin.HandlerFunc{middleware.BodyLimit(g.MaxBodySize)}
	if g.RateLimit != nil {
		customer = append(customer, g.RateLimit)
	}
	shopper := append(append([]gin.HandlerFunc{}, customer...), g.IdentifyUser, middleware.GuestSession())
	member := append(append([]gin.HandlerFunc{}, customer...), g.RequireUser)

	cart := NewDomainGroup("cart", "/cart").Use(shopper...)
	cart.GET("", h.Cart.GetCart)
	cart.POST("/merge", g.RequireUser, h.Cart.MergeCart)

	checkout := NewDomainGroup("checkout", "/checkout").Use(shopper...)
	checkout.POST("", h.Checkout.Checkout)
	checkout.GET("/verify/:reference", h.Checkout.VerifyPayment)

	orders := NewDomainGroup("orders", "/orders").Use(shopper...)
	orders.GET("/:id", h.Checkout.GetOrder)

	wallet := NewDomainGroup("wallet", "/wallet").Use(member...)
	wallet.GET("", h.Wallet.GetWallet)
	wallet.GET("/transactions", h.Wallet.ListTransactions)
	wallet.POST("/deposits", h.Wallet.InitializeDeposit)
	wallet.GET("/deposits/:reference/verify", h.Wallet.VerifyDeposit)
	wallet.POST("/transfers", h.Wallet.Transfer)

	webhooks := NewDomainGroup("webhooks", "/webhooks").Use(middleware.BodyLimit(g.MaxWebhookBodySize))
	webhooks.POST("/:provider", h.Webhook.HandleWebhook)
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		webhooks.Handle(method, "/:provider", h.Webhook.MethodNotAllowed)
	}

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo)
	system.GET("/ping", h.System.Ping)

	return []RouteRegistrar{cart, checkout, orders, wallet, webhooks, system}
}

// Setup registers the API on engine together with the health endpoint and
// the JSON 404/405 fallbacks
func Setup(engine *gin.Engine, h Handlers, g Guards) {
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(h.System.NoRoute)
	engine.NoMethod(h.System.NoMethod)
	engine.GET("/health", h.System.Health)

	r := NewRouter(engine, WithAPIVersion("v1"))
	for _, registrar := range Routes(h, g) {
		r.Register(registrar)
	}
	r.Setup()
}
