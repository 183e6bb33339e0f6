package handler

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	cartapp "github.com/chidoskyi/ecommerce-app-sub001/internal/application/cart"
	checkoutapp "github.com/chidoskyi/ecommerce-app-sub001/internal/application/checkout"
	paymentapp "github.com/chidoskyi/ecommerce-app-sub001/internal/application/payment"
	walletapp "github.com/chidoskyi/ecommerce-app-sub001/internal/application/wallet"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/cart"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/auth"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/cache"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/config"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/persistence"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/interfaces/http/middleware"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

const webhookSecret = "whsec_test"

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// apiFixture serves the handlers over SQLite with a fake gateway
type apiFixture struct {
	db       *gorm.DB
	repos    *persistence.GormRepositories
	gateway  *testutil.FakeGateway
	verifier *auth.Verifier
	webhooks *paymentapp.WebhookService
	engine   *gin.Engine
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	log := zaptest.NewLogger(t)
	db := testutil.NewSQLiteDB(t)
	repos := persistence.NewGormRepositories(db)
	scope := persistence.NewGormTransactionScope(db)
	catalog := persistence.NewGormProductCatalog(db)
	gw := testutil.NewFakeGateway(payment.ProviderPaystack, webhookSecret)
	registry := testutil.NewFakeRegistry(gw)

	checkoutCfg := checkoutapp.DefaultConfig()
	checkoutCfg.CallbackURL = "https://shop.example.test/checkout/callback"
	checkoutSvc := checkoutapp.NewCheckoutService(scope, repos, catalog, registry, cache.NewInMemoryLocker(), checkoutCfg, log)
	webhookSvc := paymentapp.NewWebhookService(scope, registry, paymentapp.DefaultConfig(), log)
	idempotency := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idempotency.Close() })
	webhookSvc.SetIdempotencyStore(idempotency)
	checkoutSvc.SetReconciler(webhookSvc)
	t.Cleanup(webhookSvc.Close)

	walletCfg := walletapp.DefaultConfig()
	walletCfg.CallbackURL = "https://shop.example.test/wallet/callback"
	walletSvc := walletapp.NewWalletService(scope, repos, registry, walletCfg, log)

	verifier := auth.NewVerifier(config.JWTConfig{Secret: "handler-test-secret", Issuer: "identity-service"})

	cartH := NewCartHandler(cartapp.NewCartService(scope, repos.CartItems(), catalog, log))
	checkoutH := NewCheckoutHandler(checkoutSvc)
	walletH := NewWalletHandler(walletSvc)
	webhookH := NewWebhookHandler(webhookSvc, registry)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	shopper := engine.Group("/api/v1", middleware.BodyLimit(1<<20), middleware.OptionalJWTAuth(verifier, nil, log), middleware.GuestSession())
	shopper.GET("/cart", cartH.GetCart)
	shopper.POST("/cart/merge", cartH.MergeCart)
	shopper.POST("/checkout", checkoutH.Checkout)
	shopper.GET("/checkout/verify/:reference", checkoutH.VerifyPayment)
	shopper.GET("/orders/:id", checkoutH.GetOrder)

	member := engine.Group("/api/v1/wallet", middleware.BodyLimit(1<<20), middleware.JWTAuth(verifier, nil, log))
	member.GET("", walletH.GetWallet)
	member.GET("/transactions", walletH.ListTransactions)
	member.POST("/deposits", walletH.InitializeDeposit)
	member.GET("/deposits/:reference/verify", walletH.VerifyDeposit)
	member.POST("/transfers", walletH.Transfer)

	hooks := engine.Group("/api/v1/webhooks", middleware.BodyLimit(4<<10))
	hooks.POST("/:provider", webhookH.HandleWebhook)
	hooks.GET("/:provider", webhookH.MethodNotAllowed)

	return &apiFixture{
		db:       db,
		repos:    repos,
		gateway:  gw,
		verifier: verifier,
		webhooks: webhookSvc,
		engine:   engine,
	}
}

// bearer returns the Authorization header for userID
func (f *apiFixture) bearer(t *testing.T, userID uuid.UUID) map[string]string {
	t.Helper()
	token, err := f.verifier.Sign(userID, "user@example.com", time.Hour)
	require.NoError(t, err)
	return map[string]string{middleware.AuthHeaderKey: middleware.BearerPrefix + token}
}

func guest(id string) map[string]string {
	return map[string]string{middleware.GuestIDHeader: id}
}

func merge(headers ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, h := range headers {
		for k, v := range h {
			out[k] = v
		}
	}
	return out
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.PerformRequest(t, f.engine, method, path, body, headers)
}

// addToCart puts qty of a new fixed-price product into owner's cart
func (f *apiFixture) addToCart(t *testing.T, owner shared.Owner, name, price string, qty int) *cart.Product {
	t.Helper()
	p := testutil.SeedFixedProduct(t, f.db, name, price, "1")
	item, err := cart.NewCartItem(owner, p.ID, qty, cart.PriceSnapshot{Mode: cart.PriceModeFixed, UnitPrice: p.Price})
	require.NoError(t, err)
	require.NoError(t, f.repos.CartItems().Save(context.Background(), item))
	return p
}

func checkoutBody() map[string]any {
	return map[string]any{
		"shipping_address": map[string]any{
			"full_name": "Ada Obi",
			"line1":     "12 Admiralty Way",
			"city":      "Lagos",
			"country":   "NG",
		},
		"email": "ada@example.com",
		"name":  "Ada Obi",
	}
}

func chargeSuccess(reference string) []byte {
	return []byte(fmt.Sprintf(`{"event":"charge.success","data":{"id":9001,"reference":%q,"status":"success","amount":1000000,"currency":"NGN"}}`, reference))
}

func signed(body []byte) map[string]string {
	return map[string]string{"X-Test-Signature": testutil.SignHMACSHA512(body, webhookSecret)}
}

// data returns the data object of a success envelope
func data(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	resp := testutil.DecodeResponse(t, w)
	require.Equal(t, true, resp["success"], w.Body.String())
	d, ok := resp["data"].(map[string]any)
	require.True(t, ok, "data is not an object: %s", w.Body.String())
	return d
}

// errorCode returns the error code of a failure envelope
func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := testutil.DecodeResponse(t, w)
	e, ok := resp["error"].(map[string]any)
	require.True(t, ok, "no error object: %s", w.Body.String())
	return e["code"].(string)
}
