package handler

import (
	"errors"
	"io"
	"net/http"

	paymentapp "github.com/chidoskyi/ecommerce-app-sub001/internal/application/payment"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookHandler receives gateway notifications. These endpoints are called
// by the gateways, carry no user authentication and answer with a status
// code only.
type WebhookHandler struct {
	webhookService *paymentapp.WebhookService
	gateways       payment.GatewayRegistry
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhookService *paymentapp.WebhookService, gateways payment.GatewayRegistry) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		gateways:       gateways,
	}
}

// HandleWebhook godoc
// @ID           handleWebhook
// @Summary      Receive a gateway notification
// @Description  Verifies the signature of a Paystack or OPay notification and applies it
// @Tags         webhooks
// @Accept       json
// @Param        provider path string true "Gateway name" Enums(paystack, opay)
// @Success      200 "accepted, including replays"
// @Failure      400 "malformed payload"
// @Failure      401 "invalid signature"
// @Failure      404 "unknown provider or reference"
// @Failure      500 "webhook secret not configured"
// @Router       /webhooks/{provider} [post]
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	provider, ok := payment.ParseProviderName(c.Param("provider"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	gw, err := h.gateways.Get(provider)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusBadRequest)
		return
	}

	result, err := h.webhookService.HandleWebhook(c.Request.Context(), provider, body, c.GetHeader(gw.SignatureHeader()))
	if err != nil {
		status := webhookStatus(err)
		if status >= http.StatusInternalServerError {
			logger.L(c.Request.Context()).Error("Webhook processing failed",
				zap.String("provider", provider.String()),
				zap.Error(err))
		}
		c.Status(status)
		return
	}

	logger.L(c.Request.Context()).Info("Webhook accepted",
		zap.String("provider", provider.String()),
		zap.String("reference", result.Reference),
		zap.String("status", string(result.Status)),
		zap.String("outcome", string(result.Outcome)))
	c.Status(http.StatusOK)
}

// MethodNotAllowed answers non-POST requests on the webhook path
func (h *WebhookHandler) MethodNotAllowed(c *gin.Context) {
	c.Header("Allow", http.MethodPost)
	c.Status(http.StatusMethodNotAllowed)
}

func webhookStatus(err error) int {
	switch shared.ErrorCode(err) {
	case shared.CodeValidation:
		return http.StatusBadRequest
	case shared.CodeUnauthorized:
		return http.StatusUnauthorized
	case shared.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
