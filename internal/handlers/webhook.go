// internal/handlers/webhook.go
package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/tiermart/tiermart-backend/internal/services"
	"github.com/tiermart/tiermart-backend/internal/utils"
)

type WebhookHandler struct {
	webhookService *services.WebhookService
}

func NewWebhookHandler(webhookService *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

// POST /webhooks/payment
//
// Unauthenticated: the payment gateway cannot hold a JWT. Identity comes from
// the HMAC signature over the raw body.
func (h *WebhookHandler) PaymentWebhook(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.BadRequestResponse(c, "Failed to read request body", nil)
		return
	}

	signature := c.GetHeader("x-razorpay-signature")

	result, err := h.webhookService.Reconcile(rawBody, signature)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}
