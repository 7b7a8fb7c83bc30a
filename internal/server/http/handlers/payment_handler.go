package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/heartframe/internal/domain/errors"
	"github.com/polkiloo/heartframe/internal/domain/model"
	"github.com/polkiloo/heartframe/internal/server/http/dto"
)

// SignatureHeader carries the webhook signature.
const SignatureHeader = "Stripe-Signature"

// maxWebhookBody bounds accepted webhook payloads.
const maxWebhookBody = 64 << 10

// PaymentHandler manages checkout and webhook endpoints.
type PaymentHandler struct {
	facade PaymentFacade
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade) *PaymentHandler {
	return &PaymentHandler{facade: facade}
}

// Create handles POST /api/payment.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidInput)
		return
	}
	token, plan := strings.TrimSpace(req.Token), strings.TrimSpace(req.Plan)
	if token == "" || plan == "" {
		respondError(c, http.StatusBadRequest, msgTokenAndPlan)
		return
	}

	url, err := h.facade.CreatePayment(c.Request.Context(), token, model.PricePlan(plan))
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidState), errors.Is(err, domainErrors.ErrValidation):
			respondDomainError(c, err)
		default:
			_ = c.Error(err)
			respondError(c, http.StatusInternalServerError, msgPaymentFailed)
		}
		return
	}
	c.JSON(http.StatusOK, dto.PaymentResponse{URL: url})
}

// Webhook handles POST /api/webhook.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	signature := c.GetHeader(SignatureHeader)
	if signature == "" {
		respondError(c, http.StatusBadRequest, msgNoSignature)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidInput)
		return
	}

	if err := h.facade.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.WebhookResponse{Received: true})
}
