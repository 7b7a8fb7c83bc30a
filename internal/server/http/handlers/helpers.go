package handlers

import (
	"errors"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/heartframe/internal/domain/errors"
	"github.com/polkiloo/heartframe/internal/server/http/dto"
)

const (
	msgInvalidInput     = "Invalid input"
	msgInvalidOrder     = "Invalid order"
	msgTokenRequired    = "Token required"
	msgOrderNotFound    = "Order not found"
	msgInternal         = "Internal error"
	msgPaymentRequired  = "Payment required"
	msgContentNotReady  = "Content not ready"
	msgNoSignature      = "No signature"
	msgInvalidSignature = "Invalid signature"
	msgInvalidPlan      = "Invalid plan"
	msgTokenAndPlan     = "Token and plan required"
	msgPaymentFailed    = "Payment session creation failed"
)

const (
	minPollSeconds = 10
	maxPollSeconds = 15
)

// pollAfter suggests how long a client waits before polling status.
func pollAfter() int {
	return minPollSeconds + rand.IntN(maxPollSeconds-minPollSeconds+1)
}

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: msg})
}

// respondDomainError maps use case failures onto HTTP responses.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrUnknownPlan):
		respondError(c, http.StatusBadRequest, msgInvalidPlan)
	case errors.Is(err, domainErrors.ErrValidation):
		respondError(c, http.StatusBadRequest, msgInvalidInput)
	case errors.Is(err, domainErrors.ErrInvalidState):
		respondError(c, http.StatusBadRequest, msgInvalidOrder)
	case errors.Is(err, domainErrors.ErrNotFound):
		respondError(c, http.StatusNotFound, msgOrderNotFound)
	case errors.Is(err, domainErrors.ErrPaymentRequired):
		respondError(c, http.StatusForbidden, msgPaymentRequired)
	case errors.Is(err, domainErrors.ErrContentNotReady):
		respondError(c, http.StatusNotFound, msgContentNotReady)
	case errors.Is(err, domainErrors.ErrSignatureInvalid):
		respondError(c, http.StatusBadRequest, msgInvalidSignature)
	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, msgInternal)
	}
}

func queryToken(c *gin.Context) (string, bool) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		respondError(c, http.StatusBadRequest, msgTokenRequired)
		return "", false
	}
	return token, true
}
