package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/heartframe/internal/access"
	"github.com/polkiloo/heartframe/internal/domain/model"
	"github.com/polkiloo/heartframe/internal/server/http/dto"
)

// GenerateHandler manages order submission and status endpoints.
type GenerateHandler struct {
	facade GenerationFacade
}

// NewGenerateHandler constructs GenerateHandler.
func NewGenerateHandler(facade GenerationFacade) *GenerateHandler {
	return &GenerateHandler{facade: facade}
}

// Submit handles POST /api/generate.
func (h *GenerateHandler) Submit(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidInput)
		return
	}

	var (
		order *model.Order
		err   error
	)
	if req.Retry && strings.TrimSpace(req.Token) != "" {
		order, err = h.facade.RetryOrder(c.Request.Context(), strings.TrimSpace(req.Token))
	} else {
		input, ok := toOrderInput(req)
		if !ok {
			respondError(c, http.StatusBadRequest, msgInvalidInput)
			return
		}
		order, err = h.facade.SubmitOrder(c.Request.Context(), input)
	}
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GenerateResponse{
		Token:            order.Token,
		Status:           string(order.Status),
		PollAfterSeconds: pollAfter(),
	})
}

// Status handles GET /api/generate.
func (h *GenerateHandler) Status(c *gin.Context) {
	token, ok := queryToken(c)
	if !ok {
		return
	}

	view, err := h.facade.OrderStatus(c.Request.Context(), token)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(view))
}

func toOrderInput(req dto.GenerateRequest) (model.OrderInput, bool) {
	if req.Recipient == nil || req.Date == nil || req.Mood == nil || req.CoreSentence == nil {
		return model.OrderInput{}, false
	}
	return model.OrderInput{
		Recipient:    *req.Recipient,
		Date:         *req.Date,
		Mood:         *req.Mood,
		CoreSentence: *req.CoreSentence,
		Name:         req.Name,
		Keywords:     req.Keywords,
	}, true
}

func toOrderResponse(view *access.View) dto.OrderResponse {
	resp := dto.OrderResponse{
		Token:            view.Token,
		ShareToken:       view.ShareToken,
		Status:           string(view.Status),
		Recipient:        view.Recipient,
		Date:             view.Date,
		Mood:             view.Mood,
		CoreSentence:     view.CoreSentence,
		Name:             view.Name,
		Keywords:         view.Keywords,
		PoemText:         view.PoemText,
		PoemLines:        view.PoemLines,
		Partial:          view.Partial,
		ImageURL:         view.ImageURL,
		PaymentSessionID: view.PaymentSessionID,
		CreatedAt:        view.CreatedAt,
		PaidAt:           view.PaidAt,
	}
	if view.PricePlan != nil {
		plan := string(*view.PricePlan)
		resp.PricePlan = &plan
	}
	return resp
}
