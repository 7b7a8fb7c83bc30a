package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/heartframe/internal/server/http/dto"
)

// FileHandler serves the finalized deliverable of paid orders.
type FileHandler struct {
	facade DeliveryFacade
}

// NewFileHandler constructs FileHandler.
func NewFileHandler(facade DeliveryFacade) *FileHandler {
	return &FileHandler{facade: facade}
}

// Get handles GET /api/file.
func (h *FileHandler) Get(c *gin.Context) {
	token, ok := queryToken(c)
	if !ok {
		return
	}

	file, err := h.facade.FinalFile(c.Request.Context(), token)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FileResponse{
		PoemText:    file.PoemText,
		ImageURL:    file.ImageURL,
		DownloadURL: file.DownloadURL,
		ShareToken:  file.ShareToken,
	})
}
