package transport

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"face-enhancer/internal/entity"
)

// Enhance reads the raw body itself: tolerant ingest handles malformed
// multipart payloads that gin's form parser would reject outright.
func (h *EnhanceHandler) Enhance(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.EnhanceResult{
			Success: false,
			Error:   entity.ErrNoImageData.Error(),
		})
		return
	}

	result, err := h.enhance.Enhance(body)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, entity.ErrNoImageData):
		c.JSON(http.StatusBadRequest, result)
	default:
		c.JSON(http.StatusInternalServerError, result)
	}
}

func (h *EnhanceHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.enhance.Status())
}
