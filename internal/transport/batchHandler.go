package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"face-enhancer/internal/entity"
)

func (h *EnhanceHandler) CreateBatch(c *gin.Context) {
	var request entity.BatchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid batch request body"})
		return
	}

	response, err := h.batch.CreateJob(&request)
	if err != nil {
		if errors.Is(err, entity.ErrNoImageData) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No images provided"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, response)
}

func (h *EnhanceHandler) GetBatch(c *gin.Context) {
	id := c.Param("id")

	job, err := h.batch.GetJob(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}
