package transport

import (
	"face-enhancer/internal/service"
)

type EnhanceHandler struct {
	enhance service.EnhanceService
	batch   service.BatchService
}

func NewEnhanceHandler(enhance service.EnhanceService, batch service.BatchService) *EnhanceHandler {
	return &EnhanceHandler{enhance: enhance, batch: batch}
}
