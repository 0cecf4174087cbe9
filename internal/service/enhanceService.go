package service

import (
	"math"
	"time"

	"face-enhancer/internal/entity"
	"face-enhancer/internal/pkg/cache"
	"face-enhancer/internal/pkg/ingest"
)

// Enhance runs the whole request flow: tolerant ingest, cache probe, the
// fallback chain, and the final time stamp. The error is a routing hint for
// the handler; the result body is complete either way.
func (s *enhanceService) Enhance(raw []byte) (*entity.EnhanceResult, error) {
	started := time.Now()

	payload, params := ingest.Parse(raw)
	if payload.IsZero() {
		return &entity.EnhanceResult{
			Success: false,
			Error:   entity.ErrNoImageData.Error(),
		}, entity.ErrNoImageData
	}

	key := cache.Key(payload, params)
	if cached, ok := s.cache.Get(key); ok {
		cached.ProcessingTime = elapsedSeconds(started)
		return cached, nil
	}

	result := s.chain.Enhance(payload, params)
	result.ProcessingTime = elapsedSeconds(started)
	if !result.Success {
		return result, entity.ErrEngineUnavailable
	}

	s.cache.Set(key, result)
	return result, nil
}

func (s *enhanceService) Status() *entity.StatusResponse {
	c := s.capability

	models := make([]string, 0, 2)
	if c.PixelOps {
		models = append(models, "OpenCV Algorithms")
	}
	if c.ImageOps {
		models = append(models, "Imaging Filters")
	}

	mode := "Simulation Mode"
	switch {
	case c.PixelOps:
		mode = "OpenCV Enhanced"
	case c.ImageOps:
		mode = "Basic Mode"
	}

	return &entity.StatusResponse{
		Available:      c.PixelOps,
		BackendWorking: c.PixelOps,
		Models:         models,
		Mode:           mode,
		Features: entity.StatusFeatures{
			AIEnhancement:          c.PixelOps,
			TraditionalEnhancement: c.ImageOps,
			BatchProcessing:        true,
			RealEnhancement:        c.PixelOps || c.ImageOps,
			FaceDetection:          c.FaceDetect,
		},
		EnhancementNote: c.Note,
	}
}

func elapsedSeconds(started time.Time) float64 {
	return math.Round(time.Since(started).Seconds()*100) / 100
}
