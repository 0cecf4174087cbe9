package service

import (
	"face-enhancer/internal/database"
	"face-enhancer/internal/entity"
	"face-enhancer/internal/pkg/cache"
	"face-enhancer/internal/pkg/kafka"
	"face-enhancer/internal/pkg/vision"
)

// Enhancer is the fallback chain as the service layer sees it.
type Enhancer interface {
	Enhance(payload entity.ImagePayload, params entity.EnhanceParams) *entity.EnhanceResult
}

type EnhanceService interface {
	Enhance(raw []byte) (*entity.EnhanceResult, error)
	Status() *entity.StatusResponse
}

type BatchService interface {
	CreateJob(request *entity.BatchRequest) (*entity.BatchResponse, error)
	GetJob(id string) (*entity.BatchJob, error)
}

type enhanceService struct {
	chain      Enhancer
	cache      *cache.ResultCache
	capability vision.Capability
}

func NewEnhanceService(chain Enhancer, resultCache *cache.ResultCache, capability vision.Capability) EnhanceService {
	return &enhanceService{
		chain:      chain,
		cache:      resultCache,
		capability: capability,
	}
}

type batchService struct {
	repo     database.JobRepository
	producer kafka.Producer
	topic    string
}

func NewBatchService(repo database.JobRepository, producer kafka.Producer, topic string) BatchService {
	return &batchService{
		repo:     repo,
		producer: producer,
		topic:    topic,
	}
}
