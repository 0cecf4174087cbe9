package service

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"face-enhancer/internal/entity"
	"face-enhancer/internal/pkg/ingest"
)

// CreateJob registers a batch job and enqueues one enhancement task per
// image. Parameters go through the same normalization as single requests.
func (s *batchService) CreateJob(request *entity.BatchRequest) (*entity.BatchResponse, error) {
	if len(request.Images) == 0 {
		return nil, entity.ErrNoImageData
	}

	params := ingest.Normalize(request.Parameters)

	job := &entity.BatchJob{
		ID:     uuid.New().String(),
		Status: entity.JobStatusProcessing,
		Total:  len(request.Images),
	}
	if err := s.repo.Save(job); err != nil {
		return nil, err
	}

	for i, img := range request.Images {
		task := entity.EnhanceTask{
			JobID:      job.ID,
			ImageIndex: i,
			Image:      img,
			Params:     params,
		}
		if err := s.producer.SendMessage(s.topic, task); err != nil {
			logrus.Errorf("failed to enqueue batch task %d: %v", i, err)
			if failErr := s.repo.Fail(job.ID, "task queue unavailable"); failErr != nil {
				logrus.Errorf("failed to mark job %s failed: %v", job.ID, failErr)
			}
			return nil, err
		}
	}

	return &entity.BatchResponse{ID: job.ID, Status: job.Status, Total: job.Total}, nil
}

func (s *batchService) GetJob(id string) (*entity.BatchJob, error) {
	return s.repo.FindByID(id)
}
