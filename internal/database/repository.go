package database

import (
	"io"
	"sync"

	"face-enhancer/internal/entity"
	"face-enhancer/internal/pkg/storage"
)

type JobRepository interface {
	Save(job *entity.BatchJob) error
	FindByID(id string) (*entity.BatchJob, error)
	CompleteItem(id string, item entity.BatchItemResult) error
	Fail(id string, reason string) error
	SaveArtifact(id string, index int, data io.Reader) (string, error)
	Delete(id string) error
}

type fileJobRepository struct {
	mu      sync.Mutex
	storage storage.FileStorage
}
