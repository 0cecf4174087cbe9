package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"face-enhancer/internal/entity"
	"face-enhancer/internal/pkg/storage"
)

func NewJobRepository(storage storage.FileStorage) JobRepository {
	return &fileJobRepository{storage: storage}
}

func (r *fileJobRepository) Save(job *entity.BatchJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(job)
}

func (r *fileJobRepository) FindByID(id string) (*entity.BatchJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read(id)
}

// CompleteItem фиксирует результат одного изображения, последняя запись
// переводит задание в completed
func (r *fileJobRepository) CompleteItem(id string, item entity.BatchItemResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, err := r.read(id)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job %s not found", id)
	}

	job.Results = append(job.Results, item)
	job.Done++
	if job.Done >= job.Total && job.Status == entity.JobStatusProcessing {
		job.Status = entity.JobStatusCompleted
	}

	return r.write(job)
}

func (r *fileJobRepository) Fail(id string, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, err := r.read(id)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job %s not found", id)
	}

	job.Status = entity.JobStatusFailed
	job.Error = reason
	return r.write(job)
}

func (r *fileJobRepository) SaveArtifact(id string, index int, data io.Reader) (string, error) {
	path := filepath.Join("jobs", id, fmt.Sprintf("enhanced_%d.jpg", index))
	if err := r.storage.Save(path, data); err != nil {
		return "", err
	}
	return path, nil
}

func (r *fileJobRepository) Delete(id string) error {
	if err := r.storage.Delete(r.metadataPath(id)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (r *fileJobRepository) read(id string) (*entity.BatchJob, error) {
	reader, err := r.storage.Get(r.metadataPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer reader.Close()

	var job entity.BatchJob
	if err := json.NewDecoder(reader).Decode(&job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *fileJobRepository) write(job *entity.BatchJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return r.storage.Save(r.metadataPath(job.ID), bytes.NewReader(data))
}

func (r *fileJobRepository) metadataPath(id string) string {
	return filepath.Join("jobs", id, "job.json")
}
