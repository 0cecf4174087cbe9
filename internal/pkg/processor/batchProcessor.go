package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"face-enhancer/internal/database"
	"face-enhancer/internal/entity"
)

// Enhancer runs one image through the enhancement chain.
type Enhancer interface {
	Enhance(payload entity.ImagePayload, params entity.EnhanceParams) *entity.EnhanceResult
}

type BatchProcessor interface {
	Process(task entity.EnhanceTask) error
}

type batchProcessor struct {
	chain Enhancer
	repo  database.JobRepository
}

func NewBatchProcessor(chain Enhancer, repo database.JobRepository) BatchProcessor {
	return &batchProcessor{chain: chain, repo: repo}
}

// Process прогоняет одно изображение задания через цепочку и фиксирует
// результат в репозитории
func (p *batchProcessor) Process(task entity.EnhanceTask) error {
	logrus.Infof("processing batch item %d of job %s", task.ImageIndex, task.JobID)

	started := time.Now()
	result := p.chain.Enhance(task.Image, task.Params)
	elapsed := math.Round(time.Since(started).Seconds()*100) / 100

	item := entity.BatchItemResult{
		Index:   task.ImageIndex,
		Success: result.Success,
		Method:  result.Method,
		Time:    elapsed,
		Error:   result.Error,
	}

	if result.Success && !result.EnhancedImage.IsZero() {
		if raw, err := result.EnhancedImage.Decode(); err == nil {
			path, err := p.repo.SaveArtifact(task.JobID, task.ImageIndex, bytes.NewReader(raw))
			if err != nil {
				logrus.Errorf("failed to save artifact for job %s: %v", task.JobID, err)
			} else {
				item.Path = path
			}
		}
	}

	return p.repo.CompleteItem(task.JobID, item)
}

func StartBatchConsumer(brokers []string, topic, groupID string, processor BatchProcessor) {

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})

	defer reader.Close()

	logrus.Info("batch enhancement consumer started")
	logrus.Infof("connected to kafka brokers: %s", brokers)

	for {
		ctx := context.Background()
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			logrus.Errorf("error reading message from kafka: %v", err)
			continue
		}

		logrus.Infof("received task from topic %s [partition %d, offset %d]",
			msg.Topic, msg.Partition, msg.Offset)

		var task entity.EnhanceTask
		if err := json.Unmarshal(msg.Value, &task); err != nil {
			logrus.Errorf("failed to parse task: %v", err)
			continue
		}

		go func(t entity.EnhanceTask) {
			if err := processor.Process(t); err != nil {
				logrus.Errorf("processing failed for job %s item %d: %v", t.JobID, t.ImageIndex, err)
			} else {
				logrus.Infof("finished job %s item %d", t.JobID, t.ImageIndex)
			}
		}(task)
	}
}
