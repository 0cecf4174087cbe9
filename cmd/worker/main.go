// batch worker: consumes enhancement tasks and persists artifacts
package main

import (
	"strings"

	"github.com/sirupsen/logrus"

	"face-enhancer/config"
	"face-enhancer/internal/database"
	"face-enhancer/internal/pkg/pipeline"
	"face-enhancer/internal/pkg/processor"
	"face-enhancer/internal/pkg/storage"
	"face-enhancer/internal/pkg/vision"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))

	viperInstance, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Cannot load config. Error: {%s}", err.Error())
	}

	cfg, err := config.ParseConfig(viperInstance)
	if err != nil {
		logrus.Fatalf("Cannot parse config. Error: {%s}", err.Error())
	}

	capability, cascades := vision.Probe(cfg.Enhancer.Engine, cfg.Enhancer.CascadeDir)
	logrus.Infof("vision runtime: %s", capability.Note)
	if cascades != nil {
		defer cascades.Close()
	}

	chain := pipeline.NewChain(capability, cascades, cfg.Enhancer)
	repo := database.NewJobRepository(storage.NewFileStorage(cfg.Storage.BasePath))

	processor.StartBatchConsumer(
		strings.Split(config.GetEnv("KAFKA_BROKERS", cfg.Kafka.Brokers), ","),
		config.GetEnv("KAFKA_TOPIC", cfg.Kafka.Topic),
		config.GetEnv("KAFKA_GROUP_ID", cfg.Kafka.GroupID),
		processor.NewBatchProcessor(chain, repo),
	)
}
