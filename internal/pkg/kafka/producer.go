package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"face-enhancer/config"
)

type Producer interface {
	SendMessage(topic string, message interface{}) error
	Close() error
}

type kafkaProducer struct {
	writer *kafka.Writer
}

func NewProducer(cfg config.KafkaConfig) Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logrus.Infof("kafka producer configured for brokers: %s", cfg.Brokers)

	// Проверяем подключение и создаем топик
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers)
	if err != nil {
		logrus.Warnf("kafka connection failed: %v", err)
		logrus.Warn("batch tasks will be acknowledged by the mock producer")
		return &mockProducer{}
	}
	defer conn.Close()

	// Создаем топик если не существует
	topicConfigs := []kafka.TopicConfig{
		{
			Topic:             cfg.Topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		},
	}

	if err = conn.CreateTopics(topicConfigs...); err != nil {
		logrus.Infof("could not create topic (might already exist): %v", err)
	} else {
		logrus.Infof("created topic: %s", cfg.Topic)
	}

	logrus.Infof("connected to kafka at %s", cfg.Brokers)
	return &kafkaProducer{writer: writer}
}

func (p *kafkaProducer) SendMessage(topic string, message interface{}) error {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte("face-enhancer"),
		Value: messageBytes,
		Time:  time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = p.writer.WriteMessages(ctx, msg); err != nil {
		logrus.Errorf("failed to write message to kafka: %v", err)
		return err
	}

	logrus.Debugf("message sent to topic: %s", topic)
	return nil
}

func (p *kafkaProducer) Close() error {
	return p.writer.Close()
}

// Mock producer для работы без Kafka
type mockProducer struct{}

func (m *mockProducer) SendMessage(topic string, message interface{}) error {
	logrus.Infof("MOCK: message to topic %s accepted", topic)
	return nil
}

func (m *mockProducer) Close() error {
	return nil
}
