package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	keyBrokers      = "kafka.brokers"
	keyTopic        = "kafka.topic"
	keyBatchSize    = "kafka.batch_size"
	keyBatchTimeout = "kafka.batch_timeout"

	DEFAULT_TOPIC         = "setprotocol.submissions"
	DEFAULT_BATCH_SIZE    = 1
	DEFAULT_BATCH_TIMEOUT = 10 // milliseconds
)

// ErrNotConfigured is returned by LoadKafkaConfig when no broker is set.
var ErrNotConfigured = errors.New("kafka brokers not configured")

type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout int
}

// LoadKafkaConfig reads KAFKA_BROKERS (comma separated), KAFKA_TOPIC, KAFKA_BATCH_SIZE and
// KAFKA_BATCH_TIMEOUT. v may be nil, in which case only the environment is read.
func LoadKafkaConfig(v *viper.Viper) (*KafkaConfig, error) {
	if v == nil {
		v = viper.New()
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault(keyTopic, DEFAULT_TOPIC)
	v.SetDefault(keyBatchSize, DEFAULT_BATCH_SIZE)
	v.SetDefault(keyBatchTimeout, DEFAULT_BATCH_TIMEOUT)

	var brokers []string
	for _, broker := range strings.Split(v.GetString(keyBrokers), ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	if len(brokers) == 0 {
		return nil, ErrNotConfigured
	}
	return &KafkaConfig{
		Brokers:      brokers,
		Topic:        v.GetString(keyTopic),
		BatchSize:    v.GetInt(keyBatchSize),
		BatchTimeout: v.GetInt(keyBatchTimeout),
	}, nil
}

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher implements Publisher for Kafka
type KafkaPublisher struct {
	config *KafkaConfig
	writer messageWriter
	logger logrus.FieldLogger
}

var _ Publisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(cfg *KafkaConfig, logger logrus.FieldLogger) *KafkaPublisher {
	return &KafkaPublisher{
		config: cfg,
		logger: logger.WithField("component", "publisher"),
	}
}

func (k *KafkaPublisher) Connect(ctx context.Context) error {
	if k.writer == nil {
		k.writer = &kafka.Writer{
			Addr:         kafka.TCP(k.config.Brokers...),
			Topic:        k.config.Topic,
			Balancer:     &kafka.LeastBytes{},
			BatchSize:    k.config.BatchSize,
			BatchTimeout: time.Duration(k.config.BatchTimeout) * time.Millisecond,
			RequiredAcks: kafka.RequireAll,
		}
	}

	ping, err := encode("ping", "setprotocol client startup")
	if err != nil {
		return err
	}
	if err := k.writer.WriteMessages(ctx, kafka.Message{Key: []byte("ping"), Value: ping}); err != nil {
		return fmt.Errorf("failed to publish to kafka topic %s: %w", k.config.Topic, err)
	}

	k.logger.WithFields(logrus.Fields{
		"brokers": k.config.Brokers,
		"topic":   k.config.Topic,
	}).Info("Connected to Kafka")
	return nil
}

func (k *KafkaPublisher) Close() error {
	if k.writer == nil {
		return nil
	}
	if err := k.writer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka connection: %w", err)
	}
	k.logger.Info("Disconnected from Kafka")
	return nil
}

// PublishSubmission writes one event keyed by transaction hash.
func (k *KafkaPublisher) PublishSubmission(ctx context.Context, submission *Submission) error {
	if submission == nil {
		return fmt.Errorf("cannot publish nil submission")
	}
	if k.writer == nil {
		return fmt.Errorf("publisher is not connected")
	}

	value, err := encode("submission", submission)
	if err != nil {
		return err
	}
	if err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(submission.Hash.Hex()),
		Value: value,
	}); err != nil {
		return fmt.Errorf("failed to publish submission %s: %w", submission.Hash.Hex(), err)
	}

	k.logger.WithFields(logrus.Fields{
		"hash":      submission.Hash.Hex(),
		"operation": submission.Operation,
	}).Info("Published submission")
	return nil
}

func encode(kind string, data interface{}) ([]byte, error) {
	message := struct {
		Type string      `json:"type"`
		Data interface{} `json:"data"`
		Time time.Time   `json:"time"`
	}{
		Type: kind,
		Data: data,
		Time: time.Now().UTC(),
	}
	b, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s message: %w", kind, err)
	}
	return b, nil
}
