package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

const (
	brokersRequiredMessageConstant    = "at least one broker address is required"
	topicRequiredMessageConstant      = "notification topic is required"
	publisherClosedMessageConstant    = "publisher is closed"
	createClientErrorTemplateConstant = "failed to create Kafka client: %w"
	encodeEventErrorTemplateConstant  = "failed to encode event: %w"
	produceEventErrorTemplateConstant = "failed to produce event: %w"
)

// ErrBrokersRequired indicates no broker addresses were configured.
var ErrBrokersRequired = errors.New(brokersRequiredMessageConstant)

// ErrTopicRequired indicates no topic was configured.
var ErrTopicRequired = errors.New(topicRequiredMessageConstant)

// ErrPublisherClosed indicates Publish was called after Close.
var ErrPublisherClosed = errors.New(publisherClosedMessageConstant)

// RecordProducer is the subset of kgo.Client used for publishing.
type RecordProducer interface {
	ProduceSync(executionContext context.Context, records ...*kgo.Record) kgo.ProduceResults
	Close()
}

// KafkaPublisher produces events as JSON records keyed by branch.
type KafkaPublisher struct {
	producer RecordProducer
	topic    string
	mutex    sync.RWMutex
	closed   bool
}

// NewKafkaPublisher connects a franz-go client to the brokers.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, ErrBrokersRequired
	}
	if len(strings.TrimSpace(topic)) == 0 {
		return nil, ErrTopicRequired
	}

	client, clientError := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
	)
	if clientError != nil {
		return nil, fmt.Errorf(createClientErrorTemplateConstant, clientError)
	}
	return NewKafkaPublisherWithProducer(client, topic)
}

// NewKafkaPublisherWithProducer wraps an existing producer.
func NewKafkaPublisherWithProducer(producer RecordProducer, topic string) (*KafkaPublisher, error) {
	if len(strings.TrimSpace(topic)) == 0 {
		return nil, ErrTopicRequired
	}
	return &KafkaPublisher{producer: producer, topic: topic}, nil
}

// Publish synchronously produces the event.
func (publisher *KafkaPublisher) Publish(executionContext context.Context, event Event) error {
	publisher.mutex.RLock()
	defer publisher.mutex.RUnlock()

	if publisher.closed {
		return ErrPublisherClosed
	}

	encodedEvent, encodeError := json.Marshal(event)
	if encodeError != nil {
		return fmt.Errorf(encodeEventErrorTemplateConstant, encodeError)
	}

	record := &kgo.Record{
		Topic: publisher.topic,
		Key:   []byte(event.Branch),
		Value: encodedEvent,
	}
	if produceError := publisher.producer.ProduceSync(executionContext, record).FirstErr(); produceError != nil {
		return fmt.Errorf(produceEventErrorTemplateConstant, produceError)
	}
	return nil
}

// Close shuts down the producer. Subsequent calls are no-ops.
func (publisher *KafkaPublisher) Close() error {
	publisher.mutex.Lock()
	defer publisher.mutex.Unlock()

	if publisher.closed {
		return nil
	}
	publisher.closed = true
	publisher.producer.Close()
	return nil
}

// Configuration selects the publisher.
type Configuration struct {
	Brokers []string
	Topic   string
}

// NewPublisher returns a KafkaPublisher when brokers are configured and a LogPublisher otherwise.
func NewPublisher(configuration Configuration, logger *zap.Logger) (Publisher, error) {
	if len(configuration.Brokers) == 0 {
		return NewLogPublisher(logger), nil
	}
	kafkaPublisher, publisherError := NewKafkaPublisher(configuration.Brokers, configuration.Topic)
	if publisherError != nil {
		return nil, publisherError
	}
	return kafkaPublisher, nil
}
