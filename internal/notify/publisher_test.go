package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/reposcm/internal/manifest"
	"github.com/temirov/reposcm/internal/notify"
	"github.com/temirov/reposcm/internal/snapshot"
)

const (
	testTopicConstant  = "reposcm.changes"
	testBranchConstant = "main"
)

type recordingProducer struct {
	produceError    error
	producedRecords []*kgo.Record
	closeCount      int
}

func (producer *recordingProducer) ProduceSync(executionContext context.Context, records ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(records))
	for _, record := range records {
		producer.producedRecords = append(producer.producedRecords, record)
		results = append(results, kgo.ProduceResult{Record: record, Err: producer.produceError})
	}
	return results
}

func (producer *recordingProducer) Close() {
	producer.closeCount++
}

func sampleEvent() notify.Event {
	changeSet := snapshot.NewChangeSet([]snapshot.Change{
		{Kind: snapshot.ChangeModified, Entry: manifest.ProjectEntry{Path: "a", ServerPath: "platform/a", Revision: "rev1"}},
	})
	event := notify.NewChangeSetEvent(notify.EventKindCheckout, time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC), testBranchConstant, changeSet)
	event.BuildNumber = 7
	return event
}

func TestKafkaPublisherProducesJSONRecords(testInstance *testing.T) {
	producer := &recordingProducer{}
	publisher, constructionError := notify.NewKafkaPublisherWithProducer(producer, testTopicConstant)
	require.NoError(testInstance, constructionError)

	require.NoError(testInstance, publisher.Publish(context.Background(), sampleEvent()))

	require.Len(testInstance, producer.producedRecords, 1)
	producedRecord := producer.producedRecords[0]
	require.Equal(testInstance, testTopicConstant, producedRecord.Topic)
	require.Equal(testInstance, []byte(testBranchConstant), producedRecord.Key)

	var decodedEvent notify.Event
	require.NoError(testInstance, json.Unmarshal(producedRecord.Value, &decodedEvent))
	require.Equal(testInstance, sampleEvent(), decodedEvent)

	require.NoError(testInstance, publisher.Close())
	require.NoError(testInstance, publisher.Close())
	require.Equal(testInstance, 1, producer.closeCount)
	require.ErrorIs(testInstance, publisher.Publish(context.Background(), sampleEvent()), notify.ErrPublisherClosed)
}

func TestKafkaPublisherReportsProduceErrors(testInstance *testing.T) {
	produceError := errors.New("NOT_LEADER_FOR_PARTITION")
	publisher, constructionError := notify.NewKafkaPublisherWithProducer(&recordingProducer{produceError: produceError}, testTopicConstant)
	require.NoError(testInstance, constructionError)

	require.ErrorIs(testInstance, publisher.Publish(context.Background(), sampleEvent()), produceError)
}

func TestLogPublisher(testInstance *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.InfoLevel)
	publisher := notify.NewLogPublisher(zap.New(observedCore))

	require.NoError(testInstance, publisher.Publish(context.Background(), sampleEvent()))
	require.NoError(testInstance, publisher.Close())

	entries := observedLogs.All()
	require.Len(testInstance, entries, 1)
	contextMap := entries[0].ContextMap()
	require.Equal(testInstance, "checkout", contextMap["kind"])
	require.Equal(testInstance, int64(7), contextMap["build_number"])
	require.Equal(testInstance, int64(1), contextMap["change_count"])
}

func TestNewPublisher(testInstance *testing.T) {
	logPublisher, logError := notify.NewPublisher(notify.Configuration{}, nil)
	require.NoError(testInstance, logError)
	require.IsType(testInstance, &notify.LogPublisher{}, logPublisher)

	_, topicError := notify.NewPublisher(notify.Configuration{Brokers: []string{"localhost:19092"}}, nil)
	require.ErrorIs(testInstance, topicError, notify.ErrTopicRequired)

	_, brokersError := notify.NewKafkaPublisher(nil, testTopicConstant)
	require.ErrorIs(testInstance, brokersError, notify.ErrBrokersRequired)
}
