package kafka

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
)

type mockKafkaConn struct {
	createFunc func(topics ...kafka.TopicConfig) error
	deleteFunc func(topics ...string) error
	readFunc   func(topics ...string) ([]kafka.Partition, error)
	closeFunc  func() error
}

func (m *mockKafkaConn) CreateTopics(topics ...kafka.TopicConfig) error {
	if m.createFunc != nil {
		return m.createFunc(topics...)
	}
	return nil
}

func (m *mockKafkaConn) DeleteTopics(topics ...string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(topics...)
	}
	return nil
}

func (m *mockKafkaConn) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	if m.readFunc != nil {
		return m.readFunc(topics...)
	}
	return nil, nil
}

func (m *mockKafkaConn) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

func newTestTopicManager(mock ConnInterface) *TopicManager {
	return &TopicManager{
		conn:   mock,
		logger: logging.NewNopLogger(),
	}
}

func TestFullTopic(t *testing.T) {
	assert.Equal(t, "gapintel.prompt.classify", FullTopic("gapintel", TopicPromptClassify))
	assert.Equal(t, "prompt.classify", FullTopic("", TopicPromptClassify))
}

func TestDeadLetterTopic(t *testing.T) {
	assert.Equal(t, "prompt.match.dlq", DeadLetterTopic(TopicPromptMatch))
}

func TestEventEnvelope_RoundTrip(t *testing.T) {
	payload := JobPayload{ProjectID: "proj-1", PromptIDs: []string{"p1", "p2"}}

	env, err := NewEventEnvelope("prompt.classify", "apiserver", payload)
	require.NoError(t, err)
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, "v1", env.SchemaVersion)

	msg, err := env.ToMessage("gapintel.prompt.classify", payload.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, []byte("proj-1"), msg.Key)
	assert.Equal(t, "prompt.classify", msg.Headers["event_type"])

	decoded, err := MessageToEventEnvelope(&Message{Topic: msg.Topic, Value: msg.Value})
	require.NoError(t, err)

	var got JobPayload
	require.NoError(t, decoded.DecodePayload(&got))
	assert.Equal(t, payload, got)
}

func TestEventEnvelope_DecodeEmptyPayload(t *testing.T) {
	env := &EventEnvelope{}

	var got JobPayload
	assert.Error(t, env.DecodePayload(&got))
}

func TestMessageToEventEnvelope_EmptyValue(t *testing.T) {
	_, err := MessageToEventEnvelope(&Message{})
	assert.Error(t, err)
}

func TestTopicManager_CreateTopic(t *testing.T) {
	var created []kafka.TopicConfig
	mgr := newTestTopicManager(&mockKafkaConn{
		createFunc: func(topics ...kafka.TopicConfig) error {
			created = append(created, topics...)
			return nil
		},
	})

	err := mgr.CreateTopic(context.Background(), TopicConfig{
		Name:              "gapintel.prompt.embed",
		NumPartitions:     6,
		ReplicationFactor: 3,
		RetentionMs:       1000,
	})

	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "gapintel.prompt.embed", created[0].Topic)
	assert.Equal(t, 6, created[0].NumPartitions)
}

func TestTopicManager_CreateTopic_Validation(t *testing.T) {
	mgr := newTestTopicManager(&mockKafkaConn{})

	assert.Error(t, mgr.CreateTopic(context.Background(), TopicConfig{NumPartitions: 1, ReplicationFactor: 1}))
	assert.Error(t, mgr.CreateTopic(context.Background(), TopicConfig{Name: "t", ReplicationFactor: 1}))
	assert.Error(t, mgr.CreateTopic(context.Background(), TopicConfig{Name: "t", NumPartitions: 1}))
}

func TestTopicManager_CreateTopic_AlreadyExists(t *testing.T) {
	mgr := newTestTopicManager(&mockKafkaConn{
		createFunc: func(...kafka.TopicConfig) error {
			return assert.AnError
		},
		readFunc: func(topics ...string) ([]kafka.Partition, error) {
			return []kafka.Partition{{Topic: topics[0]}}, nil
		},
	})

	err := mgr.CreateTopic(context.Background(), TopicConfig{
		Name:              "existing",
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	assert.NoError(t, err)
}

func TestTopicManager_ListTopics_Deduplicates(t *testing.T) {
	mgr := newTestTopicManager(&mockKafkaConn{
		readFunc: func(...string) ([]kafka.Partition, error) {
			return []kafka.Partition{{Topic: "a"}, {Topic: "a"}, {Topic: "b"}}, nil
		},
	})

	topics, err := mgr.ListTopics(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, topics)
}

func TestPipelineTopics(t *testing.T) {
	topics := PipelineTopics("gapintel")

	// Four job topics, each with its DLQ.
	assert.Len(t, topics, 8)

	names := make(map[string]bool)
	for _, tc := range topics {
		names[tc.Name] = true
		assert.Greater(t, tc.NumPartitions, 0)
		assert.Greater(t, tc.ReplicationFactor, 0)
	}
	assert.True(t, names["gapintel.prompt.classify"])
	assert.True(t, names["gapintel.prompt.classify.dlq"])
	assert.True(t, names["gapintel.page.embed"])
	assert.True(t, names["gapintel.prompt.match.dlq"])
}
