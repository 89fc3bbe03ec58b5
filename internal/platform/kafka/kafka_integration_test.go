//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"rmfaudit/internal/platform/config"
	audit "rmfaudit/pkg/platform/audit"
	kafkastore "rmfaudit/pkg/platform/audit/store/kafka"
	"rmfaudit/pkg/testutil/containers"
)

func TestAuditEventsReachTopic(t *testing.T) {
	kc := containers.NewKafkaContainer(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg := config.KafkaConfig{
		Brokers:           []string{kc.Broker},
		Topic:             "rmf-audit-events-test",
		ClientID:          "rmfaudit-test",
		Partitions:        1,
		ReplicationFactor: 1,
	}
	producer, err := New(ctx, cfg)
	require.NoError(t, err)
	defer producer.Close()

	require.NoError(t, EnsureTopic(ctx, producer, cfg))
	// Second call hits TopicAlreadyExists and must still succeed.
	require.NoError(t, EnsureTopic(ctx, producer, cfg))

	store := kafkastore.New(producer, cfg.Topic)
	event := audit.Event{
		Category:      audit.CategoryCompliance,
		Timestamp:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		UserID:        "alice",
		Action:        string(audit.EventEvidenceScored),
		AuditCategory: "Safe",
		Decision:      "Partial Conformity",
	}
	require.NoError(t, store.Append(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(kc.Broker),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.Len(t, records, 1)

	assert.Equal(t, "alice", string(records[0].Key))
	var got audit.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, event.Decision, got.Decision)
	assert.Equal(t, event.Action, got.Action)
}
