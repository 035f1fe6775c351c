//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"leadhub/pkg/platform/events"
	"leadhub/pkg/testutil/containers"
)

func TestPublishRoundTrip(t *testing.T) {
	broker := containers.NewKafkaContainer(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	const topic = "leadhub.events.test"
	client, err := Connect(ctx, []string{broker.Broker}, topic, slog.Default())
	require.NoError(t, err)
	publisher := events.NewKafkaPublisher(client, topic)
	t.Cleanup(func() { _ = publisher.Close() })

	admin := NewAdmin(client)
	require.NoError(t, EnsureTopic(ctx, admin, topic, 1, 1))
	require.NoError(t, EnsureTopic(ctx, admin, topic, 1, 1), "existing topic is not an error")

	sent := events.New(ctx, events.TypeDedupCompleted, "PL", map[string]any{"mergedCount": 2})
	require.NoError(t, publisher.Emit(ctx, sent))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	var got *kgo.Record
	for got == nil {
		fetches := consumer.PollFetches(ctx)
		require.NoError(t, ctx.Err())
		fetches.EachRecord(func(r *kgo.Record) {
			if got == nil {
				got = r
			}
		})
	}

	assert.Equal(t, "PL", string(got.Key))
	require.Len(t, got.Headers, 1)
	assert.Equal(t, string(events.TypeDedupCompleted), string(got.Headers[0].Value))

	var decoded events.Event
	require.NoError(t, json.Unmarshal(got.Value, &decoded))
	assert.Equal(t, sent.ID, decoded.ID)
	assert.Equal(t, events.TypeDedupCompleted, decoded.Type)
}
