//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/couchcryptid/city-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/city-risk-service/internal/config"
	"github.com/couchcryptid/city-risk-service/internal/domain"
	"github.com/couchcryptid/city-risk-service/internal/observability"
	"github.com/couchcryptid/city-risk-service/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "test-city-risk-bands"

type publishedMessage struct {
	Update  domain.BandUpdate
	Key     string
	Headers map[string]string
}

func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from band topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var u domain.BandUpdate
	require.NoError(t, json.Unmarshal(msg.Value, &u), "unmarshal band update")

	return publishedMessage{Update: u, Key: string(msg.Key), Headers: headers}
}

type sequenceCollector struct {
	readings []domain.Reading
	calls    int
}

func (c *sequenceCollector) Collect(_ context.Context, _ domain.City) (domain.Reading, error) {
	i := c.calls
	if i >= len(c.readings) {
		i = len(c.readings) - 1
	}
	c.calls++
	return c.readings[i], nil
}

// TestMonitorPublishesCommittedChanges runs the monitor against a real broker
// and checks that only committed band changes reach the topic.
func TestMonitorPublishesCommittedChanges(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	calm := domain.Reading{AQI: domain.Num(20), TempC: domain.Num(25), RH: domain.Num(50)}
	smoky := calm
	smoky.AQI = domain.Num(180)

	city := domain.City{Name: "Dhaka", Lat: 23.8103, Lon: 90.4125}
	col := &sequenceCollector{readings: []domain.Reading{calm, smoky, smoky}}
	m := pipeline.New([]domain.City{city}, col, writer, discardLogger(), observability.NewMetricsForTesting(), pipeline.Options{})

	for i := 0; i < 3; i++ {
		require.NoError(t, m.RefreshAll(ctx))
	}

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	// Bootstrap publishes every indicator once, then the debounced air change.
	want := len(domain.Indicators) + 1
	received := make([]publishedMessage, 0, want)
	for len(received) < want {
		received = append(received, readPublished(ctx, t, consumer))
	}

	last := received[len(received)-1]
	assert.Equal(t, "Dhaka|airInfo", last.Key)
	assert.Equal(t, "airInfo", last.Headers["indicator"])
	assert.Equal(t, "high", last.Headers["level"])
	_, err := time.Parse(time.RFC3339, last.Headers["committed_at"])
	assert.NoError(t, err, "committed_at should be valid RFC3339")
	assert.Equal(t, domain.LevelLow, last.Update.Change.From.Level)
	assert.Equal(t, domain.LevelHigh, last.Update.Change.To.Level)
	assert.NotEmpty(t, last.Update.ID)

	// Nothing else should be published.
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err = consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no further band updates")
}
