// Package publisher wraps the franz-go producer behind a minimal interface
// so callers can swap in a recording fake in tests.
package publisher

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Publisher produces messages to a single topic.
type Publisher struct {
	client *kgo.Client
	topic  string
}

// New connects a producer for the given topic. Callers own Close.
func New(brokers []string, topic string) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Publisher{client: client, topic: topic}, nil
}

// Publish produces one message synchronously. Audit emission sits off the
// request path (a worker drains a channel), so a blocking produce is fine.
func (p *Publisher) Publish(ctx context.Context, key string, value []byte) error {
	record := &kgo.Record{Topic: p.topic, Key: []byte(key), Value: value}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes and shuts down the producer.
func (p *Publisher) Close() {
	p.client.Close()
}
