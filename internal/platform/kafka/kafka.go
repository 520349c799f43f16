// Package kafka owns the franz-go producer used by the audit relay.
package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"summit/internal/platform/config"
)

// Producer wraps a kgo client. Returns nil from New when no brokers are
// configured; the relay then stays idle and outbox rows accumulate.
type Producer struct {
	client *kgo.Client
}

func New(cfg config.KafkaConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID("summit"),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	return &Producer{client: client}, nil
}

// EnsureTopic creates the topic if it does not exist yet. Safe to call on
// every startup.
func (p *Producer) EnsureTopic(ctx context.Context, topic string, partitions int32, replicas int16) error {
	adm := kadm.NewClient(p.client)

	resp, err := adm.CreateTopic(ctx, partitions, replicas, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", topic, resp.Err)
	}
	return nil
}

// Publish produces a single record synchronously.
func (p *Producer) Publish(ctx context.Context, topic, key string, value []byte) error {
	record := &kgo.Record{Topic: topic, Key: []byte(key), Value: value}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}
	return nil
}

// Health pings the brokers.
func (p *Producer) Health(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// Close flushes buffered records and releases the client.
func (p *Producer) Close() {
	p.client.Close()
}

// Sink binds the producer to a single topic for the outbox relay.
type Sink struct {
	producer *Producer
	topic    string
}

func (p *Producer) Sink(topic string) *Sink {
	return &Sink{producer: p, topic: topic}
}

func (s *Sink) Publish(ctx context.Context, key string, payload []byte) error {
	return s.producer.Publish(ctx, s.topic, key, payload)
}
